// Package intcode provides an implementation of the Intcode computer,
// called Machine, along with the I/O strategies and relays used to run one
// or many machines.
//
// A Machine executes a program of signed 64-bit words held in a flat memory
// that grows on demand. All communication with the outside world goes
// through the IO supplied at construction.
package intcode

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// DefaultMaxMem is the default limit, in words, on the size memory may grow
// to.
const DefaultMaxMem = 1 << 24

// Machine is an implementation of the Intcode computer.
type Machine struct {
	PC      int
	RelBase int64
	IO      IO

	// MaxMem bounds memory growth. Zero means DefaultMaxMem.
	MaxMem int

	mem   []int64
	steps uint64
}

// Load returns a Machine over a private copy of program that communicates
// through io. A nil io is replaced by Discard.
func Load(program []int64, io IO) *Machine {
	if io == nil {
		io = Discard{}
	}
	mem := make([]int64, len(program))
	copy(mem, program)
	return &Machine{IO: io, mem: mem}
}

// ErrHalt is returned by Exec when the instruction executed is HLT.
var ErrHalt = errors.New("HLT")

// Run executes instructions until the program halts, returning nil, or
// until it encounters a fatal condition, returning a HaltError.
// If m.IO implements io.Closer it is closed before Run returns, which
// signals end of stream to anything consuming the machine's output.
func (m *Machine) Run() (err error) {
	defer func() {
		if c, ok := m.IO.(io.Closer); ok {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
	}()
	for {
		if err := m.Exec(); err != nil {
			if err == ErrHalt {
				Logger().Debug("halt",
					zap.Int("pc", m.PC),
					zap.Uint64("steps", m.steps),
					zap.Int("mem", len(m.mem)))
				return nil
			}
			Logger().Debug("abort", zap.Error(err), zap.Uint64("steps", m.steps))
			return err
		}
	}
}

// Exec executes the instruction at m.PC. It returns ErrHalt if that
// instruction is HLT, and otherwise only returns a non-nil error if it
// encounters a fatal condition, in which case the error is a HaltError and
// m.PC is left pointing at the failed instruction.
func (m *Machine) Exec() (err error) {
	var (
		word = m.Read(m.PC)
		pc   = m.PC
	)
	defer func() {
		if e := recover(); e != nil {
			switch e := e.(type) {
			case HaltCode:
				err = HaltError{HaltCode: e, Word: word, Addr: pc}
			case HaltError:
				e.Word, e.Addr = word, pc
				err = e
			default:
				panic(e)
			}
			m.PC = pc
		}
	}()

	in, derr := Decode(word)
	if derr != nil {
		panic(HaltError{HaltCode: BadInstruction, Err: derr})
	}
	m.steps++

	switch in.Op {
	case ADD:
		m.store(3, in.Modes[2], m.load(1, in.Modes[0])+m.load(2, in.Modes[1]))
	case MUL:
		m.store(3, in.Modes[2], m.load(1, in.Modes[0])*m.load(2, in.Modes[1]))
	case LT:
		m.store(3, in.Modes[2], b2i(m.load(1, in.Modes[0]) < m.load(2, in.Modes[1])))
	case EQ:
		m.store(3, in.Modes[2], b2i(m.load(1, in.Modes[0]) == m.load(2, in.Modes[1])))
	case IN:
		addr := m.dest(1, in.Modes[0])
		m.write(addr, m.IO.In())
	case OUT:
		m.IO.Out(m.load(1, in.Modes[0]))
	case JNZ, JEZ:
		cond, target := m.load(1, in.Modes[0]), m.load(2, in.Modes[1])
		if (in.Op == JNZ) == (cond != 0) {
			if target < 0 {
				panic(BadAddress)
			}
			m.PC = int(target)
			return nil
		}
	case ARB:
		m.RelBase += m.load(1, in.Modes[0])
	case HLT:
		return ErrHalt
	default:
		panic(fmt.Errorf("internal error: %v not implemented", in.Op))
	}
	m.PC += in.Op.Width()
	return nil
}

// load resolves parameter n of the current instruction as a source operand.
func (m *Machine) load(n int, mode Mode) int64 {
	p := m.Read(m.PC + n)
	if mode == Immediate {
		return p
	}
	return m.Read(m.addr(p, mode))
}

// dest resolves parameter n of the current instruction as a write address.
func (m *Machine) dest(n int, mode Mode) int {
	if mode == Immediate {
		panic(ImmediateWrite)
	}
	return m.addr(m.Read(m.PC+n), mode)
}

func (m *Machine) store(n int, mode Mode, v int64) {
	m.write(m.dest(n, mode), v)
}

func (m *Machine) addr(p int64, mode Mode) int {
	if mode == Relative {
		p += m.RelBase
	}
	if p < 0 {
		panic(BadAddress)
	}
	return int(p)
}

// Read returns the word at addr. Addresses outside memory read as zero and
// do not grow it.
func (m *Machine) Read(addr int) int64 {
	if addr < 0 || addr >= len(m.mem) {
		return 0
	}
	return m.mem[addr]
}

// Write stores v at addr, growing memory with zeroes if addr lies beyond it.
// Write panics if addr is negative or beyond m.MaxMem.
func (m *Machine) Write(addr int, v int64) {
	if addr < 0 {
		panic(fmt.Errorf("intcode: write to negative address %d", addr))
	}
	if addr >= m.maxMem() {
		panic(fmt.Errorf("intcode: write to %d exceeds memory limit %d", addr, m.maxMem()))
	}
	m.write(addr, v)
}

func (m *Machine) write(addr int, v int64) {
	if addr >= len(m.mem) {
		if addr >= m.maxMem() {
			panic(MemoryLimit)
		}
		m.grow(addr + 1)
	}
	m.mem[addr] = v
}

func (m *Machine) grow(n int) {
	if n <= cap(m.mem) {
		m.mem = m.mem[:n]
		return
	}
	c := 2 * cap(m.mem)
	if c < n {
		c = n
	}
	if lim := m.maxMem(); c > lim {
		c = lim
	}
	mem := make([]int64, n, c)
	copy(mem, m.mem)
	m.mem = mem
}

func (m *Machine) maxMem() int {
	if m.MaxMem > 0 {
		return m.MaxMem
	}
	return DefaultMaxMem
}

// Len returns the current length of memory.
func (m *Machine) Len() int { return len(m.mem) }

// Steps returns the number of instructions executed so far.
func (m *Machine) Steps() uint64 { return m.steps }

// Mem returns a copy of the machine's memory.
func (m *Machine) Mem() []int64 {
	mem := make([]int64, len(m.mem))
	copy(mem, m.mem)
	return mem
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// HaltError is returned by Exec and Run if execution is aborted by a fatal
// condition.
type HaltError struct {
	HaltCode
	Word int64 // instruction word being executed
	Addr int   // address of that word
	Err  error // underlying cause, if any
}

func (e HaltError) Error() string {
	s := fmt.Sprintf("%s executing %d at %d", e.HaltCode, e.Word, e.Addr)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e HaltError) Unwrap() error { return e.Err }

// HaltCode signifies the type of condition that aborted execution.
type HaltCode byte

const (
	BadInstruction HaltCode = iota + 1
	ImmediateWrite
	BadAddress
	InputExhausted
	InputClosed
	MemoryLimit
)

func (c HaltCode) String() string {
	if s, ok := map[HaltCode]string{
		BadInstruction: "bad instruction",
		ImmediateWrite: "immediate mode write",
		BadAddress:     "negative address",
		InputExhausted: "input exhausted",
		InputClosed:    "input closed",
		MemoryLimit:    "memory limit exceeded",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}
