package intcode

import "fmt"

// Op represents an Intcode opcode, the low two decimal digits of an
// instruction word.
type Op int64

const (
	ADD Op = 1
	MUL Op = 2
	IN  Op = 3
	OUT Op = 4
	JNZ Op = 5
	JEZ Op = 6
	LT  Op = 7
	EQ  Op = 8
	ARB Op = 9
	HLT Op = 99
)

var opStrings = map[Op]string{
	ADD: "ADD",
	MUL: "MUL",
	IN:  "IN",
	OUT: "OUT",
	JNZ: "JNZ",
	JEZ: "JEZ",
	LT:  "LT",
	EQ:  "EQ",
	ARB: "ARB",
	HLT: "HLT",
}

func (o Op) String() string {
	if s, ok := opStrings[o]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", int64(o))
}

// Valid reports whether o is one of the defined opcodes.
func (o Op) Valid() bool {
	_, ok := opStrings[o]
	return ok
}

// Params reports the number of parameters consumed by o.
func (o Op) Params() int {
	switch o {
	case ADD, MUL, LT, EQ:
		return 3
	case JNZ, JEZ:
		return 2
	case IN, OUT, ARB:
		return 1
	default:
		return 0
	}
}

// Width is the distance the program counter advances past an instruction
// that does not jump.
func (o Op) Width() int { return o.Params() + 1 }

// Mode is a parameter addressing mode.
type Mode byte

const (
	Position  Mode = 0
	Immediate Mode = 1
	Relative  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "pos"
	case Immediate:
		return "imm"
	case Relative:
		return "rel"
	}
	return fmt.Sprintf("Mode(%d)", byte(m))
}

// Instruction is a decoded instruction word.
// Modes holds the addressing mode of the 1st, 2nd and 3rd parameter;
// entries beyond Op.Params() are always Position for well-formed words.
type Instruction struct {
	Op    Op
	Modes [3]Mode
}

func (i Instruction) String() string {
	switch n := i.Op.Params(); n {
	case 0:
		return i.Op.String()
	default:
		s := i.Op.String()
		for _, m := range i.Modes[:n] {
			s += " " + m.String()
		}
		return s
	}
}

// DecodeError reports an instruction word with an unknown opcode or
// parameter mode digit.
type DecodeError struct {
	Word  int64
	Param int // 1-3 for a bad mode digit, 0 for a bad opcode
}

func (e DecodeError) Error() string {
	if e.Param == 0 {
		return fmt.Sprintf("unknown opcode %d in word %d", e.Word%100, e.Word)
	}
	return fmt.Sprintf("unknown mode %d for parameter %d in word %d",
		modeDigit(e.Word, e.Param), e.Param, e.Word)
}

// Decode splits an instruction word into its opcode and parameter modes.
// The hundreds, thousands and ten-thousands digits select the modes of
// parameters 1, 2 and 3; higher digits are ignored.
func Decode(word int64) (Instruction, error) {
	var in Instruction
	if word < 0 {
		return Instruction{}, DecodeError{Word: word}
	}
	for p := 1; p <= 3; p++ {
		d := modeDigit(word, p)
		if d > int64(Relative) {
			return Instruction{}, DecodeError{Word: word, Param: p}
		}
		in.Modes[p-1] = Mode(d)
	}
	in.Op = Op(word % 100)
	if !in.Op.Valid() {
		return Instruction{}, DecodeError{Word: word}
	}
	return in, nil
}

func modeDigit(word int64, param int) int64 {
	div := int64(10)
	for i := 0; i < param; i++ {
		div *= 10
	}
	return (word / div) % 10
}
