package intcode

import (
	"errors"
	"fmt"
	"slices"
	"testing"
)

func TestLoad(t *testing.T) {
	for _, size := range []int{0, 1, 5, 1000} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			prog := make([]int64, size)
			for i := range prog {
				prog[i] = int64(i + 1)
			}
			m := Load(prog, nil)
			if g := m.Len(); g != size {
				t.Fatalf("Len() == %d, want %d", g, size)
			}
			if m.PC != 0 || m.RelBase != 0 || m.Steps() != 0 {
				t.Errorf("PC, RelBase, Steps = %d, %d, %d, want 0, 0, 0", m.PC, m.RelBase, m.Steps())
			}
			if _, ok := m.IO.(Discard); !ok {
				t.Errorf("IO is %T, want Discard", m.IO)
			}
			for i := range prog {
				prog[i] = -1
			}
			for i := 0; i < size; i++ {
				if g, w := m.Read(i), int64(i+1); g != w {
					t.Fatalf("Read(%d) == %d, want %d (memory aliases program)", i, g, w)
				}
			}
		})
	}
}

func TestMemory(t *testing.T) {
	m := Load([]int64{1, 2, 3}, nil)

	if g := m.Read(10); g != 0 {
		t.Errorf("Read(10) == %d, want 0", g)
	}
	if g := m.Read(-1); g != 0 {
		t.Errorf("Read(-1) == %d, want 0", g)
	}
	if g := m.Len(); g != 3 {
		t.Fatalf("Len() == %d after out of range reads, want 3", g)
	}

	m.Write(7, 42)
	if g, w := m.Mem(), []int64{1, 2, 3, 0, 0, 0, 0, 42}; !slices.Equal(g, w) {
		t.Errorf("memory is %v, want %v", g, w)
	}
	m.Write(1, 9)
	m.Write(3, 4)
	if g, w := m.Mem(), []int64{1, 9, 3, 4, 0, 0, 0, 42}; !slices.Equal(g, w) {
		t.Errorf("memory is %v, want %v", g, w)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("Write(-1, 0) did not panic")
			}
		}()
		m.Write(-1, 0)
	}()
}

func TestExec(t *testing.T) {
	c := newExecTestCase
	for i, c := range []*execTestCase{
		c(1, 5, 6, 7, 99, 10, 20, 0).want().mem(7, 30).pc(4),
		c(1101, 2, 3, 5).want().mem(5, 5).pc(4),
		c(1102, 3, 4, 5, 99, 0).want().mem(5, 12).pc(4),
		c(1002, 4, 3, 4, 33).want().mem(4, 99).pc(4),
		c(1101, -7, 3, 0).want().mem(0, -4).pc(4),
		c(1101, 1, 1, 100).want().mem(100, 2).pc(4),

		c(1107, 1, 2, 5, 99, 7).want().mem(5, 1).pc(4),
		c(1107, 2, 1, 5, 99, 7).want().mem(5, 0).pc(4),
		c(1107, 2, 2, 5, 99, 7).want().mem(5, 0).pc(4),
		c(1108, 5, 5, 5, 99, 0).want().mem(5, 1).pc(4),
		c(1108, 5, 6, 5, 99, 7).want().mem(5, 0).pc(4),

		c(3, 3, 99, 0).io(NewSingle(42)).want().mem(3, 42).pc(2),
		c(203, -1, 99).rel(3).io(NewSingle(7)).want().mem(2, 7).pc(2),
		c(4, 0).want().pc(2),

		c(1105, 1, 7).want().pc(7),
		c(1105, 0, 7).want().pc(3),
		c(1106, 0, 9).want().pc(9),
		c(1106, 5, 9).want().pc(3),
		c(5, 3, 4, 1, 11).want().pc(11),
		c(6, 3, 4, 1, 11).want().pc(3),
		c(2205, 0, 1).rel(3).mem(3, 1, 8).want().pc(8),

		c(109, 19).rel(2000).want().rel(2019).pc(2),
		c(109, -5).want().rel(-5).pc(2),
		c(209, 1, 5).rel(1).want().rel(6).pc(2),
		c(22201, 0, 1, 2).rel(4).mem(4, 6, 7).want().mem(6, 13).pc(4),

		c(99).want().error(ErrHalt),
		c(1199).want().error(ErrHalt),

		c(11101, 1, 1, 3).want().
			error(HaltError{HaltCode: ImmediateWrite, Word: 11101}),
		c(103, 3).io(NewSingle(1)).want().
			error(HaltError{HaltCode: ImmediateWrite, Word: 103}),
		c(42).want().
			error(HaltError{HaltCode: BadInstruction, Word: 42, Err: DecodeError{Word: 42}}),
		c(302).want().
			error(HaltError{HaltCode: BadInstruction, Word: 302, Err: DecodeError{Word: 302, Param: 1}}),
		c(1, -1, 0, 0).want().
			error(HaltError{HaltCode: BadAddress, Word: 1}),
		c(2201, 0, 0, 0).rel(-10).want().
			error(HaltError{HaltCode: BadAddress, Word: 2201}),
		c(1105, 1, -4).want().
			error(HaltError{HaltCode: BadAddress, Word: 1105}),
		c(3, 0).io(NewQueue()).want().
			error(HaltError{HaltCode: InputExhausted, Word: 3}),
		c(1101, 1, 1, 100).maxMem(50).want().
			error(HaltError{HaltCode: MemoryLimit, Word: 1101}),
	} {
		t.Run(fmt.Sprintf("%d_%d", c.m.Read(0), i), func(t *testing.T) {
			if err := c.m.Exec(); err != c.err {
				t.Fatalf("got error %v, want %v", err, c.err)
			}
			if g, w := c.m.Mem(), c.w.Mem(); !slices.Equal(g, w) {
				t.Errorf("memory is\n\t%v\nwant\n\t%v", g, w)
			}
			if g, w := c.m.PC, c.w.PC; g != w {
				t.Errorf("PC is %d, want %d", g, w)
			}
			if g, w := c.m.RelBase, c.w.RelBase; g != w {
				t.Errorf("RelBase is %d, want %d", g, w)
			}
		})
	}
}

type execTestCase struct {
	m, w *Machine
	err  error
	set  *Machine
}

func newExecTestCase(prog ...int64) *execTestCase {
	c := &execTestCase{}
	c.m = Load(prog, nil)
	c.w = Load(prog, nil)
	c.set = c.m
	return c
}

func (c *execTestCase) mem(addr int, words ...int64) *execTestCase {
	for i, v := range words {
		c.set.Write(addr+i, v)
		if c.set == c.m {
			c.w.Write(addr+i, v)
		}
	}
	return c
}

func (c *execTestCase) pc(addr int) *execTestCase {
	c.set.PC = addr
	return c
}

func (c *execTestCase) rel(base int64) *execTestCase {
	c.set.RelBase = base
	if c.set == c.m {
		c.w.RelBase = base
	}
	return c
}

func (c *execTestCase) io(io IO) *execTestCase {
	c.set.IO = io
	return c
}

func (c *execTestCase) maxMem(n int) *execTestCase {
	c.m.MaxMem, c.w.MaxMem = n, n
	return c
}

func (c *execTestCase) want() *execTestCase {
	c.set = c.w
	return c
}

func (c *execTestCase) error(err error) *execTestCase {
	c.err = err
	return c
}

func TestRunMemory(t *testing.T) {
	for _, c := range []struct {
		prog, want []int64
		steps      uint64
	}{
		{[]int64{1, 0, 0, 0, 99}, []int64{2, 0, 0, 0, 99}, 2},
		{[]int64{2, 3, 0, 3, 99}, []int64{2, 3, 0, 6, 99}, 2},
		{[]int64{2, 4, 4, 5, 99, 0}, []int64{2, 4, 4, 5, 99, 9801}, 2},
		{[]int64{1, 1, 1, 4, 99, 5, 6, 0, 99}, []int64{30, 1, 1, 4, 2, 5, 6, 0, 99}, 3},
		{[]int64{1002, 4, 3, 4, 33}, []int64{1002, 4, 3, 4, 99}, 2},
		{[]int64{1101, 100, -1, 4, 0}, []int64{1101, 100, -1, 4, 99}, 2},
	} {
		t.Run(FormatProgram(c.prog), func(t *testing.T) {
			m := Load(c.prog, Discard{})
			if err := m.Run(); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if g := m.Mem(); !slices.Equal(g, c.want) {
				t.Errorf("memory is %v, want %v", g, c.want)
			}
			if g := m.Steps(); g != c.steps {
				t.Errorf("Steps() == %d, want %d", g, c.steps)
			}
		})
	}
}

// The comparison program outputs 999 if its input is below 8, 1000 if it
// is equal to 8, and 1001 if it is above.
var compareProgram = []int64{
	3, 21, 1008, 21, 8, 20, 1005, 20, 22, 107, 8, 21, 20, 1006, 20, 31,
	1106, 0, 36, 98, 0, 0, 1002, 21, 125, 20, 4, 20, 1105, 1, 46, 104,
	999, 1105, 1, 46, 1101, 1000, 1, 20, 4, 20, 1105, 1, 46, 98, 99,
}

func TestRunSingle(t *testing.T) {
	for _, c := range []struct {
		prog     []int64
		in, want int64
	}{
		{compareProgram, 7, 999},
		{compareProgram, 8, 1000},
		{compareProgram, 9, 1001},
		{compareProgram, -50, 999},
		{[]int64{3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8}, 8, 1},
		{[]int64{3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8}, 5, 0},
		{[]int64{3, 3, 1107, -1, 8, 3, 4, 3, 99}, 5, 1},
		{[]int64{3, 3, 1107, -1, 8, 3, 4, 3, 99}, 8, 0},
		{[]int64{3, 12, 6, 12, 15, 1, 13, 14, 13, 4, 13, 99, -1, 0, 1, 9}, 0, 0},
		{[]int64{3, 3, 1105, -1, 9, 1101, 0, 0, 12, 4, 12, 99, 1}, 3, 1},
	} {
		t.Run(fmt.Sprintf("%d", c.in), func(t *testing.T) {
			io := NewSingle(c.in)
			if err := Load(c.prog, io).Run(); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if g := io.Value(); g != c.want {
				t.Errorf("output %d, want %d", g, c.want)
			}
		})
	}
}

func TestRunQueue(t *testing.T) {
	quine := []int64{109, 1, 204, -1, 1001, 100, 1, 100, 1008, 100, 16, 101, 1006, 101, 0, 99}
	for _, c := range []struct {
		name string
		prog []int64
		in   []int64
		want []int64
	}{
		{"quine", quine, nil, quine},
		{"large_product", []int64{1102, 34915192, 34915192, 7, 4, 7, 99, 0}, nil, []int64{1219070632396864}},
		{"large_literal", []int64{104, 1125899906842624, 99}, nil, []int64{1125899906842624}},
		{"echo", []int64{3, 0, 4, 0, 3, 0, 4, 0, 99}, []int64{5, -6}, []int64{5, -6}},
		{"relative_input", []int64{109, 10, 203, 0, 204, 0, 99}, []int64{77}, []int64{77}},
	} {
		t.Run(c.name, func(t *testing.T) {
			q := NewQueue(c.in...)
			m := Load(c.prog, q)
			if err := m.Run(); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if g := q.Outputs(); !slices.Equal(g, c.want) {
				t.Errorf("output is %v, want %v", g, c.want)
			}
		})
	}
}

func TestRunError(t *testing.T) {
	m := Load([]int64{3, 0, 3, 0, 99}, NewQueue(1))
	err := m.Run()
	var h HaltError
	if !errors.As(err, &h) {
		t.Fatalf("Run returned %v, want HaltError", err)
	}
	if h.HaltCode != InputExhausted || h.Addr != 2 {
		t.Errorf("got %v at %d, want %v at 2", h.HaltCode, h.Addr, InputExhausted)
	}
	if m.PC != 2 {
		t.Errorf("PC is %d, want 2", m.PC)
	}

	err = Load([]int64{1, 0, 0, 0, 13}, nil).Run()
	var d DecodeError
	if !errors.As(err, &d) || d.Word != 13 {
		t.Errorf("Run returned %v, want DecodeError for word 13", err)
	}
}

func TestRunClosesIO(t *testing.T) {
	c := NewChan(3)
	rx := c.Subscribe()
	if err := Load([]int64{3, 0, 4, 0, 104, 9, 99}, c).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var got []int64
	for v := range rx.All() {
		got = append(got, v)
	}
	if w := []int64{3, 9}; !slices.Equal(got, w) {
		t.Errorf("received %v, want %v", got, w)
	}
}
