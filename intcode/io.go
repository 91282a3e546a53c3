package intcode

// IO is how a Machine exchanges values with its environment.
// In supplies the value for an IN instruction and Out accepts the value of
// an OUT instruction. An implementation may abort the running machine by
// panicking with a HaltCode, which Exec reports as a HaltError.
type IO interface {
	In() int64
	Out(v int64)
}

var (
	_ IO = Discard{}
	_ IO = &Single{}
	_ IO = &Queue{}
	_ IO = &Chan{}
)

// Discard answers every input with zero and drops all output.
type Discard struct{}

func (Discard) In() int64 { return 0 }
func (Discard) Out(int64) {}

// Single is a one-value cell shared by input and output: In returns the
// last value stored and Out overwrites it.
type Single struct {
	v int64
}

func NewSingle(v int64) *Single { return &Single{v: v} }

func (s *Single) In() int64   { return s.v }
func (s *Single) Out(v int64) { s.v = v }

// Set stores v as the next input.
func (s *Single) Set(v int64) { s.v = v }

// Value returns the value in the cell.
func (s *Single) Value() int64 { return s.v }

// Queue feeds input from a FIFO queue and collects output in another.
// It is meant for deterministic single-goroutine runs: a read from an
// empty input queue halts the machine with InputExhausted rather than
// waiting.
type Queue struct {
	in, out []int64
}

// NewQueue returns a Queue whose input is seeded with init.
func NewQueue(init ...int64) *Queue {
	return &Queue{in: append([]int64(nil), init...)}
}

// Push appends v to the input queue.
func (q *Queue) Push(v ...int64) { q.in = append(q.in, v...) }

func (q *Queue) In() int64 {
	if len(q.in) == 0 {
		panic(InputExhausted)
	}
	v := q.in[0]
	q.in = q.in[1:]
	return v
}

func (q *Queue) Out(v int64) { q.out = append(q.out, v) }

// Pop removes and returns the oldest output value.
func (q *Queue) Pop() (int64, bool) {
	if len(q.out) == 0 {
		return 0, false
	}
	v := q.out[0]
	q.out = q.out[1:]
	return v, true
}

// Last returns the most recent output value without removing it.
func (q *Queue) Last() (int64, bool) {
	if len(q.out) == 0 {
		return 0, false
	}
	return q.out[len(q.out)-1], true
}

// Outputs returns the output values not yet popped, oldest first.
func (q *Queue) Outputs() []int64 { return append([]int64(nil), q.out...) }

// Pending reports the number of unread input values.
func (q *Queue) Pending() int { return len(q.in) }

// ClosePolicy selects what Chan.In does when its inbound stream has ended.
type ClosePolicy byte

const (
	// ZeroOnClose answers zero once the inbound stream has ended.
	ZeroOnClose ClosePolicy = iota
	// HaltOnClose halts the machine with InputClosed.
	HaltOnClose
)

// Chan connects a Machine to streams shared with other goroutines.
//
// Input is taken first from a local buffer, most recently pushed value
// first, and then from the inbound stream set by Listen, blocking until a
// value arrives. Output is sent to every subscriber in the order they were
// registered; subscribers that have dropped their receiver are skipped.
//
// Listen, Subscribe and Forward must be called before the machine starts.
type Chan struct {
	OnClose ClosePolicy

	buf []int64
	rx  *Receiver
	tx  []*Sender
}

// NewChan returns a Chan whose local buffer holds init.
func NewChan(init ...int64) *Chan {
	return &Chan{buf: append([]int64(nil), init...)}
}

// Push adds v to the local input buffer.
func (c *Chan) Push(v int64) { c.buf = append(c.buf, v) }

// Listen sets the inbound stream.
func (c *Chan) Listen(rx *Receiver) { c.rx = rx }

// Subscribe registers a new output subscriber and returns its receiving end.
func (c *Chan) Subscribe() *Receiver {
	tx, rx := NewStream()
	c.tx = append(c.tx, tx)
	return rx
}

// Forward registers tx as an output subscriber. Chan takes ownership of tx
// and closes it in Close.
func (c *Chan) Forward(tx *Sender) { c.tx = append(c.tx, tx) }

func (c *Chan) In() int64 {
	if n := len(c.buf); n > 0 {
		v := c.buf[n-1]
		c.buf = c.buf[:n-1]
		return v
	}
	if c.rx != nil {
		if v, ok := c.rx.Recv(); ok {
			return v
		}
	}
	if c.OnClose == HaltOnClose {
		panic(InputClosed)
	}
	return 0
}

func (c *Chan) Out(v int64) {
	for _, tx := range c.tx {
		tx.Send(v) // ErrDisconnected: subscriber has gone away.
	}
}

// Close ends every output subscription and drops the inbound stream.
// Machine.Run calls it when the program stops.
func (c *Chan) Close() error {
	for _, tx := range c.tx {
		tx.Close()
	}
	if c.rx != nil {
		c.rx.Drop()
	}
	return nil
}
