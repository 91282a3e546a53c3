package intcode

import (
	"errors"
	"iter"
	"sync"
	"sync/atomic"
)

var (
	// ErrDisconnected is returned by Sender.Send after the receiving end
	// has been dropped.
	ErrDisconnected = errors.New("intcode: receiver dropped")

	// ErrEmpty is returned by Receiver.TryRecv when no value is buffered
	// but senders remain.
	ErrEmpty = errors.New("intcode: stream empty")

	// ErrClosed is returned by Receiver.TryRecv once every sender has been
	// closed and the buffer is drained.
	ErrClosed = errors.New("intcode: stream closed")
)

// stream is an unbounded FIFO of values with any number of senders and a
// single receiver.
type stream struct {
	mu      sync.Mutex
	ready   sync.Cond
	buf     []int64
	senders int
	dropped bool
}

// NewStream returns the two ends of a new unbounded stream.
// Sends never block. The stream ends once every Sender (the one returned
// and any clones of it) has been closed.
func NewStream() (*Sender, *Receiver) {
	s := &stream{senders: 1}
	s.ready.L = &s.mu
	return &Sender{s: s}, &Receiver{s: s}
}

// Sender is the sending end of a stream. It is safe for concurrent use.
type Sender struct {
	s      *stream
	closed atomic.Bool
}

// Send appends v to the stream. It returns ErrDisconnected if the receiver
// has been dropped, in which case v is discarded.
// Send panics if tx has been closed.
func (tx *Sender) Send(v int64) error {
	if tx.closed.Load() {
		panic("intcode: send on closed Sender")
	}
	s := tx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dropped {
		return ErrDisconnected
	}
	s.buf = append(s.buf, v)
	s.ready.Signal()
	return nil
}

// Clone returns a new Sender for the same stream. The stream stays open
// until the clone is closed too.
func (tx *Sender) Clone() *Sender {
	if tx.closed.Load() {
		panic("intcode: clone of closed Sender")
	}
	s := tx.s
	s.mu.Lock()
	s.senders++
	s.mu.Unlock()
	return &Sender{s: s}
}

// Close releases tx. Closing a Sender more than once has no effect.
func (tx *Sender) Close() error {
	if !tx.closed.CompareAndSwap(false, true) {
		return nil
	}
	s := tx.s
	s.mu.Lock()
	s.senders--
	if s.senders == 0 {
		s.ready.Broadcast()
	}
	s.mu.Unlock()
	return nil
}

// Receiver is the receiving end of a stream. Values must be received by
// one goroutine at a time.
type Receiver struct {
	s *stream
}

// Recv blocks until a value is available or the stream has ended.
// It reports false once every sender is closed and no values remain.
func (rx *Receiver) Recv() (int64, bool) {
	s := rx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.buf) == 0 && s.senders > 0 && !s.dropped {
		s.ready.Wait()
	}
	return s.pop()
}

// TryRecv returns the next value without blocking. It returns ErrEmpty if
// none is buffered yet and ErrClosed if none ever will be.
func (rx *Receiver) TryRecv() (int64, error) {
	s := rx.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.pop(); ok {
		return v, nil
	}
	if s.senders == 0 || s.dropped {
		return 0, ErrClosed
	}
	return 0, ErrEmpty
}

func (s *stream) pop() (int64, bool) {
	if len(s.buf) == 0 {
		return 0, false
	}
	v := s.buf[0]
	if s.buf = s.buf[1:]; len(s.buf) == 0 {
		s.buf = nil
	}
	return v, true
}

// All returns an iterator over values received until the stream ends.
func (rx *Receiver) All() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		for {
			v, ok := rx.Recv()
			if !ok || !yield(v) {
				return
			}
		}
	}
}

// Drop discards buffered values and disconnects the stream; subsequent
// sends report ErrDisconnected.
func (rx *Receiver) Drop() {
	s := rx.s
	s.mu.Lock()
	s.dropped = true
	s.buf = nil
	s.ready.Broadcast()
	s.mu.Unlock()
}
