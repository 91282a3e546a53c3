// Package network runs groups of Intcode machines concurrently, each on its
// own goroutine, connected output-to-input by relays.
package network

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/nf/intcode/intcode"
)

// ErrStarted is returned when a Network is modified after Run is called.
var ErrStarted = errors.New("network: already started")

// Network is a set of machines and the connections between them.
// Machines are added and wired first; Run then starts everything at once.
type Network struct {
	log *zap.Logger

	mu      sync.Mutex
	nodes   []*Node
	started bool
}

// Node is a machine within a Network.
type Node struct {
	Name string

	m    *intcode.Machine
	io   *intcode.Chan
	in   *intcode.Sender   // inbound stream, held until Run
	outs []*intcode.Sender // downstream inputs and taps
}

// Machine returns the node's machine. Its memory may be inspected once Run
// has returned.
func (n *Node) Machine() *intcode.Machine { return n.m }

// New returns an empty Network that logs to log, which may be nil.
func New(log *zap.Logger) *Network {
	if log == nil {
		log = zap.NewNop()
	}
	return &Network{log: log}
}

// Add creates a machine running a copy of program. The seed values are
// queued on its input ahead of anything sent by upstream nodes.
func (nw *Network) Add(name string, program []int64, seed ...int64) (*Node, error) {
	nw.mu.Lock()
	defer nw.mu.Unlock()
	if nw.started {
		return nil, ErrStarted
	}
	tx, rx := intcode.NewStream()
	for _, v := range seed {
		tx.Send(v)
	}
	c := intcode.NewChan()
	c.Listen(rx)
	n := &Node{
		Name: name,
		m:    intcode.Load(program, c),
		io:   c,
		in:   tx,
	}
	nw.nodes = append(nw.nodes, n)
	return n, nil
}

// Connect routes every output of from to the input of to.
// A node may feed several others; each receives every value, in the order
// the connections were made.
func (nw *Network) Connect(from, to *Node) error {
	nw.mu.Lock()
	defer nw.mu.Unlock()
	if nw.started {
		return ErrStarted
	}
	from.outs = append(from.outs, to.in.Clone())
	return nil
}

// Tap returns a stream carrying every output of from. It ends once from
// has halted.
func (nw *Network) Tap(from *Node) (*intcode.Receiver, error) {
	nw.mu.Lock()
	defer nw.mu.Unlock()
	if nw.started {
		return nil, ErrStarted
	}
	tx, rx := intcode.NewStream()
	from.outs = append(from.outs, tx)
	return rx, nil
}

// Send queues v on the input of n, after its seed values and anything sent
// earlier.
func (nw *Network) Send(n *Node, v int64) error {
	nw.mu.Lock()
	defer nw.mu.Unlock()
	if nw.started {
		return ErrStarted
	}
	return n.in.Send(v)
}

// Run starts every machine and relay and waits for all of them to finish.
// A machine stops when it halts; a relay stops when the machine feeding it
// has stopped. The returned error combines the failures of every machine.
func (nw *Network) Run() error {
	nw.mu.Lock()
	if nw.started {
		nw.mu.Unlock()
		return ErrStarted
	}
	nw.started = true
	nodes := nw.nodes
	nw.mu.Unlock()

	var pipes []*intcode.Pipe
	for _, n := range nodes {
		if len(n.outs) > 0 {
			pipes = append(pipes, intcode.NewPipe(n.io.Subscribe(), n.outs...))
		}
		// From here on only upstream relays hold the node's input open.
		n.in.Close()
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs error
	)
	for _, n := range nodes {
		wg.Add(1)
		go func(n *Node) {
			defer wg.Done()
			nw.log.Debug("start", zap.String("node", n.Name))
			if err := n.m.Run(); err != nil {
				nw.log.Warn("abort", zap.String("node", n.Name), zap.Error(err))
				mu.Lock()
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", n.Name, err))
				mu.Unlock()
				return
			}
			nw.log.Debug("halt", zap.String("node", n.Name))
		}(n)
	}
	for _, p := range pipes {
		wg.Add(1)
		go func(p *intcode.Pipe) {
			defer wg.Done()
			n := p.Run()
			nw.log.Debug("relay done", zap.Int("forwarded", n))
		}(p)
	}
	wg.Wait()
	return errs
}
