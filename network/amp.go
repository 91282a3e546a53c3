package network

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nf/intcode/intcode"
)

// ErrNoOutput is returned when an amplifier halts without producing a value.
var ErrNoOutput = errors.New("network: amplifier produced no output")

// Chain runs one copy of program per phase setting, in order, on the
// calling goroutine. Each copy reads its phase and then the previous
// copy's last output (input, for the first) and the last output of the
// final copy is returned.
func Chain(program, phases []int64, input int64) (int64, error) {
	v := input
	for i, p := range phases {
		q := intcode.NewQueue(p, v)
		if err := intcode.Load(program, q).Run(); err != nil {
			return 0, fmt.Errorf("amplifier %d: %w", i, err)
		}
		out, ok := q.Last()
		if !ok {
			return 0, fmt.Errorf("amplifier %d: %w", i, ErrNoOutput)
		}
		v = out
	}
	return v, nil
}

// Feedback runs one copy of program per phase setting, concurrently, with
// each copy's output feeding the next and the last feeding back into the
// first. The first copy also receives an initial zero after its phase.
// It returns the last value output by the final copy once every copy has
// halted.
func Feedback(log *zap.Logger, program, phases []int64) (int64, error) {
	if len(phases) == 0 {
		return 0, ErrNoOutput
	}
	nw := New(log)
	nodes := make([]*Node, len(phases))
	for i, p := range phases {
		seed := []int64{p}
		if i == 0 {
			seed = append(seed, 0)
		}
		n, err := nw.Add(ampName(i), program, seed...)
		if err != nil {
			return 0, err
		}
		nodes[i] = n
	}
	for i, n := range nodes {
		if err := nw.Connect(n, nodes[(i+1)%len(nodes)]); err != nil {
			return 0, err
		}
	}
	tap, err := nw.Tap(nodes[len(nodes)-1])
	if err != nil {
		return 0, err
	}
	if err := nw.Run(); err != nil {
		return 0, err
	}

	var (
		last int64
		ok   bool
	)
	for v := range tap.All() {
		last, ok = v, true
	}
	if !ok {
		return 0, ErrNoOutput
	}
	return last, nil
}

func ampName(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return fmt.Sprintf("amp%d", i)
}
