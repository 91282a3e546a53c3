package intcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPipe_Broadcast(t *testing.T) {
	assert := assert.New(t)

	in, inRx := NewStream()
	aTx, aRx := NewStream()
	bTx, bRx := NewStream()
	cTx, cRx := NewStream()
	bRx.Drop()

	p := NewPipe(inRx, aTx, bTx, cTx)
	done := make(chan int)
	go func() { done <- p.Run() }()

	for _, v := range []int64{4, 5, 6} {
		assert.NoError(in.Send(v))
	}
	in.Close()
	assert.Equal(3, <-done)

	collect := func(rx *Receiver) (vs []int64) {
		for v := range rx.All() {
			vs = append(vs, v)
		}
		return vs
	}
	assert.Equal([]int64{4, 5, 6}, collect(aRx))
	assert.Equal([]int64{4, 5, 6}, collect(cRx), "dropped subscriber does not affect others")
}

func TestPipe_Machines(t *testing.T) {
	assert := assert.New(t)

	// Doubles each input and outputs it, halting when it reads zero.
	double := []int64{
		3, 100, // in [100]
		1006, 100, 14, // jez [100] 14
		1002, 100, 2, 100, // mul [100] 2 [100]
		4, 100, // out [100]
		1105, 1, 0, // jnz 1 0
		99,
	}

	seed, aIn := NewStream()
	a := NewChan()
	a.Listen(aIn)
	bTx, bIn := NewStream()
	b := NewChan()
	b.Listen(bIn)
	p := NewPipe(a.Subscribe(), bTx)
	out := b.Subscribe()

	errs := make(chan error, 2)
	forwarded := make(chan int, 1)
	go func() { errs <- Load(double, a).Run() }()
	go func() { errs <- Load(double, b).Run() }()
	go func() { forwarded <- p.Run() }()

	for _, v := range []int64{1, 3, -2, 0} {
		assert.NoError(seed.Send(v))
	}
	seed.Close()

	var got []int64
	for v := range out.All() {
		got = append(got, v)
	}
	assert.NoError(<-errs)
	assert.NoError(<-errs)
	assert.Equal(3, <-forwarded)
	assert.Equal([]int64{4, 12, -8}, got)
}
