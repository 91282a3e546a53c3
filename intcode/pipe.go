package intcode

// Pipe relays values from one stream to any number of others.
type Pipe struct {
	rx *Receiver
	tx []*Sender
}

// NewPipe returns a Pipe that forwards everything received on rx to each
// of tx, in order. The Pipe owns tx and closes them when rx ends.
func NewPipe(rx *Receiver, tx ...*Sender) *Pipe {
	return &Pipe{rx: rx, tx: tx}
}

// Run forwards values until the inbound stream ends and returns how many
// values it received. Sends to dropped receivers are ignored.
func (p *Pipe) Run() (n int) {
	defer func() {
		for _, tx := range p.tx {
			tx.Close()
		}
	}()
	for v := range p.rx.All() {
		n++
		for _, tx := range p.tx {
			tx.Send(v)
		}
	}
	return n
}
