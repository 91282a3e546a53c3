package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/intcode/intcode"
)

// console is an interactive terminal front end for a single machine.
// Lines typed into the input field are fed to the machine and its output
// is shown above them.
type console struct {
	ascii bool
	peeks []int
	tx    *intcode.Sender

	out   *tview.TextView
	state *tview.TextView
	input *tview.InputField
	rows  *tview.Flex
	app   *tview.Application
}

func consoleMode(file string, cfg config) error {
	prog, err := intcode.ReadProgram(file)
	if err != nil {
		return err
	}
	c := newConsole(cfg.ascii)
	log.SetOutput(c.out)
	defer log.SetOutput(os.Stderr)
	return c.run(prog, cfg)
}

func newConsole(ascii bool) *console {
	c := &console{
		ascii: ascii,
		out: tview.NewTextView().
			SetMaxLines(1000),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	c.out.SetChangedFunc(func() { c.app.Draw() })
	c.state.SetBackgroundColor(tcell.ColorDarkGrey)
	c.state.SetTextColor(tcell.ColorBlack)
	c.state.SetText("running")
	if ascii {
		c.input.SetLabel("> ")
	} else {
		c.input.SetLabel("in: ")
	}
	c.rows.
		AddItem(c.out, 0, 1, false).
		AddItem(c.state, 1, 0, false).
		AddItem(c.input, 1, 0, true)
	c.app.SetRoot(c.rows, true)

	c.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := c.input.GetText()
		if text == "" {
			return
		}
		c.input.SetText("")
		if text == "exit" {
			c.app.Stop()
			return
		}
		c.send(text)
	})
	return c
}

func (c *console) send(text string) {
	var vs []int64
	if c.ascii {
		vs = asciiInput(text)
		fmt.Fprintf(c.out, "> %s\n", text)
	} else {
		var err error
		if vs, err = parseInts(text); err != nil {
			log.Printf("bad input: %v", err)
			return
		}
	}
	for _, v := range vs {
		if err := c.tx.Send(v); err != nil {
			if errors.Is(err, intcode.ErrDisconnected) {
				log.Print("machine has halted")
				return
			}
			log.Printf("send: %v", err)
			return
		}
	}
}

// run starts the machine and blocks until the user quits.
// Closing the input stream on exit stops a machine still waiting for input.
func (c *console) run(prog []int64, cfg config) error {
	tx, rx := intcode.NewStream()
	for _, v := range cfg.inputs {
		tx.Send(v)
	}
	c.tx, c.peeks = tx, cfg.peeks

	io := intcode.NewChan()
	io.OnClose = intcode.HaltOnClose
	io.Listen(rx)
	out := io.Subscribe()

	m := intcode.Load(prog, io)
	for _, p := range cfg.patches {
		m.Write(p.addr, p.val)
	}

	done := make(chan error, 1)
	go func() { done <- m.Run() }()
	go func() {
		c.print(out)
		c.halted(m, <-done)
	}()

	err := c.app.Run()
	tx.Close()
	return err
}

// print copies machine output to the output view until the machine halts.
// In ASCII mode text is written a line at a time.
func (c *console) print(out *intcode.Receiver) {
	var line []byte
	for v := range out.All() {
		if !c.ascii {
			fmt.Fprintln(c.out, v)
			continue
		}
		if v < 0 || v >= 0x80 {
			line = fmt.Appendf(line, "%d\n", v)
		} else {
			line = append(line, byte(v))
		}
		if line[len(line)-1] == '\n' {
			c.out.Write(line)
			line = line[:0]
		}
	}
	if len(line) > 0 {
		c.out.Write(append(line, '\n'))
	}
}

func (c *console) halted(m *intcode.Machine, err error) {
	var b strings.Builder
	bg := tcell.ColorDarkBlue
	if err != nil {
		bg = tcell.ColorDarkRed
		b.WriteString(err.Error())
	} else {
		fmt.Fprintf(&b, "halted at %d after %d steps", m.PC, m.Steps())
	}
	for _, a := range c.peeks {
		fmt.Fprintf(&b, "  [%d] %d", a, m.Read(a))
	}
	msg := b.String()
	c.app.QueueUpdateDraw(func() {
		c.state.SetTextColor(tcell.ColorWhite)
		c.state.SetBackgroundColor(bg)
		c.state.SetText(msg)
	})
}
