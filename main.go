// Command intcode executes Intcode programs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nf/intcode/intcode"
	"github.com/nf/intcode/network"
)

func main() {
	log.SetPrefix("intcode: ")
	log.SetFlags(0)

	var (
		inFlag     = flag.String("in", "", "comma-separated input `values` (text if -ascii)")
		asciiFlag  = flag.Bool("ascii", false, "exchange input and output as ASCII text")
		setFlag    = flag.String("set", "", "memory `patches` addr=value,... applied before running")
		peekFlag   = flag.String("peek", "", "comma-separated memory `addresses` to print after running")
		phasesFlag = flag.String("phases", "", "run a chain of amplifiers with these phase `settings`")
		loopFlag   = flag.Bool("loop", false, "with -phases, connect the amplifiers in a feedback loop")
		interFlag  = flag.Bool("i", false, "interactive console")
		watchFlag  = flag.Bool("watch", false, "re-run the program whenever its file changes")
		verbose    = flag.Bool("v", false, "enable debug logging")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-in values] [-ascii] [-set patches] [-peek addrs] <program>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -phases settings [-loop] <program>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s <-i | -watch> [-ascii] <program>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	cfg, err := parseConfig(*inFlag, *setFlag, *peekFlag, *phasesFlag, *asciiFlag, *loopFlag)
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewNop()
	if *verbose && !*interFlag {
		if logger, err = zap.NewDevelopment(); err != nil {
			log.Fatalf("creating logger: %v", err)
		}
		defer logger.Sync()
	}
	cfg.log = logger
	intcode.SetLogger(logger)

	switch {
	case *interFlag:
		if err := consoleMode(flag.Arg(0), cfg); err != nil {
			log.Fatal(err)
		}
		return
	case *watchFlag:
		if err := watchMode(flag.Arg(0), cfg); err != nil {
			log.Fatal(err)
		}
		return
	}

	var cpuProfile io.Closer
	if prof := *cpuProfileFlag; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			log.Fatalf("creating CPU profile file: %v", err)
		}
		pprof.StartCPUProfile(f)
		cpuProfile = f
	}

	err = runFile(os.Stdout, flag.Arg(0), cfg)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		log.Fatal(err)
	}
}

type config struct {
	inputs  []int64
	ascii   bool
	patches []patch
	peeks   []int
	phases  []int64
	loop    bool

	log *zap.Logger
}

type patch struct {
	addr int
	val  int64
}

func parseConfig(in, set, peek, phases string, ascii, loop bool) (cfg config, err error) {
	cfg.ascii, cfg.loop = ascii, loop
	if ascii {
		cfg.inputs = asciiInput(in)
	} else if cfg.inputs, err = parseInts(in); err != nil {
		return cfg, fmt.Errorf("-in: %w", err)
	}
	if cfg.patches, err = parsePatches(set); err != nil {
		return cfg, fmt.Errorf("-set: %w", err)
	}
	addrs, err := parseInts(peek)
	if err != nil {
		return cfg, fmt.Errorf("-peek: %w", err)
	}
	for _, a := range addrs {
		if a < 0 {
			return cfg, fmt.Errorf("-peek: negative address %d", a)
		}
		cfg.peeks = append(cfg.peeks, int(a))
	}
	if cfg.phases, err = parseInts(phases); err != nil {
		return cfg, fmt.Errorf("-phases: %w", err)
	}
	if loop && len(cfg.phases) == 0 {
		return cfg, fmt.Errorf("-loop requires -phases")
	}
	return cfg, nil
}

func parseInts(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return intcode.ParseProgram(strings.NewReader(s))
}

func parsePatches(s string) ([]patch, error) {
	var ps []patch
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		a, v, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("bad patch %q, want addr=value", f)
		}
		addr, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil || addr < 0 || addr >= intcode.DefaultMaxMem {
			return nil, fmt.Errorf("bad address in patch %q", f)
		}
		val, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad value in patch %q: %w", f, err)
		}
		ps = append(ps, patch{addr, val})
	}
	return ps, nil
}

// asciiInput converts s to character codes, treating the two-character
// sequence \n as a newline and ending the input with a newline.
func asciiInput(s string) []int64 {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, `\n`, "\n")
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	vs := make([]int64, 0, len(s))
	for i := 0; i < len(s); i++ {
		vs = append(vs, int64(s[i]))
	}
	return vs
}

func runFile(w io.Writer, name string, cfg config) error {
	prog, err := intcode.ReadProgram(name)
	if err != nil {
		return err
	}
	return execute(w, prog, cfg)
}

func execute(w io.Writer, prog []int64, cfg config) error {
	if len(cfg.phases) > 0 {
		var (
			v   int64
			err error
		)
		if cfg.loop {
			v, err = network.Feedback(cfg.log, prog, cfg.phases)
		} else {
			v, err = network.Chain(prog, cfg.phases, 0)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, v)
		return err
	}

	q := intcode.NewQueue(cfg.inputs...)
	m := intcode.Load(prog, q)
	for _, p := range cfg.patches {
		m.Write(p.addr, p.val)
	}
	err := m.Run()
	writeOutput(w, q.Outputs(), cfg.ascii)
	for _, a := range cfg.peeks {
		fmt.Fprintf(w, "[%d] %d\n", a, m.Read(a))
	}
	return err
}

// writeOutput prints each value on its own line, or as text if ascii is
// set, in which case values outside the ASCII range are printed as numbers.
func writeOutput(w io.Writer, vs []int64, ascii bool) {
	if !ascii {
		for _, v := range vs {
			fmt.Fprintln(w, v)
		}
		return
	}
	var b strings.Builder
	for _, v := range vs {
		if v >= 0 && v < 0x80 {
			b.WriteByte(byte(v))
			continue
		}
		if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
			b.WriteByte('\n')
		}
		fmt.Fprintln(&b, v)
	}
	io.WriteString(w, b.String())
}
