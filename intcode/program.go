package intcode

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseProgram reads a comma-separated list of decimal words.
// Surrounding whitespace is ignored, as are empty entries such as the one
// left by a trailing comma or newline.
func ParseProgram(r io.Reader) ([]int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var prog []int64
	for i, f := range bytes.Split(b, []byte{','}) {
		f = bytes.TrimSpace(f)
		if len(f) == 0 {
			continue
		}
		v, err := strconv.ParseInt(string(f), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("word %d: %w", i, err)
		}
		prog = append(prog, v)
	}
	return prog, nil
}

// ReadProgram parses the program in the named file.
func ReadProgram(name string) ([]int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	prog, err := ParseProgram(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return prog, nil
}

// FormatProgram returns prog in the form read by ParseProgram.
func FormatProgram(prog []int64) string {
	var b strings.Builder
	for i, v := range prog {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(v, 10))
	}
	return b.String()
}
