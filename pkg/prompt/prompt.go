// Package prompt asks the operator for yes/no confirmation.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/moby/term"
)

// Confirmer answers a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Always is a Confirmer that never asks. It backs --yes and tests.
type Always bool

func (a Always) Confirm(string) bool { return bool(a) }

// Refuse declines every question and tells the operator how to confirm
// without a terminal.
type Refuse struct {
	Out io.Writer
}

func (r Refuse) Confirm(prompt string) bool {
	fmt.Fprintf(r.Out, "%s stdin is not a terminal, rerun with --yes to confirm\n", prompt)
	return false
}

// TerminalConfirmer reads one line per question. An empty answer means yes.
type TerminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalConfirmer uses the process terminal streams.
func NewTerminalConfirmer() *TerminalConfirmer {
	stdin, stdout, _ := term.StdStreams()
	return NewConfirmer(stdin, stdout)
}

// NewConfirmer reads answers from in and writes questions to out.
func NewConfirmer(in io.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{in: bufio.NewReader(in), out: out}
}

// Confirm accepts "", "y" and "yes" in any case. Anything else, or EOF, declines.
func (c *TerminalConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(c.out, "%s [Y/n] ", prompt)

	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		fmt.Fprintln(c.out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "y", "yes":
		return true
	default:
		return false
	}
}

// Interactive reports whether r is attached to a terminal.
func Interactive(r interface{}) bool {
	_, isTerminal := term.GetFdInfo(r)
	return isTerminal
}
