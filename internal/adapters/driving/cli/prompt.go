package cli

import (
	"bufio"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Input seams, replaced in tests.
var (
	stdin       io.Reader = os.Stdin
	interactive           = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	readSecret            = func() (string, error) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		return string(b), err
	}
)

// prompter asks for values on a single shared reader so buffered input
// is not lost between questions.
type prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(out io.Writer) *prompter {
	return &prompter{reader: bufio.NewReader(stdin), out: out}
}

//nolint:errcheck // CLI helper, error ignored for UX
func (p *prompter) line(label string) string {
	io.WriteString(p.out, label+": ")
	input, _ := p.reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// secret reads without echo on a terminal, falling back to a plain line.
func (p *prompter) secret(label string) string {
	if interactive() {
		io.WriteString(p.out, label+": ") //nolint:errcheck
		value, err := readSecret()
		io.WriteString(p.out, "\n") //nolint:errcheck
		if err == nil {
			return strings.TrimSpace(value)
		}
	}
	return p.line(label)
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
