package common

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter reads interactive answers line by line from a command's stdin.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints the label and reads one line. An empty answer yields def.
func (p *Prompter) Ask(label string, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	answer := strings.TrimSpace(line)
	if answer == "" {
		if err != nil && def == "" {
			return "", err
		}
		return def, nil
	}
	return answer, nil
}

// AskRequired re-asks until a non-empty answer arrives.
func (p *Prompter) AskRequired(label string) (string, error) {
	for {
		answer, err := p.Ask(label, "")
		if answer != "" {
			return answer, nil
		}
		if err != nil {
			return "", fmt.Errorf("%s is required: %w", label, err)
		}
		fmt.Fprintf(p.out, "%s is required.\n", label)
	}
}
