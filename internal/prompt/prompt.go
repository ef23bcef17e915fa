package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before an answer was given.
var ErrNoInput = errors.New("no input")

// Prompter reads answers from r and writes questions to w.
type Prompter struct {
	reader *bufio.Reader
	in     io.Reader
	w      io.Writer
}

// New returns a Prompter. Passing os.Stdin as r enables hidden input for
// secrets when stdin is a terminal.
func New(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(r), in: r, w: w}
}

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Select presents a numbered list and returns the chosen item.
func (p *Prompter) Select(question string, items []string) (string, error) {
	if len(items) == 0 {
		return "", errors.New("nothing to select from")
	}

	fmt.Fprintf(p.w, "\n%s\n", question)
	for i, item := range items {
		fmt.Fprintf(p.w, "  %d) %s\n", i+1, item)
	}
	fmt.Fprintf(p.w, "Enter number [1-%d]: ", len(items))

	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	num, err := strconv.Atoi(line)
	if err != nil || num < 1 || num > len(items) {
		return "", fmt.Errorf("invalid selection %q: choose 1-%d", line, len(items))
	}
	return items[num-1], nil
}

// MultiSelect presents a numbered list and returns the chosen items in list
// order. The answer is a comma or space separated list of numbers, or "a"
// for all. An empty answer selects nothing.
func (p *Prompter) MultiSelect(question string, items []string) ([]string, error) {
	if len(items) == 0 {
		return nil, nil
	}

	fmt.Fprintf(p.w, "\n%s\n", question)
	for i, item := range items {
		fmt.Fprintf(p.w, "  %d) %s\n", i+1, item)
	}
	fmt.Fprintf(p.w, "Enter numbers (e.g. 1,3), a for all, empty for none: ")

	line, err := p.readLine()
	if err != nil {
		return nil, err
	}
	if line == "" {
		return nil, nil
	}
	if strings.EqualFold(line, "a") || strings.EqualFold(line, "all") {
		return append([]string(nil), items...), nil
	}

	picked := make(map[int]bool)
	for _, field := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' }) {
		num, err := strconv.Atoi(field)
		if err != nil || num < 1 || num > len(items) {
			return nil, fmt.Errorf("invalid selection %q: choose 1-%d", field, len(items))
		}
		picked[num-1] = true
	}

	idx := make([]int, 0, len(picked))
	for i := range picked {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	out := make([]string, len(idx))
	for i, n := range idx {
		out[i] = items[n]
	}
	return out, nil
}

// Confirm asks a yes/no question. An empty answer returns def.
func (p *Prompter) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	fmt.Fprintf(p.w, "%s [%s]: ", question, hint)

	line, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid answer %q: expected y or n", line)
}

// Text asks for a line of text. An empty answer returns def.
func (p *Prompter) Text(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.w, "%s (%s): ", question, def)
	} else {
		fmt.Fprintf(p.w, "%s: ", question)
	}
	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Secret asks for a value without echoing it when input is a terminal.
func (p *Prompter) Secret(question string) (string, error) {
	fmt.Fprintf(p.w, "%s: ", question)

	if f, ok := p.in.(*os.File); ok && p.reader.Buffered() == 0 && term.IsTerminal(int(f.Fd())) {
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.w)
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return p.readLine()
}
