package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ErrInputClosed is returned when the input stream ends while a prompt is waiting.
var ErrInputClosed = errors.New("input closed")

var (
	leadingInt   = regexp.MustCompile(`^[+-]?\d+`)
	leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
)

// Prompter asks questions on out and reads one answer per line from in.
type Prompter struct {
	out   io.Writer
	lines chan string
	stop  chan struct{}
	err   error
}

// NewPrompter starts reading lines from in.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{
		out:   out,
		lines: make(chan string),
		stop:  make(chan struct{}),
	}
	go p.read(in)
	return p
}

func (p *Prompter) read(in io.Reader) {
	defer close(p.lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case p.lines <- scanner.Text():
		case <-p.stop:
			return
		}
	}
	p.err = scanner.Err()
}

// Close stops the background reader. Pending reads on in are abandoned.
func (p *Prompter) Close() {
	select {
	case <-p.stop:
	default:
		close(p.stop)
	}
}

// Ask writes question and waits for the next line of input.
func (p *Prompter) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := io.WriteString(p.out, question); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			if p.err != nil {
				return "", fmt.Errorf("failed to read input: %w", p.err)
			}
			return "", ErrInputClosed
		}
		return strings.TrimRight(line, "\r"), nil
	}
}

// AskInt repeats question until the answer starts with an integer in [lo, hi].
func (p *Prompter) AskInt(ctx context.Context, question, invalid string, lo, hi int) (int, error) {
	for {
		line, err := p.Ask(ctx, question)
		if err != nil {
			return 0, err
		}
		if v, ok := parseLeadingInt(line); ok && v >= lo && v <= hi {
			return v, nil
		}
		if _, err := fmt.Fprintln(p.out, invalid); err != nil {
			return 0, fmt.Errorf("failed to write prompt: %w", err)
		}
	}
}

// AskFloat repeats question until the answer starts with a number in [lo, hi].
func (p *Prompter) AskFloat(ctx context.Context, question, invalid string, lo, hi float64) (float64, error) {
	for {
		line, err := p.Ask(ctx, question)
		if err != nil {
			return 0, err
		}
		if v, ok := parseLeadingFloat(line); ok && v >= lo && v <= hi {
			return v, nil
		}
		if _, err := fmt.Fprintln(p.out, invalid); err != nil {
			return 0, fmt.Errorf("failed to write prompt: %w", err)
		}
	}
}

// parseLeadingInt reads the integer prefix of s, ignoring leading whitespace
// and any trailing text ("12 faltas" is 12).
func parseLeadingInt(s string) (int, bool) {
	m := leadingInt.FindString(strings.TrimLeft(s, " \t"))
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseLeadingFloat reads the decimal prefix of s ("7,5" is 7).
func parseLeadingFloat(s string) (float64, bool) {
	m := leadingFloat.FindString(strings.TrimLeft(s, " \t"))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	if v == 0 {
		// "-0" parses to negative zero.
		v = 0
	}
	return v, true
}
