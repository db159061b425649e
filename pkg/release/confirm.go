package release

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the operator before a release mutates anything.
//
//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -destination=mock_confirmer.gen.go -package=release . Confirmer
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPromptConfirmer asks on out and reads a y/N answer from in. Anything but "y" declines.
func NewPromptConfirmer(in io.Reader, out io.Writer) Confirmer {
	return &promptConfirmer{in: bufio.NewReader(in), out: out}
}

func (c *promptConfirmer) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprintf(c.out, "%s [y/N]: ", prompt); err != nil {
		return false, err
	}
	answer, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(answer)) == "y", nil
}

type autoConfirmer struct{}

// AutoConfirm accepts every prompt (--yes).
func AutoConfirm() Confirmer {
	return autoConfirmer{}
}

func (autoConfirmer) Confirm(string) (bool, error) {
	return true, nil
}
