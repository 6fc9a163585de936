package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNotInteractive is returned by Confirm when stdin is not a terminal.
var ErrNotInteractive = errors.New("stdin is not a terminal")

var (
	input       io.Reader = os.Stdin
	interactive           = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
)

// SetInput replaces the confirmation input and its terminal check (for
// testing). A nil reader restores stdin.
func SetInput(r io.Reader, isTerminal bool) {
	if r == nil {
		input = os.Stdin
		interactive = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
		return
	}
	input = r
	interactive = func() bool { return isTerminal }
}

// Confirm asks a yes/no question and returns true only for "y" or "yes".
// It refuses to prompt when nobody can answer.
func Confirm(prompt string) (bool, error) {
	if !interactive() {
		return false, ErrNotInteractive
	}
	fmt.Fprint(writer, prompt+" [y/N] ")

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
