package iojson

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// ErrNoInput is returned when no file is given and stdin is a terminal.
var ErrNoInput = errors.New("no input provided (stdin is a terminal); use -f flag or pipe input")

// FileReader decodes a value from the file named by its --file flag, or from
// stdin when the flag is empty.
type FileReader[T any] struct {
	fileFlagValue string

	// Decode parses the input. It is required.
	Decode func(io.Reader) (T, error)

	stdin  io.Reader
	isTerm func() bool
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "path to input file (reads from stdin if not provided)",
		Destination: &fr.fileFlagValue,
	}
}

// Source names where Read takes its input from.
func (fr *FileReader[T]) Source() string {
	if fr.fileFlagValue != "" {
		return fr.fileFlagValue
	}
	return "<stdin>"
}

func (fr *FileReader[T]) Read() (T, error) {
	var zero T

	if fr.fileFlagValue != "" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return zero, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		return fr.decode(f)
	}

	isTerm := fr.isTerm
	if isTerm == nil {
		isTerm = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	}
	if isTerm() {
		return zero, ErrNoInput
	}

	var stdin io.Reader = os.Stdin
	if fr.stdin != nil {
		stdin = fr.stdin
	}
	return fr.decode(stdin)
}

func (fr *FileReader[T]) decode(r io.Reader) (T, error) {
	v, err := fr.Decode(r)
	if err != nil {
		return v, fmt.Errorf("decode %s: %w", fr.Source(), err)
	}
	return v, nil
}
