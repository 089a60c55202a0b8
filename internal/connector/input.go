package connector

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/pkg/sys"

	"bondtrading/pkg/exception"
)

const maxLineSize = 1 << 20

// Input reads a line-oriented record file.
type Input struct {
	name string
	path string
}

// NewInput creates a reader for the file at path. name is used in logs and
// errors.
func NewInput(name, path string) *Input {
	return &Input{name: name, path: path}
}

func (in *Input) Name() string { return in.name }

func (in *Input) Path() string { return in.path }

// Read calls handle once per non-blank line, in file order. It stops between
// records when ctx is done or the process is shutting down, and aborts on the
// first handler error. It returns the number of records handled.
func (in *Input) Read(ctx context.Context, handle func(lineNo int, line string) error) (int, error) {
	f, err := os.Open(in.path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", exception.ErrIOFailure, errors.Wrap(err, "open input").With("input", in.name).With("path", in.path))
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		lineNo  int
		records int
	)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return records, ctx.Err()
		case <-sys.Shutdown():
			return records, context.Canceled
		default:
		}

		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		records++
		if err := handle(lineNo, line); err != nil {
			return records, err
		}
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("%w: %w", exception.ErrIOFailure, errors.Wrap(err, "scan input").With("input", in.name).With("line", lineNo))
	}
	return records, nil
}
