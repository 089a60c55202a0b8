package connector

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/yanun0323/errors"

	"bondtrading/pkg/exception"
)

// Format selects the line encoding of an Output.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// ParseFormat maps a configured format name to a Format. Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSONL:
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("%w: output format %q", exception.ErrInvalidArgument, s)
	}
}

// Ext is the file extension for the format.
func (f Format) Ext() string {
	if f == FormatJSONL {
		return ".jsonl"
	}
	return ".txt"
}

type OutputConfig struct {
	Path       string
	Format     Format
	BufferSize int
	// FlushEach flushes after every record.
	FlushEach bool
	Now       func() time.Time
}

func (c OutputConfig) withDefaults() OutputConfig {
	if c.Format == "" {
		c.Format = FormatCSV
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 64 * 1024
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// Output appends encoded records to a file, one per line. The file is
// truncated when the Output is opened.
type Output[V any] struct {
	cfg    OutputConfig
	encode Encoder[V]
	file   *os.File
	buf    *bufio.Writer
	err    error
	lines  uint64
	closed bool
}

// NewOutput opens cfg.Path for writing, creating parent directories.
func NewOutput[V any](cfg OutputConfig, encode Encoder[V]) (*Output[V], error) {
	cfg = cfg.withDefaults()
	if cfg.Path == "" {
		return nil, fmt.Errorf("%w: empty output path", exception.ErrInvalidArgument)
	}
	if encode == nil {
		return nil, fmt.Errorf("%w: nil encoder", exception.ErrNilInstance)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, ioErr(err, "create output dir", cfg.Path)
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, ioErr(err, "open output", cfg.Path)
	}
	return &Output[V]{
		cfg:    cfg,
		encode: encode,
		file:   f,
		buf:    bufio.NewWriterSize(f, cfg.BufferSize),
	}, nil
}

// Publish writes v as one line. After the first write failure every call
// returns that failure.
func (o *Output[V]) Publish(v V) error {
	if o.err != nil {
		return o.err
	}
	if o.closed {
		return fmt.Errorf("%w: output closed", exception.ErrIOFailure)
	}

	line, err := Encode(o.cfg.Format, o.encode(o.cfg.Now().UTC(), v))
	if err != nil {
		return err
	}
	if _, err := o.buf.Write(line); err != nil {
		return o.fail(err, "write record")
	}
	if err := o.buf.WriteByte('\n'); err != nil {
		return o.fail(err, "write record")
	}
	o.lines++
	if o.cfg.FlushEach {
		return o.Flush()
	}
	return nil
}

func (o *Output[V]) Flush() error {
	if o.err != nil {
		return o.err
	}
	if o.closed {
		return nil
	}
	if err := o.buf.Flush(); err != nil {
		return o.fail(err, "flush output")
	}
	return nil
}

// Close flushes and closes the file. It is safe to call more than once.
func (o *Output[V]) Close() error {
	if o.closed {
		return o.err
	}
	flushErr := o.Flush()
	o.closed = true
	if err := o.file.Close(); err != nil && flushErr == nil {
		return o.fail(err, "close output")
	}
	return flushErr
}

func (o *Output[V]) Lines() uint64 { return o.lines }

func (o *Output[V]) Path() string { return o.cfg.Path }

func (o *Output[V]) fail(err error, msg string) error {
	o.err = ioErr(err, msg, o.cfg.Path)
	return o.err
}

// Encode renders rec in the given format without a trailing newline.
func Encode(format Format, rec Record) ([]byte, error) {
	switch format {
	case FormatJSONL:
		b, err := sonic.Marshal(rec)
		if err != nil {
			return nil, errors.Wrap(err, "marshal record")
		}
		return b, nil
	default:
		return []byte(strings.Join(rec.Columns(), ",")), nil
	}
}

func ioErr(err error, msg, path string) error {
	return fmt.Errorf("%w: %w", exception.ErrIOFailure, errors.Wrap(err, msg).With("path", path))
}
