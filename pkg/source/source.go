// Package source loads schema documents from files, standard input and
// S3 objects.
//
// Locations are plain paths, "-" for standard input, or s3://bucket/key:
//
//	src, err := source.Open(ctx, "s3://schemas/page.yaml", source.WithS3(client))
//	doc, err := src.Document()
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vango-dev/vschema/internal/errors"
	"github.com/vango-dev/vschema/pkg/schema"
)

// DefaultMaxSize caps how much is read from a single location.
const DefaultMaxSize = 10 << 20

// Stdin is the location that reads standard input.
const Stdin = "-"

// Source is the raw content of one location.
type Source struct {
	Location string
	Format   schema.Format
	Data     []byte
}

// Document parses the source as a schema document.
func (s *Source) Document() (*schema.Document, error) {
	doc, err := schema.Parse(s.Data, s.Format)
	if err != nil {
		return nil, withLocation(err, s.Location)
	}
	return doc, nil
}

// Context parses the source as a context object.
func (s *Source) Context() (schema.Context, error) {
	ctx, err := schema.ParseContext(s.Data, s.Format)
	if err != nil {
		return nil, withLocation(err, s.Location)
	}
	return ctx, nil
}

type options struct {
	stdin   io.Reader
	s3      ObjectGetter
	maxSize int64
	format  schema.Format
}

// Option configures Open.
type Option func(*options)

// WithStdin replaces os.Stdin as the reader for "-".
func WithStdin(r io.Reader) Option {
	return func(o *options) { o.stdin = r }
}

// WithS3 sets the client used for s3:// locations.
func WithS3(client ObjectGetter) Option {
	return func(o *options) { o.s3 = client }
}

// WithMaxSize caps the bytes read from a location.
func WithMaxSize(n int64) Option {
	return func(o *options) { o.maxSize = n }
}

// WithFormat overrides format detection.
func WithFormat(f schema.Format) Option {
	return func(o *options) { o.format = f }
}

// Open reads a location. The format comes from WithFormat, the file
// extension, or the content, in that order.
func Open(ctx context.Context, location string, opts ...Option) (*Source, error) {
	o := options{stdin: os.Stdin, maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		data []byte
		err  error
	)
	switch {
	case location == Stdin:
		data, err = readLimited(o.stdin, o.maxSize)
	case strings.HasPrefix(location, "s3://"):
		data, err = readS3(ctx, o.s3, location, o.maxSize)
	default:
		data, err = readFile(location, o.maxSize)
	}
	if err != nil {
		return nil, notReadable(location, err)
	}

	format := o.format
	if format == "" {
		format = detect(location, data)
	}
	return &Source{Location: location, Format: format, Data: data}, nil
}

// Load opens a location and parses it as a document.
func Load(ctx context.Context, location string, opts ...Option) (*schema.Document, error) {
	src, err := Open(ctx, location, opts...)
	if err != nil {
		return nil, err
	}
	return src.Document()
}

func detect(location string, data []byte) schema.Format {
	lower := strings.ToLower(location)
	if strings.HasSuffix(lower, ".json") || strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return schema.FormatFromPath(lower)
	}
	return schema.DetectFormat(data)
}

func readFile(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, max)
}

func readLimited(r io.Reader, max int64) ([]byte, error) {
	if r == nil {
		return nil, fmt.Errorf("no reader")
	}
	if max <= 0 {
		return io.ReadAll(r)
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if n > max {
		return nil, fmt.Errorf("larger than %d bytes", max)
	}
	return buf.Bytes(), nil
}

func notReadable(location string, err error) error {
	return errors.New("E160").
		WithSource(location).
		WithDetail(err.Error()).
		Wrap(err)
}

// withLocation attaches the location to a parse error that has none.
func withLocation(err error, location string) error {
	if e, ok := err.(*errors.Error); ok && e.Source == "" {
		return e.WithSource(location)
	}
	return err
}
