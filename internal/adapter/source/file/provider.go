// Package file serves transaction sources from files in a directory.
package file

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/iho/atmledger/internal/domain"
	"github.com/iho/atmledger/internal/usecase"
)

// DefaultExt is the extension of source files.
const DefaultExt = ".dat"

const readBufferSize = 64 * 1024

// Provider lists and opens the source files of one directory. A source is
// identified by its file name without the extension.
type Provider struct {
	dir string
	ext string
}

// NewProvider creates a Provider over the files in dir ending in ext.
func NewProvider(dir, ext string) *Provider {
	if ext == "" {
		ext = DefaultExt
	}
	return &Provider{dir: dir, ext: ext}
}

// List returns the sources present in the directory, sorted by name.
// A missing directory holds no sources.
func (p *Provider) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", p.dir, err)
	}

	var sources []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), p.ext) {
			continue
		}
		sources = append(sources, strings.TrimSuffix(e.Name(), p.ext))
	}
	sort.Strings(sources)
	return sources, nil
}

// Path returns the file backing source.
func (p *Provider) Path(source string) string {
	return filepath.Join(p.dir, source+p.ext)
}

// Open opens the file backing source.
func (p *Provider) Open(ctx context.Context, source string) (usecase.LineScanner, error) {
	f, err := os.Open(p.Path(source))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrSourceUnavailable, source)
		}
		return nil, fmt.Errorf("failed to open source %s: %w", source, err)
	}

	return &scanner{reader: bufio.NewReaderSize(f, readBufferSize), file: f}, nil
}

// maxKept leaves room for a "\r\n" terminator after a line of exactly
// domain.MaxLineLength bytes.
const maxKept = domain.MaxLineLength + 2

// scanner yields lines without their "\n" or "\r\n" terminator. A longer line
// is drained and yielded truncated to maxKept bytes, so it still parses as
// malformed and the lines after it are read.
type scanner struct {
	reader    *bufio.Reader
	file      *os.File
	line      []byte
	truncated bool
	err       error
}

func (s *scanner) Scan() bool {
	if s.err != nil {
		return false
	}

	s.line = s.line[:0]
	s.truncated = false
	read := false
	for {
		chunk, err := s.reader.ReadSlice('\n')
		if len(chunk) > 0 {
			read = true
			room := maxKept - len(s.line)
			if len(chunk) > room {
				chunk = chunk[:room]
				s.truncated = true
			}
			s.line = append(s.line, chunk...)
		}

		switch {
		case err == nil:
			s.trim()
			return true
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			s.err = io.EOF
			s.trim()
			return read
		default:
			s.err = err
			return false
		}
	}
}

func (s *scanner) trim() {
	if s.truncated {
		return
	}
	s.line = bytes.TrimSuffix(s.line, []byte("\n"))
	s.line = bytes.TrimSuffix(s.line, []byte("\r"))
}

func (s *scanner) Text() string {
	return string(s.line)
}

func (s *scanner) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}

func (s *scanner) Close() error {
	return s.file.Close()
}
