package file

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iho/atmledger/internal/generator"
)

// Sink writes generated sources as files in a directory.
type Sink struct {
	dir string
	ext string
}

// NewSink creates a Sink writing dir/<source><ext>.
func NewSink(dir, ext string) *Sink {
	if ext == "" {
		ext = DefaultExt
	}
	return &Sink{dir: dir, ext: ext}
}

// Create truncates or creates the file for source.
func (s *Sink) Create(ctx context.Context, source string) (generator.LineWriter, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.dir, err)
	}

	f, err := os.Create(filepath.Join(s.dir, source+s.ext))
	if err != nil {
		return nil, fmt.Errorf("failed to create source %s: %w", source, err)
	}
	return &lineWriter{file: f, w: bufio.NewWriter(f)}, nil
}

type lineWriter struct {
	file *os.File
	w    *bufio.Writer
}

func (lw *lineWriter) WriteLine(line string) error {
	if _, err := lw.w.WriteString(line); err != nil {
		return err
	}
	return lw.w.WriteByte('\n')
}

func (lw *lineWriter) Close() error {
	if err := lw.w.Flush(); err != nil {
		lw.file.Close()
		return err
	}
	return lw.file.Close()
}
