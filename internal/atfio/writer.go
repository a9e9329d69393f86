// Package atfio reads and writes ATF trace files, transparently handling
// snappy-compressed variants.
package atfio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	"github.com/atfconv/atfconv/pkg/atf"
)

// OutputSuffix is the fixed suffix appended to a source path to derive its
// converted output path. Callers must not make this configurable; pipeline
// composition depends on it.
const OutputSuffix = ".atf"

// SnappySuffix marks snappy-compressed trace files.
const SnappySuffix = ".sz"

// OutputPath derives the converted output path for a source path.
func OutputPath(sourcePath string) string {
	return sourcePath + OutputSuffix
}

// Writer streams ATF lines to an io.Writer.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w in an ATF line writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteHeader writes the ATF comment header line.
func (w *Writer) WriteHeader() error {
	_, err := w.w.WriteString(atf.Header + "\n")
	return err
}

// WriteEvent writes one event as one ATF line.
func (w *Writer) WriteEvent(ev atf.Event) error {
	_, err := w.w.WriteString(ev.String() + "\n")
	return err
}

// Flush flushes buffered output.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// FileWriter writes an ATF file through a temporary file in the same
// directory, renaming into place only on Commit. A failed run therefore
// never leaves a partial output file behind.
type FileWriter struct {
	*Writer
	file      *os.File
	sz        *snappy.Writer
	finalPath string
	committed bool
}

// CreateFile opens a FileWriter targeting path. With compress set, output
// is snappy-framed and the final path gains the ".sz" suffix.
func CreateFile(path string, compress bool) (*FileWriter, error) {
	finalPath := path
	if compress {
		finalPath += SnappySuffix
	}

	tmp, err := os.CreateTemp(filepath.Dir(finalPath), "."+filepath.Base(finalPath)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp output: %w", err)
	}

	fw := &FileWriter{file: tmp, finalPath: finalPath}
	if compress {
		fw.sz = snappy.NewBufferedWriter(tmp)
		fw.Writer = NewWriter(fw.sz)
	} else {
		fw.Writer = NewWriter(tmp)
	}
	return fw, nil
}

// Path returns the path the file will occupy after Commit.
func (fw *FileWriter) Path() string {
	return fw.finalPath
}

// Commit flushes, closes, and renames the temporary file into place.
func (fw *FileWriter) Commit() error {
	if fw.committed {
		return nil
	}
	if err := fw.Flush(); err != nil {
		fw.discard()
		return fmt.Errorf("flush output: %w", err)
	}
	if fw.sz != nil {
		if err := fw.sz.Close(); err != nil {
			fw.discard()
			return fmt.Errorf("close snappy stream: %w", err)
		}
	}
	if err := fw.file.Sync(); err != nil {
		fw.discard()
		return fmt.Errorf("sync output: %w", err)
	}
	if err := fw.file.Close(); err != nil {
		os.Remove(fw.file.Name())
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(fw.file.Name(), fw.finalPath); err != nil {
		os.Remove(fw.file.Name())
		return fmt.Errorf("rename output into place: %w", err)
	}
	fw.committed = true
	return nil
}

// Close discards the temporary file if Commit has not run. Safe to defer
// alongside Commit.
func (fw *FileWriter) Close() error {
	if fw.committed {
		return nil
	}
	fw.discard()
	return nil
}

func (fw *FileWriter) discard() {
	fw.file.Close()
	os.Remove(fw.file.Name())
}
