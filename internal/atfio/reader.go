package atfio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"

	"github.com/atfconv/atfconv/pkg/atf"
)

// sourceReader pairs a decompression wrapper with the file it reads from.
type sourceReader struct {
	io.Reader
	file *os.File
}

func (r *sourceReader) Close() error {
	return r.file.Close()
}

// OpenSource opens a trace file for reading, unwrapping snappy framing when
// the path carries a ".sz" or ".snappy" suffix.
func OpenSource(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	if strings.HasSuffix(path, SnappySuffix) || strings.HasSuffix(path, ".snappy") {
		return &sourceReader{Reader: snappy.NewReader(f), file: f}, nil
	}
	return &sourceReader{Reader: f, file: f}, nil
}

// ReadAll parses every data line of an ATF stream. Comment lines and blank
// lines are skipped. Used by the summarizer and by tests; conversion runs
// stream row-by-row and never materialize a trace.
func ReadAll(r io.Reader) ([]atf.Event, error) {
	var events []atf.Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	row := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		row++
		ev, err := atf.ParseEvent(line)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return events, nil
}
