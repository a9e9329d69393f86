// Package remap compresses sparse address spaces. A build pass assigns each
// distinct first-column value a dense integer id in first-seen order; an
// apply pass rewrites the column through the map. The two passes must see
// identical source content; the apply pass fingerprints the address column
// and refuses to finish if it diverges from what build saw.
package remap

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"

	"github.com/atfconv/atfconv/internal/errors"
)

// OffsetMap maps raw first-column values to dense ids starting at 0.
// It is owned by a single remap invocation and never persisted.
type OffsetMap struct {
	ids         map[string]uint64
	order       []string
	fingerprint uint64
	header      string
	hasHeader   bool
}

// Len returns the number of distinct addresses seen during build.
func (m *OffsetMap) Len() int {
	return len(m.ids)
}

// ID returns the dense id assigned to a raw address.
func (m *OffsetMap) ID(raw string) (uint64, bool) {
	id, ok := m.ids[raw]
	return id, ok
}

// Addresses returns the raw addresses in first-seen (id) order.
func (m *OffsetMap) Addresses() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Build performs the first full pass over an ATF-like CSV source. The first
// line is treated as a header and carried through to Apply verbatim.
func Build(r io.Reader) (*OffsetMap, error) {
	m := &OffsetMap{ids: make(map[string]uint64)}
	hash := murmur3.New64()

	scanner := newRowScanner(r)
	first := true
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if first {
			first = false
			m.header = line
			m.hasHeader = true
			continue
		}
		addr := firstColumn(line)
		hash.Write([]byte(addr))
		hash.Write([]byte{'\n'})
		if _, seen := m.ids[addr]; !seen {
			m.ids[addr] = uint64(len(m.order))
			m.order = append(m.order, addr)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.NewInternalError("scan source", err)
	}

	m.fingerprint = hash.Sum64()
	return m, nil
}

// Apply performs the second full pass, substituting each row's first column
// with its dense id and leaving every other column untouched. The header
// line passes through verbatim. An address absent from the map fails the
// invocation; a final fingerprint mismatch means the source changed between
// passes.
func Apply(r io.Reader, m *OffsetMap, w io.Writer) error {
	out := bufio.NewWriter(w)
	hash := murmur3.New64()

	scanner := newRowScanner(r)
	first := true
	row := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if first {
			first = false
			if _, err := out.WriteString(line + "\n"); err != nil {
				return errors.NewInternalError("write output", err)
			}
			continue
		}
		row++

		addr, rest := splitFirstColumn(line)
		hash.Write([]byte(addr))
		hash.Write([]byte{'\n'})

		id, ok := m.ids[addr]
		if !ok {
			return errors.NewLookupError(row, addr)
		}
		if _, err := out.WriteString(strconv.FormatUint(id, 10) + rest + "\n"); err != nil {
			return errors.NewInternalError("write output", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.NewInternalError("scan source", err)
	}

	if hash.Sum64() != m.fingerprint {
		return errors.New(errors.ErrCategoryRemap, errors.CodeSourceChanged,
			"source address column changed between build and apply passes")
	}
	return out.Flush()
}

func newRowScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return scanner
}

func firstColumn(line string) string {
	if i := strings.IndexByte(line, ','); i >= 0 {
		return line[:i]
	}
	return line
}

// splitFirstColumn returns the first column and the remainder of the line
// including its leading comma.
func splitFirstColumn(line string) (string, string) {
	if i := strings.IndexByte(line, ','); i >= 0 {
		return line[:i], line[i:]
	}
	return line, ""
}
