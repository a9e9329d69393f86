// Package stats summarizes ATF traces into the aggregate CSV rows the
// plotting tooling consumes: per-item frequency tables and streak-length
// distributions, one trace per row, entries encoded as "value:count".
package stats

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/atfconv/atfconv/pkg/atf"
)

// Summary holds the aggregates for one trace.
type Summary struct {
	counts   map[uint64]int64
	streaks  map[int64]int64
	accesses int64
}

// Summarize streams a trace and accumulates its aggregates. Comment and
// blank lines are skipped; malformed lines fail with their row index.
func Summarize(r io.Reader) (*Summary, error) {
	s := &Summary{
		counts:  make(map[uint64]int64),
		streaks: make(map[int64]int64),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var prev uint64
	var streak int64
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

		s.counts[ev.Address]++
		s.accesses++

		if streak > 0 && ev.Address == prev {
			streak++
		} else {
			if streak > 0 {
				s.streaks[streak]++
			}
			streak = 1
		}
		prev = ev.Address
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	if streak > 0 {
		s.streaks[streak]++
	}

	return s, nil
}

// Accesses returns the total event count.
func (s *Summary) Accesses() int64 {
	return s.accesses
}

// Distinct returns the number of distinct addresses.
func (s *Summary) Distinct() int {
	return len(s.counts)
}

// Count returns the access count for one address.
func (s *Summary) Count(address uint64) int64 {
	return s.counts[address]
}

// Entropy returns the Shannon entropy (bits) of the access distribution.
func (s *Summary) Entropy() float64 {
	if s.accesses == 0 {
		return 0
	}
	entropy := 0.0
	total := float64(s.accesses)
	for _, c := range s.counts {
		p := float64(c) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// WriteFrequencyRow writes one frequency-table CSV row:
// name, entropy, then address:count entries in ascending address order.
func (s *Summary) WriteFrequencyRow(w io.Writer, name string) error {
	addrs := make([]uint64, 0, len(s.counts))
	for a := range s.counts {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })

	var b strings.Builder
	fmt.Fprintf(&b, "%s,%g", name, s.Entropy())
	for _, a := range addrs {
		fmt.Fprintf(&b, ",%d:%d", a, s.counts[a])
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteStreakRow writes one streak-length CSV row:
// name, then length:count entries in ascending length order.
func (s *Summary) WriteStreakRow(w io.Writer, name string) error {
	lengths := make([]int64, 0, len(s.streaks))
	for l := range s.streaks {
		lengths = append(lengths, l)
	}
	sort.Slice(lengths, func(i, j int) bool { return lengths[i] < lengths[j] })

	var b strings.Builder
	b.WriteString(name)
	for _, l := range lengths {
		fmt.Fprintf(&b, ",%d:%d", l, s.streaks[l])
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}
