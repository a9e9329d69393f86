// Package adapter converts source trace rows into canonical events. One
// generic adapter serves every registered format; the per-format behavior
// lives entirely in the format.Spec driving it.
package adapter

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/atfconv/atfconv/internal/errors"
	"github.com/atfconv/atfconv/internal/format"
	"github.com/atfconv/atfconv/internal/timebase"
	"github.com/atfconv/atfconv/pkg/atf"
)

// EventWriter receives the canonical events an adapter run emits.
// atfio.Writer and atfio.FileWriter satisfy it.
type EventWriter interface {
	WriteEvent(atf.Event) error
}

// RunStats summarizes one adapter run. Short-row skips are counted rather
// than silently dropped so operators can see how much input was discarded.
type RunStats struct {
	// RowsRead counts data rows (comments and header lines excluded).
	RowsRead int64

	// EventsEmitted counts canonical events written to the sink.
	EventsEmitted int64

	// ShortRowsSkipped counts rows below the format's minimum field count.
	ShortRowsSkipped int64

	// CommentLines counts '#'-prefixed and configured header lines.
	CommentLines int64

	// OriginResets counts backward time jumps that re-fixed the origin.
	OriginResets int

	// TerminatorSeen reports whether the run stopped at a terminator row.
	TerminatorSeen bool
}

// Convert streams rows from r, maps them through spec, and writes canonical
// events to out. It is a single forward pass: the reader is consumed and
// the run is not restartable.
//
// Rows shorter than the format minimum are skipped and counted. A row whose
// terminator field matches the format terminator stops the run cleanly
// without being emitted. Any field that fails type coercion aborts the run
// with a parse error naming the 1-based data row and field.
func Convert(spec format.Spec, r io.Reader, out EventWriter) (RunStats, error) {
	var stats RunStats
	var norm timebase.Normalizer

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	headerLeft := spec.HeaderLines
	row := 0

scan:
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if headerLeft > 0 {
			headerLeft--
			stats.CommentLines++
			continue
		}
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			stats.CommentLines++
			continue
		}

		fields := splitRow(spec.Split, line)

		if spec.TerminatorField >= 0 && len(fields) > spec.TerminatorField &&
			strings.Contains(fields[spec.TerminatorField], spec.TerminatorText) {
			stats.TerminatorSeen = true
			break scan
		}

		row++
		stats.RowsRead++

		if len(fields) < spec.MinFields {
			stats.ShortRowsSkipped++
			continue
		}

		ev, err := mapRow(spec, fields, row, &norm)
		if err != nil {
			return stats, err
		}
		if err := out.WriteEvent(ev); err != nil {
			return stats, errors.NewInternalError("write event", err)
		}
		stats.EventsEmitted++
	}
	if err := scanner.Err(); err != nil {
		return stats, errors.NewInternalError("read source", err)
	}

	stats.OriginResets = norm.Resets()
	return stats, nil
}

// mapRow derives all five canonical fields from one row, or fails.
func mapRow(spec format.Spec, fields []string, row int, norm *timebase.Normalizer) (atf.Event, error) {
	addrText := strings.TrimSpace(fields[spec.AddressField])
	addr, err := strconv.ParseUint(addrText, 10, 64)
	if err != nil {
		return atf.Event{}, errors.NewParseError(row, spec.AddressField, addrText,
			"expected non-negative integer address", err)
	}

	tsText := strings.TrimSpace(fields[spec.TimeField])
	rawFloat, err := strconv.ParseFloat(tsText, 64)
	if err != nil {
		return atf.Event{}, errors.NewParseError(row, spec.TimeField, tsText,
			"expected numeric timestamp", err)
	}
	raw := int64(rawFloat * spec.TimeScale)

	var ts int64
	if spec.Normalize {
		ts = norm.Normalize(raw)
	} else {
		ts = raw
	}

	iot, err := inferIOType(spec, fields, row)
	if err != nil {
		return atf.Event{}, err
	}

	size := int64(1)
	if spec.SizeField >= 0 {
		sizeText := strings.TrimSpace(fields[spec.SizeField])
		size, err = strconv.ParseInt(sizeText, 10, 64)
		if err != nil {
			return atf.Event{}, errors.NewParseError(row, spec.SizeField, sizeText,
				"expected integer size", err)
		}
	}

	cost := 1.0
	if spec.CostField >= 0 {
		costText := strings.TrimSpace(fields[spec.CostField])
		switch {
		case costText == "" && spec.CostBlankDefault:
			cost = 1.0
		default:
			cost, err = strconv.ParseFloat(costText, 64)
			if err != nil {
				return atf.Event{}, errors.NewParseError(row, spec.CostField, costText,
					"expected numeric cost", err)
			}
		}
	}

	ev := atf.Event{Address: addr, Timestamp: ts, IOType: iot, Size: size, Cost: cost}
	if err := ev.Validate(); err != nil {
		return atf.Event{}, errors.Wrap(errors.ErrCategoryParse, errors.CodeBadRecord,
			"row "+strconv.Itoa(row)+": invalid event", err)
	}
	return ev, nil
}

func inferIOType(spec format.Spec, fields []string, row int) (atf.IOType, error) {
	field := fields[spec.IOField]

	switch spec.IORule {
	case format.IOVerbatim:
		iot, err := atf.ParseIOType(field)
		if err != nil {
			return 0, errors.NewParseError(row, spec.IOField, field,
				"expected R or W", err)
		}
		return iot, nil

	case format.IOSubstringR:
		if strings.Contains(field, "R") {
			return atf.Read, nil
		}
		return atf.Write, nil

	case format.IOOddRead:
		v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			return 0, errors.NewParseError(row, spec.IOField, field,
				"expected integer discriminator", err)
		}
		if v%2 != 0 {
			return atf.Read, nil
		}
		return atf.Write, nil

	case format.IOZeroRead:
		if strings.TrimSpace(field) == "0" {
			return atf.Read, nil
		}
		return atf.Write, nil
	}

	return 0, errors.NewInternalError("unhandled IORule", nil)
}

func splitRow(split format.Split, line string) []string {
	switch split {
	case format.SplitSpace:
		return strings.Fields(line)
	case format.SplitTab:
		return strings.FieldsFunc(line, func(r rune) bool { return r == '\t' })
	default:
		return strings.Split(line, ",")
	}
}
