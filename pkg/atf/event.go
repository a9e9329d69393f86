// Package atf provides the canonical trace event model shared by every
// format adapter. An ATF record is a 5-column line: Address, Timestamp,
// IOType, Size, Cost.
package atf

import (
	"fmt"
	"strconv"
	"strings"
)

// Header is the optional first line of an ATF file. The leading '#'
// marks it as a comment, not data.
const Header = "#Address,Timestamp,IOType,Size,Cost"

// IOType classifies an access as a read or a write.
type IOType byte

const (
	Read  IOType = 'R'
	Write IOType = 'W'
)

// String returns the single-character ATF rendering of the IOType.
func (t IOType) String() string {
	return string(byte(t))
}

// Valid reports whether t is one of the two permitted values.
func (t IOType) Valid() bool {
	return t == Read || t == Write
}

// ParseIOType parses a source-format IOType discriminator. It accepts
// the single characters R/W and the words Read/Write, case-insensitively.
func ParseIOType(s string) (IOType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "R", "READ":
		return Read, nil
	case "W", "WRITE":
		return Write, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidIOType, s)
}

// Event is one canonical trace record. Adapters either derive all five
// fields for a source row or emit nothing for it; partial events never
// reach an output stream.
type Event struct {
	// Address is the storage location or key accessed. May be a raw
	// sparse offset or a dense index produced by the offset remapper.
	Address uint64

	// Timestamp is the elapsed time since the stream origin, in the
	// source format's native unit (nanoseconds or microseconds).
	Timestamp int64

	// IOType is Read or Write.
	IOType IOType

	// Size is the byte/block size of the access; 1 when the source
	// format carries no size.
	Size int64

	// Cost is the weight of the access; 1 when the source format
	// carries no cost.
	Cost float64
}

// Validate checks the event against the canonical model invariants.
func (e Event) Validate() error {
	if !e.IOType.Valid() {
		return fmt.Errorf("%w: 0x%02x", ErrInvalidIOType, byte(e.IOType))
	}
	if e.Timestamp < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeTimestamp, e.Timestamp)
	}
	if e.Size < 1 {
		return fmt.Errorf("%w: %d", ErrNonPositiveSize, e.Size)
	}
	if e.Cost <= 0 {
		return fmt.Errorf("%w: %v", ErrNonPositiveCost, e.Cost)
	}
	return nil
}

// String renders the event as one ATF line, without a trailing newline.
// Whole-number costs render without a decimal point so that converted
// files match the source corpus byte-for-byte.
func (e Event) String() string {
	return strconv.FormatUint(e.Address, 10) + "," +
		strconv.FormatInt(e.Timestamp, 10) + "," +
		e.IOType.String() + "," +
		strconv.FormatInt(e.Size, 10) + "," +
		strconv.FormatFloat(e.Cost, 'f', -1, 64)
}

// ParseEvent parses one ATF data line. Comment lines (leading '#') are
// the caller's responsibility to skip.
func ParseEvent(line string) (Event, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	if len(fields) != 5 {
		return Event{}, fmt.Errorf("%w: got %d fields", ErrBadRecord, len(fields))
	}

	addr, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: address %q", ErrBadRecord, fields[0])
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: timestamp %q", ErrBadRecord, fields[1])
	}
	iot, err := ParseIOType(fields[2])
	if err != nil {
		return Event{}, err
	}
	size, err := strconv.ParseInt(strings.TrimSpace(fields[3]), 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: size %q", ErrBadRecord, fields[3])
	}
	cost, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
	if err != nil {
		return Event{}, fmt.Errorf("%w: cost %q", ErrBadRecord, fields[4])
	}

	ev := Event{Address: addr, Timestamp: ts, IOType: iot, Size: size, Cost: cost}
	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}
