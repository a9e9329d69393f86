// Package format declares the per-format parsing rules as data. Each source
// format is one Spec: which columns hold which ATF fields, how the raw
// timestamp is scaled, and how the read/write discriminator is interpreted.
// A single generic adapter consumes these specs; there is no per-format code.
package format

import (
	"sort"

	"github.com/atfconv/atfconv/internal/errors"
)

// Split selects how a source line is decomposed into fields.
type Split int

const (
	// SplitComma splits on commas, preserving empty fields. Blank columns
	// are meaningful for comma formats (the timed LUN cost default).
	SplitComma Split = iota

	// SplitSpace splits on runs of whitespace, collapsing empty fields.
	SplitSpace

	// SplitTab splits on tabs, collapsing empty fields.
	SplitTab
)

// IORule selects how the read/write discriminator field is interpreted.
type IORule int

const (
	// IOVerbatim parses the field as an IOType literal (R/W).
	IOVerbatim IORule = iota

	// IOSubstringR maps fields containing "R" to Read, everything else to Write.
	IOSubstringR

	// IOOddRead maps odd integer fields to Read, even to Write.
	IOOddRead

	// IOZeroRead maps the literal field "0" to Read, everything else to Write.
	IOZeroRead
)

// Spec is the declarative mapping from one source format to the canonical
// event model. Field indices are zero-based positions after splitting.
type Spec struct {
	// ID is the format identifier used on the command line.
	ID string

	// Split is the field decomposition rule.
	Split Split

	// MinFields is the minimum field count for a row to be converted.
	// Shorter rows are skipped and counted, never fatal.
	MinFields int

	// AddressField holds the storage address.
	AddressField int

	// TimeField holds the raw timestamp.
	TimeField int

	// TimeScale multiplies the raw timestamp before normalization
	// (1e9 for second-resolution sources, 1e6 for the timed LUN format,
	// 1 for passthrough).
	TimeScale float64

	// Normalize re-bases timestamps against the stream origin. The basic
	// LUN format and the ATF identity format pass timestamps through.
	Normalize bool

	// IOField holds the read/write discriminator, interpreted per IORule.
	IOField int
	IORule  IORule

	// SizeField holds the access size; -1 means the format carries none
	// and the size defaults to 1.
	SizeField int

	// CostField holds the access cost; -1 means the format carries none
	// and the cost defaults to 1.
	CostField int

	// CostBlankDefault treats an empty cost column as 1 instead of a
	// parse failure. Only the timed LUN format sets this.
	CostBlankDefault bool

	// TerminatorField/TerminatorText: a row whose TerminatorField contains
	// TerminatorText marks intentional end-of-stream and is not emitted.
	// TerminatorField is -1 when the format has no terminator.
	TerminatorField int
	TerminatorText  string

	// HeaderLines is the count of leading lines to skip unconditionally.
	HeaderLines int
}

// Format identifiers.
const (
	Block    = "block"
	Cloud    = "cloud"
	Tab      = "tab"
	Numeric  = "numeric"
	LUN      = "lun"
	LUNTimed = "lun-timed"
	ATF      = "atf"
)

var registry = map[string]Spec{
	Block: {
		ID:              Block,
		Split:           SplitSpace,
		MinFields:       11,
		AddressField:    7,
		TimeField:       3,
		TimeScale:       1e9,
		Normalize:       true,
		IOField:         6,
		IORule:          IOSubstringR,
		SizeField:       9,
		CostField:       -1,
		TerminatorField: 0,
		TerminatorText:  "CPU",
	},
	Cloud: {
		ID:              Cloud,
		Split:           SplitComma,
		MinFields:       5,
		AddressField:    3,
		TimeField:       1,
		TimeScale:       1e9,
		Normalize:       true,
		IOField:         2,
		IORule:          IOVerbatim,
		SizeField:       4,
		CostField:       -1,
		TerminatorField: -1,
	},
	Tab: {
		ID:              Tab,
		Split:           SplitTab,
		MinFields:       10,
		AddressField:    0,
		TimeField:       6,
		TimeScale:       1e9,
		Normalize:       true,
		IOField:         3,
		IORule:          IOOddRead,
		SizeField:       1,
		CostField:       -1,
		TerminatorField: -1,
	},
	Numeric: {
		ID:              Numeric,
		Split:           SplitComma,
		MinFields:       4,
		AddressField:    1,
		TimeField:       0,
		TimeScale:       1e9,
		Normalize:       true,
		IOField:         3,
		IORule:          IOZeroRead,
		SizeField:       2,
		CostField:       -1,
		TerminatorField: -1,
	},
	LUN: {
		ID:              LUN,
		Split:           SplitComma,
		MinFields:       6,
		AddressField:    4,
		TimeField:       0,
		TimeScale:       1,
		Normalize:       false,
		IOField:         2,
		IORule:          IOVerbatim,
		SizeField:       5,
		CostField:       1,
		TerminatorField: -1,
	},
	LUNTimed: {
		ID:               LUNTimed,
		Split:            SplitComma,
		MinFields:        6,
		AddressField:     4,
		TimeField:        0,
		TimeScale:        1e6,
		Normalize:        true,
		IOField:          2,
		IORule:           IOVerbatim,
		SizeField:        5,
		CostField:        1,
		CostBlankDefault: true,
		TerminatorField:  -1,
		HeaderLines:      1,
	},
	ATF: {
		ID:              ATF,
		Split:           SplitComma,
		MinFields:       5,
		AddressField:    0,
		TimeField:       1,
		TimeScale:       1,
		Normalize:       false,
		IOField:         2,
		IORule:          IOVerbatim,
		SizeField:       3,
		CostField:       4,
		TerminatorField: -1,
	},
}

// Lookup returns the Spec registered under id.
func Lookup(id string) (Spec, error) {
	spec, ok := registry[id]
	if !ok {
		return Spec{}, errors.NewUnknownFormatError(id)
	}
	return spec, nil
}

// IDs returns all registered format identifiers, sorted.
func IDs() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
