package adapter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atfconv/atfconv/internal/errors"
	"github.com/atfconv/atfconv/internal/format"
	"github.com/atfconv/atfconv/pkg/atf"
)

type memSink struct {
	events []atf.Event
}

func (m *memSink) WriteEvent(ev atf.Event) error {
	m.events = append(m.events, ev)
	return nil
}

func mustSpec(t *testing.T, id string) format.Spec {
	t.Helper()
	spec, err := format.Lookup(id)
	assert.NoError(t, err)
	return spec
}

func TestLUNBasicFieldRemap(t *testing.T) {
	// Field order: offset0, cost, type, col3, address, lun.
	sink := &memSink{}
	stats, err := Convert(mustSpec(t, format.LUN), strings.NewReader("100,5,R,0,200,3\n"), sink)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), stats.EventsEmitted)
	assert.Equal(t, []atf.Event{
		{Address: 200, Timestamp: 100, IOType: atf.Read, Size: 3, Cost: 5},
	}, sink.events)
}

func TestLUNBasicDoesNotRebaseTimestamps(t *testing.T) {
	sink := &memSink{}
	_, err := Convert(mustSpec(t, format.LUN),
		strings.NewReader("100,5,R,0,200,3\n130,1,W,0,201,4\n"), sink)

	assert.NoError(t, err)
	assert.Equal(t, int64(100), sink.events[0].Timestamp)
	assert.Equal(t, int64(130), sink.events[1].Timestamp)
}

func TestNumericLogScaling(t *testing.T) {
	in := "0.0,1,4096,1\n0.5,2,512,0\n"
	sink := &memSink{}
	stats, err := Convert(mustSpec(t, format.Numeric), strings.NewReader(in), sink)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), stats.EventsEmitted)
	assert.Equal(t, []atf.Event{
		{Address: 1, Timestamp: 0, IOType: atf.Write, Size: 4096, Cost: 1},
		{Address: 2, Timestamp: 500000000, IOType: atf.Read, Size: 512, Cost: 1},
	}, sink.events)
}

func TestBlockTraceTerminatorAndShortRows(t *testing.T) {
	in := strings.Join([]string{
		"8,0 1 1 0.000000000 1234 Q RM 123456 + 8 [fio]",
		"8,0 1 2 0.000501000 1234 Q W 123464 + 16 [fio]",
		"8,0 1 3 0.000600000 1234 C R", // trailing section, too short
		"CPU0 (8,0):",                  // terminator, must stop cleanly
		"8,0 1 4 0.000700000 1234 Q R 999999 + 8 [fio]",
	}, "\n") + "\n"

	sink := &memSink{}
	stats, err := Convert(mustSpec(t, format.Block), strings.NewReader(in), sink)

	assert.NoError(t, err)
	assert.True(t, stats.TerminatorSeen)
	assert.Equal(t, int64(1), stats.ShortRowsSkipped)
	assert.Equal(t, int64(2), stats.EventsEmitted)
	assert.Equal(t, []atf.Event{
		{Address: 123456, Timestamp: 0, IOType: atf.Read, Size: 8, Cost: 1},
		{Address: 123464, Timestamp: 501000, IOType: atf.Write, Size: 16, Cost: 1},
	}, sink.events)
}

func TestCloudLogVerbatimIOType(t *testing.T) {
	in := "job1,0.0,R,500,4096\njob1,1.25,W,501,512\n"
	sink := &memSink{}
	_, err := Convert(mustSpec(t, format.Cloud), strings.NewReader(in), sink)

	assert.NoError(t, err)
	assert.Equal(t, []atf.Event{
		{Address: 500, Timestamp: 0, IOType: atf.Read, Size: 4096, Cost: 1},
		{Address: 501, Timestamp: 1250000000, IOType: atf.Write, Size: 512, Cost: 1},
	}, sink.events)
}

func TestTabDelimitedParityRule(t *testing.T) {
	in := "77\t512\tx\t3\ty\tz\t1.5\ta\tb\tc\n" +
		"78\t1024\tx\t4\ty\tz\t2.0\ta\tb\tc\n"
	sink := &memSink{}
	_, err := Convert(mustSpec(t, format.Tab), strings.NewReader(in), sink)

	assert.NoError(t, err)
	assert.Equal(t, []atf.Event{
		{Address: 77, Timestamp: 0, IOType: atf.Read, Size: 512, Cost: 1},
		{Address: 78, Timestamp: 500000000, IOType: atf.Write, Size: 1024, Cost: 1},
	}, sink.events)
}

func TestTabDelimitedCollapsesEmptyFields(t *testing.T) {
	// Doubled tabs produce empty columns that must be dropped before
	// indexing, as the source tooling did.
	in := "77\t\t512\tx\t3\ty\tz\t1.5\ta\tb\tc\n"
	sink := &memSink{}
	_, err := Convert(mustSpec(t, format.Tab), strings.NewReader(in), sink)

	assert.NoError(t, err)
	assert.Equal(t, uint64(77), sink.events[0].Address)
	assert.Equal(t, int64(512), sink.events[0].Size)
}

func TestLUNTimedBlankCostDefaultsToOne(t *testing.T) {
	in := "offset,cost,type,c3,address,lun\n" + // header line
		"100,,R,0,200,3\n" +
		"110,2,W,0,201,4\n"
	sink := &memSink{}
	stats, err := Convert(mustSpec(t, format.LUNTimed), strings.NewReader(in), sink)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), stats.CommentLines)
	assert.Equal(t, []atf.Event{
		{Address: 200, Timestamp: 0, IOType: atf.Read, Size: 3, Cost: 1},
		{Address: 201, Timestamp: 10000000, IOType: atf.Write, Size: 4, Cost: 2},
	}, sink.events)
}

func TestLUNBasicBlankCostFails(t *testing.T) {
	// The basic LUN format has no cost default; a blank cost is a parse
	// failure. The asymmetry with lun-timed is deliberate.
	sink := &memSink{}
	_, err := Convert(mustSpec(t, format.LUN), strings.NewReader("100,,R,0,200,3\n"), sink)
	assert.Equal(t, errors.ErrCategoryParse, errors.GetCategory(err))
}

func TestBackwardJumpRestartsAtZero(t *testing.T) {
	in := "10,1,1,1\n20,1,1,1\n5,1,1,1\n15,1,1,1\n"
	sink := &memSink{}
	stats, err := Convert(mustSpec(t, format.Numeric), strings.NewReader(in), sink)

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.OriginResets)
	ts := make([]int64, 0, 4)
	for _, ev := range sink.events {
		ts = append(ts, ev.Timestamp)
	}
	assert.Equal(t, []int64{0, 10000000000, 0, 10000000000}, ts)
}

func TestSingleRowStream(t *testing.T) {
	sink := &memSink{}
	stats, err := Convert(mustSpec(t, format.Numeric), strings.NewReader("3.5,9,64,0\n"), sink)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), stats.EventsEmitted)
	assert.Equal(t, 0, stats.OriginResets)
	assert.Equal(t, int64(0), sink.events[0].Timestamp)
}

func TestParseErrorNamesRowAndField(t *testing.T) {
	in := "0.0,1,4096,1\nabc,2,512,0\n"
	sink := &memSink{}
	_, err := Convert(mustSpec(t, format.Numeric), strings.NewReader(in), sink)

	assert.Error(t, err)
	assert.Equal(t, errors.ErrCategoryParse, errors.GetCategory(err))
	assert.Equal(t, errors.CodeBadField, errors.GetCode(err))
	assert.Contains(t, err.Error(), "row 2 field 0")
}

func TestCommentLinesSkipped(t *testing.T) {
	in := "#Address,Timestamp,IOType,Size,Cost\n1,0,R,1,1\n"
	sink := &memSink{}
	stats, err := Convert(mustSpec(t, format.ATF), strings.NewReader(in), sink)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), stats.CommentLines)
	assert.Equal(t, int64(1), stats.EventsEmitted)
}

func TestIdentityFormatPreservesEvents(t *testing.T) {
	in := "200,100,R,3,5\n201,110,W,4,2.5\n"
	sink := &memSink{}
	_, err := Convert(mustSpec(t, format.ATF), strings.NewReader(in), sink)

	assert.NoError(t, err)
	assert.Equal(t, []atf.Event{
		{Address: 200, Timestamp: 100, IOType: atf.Read, Size: 3, Cost: 5},
		{Address: 201, Timestamp: 110, IOType: atf.Write, Size: 4, Cost: 2.5},
	}, sink.events)
}

func TestIOTypeAlwaysReadOrWrite(t *testing.T) {
	inputs := map[string]string{
		format.Block:   "8,0 1 1 0.0 1234 Q X 1 + 8 [fio]\n",
		format.Numeric: "0.0,1,1,7\n",
		format.Tab:     "1\t1\tx\t-3\ty\tz\t0.0\ta\tb\tc\n",
	}
	for id, in := range inputs {
		sink := &memSink{}
		_, err := Convert(mustSpec(t, id), strings.NewReader(in), sink)
		assert.NoError(t, err, id)
		for _, ev := range sink.events {
			assert.True(t, ev.IOType == atf.Read || ev.IOType == atf.Write, id)
		}
	}
}
