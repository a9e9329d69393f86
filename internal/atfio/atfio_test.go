package atfio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atfconv/atfconv/pkg/atf"
)

func TestOutputPath(t *testing.T) {
	assert.Equal(t, "trace.log.atf", OutputPath("trace.log"))
	assert.Equal(t, "/data/t.csv.atf", OutputPath("/data/t.csv"))
}

func TestFileWriterCommit(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "trace.atf")

	fw, err := CreateFile(out, false)
	assert.NoError(t, err)
	defer fw.Close()

	assert.NoError(t, fw.WriteHeader())
	assert.NoError(t, fw.WriteEvent(atf.Event{Address: 1, Timestamp: 0, IOType: atf.Read, Size: 1, Cost: 1}))
	assert.NoError(t, fw.WriteEvent(atf.Event{Address: 2, Timestamp: 5, IOType: atf.Write, Size: 8, Cost: 1}))
	assert.NoError(t, fw.Commit())

	data, err := os.ReadFile(out)
	assert.NoError(t, err)
	assert.Equal(t, atf.Header+"\n1,0,R,1,1\n2,5,W,8,1\n", string(data))

	// No stray temp files survive.
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileWriterAbandonLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "trace.atf")

	fw, err := CreateFile(out, false)
	assert.NoError(t, err)
	assert.NoError(t, fw.WriteEvent(atf.Event{Address: 1, IOType: atf.Read, Size: 1, Cost: 1}))
	assert.NoError(t, fw.Close())

	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSnappyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "trace.atf")

	fw, err := CreateFile(out, true)
	assert.NoError(t, err)
	defer fw.Close()
	assert.True(t, strings.HasSuffix(fw.Path(), ".atf.sz"))

	want := []atf.Event{
		{Address: 10, Timestamp: 0, IOType: atf.Read, Size: 4096, Cost: 1},
		{Address: 11, Timestamp: 7, IOType: atf.Write, Size: 512, Cost: 2.5},
	}
	assert.NoError(t, fw.WriteHeader())
	for _, ev := range want {
		assert.NoError(t, fw.WriteEvent(ev))
	}
	assert.NoError(t, fw.Commit())

	r, err := OpenSource(fw.Path())
	assert.NoError(t, err)
	defer r.Close()

	got, err := ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReadAllSkipsCommentsAndBlanks(t *testing.T) {
	in := strings.NewReader(atf.Header + "\n\n1,0,R,1,1\n# trailing comment\n2,3,W,1,1\n")
	events, err := ReadAll(in)
	assert.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestReadAllReportsRow(t *testing.T) {
	in := strings.NewReader("1,0,R,1,1\n2,zz,W,1,1\n")
	_, err := ReadAll(in)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}
