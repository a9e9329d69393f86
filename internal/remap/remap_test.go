package remap

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atfconv/atfconv/internal/errors"
	"github.com/atfconv/atfconv/pkg/atf"
)

const sample = atf.Header + "\n" +
	"9000,0,R,1,1\n" +
	"5,1,W,1,1\n" +
	"9000,2,R,1,1\n" +
	"777777,3,R,1,1\n"

func TestBuildAssignsDenseFirstSeenIDs(t *testing.T) {
	m, err := Build(strings.NewReader(sample))
	assert.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []string{"9000", "5", "777777"}, m.Addresses())

	id, ok := m.ID("9000")
	assert.True(t, ok)
	assert.Equal(t, uint64(0), id)
	id, ok = m.ID("777777")
	assert.True(t, ok)
	assert.Equal(t, uint64(2), id)

	_, ok = m.ID("12345")
	assert.False(t, ok)
}

func TestApplySubstitutesOnlyFirstColumn(t *testing.T) {
	m, err := Build(strings.NewReader(sample))
	assert.NoError(t, err)

	var out bytes.Buffer
	assert.NoError(t, Apply(strings.NewReader(sample), m, &out))

	want := atf.Header + "\n" +
		"0,0,R,1,1\n" +
		"1,1,W,1,1\n" +
		"0,2,R,1,1\n" +
		"2,3,R,1,1\n"
	assert.Equal(t, want, out.String())
}

func TestApplyIsIdempotentForFixedMapAndSource(t *testing.T) {
	m, err := Build(strings.NewReader(sample))
	assert.NoError(t, err)

	var first, second bytes.Buffer
	assert.NoError(t, Apply(strings.NewReader(sample), m, &first))
	assert.NoError(t, Apply(strings.NewReader(sample), m, &second))
	assert.Equal(t, first.String(), second.String())
}

func TestApplyUnknownAddressFails(t *testing.T) {
	m, err := Build(strings.NewReader(sample))
	assert.NoError(t, err)

	mutated := atf.Header + "\n" + "424242,0,R,1,1\n"
	var out bytes.Buffer
	err = Apply(strings.NewReader(mutated), m, &out)

	assert.Equal(t, errors.ErrCategoryRemap, errors.GetCategory(err))
	assert.Equal(t, errors.CodeUnknownAddress, errors.GetCode(err))
	assert.Contains(t, err.Error(), "row 1")
}

func TestApplyDetectsSourceMutation(t *testing.T) {
	m, err := Build(strings.NewReader(sample))
	assert.NoError(t, err)

	// Same address set, different sequence: every lookup succeeds but the
	// column fingerprint diverges.
	reordered := atf.Header + "\n" +
		"5,1,W,1,1\n" +
		"9000,0,R,1,1\n" +
		"9000,2,R,1,1\n" +
		"777777,3,R,1,1\n"
	var out bytes.Buffer
	err = Apply(strings.NewReader(reordered), m, &out)

	assert.Equal(t, errors.CodeSourceChanged, errors.GetCode(err))
}

func TestBuildEmptyBody(t *testing.T) {
	m, err := Build(strings.NewReader(atf.Header + "\n"))
	assert.NoError(t, err)
	assert.Equal(t, 0, m.Len())

	var out bytes.Buffer
	assert.NoError(t, Apply(strings.NewReader(atf.Header+"\n"), m, &out))
	assert.Equal(t, atf.Header+"\n", out.String())
}
