package timebase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstCallReturnsZero(t *testing.T) {
	var n Normalizer
	assert.False(t, n.Started())
	assert.Equal(t, int64(0), n.Normalize(123456789))
	assert.True(t, n.Started())
	assert.Equal(t, 0, n.Resets())
}

func TestElapsedAgainstOrigin(t *testing.T) {
	var n Normalizer
	n.Normalize(100)
	assert.Equal(t, int64(25), n.Normalize(125))
	assert.Equal(t, int64(25), n.Normalize(125))
	assert.Equal(t, int64(900), n.Normalize(1000))
	assert.Equal(t, 0, n.Resets())
}

func TestBackwardJumpResetsOrigin(t *testing.T) {
	var n Normalizer
	got := []int64{
		n.Normalize(10),
		n.Normalize(20),
		n.Normalize(5),
		n.Normalize(15),
	}
	assert.Equal(t, []int64{0, 10, 0, 10}, got)
	assert.Equal(t, 1, n.Resets())
}

func TestMultipleResets(t *testing.T) {
	var n Normalizer
	got := []int64{
		n.Normalize(100),
		n.Normalize(50),
		n.Normalize(60),
		n.Normalize(10),
		n.Normalize(10),
	}
	assert.Equal(t, []int64{0, 0, 10, 0, 0}, got)
	assert.Equal(t, 2, n.Resets())
}

func TestSingleRecordStream(t *testing.T) {
	// Exactly one row: origin fixed, zero returned, no reset branch taken.
	var n Normalizer
	assert.Equal(t, int64(0), n.Normalize(-42))
	assert.Equal(t, 0, n.Resets())
}
