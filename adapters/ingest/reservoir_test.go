package ingest

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vizrec/domain/record"
)

func offerN(r *reservoir, n int) {
	for i := 0; i < n; i++ {
		r.offer(record.Record{"i": record.Number(float64(i))})
	}
}

func TestReservoirKeepsEverythingBelowCapacity(t *testing.T) {
	r := newReservoir(10, 20, rand.New(rand.NewSource(1)))
	offerN(r, 7)
	assert.Len(t, r.result(), 7)
	assert.False(t, r.sampling)
}

func TestReservoirDownsamplesAtEnd(t *testing.T) {
	r := newReservoir(10, 20, rand.New(rand.NewSource(1)))
	offerN(r, 15)
	assert.False(t, r.sampling)
	assert.Len(t, r.result(), 10)
}

func TestReservoirNeverExceedsKeep(t *testing.T) {
	r := newReservoir(10, 20, rand.New(rand.NewSource(1)))
	offerN(r, 1000)
	require.True(t, r.sampling)
	rows := r.result()
	assert.Len(t, rows, 10)
	assert.Equal(t, 1000, r.seen)

	seen := map[float64]bool{}
	for _, row := range rows {
		f, _ := row["i"].Float()
		assert.False(t, seen[f], "duplicate row %v", f)
		seen[f] = true
	}
}

func TestReservoirIsRoughlyUniform(t *testing.T) {
	// Over many trials, every half of the stream should land in the sample
	// about equally often.
	firstHalf, secondHalf := 0, 0
	for trial := 0; trial < 200; trial++ {
		r := newReservoir(10, 20, rand.New(rand.NewSource(int64(trial))))
		offerN(r, 200)
		for _, row := range r.result() {
			if f, _ := row["i"].Float(); f < 100 {
				firstHalf++
			} else {
				secondHalf++
			}
		}
	}
	ratio := float64(firstHalf) / float64(firstHalf+secondHalf)
	assert.InDelta(t, 0.5, ratio, 0.08)
}

func TestReservoirIsDeterministicForASeed(t *testing.T) {
	a := newReservoir(5, 10, rand.New(rand.NewSource(7)))
	b := newReservoir(5, 10, rand.New(rand.NewSource(7)))
	offerN(a, 100)
	offerN(b, 100)
	ra, rb := a.result(), b.result()
	for i := range ra {
		assert.True(t, ra[i]["i"].Equal(rb[i]["i"]))
	}
}
