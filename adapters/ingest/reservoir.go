package ingest

import (
	"math/rand"

	"vizrec/domain/record"
)

// reservoir retains a uniform sample of at most keep rows from a stream of
// unknown length. Rows are collected verbatim until collect rows are held;
// the buffer is then shuffled down to keep and every later row replaces a
// random slot with probability keep/seen (Algorithm R).
type reservoir struct {
	keep     int
	collect  int
	rng      *rand.Rand
	rows     []record.Record
	seen     int
	sampling bool
}

func newReservoir(keep, collect int, rng *rand.Rand) *reservoir {
	if collect < keep {
		collect = keep
	}
	return &reservoir{keep: keep, collect: collect, rng: rng}
}

// offer presents one row and reports whether the reservoir switched to
// replacement mode on this call.
func (r *reservoir) offer(row record.Record) bool {
	r.seen++
	if !r.sampling {
		r.rows = append(r.rows, row)
		if len(r.rows) >= r.collect {
			r.downsample()
			r.sampling = true
			return true
		}
		return false
	}

	j := r.rng.Intn(r.seen)
	if j < r.keep {
		r.rows[j] = row
	}
	return false
}

// downsample keeps a uniform subset of keep rows via a partial
// Fisher-Yates shuffle and releases the rest of the buffer.
func (r *reservoir) downsample() {
	if len(r.rows) <= r.keep {
		return
	}
	for i := 0; i < r.keep; i++ {
		j := i + r.rng.Intn(len(r.rows)-i)
		r.rows[i], r.rows[j] = r.rows[j], r.rows[i]
	}
	kept := make([]record.Record, r.keep)
	copy(kept, r.rows[:r.keep])
	r.rows = kept
}

// result returns the final sample, never larger than keep
func (r *reservoir) result() []record.Record {
	if len(r.rows) > r.keep {
		r.downsample()
	}
	return r.rows
}
