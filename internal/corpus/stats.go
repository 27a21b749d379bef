package corpus

import "github.com/couchbase/ghistogram"

// Stats summarizes a corpus at a point in time.
type Stats struct {
	Entries    int    `json:"entries"`
	Loaded     int    `json:"loaded"`
	Unloaded   int    `json:"unloaded"`
	TotalBytes uint64 `json:"total_bytes"`
}

// Histogrammer is implemented by backends that track operation
// histograms.
type Histogrammer interface {
	Histograms() ghistogram.Histograms
}

// Snapshot walks the corpus and summarizes it. The loaded/unloaded
// split shows how much of the corpus is materialized in memory versus
// referenced on disk only.
func Snapshot(c Corpus) Stats {
	var s Stats
	s.Entries = c.Count()
	for i := 0; i < c.Count(); i++ {
		tc := c.Get(i)
		if tc.HasInput() {
			s.Loaded++
			s.TotalBytes += uint64(tc.Input().Len())
		} else {
			s.Unloaded++
		}
	}
	return s
}

// Histograms exposes the wrapped backend's histograms through the
// queue overlay, or nil if the backend does not track any.
func (q *QueueCorpus) Histograms() ghistogram.Histograms {
	if h, ok := q.corpus.(Histogrammer); ok {
		return h.Histograms()
	}
	return nil
}
