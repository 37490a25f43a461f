// Package perf records request, query and outbound call timings in a fixed
// ring buffer and aggregates them on read.
package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 4096

// Kind distinguishes what an Entry timed.
type Kind uint8

const (
	// KindRequest is an inbound HTTP request served by the API server.
	KindRequest Kind = iota
	// KindQuery is a database call made by a store.
	KindQuery
	// KindCall is an outbound API call made by the client.
	KindCall
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind     Kind
	Label    string // "METHOD /route", "store.Method" or "client.Operation"
	Status   int    // HTTP status; 0 for queries and failed calls
	Duration time.Duration
	At       time.Time
}

// Collector is a fixed-size ring buffer of timing entries. When full, the
// oldest entries are overwritten.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: size > 0, otherwise DefaultRingSize is used
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record appends an entry to the ring buffer. A nil Collector ignores it.
// PRE: e.At is set
// POST: Entry stored; if buffer full, oldest entry overwritten
func (c *Collector) Record(e Entry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns the total number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	if c == nil {
		return 0
	}
	return c.count.Load()
}

// LabelStat aggregates timing for a single label.
type LabelStat struct {
	Label string        `json:"label"`
	Count int           `json:"count"`
	Avg   time.Duration `json:"avg_ns"`
	Max   time.Duration `json:"max_ns"`
	total time.Duration
}

// Snapshot holds aggregated performance data computed on read.
type Snapshot struct {
	TotalRecorded  int64         `json:"total_recorded"`
	RequestP50     time.Duration `json:"request_p50_ns"`
	RequestP95     time.Duration `json:"request_p95_ns"`
	RequestP99     time.Duration `json:"request_p99_ns"`
	SlowestPaths   []LabelStat   `json:"slowest_paths"`
	SlowestQueries []LabelStat   `json:"slowest_queries"`
	SlowestCalls   []LabelStat   `json:"slowest_calls"`
}

// Snapshot aggregates entries recorded at or after since.
// PRE: topN > 0
// POST: Returns percentiles over requests and top-N lists per kind
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	var requestDurations []time.Duration
	stats := map[Kind]map[string]*LabelStat{
		KindRequest: {},
		KindQuery:   {},
		KindCall:    {},
	}

	for _, e := range buf {
		if e.At.IsZero() || e.At.Before(since) {
			continue
		}
		byLabel, ok := stats[e.Kind]
		if !ok {
			continue
		}
		if e.Kind == KindRequest {
			requestDurations = append(requestDurations, e.Duration)
		}
		s, ok := byLabel[e.Label]
		if !ok {
			s = &LabelStat{Label: e.Label}
			byLabel[e.Label] = s
		}
		s.Count++
		s.total += e.Duration
		if e.Duration > s.Max {
			s.Max = e.Duration
		}
	}

	snap := Snapshot{
		TotalRecorded:  c.TotalRecorded(),
		SlowestPaths:   topByAvg(stats[KindRequest], topN),
		SlowestQueries: topByAvg(stats[KindQuery], topN),
		SlowestCalls:   topByAvg(stats[KindCall], topN),
	}

	if len(requestDurations) > 0 {
		sort.Slice(requestDurations, func(i, j int) bool { return requestDurations[i] < requestDurations[j] })
		snap.RequestP50 = percentile(requestDurations, 50)
		snap.RequestP95 = percentile(requestDurations, 95)
		snap.RequestP99 = percentile(requestDurations, 99)
	}
	return snap
}

// percentile returns the p-th percentile from a sorted slice, interpolating
// between neighbours.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return time.Duration(float64(sorted[lower])*(1-frac) + float64(sorted[upper])*frac)
}

// topByAvg returns the top N labels sorted by average duration (descending).
func topByAvg(stats map[string]*LabelStat, n int) []LabelStat {
	list := make([]LabelStat, 0, len(stats))
	for _, s := range stats {
		s.Avg = s.total / time.Duration(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Avg == list[j].Avg {
			return list[i].Label < list[j].Label
		}
		return list[i].Avg > list[j].Avg
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
