// Package perf keeps a bounded in-memory window of request and query timings.
package perf

import (
	"cmp"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"
)

// DefaultRingSize is the default number of entries kept.
const DefaultRingSize = 10000

// EntryKind separates HTTP request timings from SQL statement timings.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record.
type Entry struct {
	Kind       EntryKind
	Path       string // "METHOD /path" for requests, statement op for queries
	StatusCode int    // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring of entries. Record never blocks on readers
// for longer than a slice copy; the oldest entry is dropped when full.
type Collector struct {
	mu     sync.Mutex
	ring   []Entry
	next   int
	filled bool
	total  atomic.Int64
}

// NewCollector creates a collector keeping the last size entries.
// PRE: size <= 0 uses DefaultRingSize
// POST: Returns an empty collector
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Entry, size)}
}

// Record stores e, overwriting the oldest entry when the ring is full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.ring[c.next] = e
	c.next++
	if c.next == len(c.ring) {
		c.next = 0
		c.filled = true
	}
	c.mu.Unlock()
	c.total.Add(1)
}

// TotalRecorded returns how many entries were ever recorded, including dropped ones.
func (c *Collector) TotalRecorded() int64 {
	return c.total.Load()
}

// window copies the retained entries at or after since, oldest first.
func (c *Collector) window(since time.Time) []Entry {
	c.mu.Lock()
	var kept []Entry
	if c.filled {
		kept = append(slices.Clone(c.ring[c.next:]), c.ring[:c.next]...)
	} else {
		kept = slices.Clone(c.ring[:c.next])
	}
	c.mu.Unlock()
	return lo.Filter(kept, func(e Entry, _ int) bool { return !e.Timestamp.Before(since) })
}

// Summary describes the latency distribution of one kind of entry.
type Summary struct {
	Count int     `json:"count"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
	MaxMs float64 `json:"max_ms"`
}

// PathStat aggregates the entries for one path or statement op.
type PathStat struct {
	Path   string  `json:"path"`
	Count  int     `json:"count"`
	AvgMs  float64 `json:"avg_ms"`
	MaxMs  float64 `json:"max_ms"`
	Errors int     `json:"errors"` // responses with status >= 500
}

// Snapshot is the aggregated view returned to the admin endpoint.
type Snapshot struct {
	Since          time.Time  `json:"since"`
	TotalRecorded  int64      `json:"total_recorded"`
	Requests       Summary    `json:"requests"`
	Queries        Summary    `json:"queries"`
	ServerErrors   int        `json:"server_errors"`
	SlowestPaths   []PathStat `json:"slowest_paths"`
	SlowestQueries []PathStat `json:"slowest_queries"`
}

// Snapshot aggregates the retained entries recorded at or after since.
// PRE: topN > 0 limits the slowest lists; topN <= 0 returns them whole
// POST: path lists are ordered by average duration, slowest first
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	entries := c.window(since)
	requests := lo.Filter(entries, func(e Entry, _ int) bool { return e.Kind == KindRequest })
	queries := lo.Filter(entries, func(e Entry, _ int) bool { return e.Kind == KindQuery })

	return Snapshot{
		Since:          since,
		TotalRecorded:  c.TotalRecorded(),
		Requests:       summarise(requests),
		Queries:        summarise(queries),
		ServerErrors:   lo.CountBy(requests, isServerError),
		SlowestPaths:   slowest(requests, topN),
		SlowestQueries: slowest(queries, topN),
	}
}

func isServerError(e Entry) bool { return e.StatusCode >= 500 }

func summarise(entries []Entry) Summary {
	if len(entries) == 0 {
		return Summary{}
	}
	durations := lo.Map(entries, func(e Entry, _ int) float64 { return e.DurationMs })
	slices.Sort(durations)
	return Summary{
		Count: len(durations),
		P50Ms: percentile(durations, 50),
		P95Ms: percentile(durations, 95),
		P99Ms: percentile(durations, 99),
		MaxMs: durations[len(durations)-1],
	}
}

func slowest(entries []Entry, topN int) []PathStat {
	byPath := lo.GroupBy(entries, func(e Entry) string { return e.Path })
	stats := make([]PathStat, 0, len(byPath))
	for path, group := range byPath {
		total := lo.SumBy(group, func(e Entry) float64 { return e.DurationMs })
		stats = append(stats, PathStat{
			Path:   path,
			Count:  len(group),
			AvgMs:  total / float64(len(group)),
			MaxMs:  lo.MaxBy(group, func(a, b Entry) bool { return a.DurationMs > b.DurationMs }).DurationMs,
			Errors: lo.CountBy(group, isServerError),
		})
	}
	slices.SortFunc(stats, func(a, b PathStat) int {
		if c := cmp.Compare(b.AvgMs, a.AvgMs); c != 0 {
			return c
		}
		return cmp.Compare(a.Path, b.Path)
	})
	if topN > 0 && len(stats) > topN {
		stats = stats[:topN]
	}
	return stats
}

// percentile interpolates the p-th percentile of sorted values.
func percentile(sorted []float64, p float64) float64 {
	rank := p / 100 * float64(len(sorted)-1)
	lower, upper := int(math.Floor(rank)), int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	return sorted[lower] + (sorted[upper]-sorted[lower])*(rank-float64(lower))
}
