// Package metrics collects wall-clock latency measurements for timed
// operations and aggregates them at read time.
package metrics

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultSlowThresholdMS is the elevated-severity threshold applied
// when a collector is built with no explicit threshold.
const DefaultSlowThresholdMS = 1000

// Metric is a single latency measurement.
type Metric struct {
	Operation  string         `json:"operation"`
	DurationMS float64        `json:"duration_ms"`
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Stats summarizes every measurement recorded for one operation.
type Stats struct {
	Count   int     `json:"count"`
	AvgMS   float64 `json:"avg_ms"`
	MinMS   float64 `json:"min_ms"`
	MaxMS   float64 `json:"max_ms"`
	TotalMS float64 `json:"total_ms"`
}

// Collector is an append-only latency log with per-operation indexing.
// One explicitly constructed instance is shared across the process.
type Collector struct {
	mu     sync.Mutex
	log    []Metric
	perOp  map[string][]float64
	slowMS float64
}

// NewCollector creates a collector. slowThresholdMS <= 0 selects
// DefaultSlowThresholdMS.
func NewCollector(slowThresholdMS float64) *Collector {
	if slowThresholdMS <= 0 {
		slowThresholdMS = DefaultSlowThresholdMS
	}
	return &Collector{
		perOp:  make(map[string][]float64),
		slowMS: slowThresholdMS,
	}
}

// Record appends a measurement to the log and the per-operation index.
// Measurements above the slow threshold are flagged at warning
// severity but still aggregated.
func (c *Collector) Record(operation string, durationMS float64, metadata map[string]any) {
	m := Metric{
		Operation:  operation,
		DurationMS: durationMS,
		Timestamp:  time.Now(),
		Metadata:   metadata,
	}

	c.mu.Lock()
	c.log = append(c.log, m)
	c.perOp[operation] = append(c.perOp[operation], durationMS)
	c.mu.Unlock()

	if durationMS > c.slowMS {
		slog.Warn("slow operation", "operation", operation, "duration_ms", durationMS)
	} else {
		slog.Debug("operation timed", "operation", operation, "duration_ms", durationMS)
	}
}

// Time starts a timer for operation. The returned stop function
// records the elapsed time; deferring it records on every exit path,
// error and panic included, without suppressing either.
func (c *Collector) Time(operation string, metadata map[string]any) func() {
	start := time.Now()
	return func() {
		c.Record(operation, float64(time.Since(start))/float64(time.Millisecond), metadata)
	}
}

// Summary computes per-operation statistics from the live index,
// reflecting every Record call that completed before it returns.
func (c *Collector) Summary() map[string]Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	summary := make(map[string]Stats, len(c.perOp))
	for op, durations := range c.perOp {
		if len(durations) == 0 {
			continue
		}
		s := Stats{
			Count: len(durations),
			MinMS: durations[0],
			MaxMS: durations[0],
		}
		for _, d := range durations {
			s.TotalMS += d
			if d < s.MinMS {
				s.MinMS = d
			}
			if d > s.MaxMS {
				s.MaxMS = d
			}
		}
		s.AvgMS = s.TotalMS / float64(s.Count)
		summary[op] = s
	}
	return summary
}

// Metrics returns a copy of the full measurement log.
func (c *Collector) Metrics() []Metric {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Metric{}, c.log...)
}

// Clear resets all accumulated metrics. Reserved for tests and
// maintenance, never called from request handling.
func (c *Collector) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log = nil
	c.perOp = make(map[string][]float64)
}
