package stats

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"
)

type Type int

const (
	// Considered counts stages evaluated by a pipeline.
	Considered Type = iota
	// Skipped counts stages whose gate decided not to run the formatter.
	Skipped
	// Executed counts formatter processes invoked.
	Executed
	// Failed counts stages which errored and fell back to their input.
	Failed
	// Formatted counts documents for which an edit was produced.
	Formatted
)

type Stats struct {
	start    time.Time
	counters map[Type]*atomic.Int32
}

func New() Stats {
	counters := make(map[Type]*atomic.Int32)

	counters[Considered] = &atomic.Int32{}
	counters[Skipped] = &atomic.Int32{}
	counters[Executed] = &atomic.Int32{}
	counters[Failed] = &atomic.Int32{}
	counters[Formatted] = &atomic.Int32{}

	return Stats{
		start:    time.Now(),
		counters: counters,
	}
}

func (s *Stats) Add(t Type, delta int32) int32 {
	return s.counters[t].Add(delta)
}

func (s *Stats) Value(t Type) int32 {
	return s.counters[t].Load()
}

func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.start)
}

func (s *Stats) Print(w io.Writer) {
	components := []string{
		"considered %d stages",
		"skipped %d stages",
		"executed %d formatters (%d failed)",
		"formatted %d documents in %v",
		"",
	}

	fmt.Fprintf(
		w,
		strings.Join(components, "\n"),
		s.Value(Considered),
		s.Value(Skipped),
		s.Value(Executed),
		s.Value(Failed),
		s.Value(Formatted),
		s.Elapsed().Round(time.Millisecond),
	)
}
