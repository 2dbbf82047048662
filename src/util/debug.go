// debug.go provides the panic-unwind span tracer described in spec.md §6 and grounded on
// _examples/original_source/src/debug.rs's SpanDebugger: a thread-local circular buffer of
// recently touched byte spans, dumped with a context string when a guarded region unwinds
// without being defused. This is a debugging convenience; tests must not depend on its output,
// and a release build may disable it entirely by never calling StartSpanTrace.

package util

import "fmt"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// spanRange is the half-open byte range recorded for a single touched span.
type spanRange struct {
	start, end int
}

// touchedSpansHistory is the circular buffer backing one goroutine's span trace.
type touchedSpansHistory struct {
	history  [spanHistorySize]spanRange
	numSpans int
	inUse    bool
}

// SpanTrace guards one named operation (e.g. "flatten_all_modules", or
// "instantiating <module>") against panics. Create with StartSpanTrace, call Defuse when the
// operation completes normally; if dropped (via the deferred recover wrapper) while still
// armed, it prints the most recently touched spans to aid post-mortem debugging.
type SpanTrace struct {
	context string
	getText func() string
	defused bool
}

// ---------------------
// ----- Constants -----
// ---------------------

const spanHistorySize = 256 // Capacity of the circular span-touch buffer.
const numSpansToPrint = 10  // Max distinct spans printed on unwind, most recent first.

// -------------------
// ----- globals -----
// -------------------

// spansHistory is goroutine-local in spirit; this module runs each pass to completion on a
// single goroutine (spec.md §5), so a package-level variable stands in for Rust's thread_local.
var spansHistory touchedSpansHistory

// ---------------------
// ----- functions -----
// ---------------------

// TouchSpan registers a byte range for potential printing by a panicking SpanTrace.
func TouchSpan(start, end int) {
	idx := spansHistory.numSpans % spanHistorySize
	spansHistory.history[idx] = spanRange{start, end}
	spansHistory.numSpans++
}

// StartSpanTrace arms the span tracer for a named operation. getText lazily returns the source
// text the spans are byte offsets into (fetched only if a panic actually unwinds through it).
// Panics if a SpanTrace is already armed: only one may be active at a time.
func StartSpanTrace(context string, getText func() string) *SpanTrace {
	if spansHistory.inUse {
		panic("SpanTrace already in use: a SpanTrace must be defused before starting another")
	}
	spansHistory.inUse = true
	spansHistory.numSpans = 0
	return &SpanTrace{context: context, getText: getText}
}

// Defuse marks the guarded operation as having completed without panicking. Recover/print
// logic is skipped once defused.
func (s *SpanTrace) Defuse() {
	spansHistory.inUse = false
	s.defused = true
}

// RecoverAndReport is intended to be called via `defer st.RecoverAndReport()` immediately
// after StartSpanTrace. If the guarded region panics before Defuse is called, it prints the
// trace context and the most recently touched spans, then re-panics so the caller's own
// recovery (if any) still observes the original panic.
func (s *SpanTrace) RecoverAndReport() {
	if s.defused {
		return
	}
	if r := recover(); r != nil {
		spansHistory.inUse = false
		fmt.Printf("Panic unwinding in span-guarded context: %s\n", s.context)
		s.printMostRecentSpans()
		panic(r)
	}
}

// printMostRecentSpans prints up to numSpansToPrint distinct, most-recently touched spans.
func (s *SpanTrace) printMostRecentSpans() {
	seen := make([]spanRange, 0, numSpansToPrint)
	endAt := 0
	if spansHistory.numSpans > spanHistorySize {
		endAt = spansHistory.numSpans - spanHistorySize
	}
	cur := spansHistory.numSpans
	for cur > endAt && len(seen) < numSpansToPrint {
		cur--
		sp := spansHistory.history[cur%spanHistorySize]
		dup := false
		for _, e := range seen {
			if e == sp {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, sp)
		}
	}

	fmt.Printf("Printing the last %d touched spans. BEWARE: these spans may not belong to this file.\n", len(seen))
	text := s.getText()
	for _, sp := range seen {
		a, b := sp.start, sp.end
		if a < 0 || b > len(text) || a > b {
			fmt.Printf("  <out of range span %d:%d>\n", sp.start, sp.end)
			continue
		}
		fmt.Printf("  %d:%d %q\n", sp.start, sp.end, text[a:b])
	}
}
