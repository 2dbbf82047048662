package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSpanTraceDefuseIsSilent(t *testing.T) {
	tracer := StartSpanTrace("normal completion", func() string { return "source text" })
	TouchSpan(0, 3)
	tracer.Defuse()

	assert.NotPanics(t, func() {
		tracer.RecoverAndReport()
	}, "RecoverAndReport after Defuse must not recover/re-panic")
}

func TestStartSpanTraceRejectsDoubleArm(t *testing.T) {
	tracer := StartSpanTrace("outer", func() string { return "" })
	defer tracer.Defuse()

	assert.Panics(t, func() {
		StartSpanTrace("inner", func() string { return "" })
	}, "a second SpanTrace must not be armed while one is already in use")
}

func TestSpanTraceReportsOnUnwind(t *testing.T) {
	text := "module passthrough: input int a -> output int b { b = a }"

	panicked := false
	func() {
		tracer := StartSpanTrace("flatten_all_modules", func() string { return text })
		defer func() {
			if r := recover(); r != nil {
				panicked = true
			}
		}()
		defer tracer.RecoverAndReport()

		TouchSpan(0, 6)
		TouchSpan(7, 17)
		panic("simulated internal invariant violation")
	}()

	require.True(t, panicked, "RecoverAndReport must re-panic so the caller's own recovery still observes it")
}

func TestRepeatedIdenticalTouchSpansDoNotPanic(t *testing.T) {
	tracer := StartSpanTrace("dedup", func() string { return "aaaaaaaaaa" })
	TouchSpan(0, 1)
	TouchSpan(0, 1)
	TouchSpan(0, 1)
	tracer.Defuse()

	// No direct accessor for the deduplicated count exists (printMostRecentSpans only prints),
	// so this just exercises that repeated identical touches don't panic the bookkeeping.
	assert.NotPanics(t, func() {
		tracer.Defuse()
	})
}
