package ir

// Span is a half-open byte range into a File's source text, per spec.md §4.B.
type Span struct {
	Start, End int
}

// NewOverarchingSpan returns the smallest span covering both a and b.
func NewOverarchingSpan(a, b Span) Span {
	s := a
	if b.Start < s.Start {
		s.Start = b.Start
	}
	if b.End > s.End {
		s.End = b.End
	}
	return s
}

// EmptySpanAtEnd returns a zero-width span positioned at s's end, used to anchor a
// diagnostic or an overarching span computation at a point rather than a range.
func (s Span) EmptySpanAtEnd() Span { return Span{Start: s.End, End: s.End} }

// EmptySpanAtFront returns a zero-width span positioned at s's start.
func (s Span) EmptySpanAtFront() Span { return Span{Start: s.Start, End: s.Start} }

// Text slices src by the span's byte range.
func (s Span) Text(src string) string {
	if s.Start < 0 || s.End > len(src) || s.Start > s.End {
		return ""
	}
	return src[s.Start:s.End]
}

// BracketSpan wraps a span whose first and last byte are a matching pair of brackets, e.g.
// the `[i]` in an array index or the `(...)` of a function call's argument list.
type BracketSpan struct {
	Span
}

// NewBracketSpan wraps an already-validated bracketed span.
func NewBracketSpan(s Span) BracketSpan { return BracketSpan{s} }

// CloseBracket returns the single-byte span of the closing bracket.
func (b BracketSpan) CloseBracket() Span {
	return Span{Start: b.End - 1, End: b.End}
}

// OpenBracket returns the single-byte span of the opening bracket.
func (b BracketSpan) OpenBracket() Span {
	return Span{Start: b.Start, End: b.Start + 1}
}
