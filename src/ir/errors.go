package ir

// Severity distinguishes a fatal diagnostic from an advisory one. Neither aborts compilation
// (spec.md §7): every error is recorded on the owning file's bucket and the pass continues.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String renders a Severity the way diagnostics are printed to the user.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// InfoAttachment is a secondary span+message chained onto a Diagnostic via Builder.Info /
// Builder.InfoObj, e.g. pointing at a conflicting declaration's original span.
type InfoAttachment struct {
	Span    Span
	Message string
}

// Diagnostic is the structured error output described in spec.md §6: severity, primary span,
// message, and info attachments. It carries no file reference: each File owns its own
// ErrorCollector, so a diagnostic's file is the one whose collector holds it.
type Diagnostic struct {
	Severity      Severity
	Primary       Span
	Message       string
	Info          []InfoAttachment
	SuggestRemove []Span
}

// Describable is implemented by IR objects (Module, Port, Interface) that know how to
// describe their own declaration site for a diagnostic's info attachment, mirroring
// info_obj(&md) in the grounding implementation.
type Describable interface {
	DescribeForError() (Span, string)
}

// ErrorCollector accumulates diagnostics for one File. It never discards or aborts: every
// call to Error/Warn records a Diagnostic and returns a Builder for chaining further context.
type ErrorCollector struct {
	diagnostics []Diagnostic
}

// NewErrorCollector returns an empty collector.
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{}
}

// Builder chains Info/InfoObj/SuggestRemove calls onto the Diagnostic just recorded.
type Builder struct {
	ec  *ErrorCollector
	idx int
}

// Error records a new error diagnostic and returns a Builder for attaching info.
func (ec *ErrorCollector) Error(span Span, message string) *Builder {
	return ec.record(SeverityError, span, message)
}

// Warn records a new warning diagnostic and returns a Builder for attaching info.
func (ec *ErrorCollector) Warn(span Span, message string) *Builder {
	return ec.record(SeverityWarning, span, message)
}

func (ec *ErrorCollector) record(sev Severity, span Span, message string) *Builder {
	ec.diagnostics = append(ec.diagnostics, Diagnostic{Severity: sev, Primary: span, Message: message})
	return &Builder{ec: ec, idx: len(ec.diagnostics) - 1}
}

// Info attaches a secondary span+message to the diagnostic under construction.
func (b *Builder) Info(span Span, message string) *Builder {
	d := &b.ec.diagnostics[b.idx]
	d.Info = append(d.Info, InfoAttachment{Span: span, Message: message})
	return b
}

// InfoObj attaches a Describable's declaration span with its own description as the message.
func (b *Builder) InfoObj(obj Describable) *Builder {
	span, msg := obj.DescribeForError()
	return b.Info(span, msg)
}

// SuggestRemove records span as a region the user could remove to fix the diagnostic (e.g.
// an unnecessary interface qualifier before a port access).
func (b *Builder) SuggestRemove(span Span) *Builder {
	d := &b.ec.diagnostics[b.idx]
	d.SuggestRemove = append(d.SuggestRemove, span)
	return b
}

// Len returns the number of diagnostics recorded so far.
func (ec *ErrorCollector) Len() int { return len(ec.diagnostics) }

// All returns every recorded diagnostic, in recorded order.
func (ec *ErrorCollector) All() []Diagnostic { return ec.diagnostics }

// HasErrors reports whether any diagnostic at SeverityError was recorded.
func (ec *ErrorCollector) HasErrors() bool {
	for _, d := range ec.diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
