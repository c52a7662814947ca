package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// As delegates to the standard library so callers do not need a second
// errors import.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Is delegates to the standard library.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // raw image decoding
	PhaseResolve  Phase = "resolve"  // raw to owned resolution
	PhaseBuild    Phase = "build"    // mutation staging
	PhasePlan     Phase = "plan"     // write layout planning
	PhaseWrite    Phase = "write"    // write execution and output
	PhaseValidate Phase = "validate" // raw/owned validation
)

// Kind categorizes the error
type Kind string

const (
	KindMalformed   Kind = "malformed"    // structurally invalid input bytes
	KindOutOfBounds Kind = "out_of_bounds"
	KindInvalidUTF8 Kind = "invalid_utf8"
	KindUnresolved  Kind = "unresolved_ref" // required cross-table reference missing
	KindLayout      Kind = "layout"         // write-layout planning inconsistency
	KindWriteFailed Kind = "write_failed"   // filesystem or output failure
	KindValidation  Kind = "validation"
	KindOverflow    Kind = "overflow" // value exceeds its on-disk encoding
	KindInternal    Kind = "internal" // framework contract violation, an implementation bug
)

// Error is the structured error type used throughout the library.
// Token is the offending metadata token where one is known; zero means
// no token context.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Token  uint32
	Offset int64
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Token != 0 {
		fmt.Fprintf(&b, " (token 0x%08X)", e.Token)
	}
	if e.Offset != 0 {
		fmt.Fprintf(&b, " (offset 0x%X)", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsInternal reports whether err is a framework contract violation rather
// than a user-facing error.
func IsInternal(err error) bool {
	var e *Error
	return As(err, &e) && e.Kind == KindInternal
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Token sets the offending metadata token
func (b *Builder) Token(tok uint32) *Builder {
	b.err.Token = tok
	return b
}

// Offset sets the byte offset where the error was detected
func (b *Builder) Offset(off int64) *Builder {
	b.err.Offset = off
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Malformed creates a malformed-input error
func Malformed(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformed,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// Unresolved creates an unresolved-reference error for the given source token
func Unresolved(token uint32, detail string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnresolved,
		Token:  token,
		Detail: detail,
	}
}

// Layout creates a write-layout planning error
func Layout(detail string, args ...any) *Error {
	return &Error{
		Phase:  PhasePlan,
		Kind:   KindLayout,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// WriteFailed creates a write/output error
func WriteFailed(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseWrite,
		Kind:   KindWriteFailed,
		Detail: detail,
		Cause:  cause,
	}
}

// Overflow creates an overflow error for a value exceeding its encoding
func Overflow(phase Phase, path []string, value uint64, width int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %d does not fit in %d bytes", value, width),
	}
}

// Internal creates an internal contract-violation error. These indicate
// implementation bugs, not bad input.
func Internal(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternal,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ValidationError collects the violations reported by a validation run.
// Violations are accumulated, not short-circuited, so callers see the full
// defect set.
type ValidationError struct {
	Violations []Violation
}

// Violation is a single validator finding.
type Violation struct {
	Validator string
	Token     uint32
	Fatal     bool
	Detail    string
}

func (v Violation) String() string {
	if v.Token != 0 {
		return fmt.Sprintf("%s: token 0x%08X: %s", v.Validator, v.Token, v.Detail)
	}
	return fmt.Sprintf("%s: %s", v.Validator, v.Detail)
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "[validate] validation: no violations recorded"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation violation(s):\n", len(e.Violations))
	for _, v := range e.Violations {
		b.WriteString("  - ")
		b.WriteString(v.String())
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// HasFatal reports whether any collected violation is fatal.
func (e *ValidationError) HasFatal() bool {
	for _, v := range e.Violations {
		if v.Fatal {
			return true
		}
	}
	return false
}
