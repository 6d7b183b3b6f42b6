package msl

import "fmt"

// DiagnosticKind discriminates the four error kinds named in spec.md §7.
// KindSoftRetry never escapes this package: it is handled entirely inside
// the driver loop as the forceRecompile flag.
type DiagnosticKind uint8

const (
	KindInvalidInput DiagnosticKind = iota
	KindUnsupportedConstruct
	KindCompilerBug
)

func (k DiagnosticKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindUnsupportedConstruct:
		return "unsupported construct"
	case KindCompilerBug:
		return "compiler bug"
	default:
		return "unknown"
	}
}

// Diagnostic is a fatal compilation failure carrying a single descriptive
// sentence, per spec.md §6 "Diagnostics" and §7. No partial MSL is ever
// returned alongside a Diagnostic.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("msl: %s: %s", d.Kind, d.Message)
}

func invalidInput(format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func unsupported(format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: KindUnsupportedConstruct, Message: fmt.Sprintf(format, args...)}
}

func compilerBug(format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: KindCompilerBug, Message: fmt.Sprintf(format, args...)}
}
