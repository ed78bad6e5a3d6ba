package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Reporter collects and prints diagnostics. It supports a plain text format
// and a line-oriented JSON format for tooling.
type Reporter struct {
	mu     sync.Mutex
	w      io.Writer
	format string
	errors int
	file   string
}

// NewReporter constructs a reporter writing to w. format is "text" or "json";
// anything else falls back to text.
func NewReporter(w io.Writer, format string) *Reporter {
	if format != "json" {
		format = "text"
	}
	return &Reporter{w: w, format: format}
}

// SetFile records the input filename used to prefix positioned diagnostics.
func (r *Reporter) SetFile(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.file = name
}

// Errorf reports an error with no source position.
func (r *Reporter) Errorf(format string, args ...interface{}) {
	r.emit(0, fmt.Sprintf(format, args...))
}

// Errorp reports an error at the given 1-based input line.
func (r *Reporter) Errorp(line int, msg string) {
	r.emit(line, msg)
}

// HasErrors reports whether any error has been emitted.
func (r *Reporter) HasErrors() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors > 0
}

// Count returns the number of errors emitted so far.
func (r *Reporter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors
}

type jsonDiagnostic struct {
	Severity string `json:"severity"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
}

func (r *Reporter) emit(line int, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors++
	if r.w == nil {
		return
	}
	if r.format == "json" {
		enc := json.NewEncoder(r.w)
		_ = enc.Encode(jsonDiagnostic{
			Severity: "error",
			File:     r.file,
			Line:     line,
			Message:  msg,
		})
		return
	}
	switch {
	case line > 0 && r.file != "":
		fmt.Fprintf(r.w, "%s:%d: error: %s\n", r.file, line, msg)
	case line > 0:
		fmt.Fprintf(r.w, "line %d: error: %s\n", line, msg)
	default:
		fmt.Fprintf(r.w, "error: %s\n", msg)
	}
}
