// Package logging tags progress lines with a component prefix such as [CAE].
//
// Every Logger built over the same *log.Logger writes through that one logger,
// so lines from concurrent trials are serialized by its lock and never
// interleave on the underlying writer.
package logging

import (
	"fmt"
	"log"
)

// Logger prefixes messages before handing them to a shared *log.Logger.
// The zero value and a Logger over nil discard everything.
type Logger struct {
	out    *log.Logger
	prefix string
}

// New returns a Logger that writes prefix+message lines to out.
func New(out *log.Logger, prefix string) Logger {
	return Logger{out: out, prefix: prefix}
}

// With returns a Logger over the same output with a different prefix.
func (l Logger) With(prefix string) Logger {
	return Logger{out: l.out, prefix: prefix}
}

// Print logs its operands in the manner of fmt.Sprint.
func (l Logger) Print(v ...any) {
	if l.out == nil {
		return
	}
	_ = l.out.Output(2, l.prefix+fmt.Sprint(v...))
}

// Printf logs in the manner of fmt.Sprintf.
func (l Logger) Printf(format string, v ...any) {
	if l.out == nil {
		return
	}
	_ = l.out.Output(2, l.prefix+fmt.Sprintf(format, v...))
}
