// Package output carries the stdout sink through a command's context.
//
// Everything a script might consume goes here: the rendered segment,
// config values and JSON documents. Diagnostics belong to package log,
// which writes to stderr.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type printerKey struct{}

// Printer is the primary output sink of a command.
type Printer struct {
	dst io.Writer
}

func New(dst io.Writer) *Printer {
	return &Printer{dst: dst}
}

// WithPrinter returns ctx carrying a Printer for dst.
func WithPrinter(ctx context.Context, dst io.Writer) context.Context {
	return context.WithValue(ctx, printerKey{}, New(dst))
}

// FromContext falls back to stdout so library code never needs a nil check.
func FromContext(ctx context.Context) *Printer {
	p, ok := ctx.Value(printerKey{}).(*Printer)
	if !ok {
		return New(os.Stdout)
	}
	return p
}

func (p *Printer) Print(a ...any) { fmt.Fprint(p.dst, a...) }

func (p *Printer) Printf(format string, a ...any) { fmt.Fprintf(p.dst, format, a...) }

func (p *Printer) Println(a ...any) { fmt.Fprintln(p.dst, a...) }

// Writer exposes the sink for renderers and completion generators.
func (p *Printer) Writer() io.Writer { return p.dst }

// JSON encodes v with two-space indentation and a trailing newline.
func (p *Printer) JSON(v any) error {
	enc := json.NewEncoder(p.dst)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
