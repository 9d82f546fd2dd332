package output

import (
	"bytes"
	"context"
	"os"
	"testing"
)

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if p := FromContext(WithPrinter(context.Background(), &buf)); p.Writer() != &buf {
		t.Error("FromContext() should return the printer attached by WithPrinter")
	}
	if p := FromContext(context.Background()); p.Writer() != os.Stdout {
		t.Error("FromContext() should default to os.Stdout")
	}
}

func TestPrinter_Text(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		write func(p *Printer)
		want  string
	}{
		{"Print", func(p *Printer) { p.Print("main", " ", "✓") }, "main ✓"},
		{"Printf", func(p *Printer) { p.Printf("%s: %d\n", "git.timeout_ms", 1000) }, "git.timeout_ms: 1000\n"},
		{"Println", func(p *Printer) { p.Println("no-git") }, "no-git\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			tt.write(New(&buf))
			if got := buf.String(); got != tt.want {
				t.Errorf("%s wrote %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestPrinter_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := New(&buf)

	v := struct {
		Branch string `json:"branch"`
		Count  int    `json:"count"`
	}{"main", 2}

	if err := p.JSON(v); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	want := "{\n  \"branch\": \"main\",\n  \"count\": 2\n}\n"
	if got := buf.String(); got != want {
		t.Errorf("JSON() wrote %q, want %q", got, want)
	}
}

func TestPrinter_JSON_Error(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := New(&buf).JSON(make(chan int)); err == nil {
		t.Error("JSON() should fail for unsupported types")
	}
}
