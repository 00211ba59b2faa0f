package export

import (
	"errors"
	"fmt"
	"testing"

	"github.com/iksnae/agent-chat/internal"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		want    Exporter
		wantExt string
	}{
		{format: "jsonl", want: &JSONLExporter{}, wantExt: "jsonl"},
		{format: "md", want: &MarkdownExporter{}, wantExt: "md"},
		{format: "markdown", want: &MarkdownExporter{}, wantExt: "md"},
		{format: "yaml", want: &YAMLExporter{}, wantExt: "yaml"},
		{format: "yml", want: &YAMLExporter{}, wantExt: "yaml"},
		{format: "json", want: &JSONExporter{}, wantExt: "json"},
		{format: "html", want: &HTMLExporter{}, wantExt: "html"},
		{format: "xml"},
		{format: ""},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if tt.want == nil {
				var verr *internal.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("NewExporter(%q) error = %v, want *internal.ValidationError", tt.format, err)
				}
				if exporter != nil {
					t.Errorf("NewExporter(%q) returned %T, want nil", tt.format, exporter)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewExporter(%q) error = %v", tt.format, err)
			}
			if got, want := fmt.Sprintf("%T", exporter), fmt.Sprintf("%T", tt.want); got != want {
				t.Errorf("NewExporter(%q) = %s, want %s", tt.format, got, want)
			}
			if got := exporter.Extension(); got != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", got, tt.wantExt)
			}
		})
	}
}

func TestFormatsAreSupported(t *testing.T) {
	for _, format := range Formats {
		if _, err := NewExporter(format); err != nil {
			t.Errorf("NewExporter(%q) error = %v", format, err)
		}
	}
}
