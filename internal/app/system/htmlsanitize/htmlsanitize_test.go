package htmlsanitize_test

import (
	"testing"

	"github.com/dalemusser/classhub/internal/app/system/htmlsanitize"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Meet at room B2", "Meet at room B2"},
		{"trims", "  hello \n", "hello"},
		{"strips tags", "<b>Bring</b> <i>laptops</i>", "Bring laptops"},
		{"drops script", "Hi<script>alert('x')</script>", "Hi"},
		{"keeps ampersand", "Q&A at 10", "Q&A at 10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := htmlsanitize.PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	if !htmlsanitize.IsBlank("<p> </p>") {
		t.Error("markup-only input should be blank")
	}
	if htmlsanitize.IsBlank("ok") {
		t.Error("text should not be blank")
	}
}
