package dashboard

import (
	"testing"
	"unicode/utf8"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short headline", 40, "short headline"},
		{"a very long headline about markets", 12, "a very lo..."},
		{"exact", 5, "exact"},
		{"tiny", 2, "ti"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestTruncateMultibyte(t *testing.T) {
	in := "日経平均株価が過去最高値を更新、半導体株が主導"
	got := truncate(in, 10)
	if !utf8.ValidString(got) {
		t.Fatalf("truncate(%q, 10) = %q, not valid UTF-8", in, got)
	}
	if runes := []rune(got); len(runes) != 10 {
		t.Errorf("truncate(%q, 10) has %d runes, want 10", in, len(runes))
	}
}
