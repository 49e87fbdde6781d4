package format_test

// Notes:
// - Duration takes float seconds because every timestamp in a draft is a float
// - Very large values: we test realistic large values (24h, 10GB) not extremes

import (
	"math"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/alnah/go-dictation/internal/format"
)

// ---------------------------------------------------------------------------
// TestDuration - Formats seconds as HH:MM:SS or MM:SS
// ---------------------------------------------------------------------------

func TestDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float64
		want  string
	}{
		{name: "zero", input: 0, want: "00:00"},
		{name: "fraction truncated", input: 1.9, want: "00:01"},
		{name: "boundary: 59 seconds", input: 59, want: "00:59"},
		{name: "boundary: exactly 1 minute", input: 60, want: "01:00"},
		{name: "typical recording", input: 100.4, want: "01:40"},
		{name: "boundary: 59 minutes 59 seconds", input: 3599, want: "59:59"},
		{name: "boundary: exactly 1 hour", input: 3600, want: "01:00:00"},
		{name: "full: 2 hours 15 minutes 45 seconds", input: 8145, want: "02:15:45"},
		{name: "large realistic: 24 hours", input: 86400, want: "24:00:00"},
		{name: "negative clamps to zero", input: -5, want: "00:00"},
		{name: "NaN clamps to zero", input: math.NaN(), want: "00:00"},
		{name: "infinity clamps to zero", input: math.Inf(1), want: "00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, format.Duration(tt.input))
		})
	}
}

// ---------------------------------------------------------------------------
// TestSize - Formats byte size for human display (MB, KB, bytes)
// ---------------------------------------------------------------------------

const (
	kb = 1024
	mb = 1024 * kb
	gb = 1024 * mb
)

func TestSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input int64
		want  string
	}{
		{name: "zero", input: 0, want: "0 bytes"},
		{name: "one byte", input: 1, want: "1 byte"},
		{name: "boundary: 1023 bytes", input: kb - 1, want: "1023 bytes"},
		{name: "boundary: exactly 1 KB", input: kb, want: "1 KB"},
		{name: "boundary: 1023 KB", input: mb - 1, want: "1023 KB"},
		{name: "boundary: exactly 1 MB", input: mb, want: "1 MB"},
		{name: "upload limit", input: 25 * mb, want: "25 MB"},
		{name: "large realistic: 10 GB", input: 10 * gb, want: "10240 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, format.Size(tt.input))
		})
	}
}

// ---------------------------------------------------------------------------
// TestTruncate - Shortens preview text on rune boundaries
// ---------------------------------------------------------------------------

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "short text unchanged", input: "Hello.", max: 10, want: "Hello."},
		{name: "exact length unchanged", input: "Hello", max: 5, want: "Hello"},
		{name: "long text marked", input: "The first snowfall", max: 10, want: "The fir..."},
		{name: "multibyte runes kept whole", input: "Première neige tombée", max: 8, want: "Premi..."},
		{name: "tiny limit cuts without marker", input: "abcdef", max: 2, want: "ab"},
		{name: "zero limit disables", input: "abcdef", max: 0, want: "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, format.Truncate(tt.input, tt.max))
		})
	}
}

// FuzzTruncate verifies Truncate never exceeds its limit or splits a rune.
func FuzzTruncate(f *testing.F) {
	f.Add("Hello there.", 5)
	f.Add("日本語のテキスト", 4)
	f.Add("", 3)

	f.Fuzz(func(t *testing.T, s string, n int) {
		if !utf8.ValidString(s) || n > 1000 {
			t.Skip()
		}
		got := format.Truncate(s, n)
		if n > 0 && utf8.RuneCountInString(got) > n {
			t.Errorf("Truncate(%q, %d) = %q exceeds limit", s, n, got)
		}
		if !utf8.ValidString(got) {
			t.Errorf("Truncate(%q, %d) produced invalid UTF-8", s, n)
		}
	})
}
