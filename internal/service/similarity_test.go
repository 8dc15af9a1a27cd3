// internal/service/similarity_test.go
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NormalizeVerseText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips harakat",
			input: "بِسْمِ اللَّهِ",
			want:  "بسم الله",
		},
		{
			name:  "strips tatweel",
			input: "الرحمـــن",
			want:  "الرحمن",
		},
		{
			name:  "collapses whitespace",
			input: "  الحمد   لله\t رب  ",
			want:  "الحمد لله رب",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeVerseText(tt.input))
		})
	}
}

func Test_SimilarityScore(t *testing.T) {
	tests := []struct {
		name      string
		attempt   string
		reference string
		want      float64
	}{
		{
			name:      "identical text scores 1",
			attempt:   "قل هو الله احد",
			reference: "قل هو الله احد",
			want:      1.0,
		},
		{
			name:      "both empty scores 1",
			attempt:   "",
			reference: "",
			want:      1.0,
		},
		{
			name:      "empty attempt scores 0",
			attempt:   "",
			reference: "الحمد لله",
			want:      0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimilarityScore(tt.attempt, tt.reference)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func Test_SimilarityScore_Symmetry(t *testing.T) {
	a := "الحمد لله رب العالمين"
	b := "الحمد لله رب العالمون"
	assert.Equal(t, SimilarityScore(a, b), SimilarityScore(b, a))
}

func Test_SimilarityScore_DiacriticsOnlyDifference(t *testing.T) {
	// ハラカットだけが違う場合は完全一致として扱う
	plain := "بسم الله الرحمن الرحيم"
	voweled := "بِسْمِ اللَّهِ الرَّحْمَٰنِ الرَّحِيمِ"
	assert.InDelta(t, 1.0, SimilarityScore(plain, voweled), 1e-9)
}

func Test_SimilarityScore_PartialMistake(t *testing.T) {
	reference := "الحمد لله رب العالمين"
	attempt := "الحمد لله رب العالمن"
	got := SimilarityScore(attempt, reference)
	assert.Greater(t, got, 0.9)
	assert.Less(t, got, 1.0)
}

func Test_levenshteinDistance(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{name: "equal strings", a: "abc", b: "abc", want: 0},
		{name: "single substitution", a: "abc", b: "abd", want: 1},
		{name: "insertion", a: "abc", b: "abcd", want: 1},
		{name: "empty vs non-empty", a: "", b: "abc", want: 3},
		{name: "arabic runes count as single units", a: "سلام", b: "سلم", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, levenshteinDistance([]rune(tt.a), []rune(tt.b)))
		})
	}
}
