package service

import (
	"strings"
	"unicode"
)

// isHarakat は正規化時に除去するアラビア語の記号かどうかを判定します。
// 対象はタシュキール (U+064B..U+065F)、上付きアリフ (U+0670)、タトウィール (U+0640)。
func isHarakat(r rune) bool {
	if r >= 0x064B && r <= 0x065F {
		return true
	}
	if r == 0x0670 || r == 0x0640 {
		return true
	}
	// その他の結合記号も読誦記号として扱う
	return unicode.In(r, unicode.Mn)
}

// NormalizeVerseText はアヤト本文を比較用に正規化します。
// ハラカット・タトウィールを除去し、連続する空白を1つに畳みます。
func NormalizeVerseText(text string) string {
	stripped := strings.Map(func(r rune) rune {
		if isHarakat(r) {
			return -1
		}
		return r
	}, text)
	return strings.Join(strings.Fields(stripped), " ")
}

// levenshteinDistance はルーン単位の編集距離を2行のDPで計算します。
func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// SimilarityScore は正規化済みの2つのテキストの類似度を [0, 1] で返します。
// 両方が空文字列の場合は 1 を返します。
func SimilarityScore(attempt, reference string) float64 {
	normAttempt := []rune(NormalizeVerseText(attempt))
	normReference := []rune(NormalizeVerseText(reference))

	maxLen := len(normAttempt)
	if len(normReference) > maxLen {
		maxLen = len(normReference)
	}
	if maxLen == 0 {
		return 1.0
	}

	distance := levenshteinDistance(normAttempt, normReference)
	score := 1.0 - float64(distance)/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}
