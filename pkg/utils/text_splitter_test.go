package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInputReturnsSingleChunk(t *testing.T) {
	chunks := SplitText("hello world", 100, 20)

	assert.Equal(t, []string{"hello world"}, chunks)
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 100)

	chunks := SplitText(text, 200, 40)

	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 200)
	}
}

func TestSplitTextPrefersWordBoundaries(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta ", 50)

	chunks := SplitText(text, 100, 10)

	for i, c := range chunks[:len(chunks)-1] {
		assert.False(t, strings.HasSuffix(c, "alp"), "chunk %d cut mid-word: %q", i, c)
		assert.NotEmpty(t, c)
	}
}

func TestSplitTextOverlapLargerThanChunkFallsBack(t *testing.T) {
	text := strings.Repeat("x", 500)

	chunks := SplitText(text, 100, 100)

	assert.Equal(t, 5, len(chunks))
}

func TestSplitTextKeepsRunesWhenBoundaryBacktrackExceedsOverlap(t *testing.T) {
	// 59 distinct runes, a space at index 59, then one 80-rune word with no
	// break points. Cutting the first chunk at the space backtracks 40 runes
	// from the nominal end, far more than the overlap.
	var runes []rune
	for i := 0; i < 59; i++ {
		runes = append(runes, rune('Α'+i))
	}
	runes = append(runes, ' ')
	for i := 0; i < 80; i++ {
		runes = append(runes, rune('一'+i))
	}
	text := string(runes)

	chunks := SplitText(text, 100, 10)

	joined := strings.Join(chunks, "")
	for _, r := range text {
		assert.True(t, strings.ContainsRune(joined, r), "rune %q missing from every chunk", r)
	}
}

func TestSplitTextCoversFullText(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 40)

	chunks := SplitText(text, 150, 30)

	// Last chunk must reach the end of the source text.
	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasSuffix(strings.TrimRight(text, " "), strings.TrimRight(last, " ")))
}
