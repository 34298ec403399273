package utils

import "unicode"

// SplitText splits text into chunks of at most chunkSize runes, with
// 'overlap' runes carried over between consecutive chunks so context at
// chunk boundaries is preserved. Chunk boundaries prefer whitespace near
// the cut point to avoid splitting words; the search window is small so
// chunks stay close to chunkSize.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	if overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	start := 0
	for {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}

		cut := wordBoundary(runes, end)
		if cut <= start {
			cut = end
		}
		chunks = append(chunks, string(runes[start:cut]))

		// The next chunk counts its overlap back from the actual cut, not
		// from a fixed stride, so a boundary backtrack larger than the
		// overlap cannot leave runes uncovered.
		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
}

// wordBoundary backtracks from idx looking for whitespace within a small
// window. Falls back to idx when the text has no usable break point, so
// no content is ever dropped.
func wordBoundary(runes []rune, idx int) int {
	const window = 80
	limit := idx - window
	if limit < 0 {
		limit = 0
	}
	for i := idx; i > limit; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return idx
}
