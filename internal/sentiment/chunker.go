package sentiment

import (
	"iter"
	"strings"
	"unicode/utf8"
)

const DefaultChunkSize = 500

// Chunks yields word-bounded pieces of text no longer than maxLen characters.
// The sequence is lazy and can be ranged over any number of times. A single
// word longer than maxLen is cut down to maxLen.
func Chunks(text string, maxLen int) iter.Seq[string] {
	if maxLen <= 0 {
		maxLen = DefaultChunkSize
	}

	return func(yield func(string) bool) {
		var b strings.Builder
		size := 0

		for _, word := range strings.Fields(text) {
			n := utf8.RuneCountInString(word)
			if n > maxLen {
				word = string([]rune(word)[:maxLen])
				n = maxLen
			}

			if size > 0 && size+1+n > maxLen {
				if !yield(b.String()) {
					return
				}
				b.Reset()
				size = 0
			}

			if size > 0 {
				b.WriteByte(' ')
				size++
			}
			b.WriteString(word)
			size += n
		}

		if size > 0 {
			yield(b.String())
		}
	}
}
