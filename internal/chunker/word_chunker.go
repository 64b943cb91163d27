package chunker

import (
	"iter"
	"strings"
)

// DefaultChunkSize is the word count per chunk used when none is configured.
const DefaultChunkSize = 300

// WordChunker splits text into fixed-size word-count windows with no
// overlap. Words are whitespace-delimited and rejoined with single spaces,
// so original spacing is not preserved.
type WordChunker struct {
	size int
}

func NewWordChunker(size int) WordChunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return WordChunker{size: size}
}

// Size returns the configured words-per-chunk bound.
func (c WordChunker) Size() int { return c.size }

// Split yields the chunks of text in order. The sequence is lazy and can be
// iterated more than once. Empty input yields nothing; the last chunk may be
// shorter than the configured size.
func (c WordChunker) Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		words := strings.Fields(text)
		for i := 0; i < len(words); i += c.size {
			end := i + c.size
			if end > len(words) {
				end = len(words)
			}
			if !yield(strings.Join(words[i:end], " ")) {
				return
			}
		}
	}
}
