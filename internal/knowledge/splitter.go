package knowledge

import (
	"strings"
	"unicode/utf8"
)

// Splitter breaks text into overlapping chunks, trying coarse separators
// (paragraphs) before fine ones (lines, words, characters). Sizes count
// runes.
type Splitter struct {
	ChunkSize  int
	Overlap    int
	Separators []string
}

// DefaultSplitter returns the lesson material splitter: 1000-rune chunks
// with 150 runes of overlap.
func DefaultSplitter() Splitter {
	return Splitter{
		ChunkSize:  1000,
		Overlap:    150,
		Separators: []string{"\n\n", "\n", " ", ""},
	}
}

// Split returns the chunks of text in order. Chunks are trimmed and never
// empty.
func (s Splitter) Split(text string) []string {
	seps := s.Separators
	if len(seps) == 0 {
		seps = []string{""}
	}
	return s.split(text, seps)
}

func (s Splitter) split(text string, seps []string) []string {
	sep := seps[len(seps)-1]
	var rest []string
	for i, candidate := range seps {
		if candidate == "" {
			sep = ""
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = seps[i+1:]
			break
		}
	}

	var pieces []string
	if sep == "" {
		pieces = strings.Split(text, "")
	} else {
		pieces = strings.Split(text, sep)
	}

	var (
		out  []string
		good []string
	)
	for _, p := range pieces {
		if p == "" {
			continue
		}
		if runeLen(p) < s.ChunkSize {
			good = append(good, p)
			continue
		}
		if len(good) > 0 {
			out = append(out, s.merge(good, sep)...)
			good = nil
		}
		if len(rest) == 0 {
			out = append(out, p)
		} else {
			out = append(out, s.split(p, rest)...)
		}
	}
	if len(good) > 0 {
		out = append(out, s.merge(good, sep)...)
	}
	return out
}

// merge packs pieces into chunks of at most ChunkSize runes, carrying up
// to Overlap runes of trailing pieces into the next chunk.
func (s Splitter) merge(pieces []string, sep string) []string {
	sepLen := runeLen(sep)
	var (
		out     []string
		current []string
		total   int
	)
	joinedLen := func(n int) int {
		if len(current) > 0 {
			return total + n + sepLen
		}
		return total + n
	}

	for _, p := range pieces {
		n := runeLen(p)
		if joinedLen(n) > s.ChunkSize && len(current) > 0 {
			if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
				out = append(out, chunk)
			}
			for total > s.Overlap || (joinedLen(n) > s.ChunkSize && total > 0) {
				drop := runeLen(current[0])
				if len(current) > 1 {
					drop += sepLen
				}
				total -= drop
				current = current[1:]
			}
		}
		current = append(current, p)
		total += n
		if len(current) > 1 {
			total += sepLen
		}
	}
	if chunk := strings.TrimSpace(strings.Join(current, sep)); chunk != "" {
		out = append(out, chunk)
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
