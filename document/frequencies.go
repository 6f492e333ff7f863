package document

import (
	"maps"
	"sort"
)

// Frequencies maps a case-sensitive token to its occurrence count. A value
// that has been published to another actor must be treated as read-only;
// use Clone to take a private copy.
type Frequencies map[string]int

// Add counts each token once. Tokens not seen before start at one.
func (f Frequencies) Add(tokens ...string) {
	for _, token := range tokens {
		f[token]++
	}
}

func (f Frequencies) Clone() Frequencies {
	if f == nil {
		return Frequencies{}
	}
	return maps.Clone(f)
}

// Total is the sum of all counts.
func (f Frequencies) Total() int {
	total := 0
	for _, count := range f {
		total += count
	}
	return total
}

// Merge sums counts across maps into a new map. The operation is
// commutative and associative; nil inputs contribute nothing.
func Merge(maps ...Frequencies) Frequencies {
	merged := make(Frequencies)
	for _, m := range maps {
		for word, count := range m {
			merged[word] += count
		}
	}
	return merged
}

type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Top returns the n most frequent words, highest count first, ties broken
// by word. n <= 0 returns every word.
func (f Frequencies) Top(n int) []WordCount {
	words := make([]WordCount, 0, len(f))
	for word, count := range f {
		words = append(words, WordCount{Word: word, Count: count})
	}

	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})

	if n > 0 && n < len(words) {
		words = words[:n]
	}
	return words
}
