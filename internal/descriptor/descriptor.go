// Package descriptor builds semantic descriptors: per-word sparse vectors of
// sentence co-occurrence counts.
package descriptor

import (
	"sort"

	"synonyms/internal/tokenizer"
)

// Vector maps a co-occurring word to a positive count. Absent words count zero.
type Vector map[string]int

// Map holds the descriptor of every distinct word seen in a corpus. It is
// immutable once built and safe for concurrent readers.
type Map struct {
	vectors map[string]Vector
}

// Lookup returns the descriptor for word and whether the word was seen.
func (m *Map) Lookup(word string) (Vector, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.vectors[word]
	return v, ok
}

// Count returns how many times other was counted in word's descriptor.
func (m *Map) Count(word, other string) int {
	v, ok := m.Lookup(word)
	if !ok {
		return 0
	}
	return v[other]
}

// Len returns the vocabulary size.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.vectors)
}

// Words returns the vocabulary sorted.
func (m *Map) Words() []string {
	if m == nil {
		return nil
	}
	words := make([]string, 0, len(m.vectors))
	for word := range m.vectors {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// Builder accumulates co-occurrence counts sentence by sentence.
type Builder struct {
	vectors   map[string]Vector
	sentences int
}

func NewBuilder() *Builder {
	return &Builder{vectors: make(map[string]Vector)}
}

// Add counts one sentence. Each distinct word is visited once, and for it
// every other token is counted at every position it occurs. With "a a b"
// that gives a->b = 1 but b->a = 2; the asymmetry is intended.
func (b *Builder) Add(sentence tokenizer.Sentence) {
	seen := make(map[string]struct{}, len(sentence))
	for _, word := range sentence {
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		vec, ok := b.vectors[word]
		if !ok {
			vec = make(Vector)
			b.vectors[word] = vec
		}
		for _, other := range sentence {
			if other != word {
				vec[other]++
			}
		}
	}
	b.sentences++
}

// AddText counts every sentence of a tokenized text.
func (b *Builder) AddText(sentences []tokenizer.Sentence) {
	for _, sentence := range sentences {
		b.Add(sentence)
	}
}

// Merge sums other's counts into b. Other must not be used afterwards.
func (b *Builder) Merge(other *Builder) {
	if other == nil {
		return
	}
	for word, src := range other.vectors {
		dst, ok := b.vectors[word]
		if !ok {
			b.vectors[word] = src
			continue
		}
		for w, n := range src {
			dst[w] += n
		}
	}
	b.sentences += other.sentences
	other.vectors = nil
}

// Sentences returns how many sentences have been added.
func (b *Builder) Sentences() int {
	return b.sentences
}

// Map freezes the builder. The builder must not be used afterwards.
func (b *Builder) Map() *Map {
	m := &Map{vectors: b.vectors}
	b.vectors = nil
	return m
}

// Build folds all sentences of all texts into one descriptor map. File
// boundaries do not affect co-occurrence.
func Build(texts [][]tokenizer.Sentence) *Map {
	b := NewBuilder()
	for _, text := range texts {
		b.AddText(text)
	}
	return b.Map()
}
