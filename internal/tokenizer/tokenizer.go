package tokenizer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sentence is an ordered, non-empty list of lowercase words.
type Sentence []string

const terminator = "."

var terminators = strings.NewReplacer("!", terminator, "?", terminator)

// punctuation is replaced by a space, never deleted, so "don't" yields "don" and "t".
// The "--" dash is covered by '-'.
func punctuation(r rune) bool {
	switch r {
	case ',', '-', ':', ';', '!', '?', '.', '"', '\'':
		return true
	}
	return false
}

// Tokenize splits text into sentences of normalized words. It never fails:
// fragments without words are dropped.
func Tokenize(text string) []Sentence {
	lower := cases.Lower(language.Und)
	fragments := strings.Split(terminators.Replace(text), terminator)
	sentences := make([]Sentence, 0, len(fragments))
	for _, fragment := range fragments {
		words := Words(fragment)
		if len(words) == 0 {
			continue
		}
		for i, word := range words {
			words[i] = lower.String(word)
		}
		sentences = append(sentences, Sentence(words))
	}
	return sentences
}

// Words splits a single fragment on punctuation and whitespace without
// changing case.
func Words(fragment string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if punctuation(r) {
			return ' '
		}
		return r
	}, fragment)
	return strings.Fields(cleaned)
}

// Count returns the number of words across sentences.
func Count(sentences []Sentence) int {
	total := 0
	for _, sentence := range sentences {
		total += len(sentence)
	}
	return total
}
