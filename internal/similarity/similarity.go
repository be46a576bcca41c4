package similarity

import (
	"errors"
	"fmt"
	"math"

	"synonyms/internal/descriptor"
)

// NoSimilarity ranks below every real similarity of non-negative descriptors.
// It marks a missing word or an all-zero descriptor.
const NoSimilarity = -1.0

var ErrInvalidInput = errors.New("invalid input")

type Candidate struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
	Known bool    `json:"known"`
}

func Norm(v descriptor.Vector) float64 {
	sumOfSquares := 0.0
	for _, n := range v {
		f := float64(n)
		sumOfSquares += f * f
	}
	return math.Sqrt(sumOfSquares)
}

// Cosine computes the cosine similarity of two sparse vectors. Only keys
// present in both contribute to the dot product.
func Cosine(v1, v2 descriptor.Vector) float64 {
	denominator := Norm(v1) * Norm(v2)
	if denominator == 0 {
		return NoSimilarity
	}
	small, large := v1, v2
	if len(small) > len(large) {
		small, large = large, small
	}
	dot := 0.0
	for word, n := range small {
		if m, ok := large[word]; ok {
			dot += float64(n) * float64(m)
		}
	}
	return dot / denominator
}

// Score is the similarity of word and choice under m, NoSimilarity when
// either is absent.
func Score(word, choice string, m *descriptor.Map) (float64, bool) {
	target, ok := m.Lookup(word)
	if !ok {
		return NoSimilarity, false
	}
	candidate, ok := m.Lookup(choice)
	if !ok {
		return NoSimilarity, false
	}
	return Cosine(target, candidate), true
}

// Rank scores every choice in order.
func Rank(word string, choices []string, m *descriptor.Map) []Candidate {
	out := make([]Candidate, 0, len(choices))
	for _, choice := range choices {
		score, known := Score(word, choice, m)
		out = append(out, Candidate{Word: choice, Score: score, Known: known})
	}
	return out
}

// MostSimilar returns the choice most similar to word. The first choice wins
// ties and is returned when nothing scores above NoSimilarity.
func MostSimilar(word string, choices []string, m *descriptor.Map) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("similarity: choices are required: %w", ErrInvalidInput)
	}
	best := choices[0]
	bestScore := NoSimilarity
	for _, choice := range choices {
		score, _ := Score(word, choice, m)
		if score > bestScore {
			best = choice
			bestScore = score
		}
	}
	return best, nil
}
