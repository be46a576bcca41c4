// Package evaluator answers synonym questions against a descriptor map and
// aggregates accuracy.
package evaluator

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"synonyms/internal/corpus"
	"synonyms/internal/descriptor"
	"synonyms/internal/similarity"
)

var (
	ErrInvalidInput = similarity.ErrInvalidInput
	ErrNotFound     = corpus.ErrNotFound
)

const maxLineBytes = 1 << 20

// Question asks which of Choices is the synonym of Target. Answer need not be
// one of the choices; such a question can never be answered correctly.
type Question struct {
	Line    int      `json:"line,omitempty"`
	Target  string   `json:"target"`
	Answer  string   `json:"answer"`
	Choices []string `json:"choices"`
}

type Answer struct {
	Question
	Chosen  string `json:"chosen"`
	Correct bool   `json:"correct"`
}

type Result struct {
	Correct   int      `json:"correct"`
	Incorrect int      `json:"incorrect"`
	Answers   []Answer `json:"answers,omitempty"`
}

func (r Result) Total() int {
	return r.Correct + r.Incorrect
}

// Percentage is correct / total * 100. Score never returns an empty result
// without an error, so the zero total case is reported as 0.
func (r Result) Percentage() float64 {
	total := r.Total()
	if total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(total) * 100
}

// ParseQuestion reads "<target> <answer> <choice> [<choice> ...]". Casing is
// kept as written.
func ParseQuestion(line string) (Question, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Question{}, fmt.Errorf("question %q needs a target, an answer and at least one choice: %w", strings.TrimSpace(line), ErrInvalidInput)
	}
	return Question{
		Target:  fields[0],
		Answer:  fields[1],
		Choices: fields[2:],
	}, nil
}

// Scorer accumulates answers one question at a time.
type Scorer struct {
	descriptors *descriptor.Map
	result      Result
}

func NewScorer(m *descriptor.Map) *Scorer {
	return &Scorer{descriptors: m}
}

func (s *Scorer) Answer(q Question) (Answer, error) {
	chosen, err := similarity.MostSimilar(q.Target, q.Choices, s.descriptors)
	if err != nil {
		return Answer{}, fmt.Errorf("evaluator: line %d: %w", q.Line, err)
	}
	a := Answer{Question: q, Chosen: chosen, Correct: chosen == q.Answer}
	if a.Correct {
		s.result.Correct++
	} else {
		s.result.Incorrect++
	}
	s.result.Answers = append(s.result.Answers, a)
	return a, nil
}

func (s *Scorer) Result() (Result, error) {
	if s.result.Total() == 0 {
		return Result{}, fmt.Errorf("evaluator: question set is empty: %w", ErrInvalidInput)
	}
	return s.result, nil
}

func Score(questions []Question, m *descriptor.Map) (Result, error) {
	s := NewScorer(m)
	for _, q := range questions {
		if _, err := s.Answer(q); err != nil {
			return Result{}, err
		}
	}
	return s.Result()
}

// ScoreReader streams one question per line. Blank lines are skipped.
func ScoreReader(r io.Reader, m *descriptor.Map) (Result, error) {
	s := NewScorer(m)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		q, err := ParseQuestion(text)
		if err != nil {
			return Result{}, fmt.Errorf("evaluator: line %d: %w", line, err)
		}
		q.Line = line
		if _, err := s.Answer(q); err != nil {
			return Result{}, err
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("evaluator: read questions: %w", err)
	}
	return s.Result()
}

// ScoreFile scores the question file at path. A missing file is ErrNotFound.
func ScoreFile(path string, m *descriptor.Map) (Result, error) {
	f, err := corpus.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("evaluator: questions: %w", err)
	}
	defer f.Close()
	return ScoreReader(f, m)
}
