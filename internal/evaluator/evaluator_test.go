package evaluator

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"synonyms/internal/descriptor"
	"synonyms/internal/tokenizer"
)

func build(text string) *descriptor.Map {
	return descriptor.Build([][]tokenizer.Sentence{tokenizer.Tokenize(text)})
}

func TestParseQuestion(t *testing.T) {
	q, err := ParseQuestion("  Draw  pull\tpush pull  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Target != "Draw" || q.Answer != "pull" {
		t.Fatalf("unexpected question: %+v", q)
	}
	if len(q.Choices) != 2 || q.Choices[0] != "push" || q.Choices[1] != "pull" {
		t.Fatalf("unexpected choices: %v", q.Choices)
	}
}

func TestParseQuestionRequiresChoice(t *testing.T) {
	if _, err := ParseQuestion("cat dog"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScoreEndToEnd(t *testing.T) {
	m := build("the cat sat. the dog sat.")

	// dog is the answer but not a choice, so this can never be correct.
	res, err := ScoreReader(strings.NewReader("cat dog sat mat\n"), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Percentage() != 0 || res.Answers[0].Chosen != "sat" {
		t.Fatalf("unexpected result: %+v", res)
	}

	res, err = ScoreReader(strings.NewReader("cat dog mat dog\n"), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Percentage() != 100 {
		t.Fatalf("expected 100%%, got %v", res.Percentage())
	}
	if res.Answers[0].Line != 1 || !res.Answers[0].Correct {
		t.Fatalf("unexpected answer: %+v", res.Answers[0])
	}
}

func TestScoreMixed(t *testing.T) {
	m := build("the cat sat. the dog sat. a fish swam. a whale swam.")
	questions := []Question{
		{Target: "cat", Answer: "dog", Choices: []string{"fish", "dog"}},
		{Target: "fish", Answer: "whale", Choices: []string{"whale", "cat"}},
		{Target: "cat", Answer: "whale", Choices: []string{"dog", "whale"}},
		{Target: "nothing", Answer: "x", Choices: []string{"y", "x"}},
	}
	res, err := Score(questions, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Correct != 2 || res.Incorrect != 2 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if res.Percentage() != 50 {
		t.Fatalf("expected 50%%, got %v", res.Percentage())
	}
}

func TestScoreKeepsQuestionCasing(t *testing.T) {
	m := build("the cat sat. the dog sat.")
	res, err := ScoreReader(strings.NewReader("Cat dog mat dog\n"), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Cat is not lowercased, so it is unknown and the first choice wins.
	if res.Answers[0].Chosen != "mat" || res.Correct != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestScoreEmpty(t *testing.T) {
	m := build("a b")
	if _, err := Score(nil, m); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := ScoreReader(strings.NewReader("\n   \n"), m); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestScoreReaderMalformedLine(t *testing.T) {
	_, err := ScoreReader(strings.NewReader("a b c\nbroken line\n"), build("a b c"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line number in error: %v", err)
	}
}

func TestScoreFile(t *testing.T) {
	m := build("the cat sat. the dog sat.")
	if _, err := ScoreFile(filepath.Join(t.TempDir(), "missing.txt"), m); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "questions.txt")
	if err := os.WriteFile(path, []byte("cat dog dog mat\n"), 0o600); err != nil {
		t.Fatalf("write questions: %v", err)
	}
	res, err := ScoreFile(path, m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Percentage() != 100 {
		t.Fatalf("expected 100%%, got %v", res.Percentage())
	}
}
