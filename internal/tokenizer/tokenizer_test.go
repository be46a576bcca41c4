package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenizeSplitsSentences(t *testing.T) {
	got := Tokenize("Hello, world! How are you?")
	want := []Sentence{{"hello", "world"}, {"how", "are", "you"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected sentences: %q", got)
	}
}

func TestTokenizeApostropheSplitsWord(t *testing.T) {
	got := Tokenize("Don't stop.")
	want := []Sentence{{"don", "t", "stop"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected sentences: %q", got)
	}
}

func TestTokenizeDropsEmptySentences(t *testing.T) {
	got := Tokenize("Wait... what?! -- \"Yes\"; no.")
	want := []Sentence{{"wait"}, {"what"}, {"yes", "no"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected sentences: %q", got)
	}
}

func TestTokenizeWithoutTerminator(t *testing.T) {
	got := Tokenize("one two\nthree")
	if len(got) != 1 || len(got[0]) != 3 {
		t.Fatalf("expected a single sentence of three words, got %q", got)
	}
	if got := Tokenize(" ,.;!? "); len(got) != 0 {
		t.Fatalf("expected no sentences, got %q", got)
	}
}

func TestTokenizeKeepsOtherSymbols(t *testing.T) {
	got := Tokenize("Tom's (cat) sat.")
	want := []Sentence{{"tom", "s", "(cat)", "sat"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected sentences: %q", got)
	}
}

func TestTokenizeLowercasesUnicode(t *testing.T) {
	got := Tokenize("ÉCOLE Straße")
	if len(got) != 1 || got[0][0] != "école" || got[0][1] != "straße" {
		t.Fatalf("unexpected lowercasing: %q", got)
	}
}

func TestCount(t *testing.T) {
	if n := Count(Tokenize("a b. c")); n != 3 {
		t.Fatalf("expected 3 words, got %d", n)
	}
}
