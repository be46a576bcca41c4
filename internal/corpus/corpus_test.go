package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "one.txt", "First text. Two sentences!"),
		writeFile(t, dir, "two.txt", "Second"),
		writeFile(t, dir, "three.txt", "third one? yes"),
	}
	texts, err := Load(context.Background(), paths, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(texts) != 3 {
		t.Fatalf("expected 3 texts, got %d", len(texts))
	}
	if texts[0].Path != paths[0] || len(texts[0].Sentences) != 2 {
		t.Fatalf("unexpected first text: %+v", texts[0])
	}
	if texts[1].Sentences[0][0] != "second" {
		t.Fatalf("unexpected second text: %+v", texts[1])
	}
	if texts[2].Hash == "" {
		t.Fatalf("expected content hash")
	}
}

func TestLoadMissingText(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writeFile(t, dir, "one.txt", "a b"), filepath.Join(dir, "gone.txt")}
	if _, err := Load(context.Background(), paths, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := Build(context.Background(), paths, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from build, got %v", err)
	}
}

func TestBuildCountsAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "one.txt", "a a b."),
		writeFile(t, dir, "two.txt", "b a. c"),
	}
	m, stats, err := Build(context.Background(), paths, 4)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if m.Count("a", "b") != 2 || m.Count("b", "a") != 3 {
		t.Fatalf("unexpected counts a->b=%d b->a=%d", m.Count("a", "b"), m.Count("b", "a"))
	}
	if stats.Files != 2 || stats.Sentences != 3 || stats.Words != 6 || stats.Vocabulary != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	again, _, err := Build(context.Background(), paths, 1)
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if again.Count("b", "a") != 3 {
		t.Fatalf("sequential build differs")
	}
}

func TestBuildRequiresTexts(t *testing.T) {
	if _, _, err := Build(context.Background(), nil, 1); err == nil {
		t.Fatalf("expected error for empty corpus")
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	if err := Check(writeFile(t, dir, "q.txt", "a b c")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Check(filepath.Join(dir, "nope.txt")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := Check(""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty path, got %v", err)
	}
}

func TestFingerprintDependsOnOrder(t *testing.T) {
	if Fingerprint([]string{"a", "b"}) == Fingerprint([]string{"b", "a"}) {
		t.Fatalf("expected order-sensitive fingerprint")
	}
}

func TestBuildFingerprintFollowsLoadOrder(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "one.txt", "a b"),
		writeFile(t, dir, "two.txt", "c d"),
	}
	texts, err := Load(context.Background(), paths, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	_, stats, err := Build(context.Background(), paths, 2)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if stats.Hash != Fingerprint([]string{texts[0].Hash, texts[1].Hash}) {
		t.Fatalf("expected corpus hash to follow path order")
	}
	_, reversed, err := Build(context.Background(), []string{paths[1], paths[0]}, 2)
	if err != nil {
		t.Fatalf("build reversed: %v", err)
	}
	if reversed.Hash == stats.Hash {
		t.Fatalf("expected reordered corpus to change the hash")
	}
}
