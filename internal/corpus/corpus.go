// Package corpus reads reference texts and question files from disk and
// turns the texts into a descriptor map.
package corpus

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"synonyms/internal/descriptor"
	"synonyms/internal/tokenizer"
)

var ErrNotFound = errors.New("not found")

// Text is one tokenized reference file.
type Text struct {
	Path      string
	Hash      string
	Sentences []tokenizer.Sentence
}

type Stats struct {
	Files      int
	Sentences  int
	Words      int
	Vocabulary int
	Hash       string
}

// Open opens a declared input, mapping a missing file to ErrNotFound.
func Open(path string) (*os.File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("corpus: path is required: %w", ErrNotFound)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("corpus: %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("corpus: open %s: %w", path, err)
	}
	return f, nil
}

// Check reports whether path can be opened without reading it.
func Check(path string) error {
	f, err := Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}

func ReadText(path string) (Text, error) {
	if strings.TrimSpace(path) == "" {
		return Text{}, fmt.Errorf("corpus: path is required: %w", ErrNotFound)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Text{}, fmt.Errorf("corpus: %s: %w", path, ErrNotFound)
		}
		return Text{}, fmt.Errorf("corpus: read %s: %w", path, err)
	}
	return Text{
		Path:      path,
		Hash:      hashContent(content),
		Sentences: tokenizer.Tokenize(string(content)),
	}, nil
}

// Load reads and tokenizes paths with at most workers files in flight.
// Results keep the order of paths.
func Load(ctx context.Context, paths []string, workers int) ([]Text, error) {
	texts := make([]Text, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := ReadText(path)
			if err != nil {
				return err
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return texts, nil
}

// Build reads every path and folds all of their sentences into one
// descriptor map. Each text is counted into its own builder in parallel and
// the partial builders are summed in path order.
func Build(ctx context.Context, paths []string, workers int) (*descriptor.Map, Stats, error) {
	if len(paths) == 0 {
		return nil, Stats{}, errors.New("corpus: at least one reference text is required")
	}
	texts, err := Load(ctx, paths, workers)
	if err != nil {
		return nil, Stats{}, err
	}

	partials := make([]*descriptor.Builder, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, text := range texts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b := descriptor.NewBuilder()
			b.AddText(text.Sentences)
			partials[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	total := partials[0]
	for _, partial := range partials[1:] {
		total.Merge(partial)
	}
	hashes := make([]string, len(texts))
	stats := Stats{
		Files:     len(texts),
		Sentences: total.Sentences(),
	}
	for i, text := range texts {
		hashes[i] = text.Hash
		stats.Words += tokenizer.Count(text.Sentences)
	}
	stats.Hash = Fingerprint(hashes)
	m := total.Map()
	stats.Vocabulary = m.Len()
	return m, stats, nil
}

// Fingerprint combines per-file hashes in order into one corpus hash.
func Fingerprint(hashes []string) string {
	return hashContent([]byte(strings.Join(hashes, "\n")))
}

func hashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
