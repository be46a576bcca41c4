package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"synonyms/internal/config"
	"synonyms/internal/corpus"
	"synonyms/internal/descriptor"
	"synonyms/internal/evaluator"
	"synonyms/internal/logging"
	"synonyms/internal/sqlite"
)

// ErrQuestionsNotFound marks a missing question file, checked before any
// reference text is read.
var ErrQuestionsNotFound = errors.New("question file not found")

type Pipeline struct {
	corpus   config.CorpusConfig
	db       *sqlite.DB
	logger   *logging.Logger
	progress io.Writer
}

type Report struct {
	RunID        int64
	QuestionFile string
	Stats        corpus.Stats
	Result       evaluator.Result
	Elapsed      time.Duration
}

// New wires a pipeline. db may be nil to skip recording runs; progress may be
// nil to stay quiet.
func New(cfg config.CorpusConfig, db *sqlite.DB, logger *logging.Logger, progress io.Writer) *Pipeline {
	if progress == nil {
		progress = io.Discard
	}
	return &Pipeline{corpus: cfg, db: db, logger: logger, progress: progress}
}

func (p *Pipeline) Build(ctx context.Context) (*descriptor.Map, corpus.Stats, error) {
	start := time.Now()
	m, stats, err := corpus.Build(ctx, p.corpus.Texts, p.corpus.Workers)
	if err != nil {
		return nil, corpus.Stats{}, fmt.Errorf("build descriptors: %w", err)
	}
	if p.logger != nil {
		p.logger.Info("descriptors built", map[string]string{
			"files":      strconv.Itoa(stats.Files),
			"sentences":  strconv.Itoa(stats.Sentences),
			"words":      strconv.Itoa(stats.Words),
			"vocabulary": strconv.Itoa(stats.Vocabulary),
			"elapsed":    time.Since(start).String(),
		})
	}
	return m, stats, nil
}

// Run checks the question file, builds descriptors from every reference text,
// scores the questions and records the run when a db is configured.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	questions := p.corpus.Questions
	if err := corpus.Check(questions); err != nil {
		if errors.Is(err, corpus.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrQuestionsNotFound, err)
		}
		return nil, err
	}

	fmt.Fprint(p.progress, "Importing files and building semantic descriptors... ")
	m, stats, err := p.Build(ctx)
	if err != nil {
		fmt.Fprintln(p.progress, "Failed!")
		return nil, err
	}
	fmt.Fprintln(p.progress, "Done!")

	fmt.Fprint(p.progress, "Running similarity test... ")
	result, err := evaluator.ScoreFile(questions, m)
	if err != nil {
		fmt.Fprintln(p.progress, "Failed!")
		return nil, fmt.Errorf("score questions: %w", err)
	}
	fmt.Fprintln(p.progress, "Done!")

	report := &Report{
		QuestionFile: questions,
		Stats:        stats,
		Result:       result,
		Elapsed:      time.Since(start),
	}
	if p.db != nil {
		id, err := p.db.InsertRun(ctx, runRecord(p.corpus.Texts, report), answerRecords(result))
		if err != nil {
			return report, fmt.Errorf("record run: %w", err)
		}
		report.RunID = id
	}
	if p.logger != nil {
		p.logger.Info("similarity test finished", map[string]string{
			"questions":  questions,
			"correct":    strconv.Itoa(result.Correct),
			"incorrect":  strconv.Itoa(result.Incorrect),
			"percentage": strconv.FormatFloat(result.Percentage(), 'f', 2, 64),
			"run_id":     strconv.FormatInt(report.RunID, 10),
			"elapsed":    report.Elapsed.String(),
		})
	}
	return report, nil
}

func runRecord(texts []string, report *Report) sqlite.Run {
	return sqlite.Run{
		QuestionFile: report.QuestionFile,
		Texts:        texts,
		CorpusHash:   report.Stats.Hash,
		Vocabulary:   report.Stats.Vocabulary,
		Correct:      report.Result.Correct,
		Incorrect:    report.Result.Incorrect,
		Percentage:   report.Result.Percentage(),
		ElapsedMS:    report.Elapsed.Milliseconds(),
	}
}

func answerRecords(result evaluator.Result) []sqlite.RunAnswer {
	out := make([]sqlite.RunAnswer, 0, len(result.Answers))
	for _, a := range result.Answers {
		out = append(out, sqlite.RunAnswer{
			Line:     a.Line,
			Target:   a.Target,
			Expected: a.Answer,
			Chosen:   a.Chosen,
			Correct:  a.Correct,
		})
	}
	return out
}
