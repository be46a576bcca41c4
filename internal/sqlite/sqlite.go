package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type DB struct {
	db *sql.DB
}

// Run is one recorded evaluation. Descriptors themselves are never stored.
type Run struct {
	ID           int64    `json:"id"`
	QuestionFile string   `json:"question_file"`
	Texts        []string `json:"texts"`
	CorpusHash   string   `json:"corpus_hash"`
	Vocabulary   int      `json:"vocabulary"`
	Correct      int      `json:"correct"`
	Incorrect    int      `json:"incorrect"`
	Percentage   float64  `json:"percentage"`
	ElapsedMS    int64    `json:"elapsed_ms"`
	CreatedAt    string   `json:"created_at"`
}

type RunAnswer struct {
	RunID    int64  `json:"run_id"`
	Line     int    `json:"line"`
	Target   string `json:"target"`
	Expected string `json:"expected"`
	Chosen   string `json:"chosen"`
	Correct  bool   `json:"correct"`
}

func Open(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func migrate(db *sql.DB) error {
	statements := []string{
		"PRAGMA journal_mode=WAL;",
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_file TEXT NOT NULL,
			texts TEXT NOT NULL,
			corpus_hash TEXT NOT NULL,
			vocabulary INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			percentage REAL NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_answers (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			line INTEGER NOT NULL,
			target TEXT NOT NULL,
			expected TEXT NOT NULL,
			chosen TEXT NOT NULL,
			correct INTEGER NOT NULL
		);`,
		"CREATE INDEX IF NOT EXISTS idx_run_answers_run_id ON run_answers(run_id, line);",
		"CREATE INDEX IF NOT EXISTS idx_runs_corpus_hash ON runs(corpus_hash);",
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("sqlite: migrate: %w", err)
		}
	}
	return nil
}

// InsertRun stores run and its answers in one transaction and returns the
// new run id.
func (d *DB) InsertRun(ctx context.Context, run Run, answers []RunAnswer) (int64, error) {
	if d == nil || d.db == nil {
		return 0, errors.New("sqlite: db not initialized")
	}
	if strings.TrimSpace(run.QuestionFile) == "" {
		return 0, errors.New("sqlite: question file is required")
	}
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (question_file, texts, corpus_hash, vocabulary, correct, incorrect, percentage, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.QuestionFile, strings.Join(run.Texts, "\n"), run.CorpusHash, run.Vocabulary,
		run.Correct, run.Incorrect, run.Percentage, run.ElapsedMS, now,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO run_answers (run_id, line, target, expected, chosen, correct) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare answer: %w", err)
	}
	defer stmt.Close()
	for _, answer := range answers {
		flag := 0
		if answer.Correct {
			flag = 1
		}
		if _, err := stmt.ExecContext(ctx, id, answer.Line, answer.Target, answer.Expected, answer.Chosen, flag); err != nil {
			return 0, fmt.Errorf("sqlite: insert answer: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit run: %w", err)
	}
	return id, nil
}

const runColumns = "id, question_file, texts, corpus_hash, vocabulary, correct, incorrect, percentage, elapsed_ms, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var texts string
	if err := row.Scan(&run.ID, &run.QuestionFile, &texts, &run.CorpusHash, &run.Vocabulary,
		&run.Correct, &run.Incorrect, &run.Percentage, &run.ElapsedMS, &run.CreatedAt); err != nil {
		return Run{}, err
	}
	if texts != "" {
		run.Texts = strings.Split(texts, "\n")
	}
	return run, nil
}

func (d *DB) GetRun(ctx context.Context, id int64) (*Run, error) {
	if d == nil || d.db == nil {
		return nil, errors.New("sqlite: db not initialized")
	}
	row := d.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: get run: %w", err)
	}
	return &run, nil
}

func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if d == nil || d.db == nil {
		return nil, errors.New("sqlite: db not initialized")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate runs: %w", err)
	}
	return runs, nil
}

func (d *DB) ListRunAnswers(ctx context.Context, runID int64) ([]RunAnswer, error) {
	if d == nil || d.db == nil {
		return nil, errors.New("sqlite: db not initialized")
	}
	rows, err := d.db.QueryContext(ctx,
		"SELECT run_id, line, target, expected, chosen, correct FROM run_answers WHERE run_id = ? ORDER BY line",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list run answers: %w", err)
	}
	defer rows.Close()

	var answers []RunAnswer
	for rows.Next() {
		var answer RunAnswer
		var flag int
		if err := rows.Scan(&answer.RunID, &answer.Line, &answer.Target, &answer.Expected, &answer.Chosen, &flag); err != nil {
			return nil, fmt.Errorf("sqlite: scan run answer: %w", err)
		}
		answer.Correct = flag == 1
		answers = append(answers, answer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate run answers: %w", err)
	}
	return answers, nil
}

func (d *DB) DeleteRun(ctx context.Context, id int64) error {
	if d == nil || d.db == nil {
		return errors.New("sqlite: db not initialized")
	}
	if _, err := d.db.ExecContext(ctx, "DELETE FROM run_answers WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("sqlite: delete run answers: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id); err != nil {
		return fmt.Errorf("sqlite: delete run: %w", err)
	}
	return nil
}
