package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "sqlite", "synonyms.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInsertAndListRuns(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	run := Run{
		QuestionFile: "test.txt",
		Texts:        []string{"pg2600.txt", "pg7178.txt"},
		CorpusHash:   "abc",
		Vocabulary:   42,
		Correct:      1,
		Incorrect:    1,
		Percentage:   50,
		ElapsedMS:    12,
	}
	answers := []RunAnswer{
		{Line: 2, Target: "draw", Expected: "pull", Chosen: "pull", Correct: true},
		{Line: 1, Target: "big", Expected: "large", Chosen: "small"},
	}
	id, err := db.InsertRun(ctx, run, answers)
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}
	if _, err := db.InsertRun(ctx, Run{QuestionFile: "other.txt"}, nil); err != nil {
		t.Fatalf("insert second run: %v", err)
	}

	runs, err := db.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 || runs[1].ID != id {
		t.Fatalf("expected newest first, got %+v", runs)
	}
	if len(runs[1].Texts) != 2 || runs[1].Texts[1] != "pg7178.txt" || runs[1].Percentage != 50 {
		t.Fatalf("unexpected stored run: %+v", runs[1])
	}
	if runs[0].Texts != nil {
		t.Fatalf("expected no texts for second run")
	}

	got, err := db.ListRunAnswers(ctx, id)
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(got) != 2 || got[0].Line != 1 || got[1].Chosen != "pull" || !got[1].Correct || got[0].Correct {
		t.Fatalf("unexpected answers: %+v", got)
	}
}

func TestGetRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	missing, err := db.GetRun(ctx, 99)
	if err != nil || missing != nil {
		t.Fatalf("expected nil run, got %+v, %v", missing, err)
	}
	id, err := db.InsertRun(ctx, Run{QuestionFile: "q.txt", Correct: 3}, nil)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	run, err := db.GetRun(ctx, id)
	if err != nil || run == nil || run.Correct != 3 || run.CreatedAt == "" {
		t.Fatalf("unexpected run: %+v, %v", run, err)
	}
	if err := db.DeleteRun(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if run, _ := db.GetRun(ctx, id); run != nil {
		t.Fatalf("expected run deleted")
	}
}

func TestInsertRunRequiresQuestionFile(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.InsertRun(context.Background(), Run{}, nil); err == nil {
		t.Fatalf("expected error")
	}
	var nilDB *DB
	if _, err := nilDB.ListRuns(context.Background(), 1); err == nil {
		t.Fatalf("expected error for nil db")
	}
}
