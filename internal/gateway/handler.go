package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"synonyms/internal/descriptor"
	"synonyms/internal/evaluator"
	"synonyms/internal/logging"
	"synonyms/internal/similarity"
	"synonyms/internal/sqlite"
)

const maxQuestionBody = 4 << 20

type SimilarHandler struct {
	descriptors *descriptor.Map
	logger      *logging.Logger
}

type EvaluateHandler struct {
	descriptors *descriptor.Map
	logger      *logging.Logger
}

type RunsHandler struct {
	db     *sqlite.DB
	logger *logging.Logger
}

type similarResponse struct {
	Word       string                 `json:"word"`
	Chosen     string                 `json:"chosen"`
	Candidates []similarity.Candidate `json:"candidates"`
}

type evaluateResponse struct {
	Correct    int                `json:"correct"`
	Incorrect  int                `json:"incorrect"`
	Percentage float64            `json:"percentage"`
	Answers    []evaluator.Answer `json:"answers"`
}

type runsResponse struct {
	Runs []sqlite.Run `json:"runs"`
}

type answersResponse struct {
	Run     *sqlite.Run        `json:"run"`
	Answers []sqlite.RunAnswer `json:"answers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewSimilarHandler(descriptors *descriptor.Map, logger *logging.Logger) *SimilarHandler {
	return &SimilarHandler{descriptors: descriptors, logger: logger}
}

func NewEvaluateHandler(descriptors *descriptor.Map, logger *logging.Logger) *EvaluateHandler {
	return &EvaluateHandler{descriptors: descriptors, logger: logger}
}

func NewRunsHandler(db *sqlite.DB, logger *logging.Logger) *RunsHandler {
	return &RunsHandler{db: db, logger: logger}
}

// ServeHTTP answers GET /similar?word=w&choices=a,b,c. Choices may also be
// repeated as separate parameters.
func (h *SimilarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.descriptors == nil {
		writeError(w, http.StatusServiceUnavailable, "descriptors not built")
		return
	}
	query := r.URL.Query()
	word := strings.TrimSpace(query.Get("word"))
	if word == "" {
		writeError(w, http.StatusBadRequest, "word is required")
		return
	}
	choices := splitChoices(query["choices"])
	chosen, err := similarity.MostSimilar(word, choices, h.descriptors)
	if err != nil {
		writeError(w, http.StatusBadRequest, "choices are required")
		return
	}
	writeJSON(w, http.StatusOK, similarResponse{
		Word:       word,
		Chosen:     chosen,
		Candidates: similarity.Rank(word, choices, h.descriptors),
	})
}

// ServeHTTP scores the question lines posted in the request body.
func (h *EvaluateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.descriptors == nil {
		writeError(w, http.StatusServiceUnavailable, "descriptors not built")
		return
	}
	// Read the whole body first so a cut-off question is never scored.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxQuestionBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "question set too large")
			return
		}
		writeError(w, http.StatusBadRequest, "read body failed")
		return
	}
	result, err := evaluator.ScoreReader(bytes.NewReader(body), h.descriptors)
	if err != nil {
		if errors.Is(err, evaluator.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if h.logger != nil {
			h.logger.Error("evaluate failed", map[string]string{
				"error": err.Error(),
			})
		}
		writeError(w, http.StatusInternalServerError, "evaluate failed")
		return
	}
	writeJSON(w, http.StatusOK, evaluateResponse{
		Correct:    result.Correct,
		Incorrect:  result.Incorrect,
		Percentage: result.Percentage(),
		Answers:    result.Answers,
	})
}

// ServeHTTP lists recorded runs, or one run's answers when id is given.
// DELETE with an id removes that run.
func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.db == nil {
		writeError(w, http.StatusServiceUnavailable, "store not configured")
		return
	}
	raw := r.URL.Query().Get("id")
	if r.Method == http.MethodDelete && raw == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "id must be an integer")
			return
		}
		if r.Method == http.MethodDelete {
			h.deleteRun(w, r, id)
			return
		}
		h.serveRun(w, r, id)
		return
	}
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 {
			limit = val
		}
	}
	runs, err := h.db.ListRuns(r.Context(), limit)
	if err != nil {
		h.fail(w, "list runs failed", err)
		return
	}
	writeJSON(w, http.StatusOK, runsResponse{Runs: runs})
}

func (h *RunsHandler) serveRun(w http.ResponseWriter, r *http.Request, id int64) {
	run, err := h.db.GetRun(r.Context(), id)
	if err != nil {
		h.fail(w, "get run failed", err)
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	answers, err := h.db.ListRunAnswers(r.Context(), id)
	if err != nil {
		h.fail(w, "list run answers failed", err)
		return
	}
	writeJSON(w, http.StatusOK, answersResponse{Run: run, Answers: answers})
}

func (h *RunsHandler) deleteRun(w http.ResponseWriter, r *http.Request, id int64) {
	run, err := h.db.GetRun(r.Context(), id)
	if err != nil {
		h.fail(w, "get run failed", err)
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	if err := h.db.DeleteRun(r.Context(), id); err != nil {
		h.fail(w, "delete run failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *RunsHandler) fail(w http.ResponseWriter, msg string, err error) {
	if h.logger != nil {
		h.logger.Error(msg, map[string]string{
			"error": err.Error(),
		})
	}
	writeError(w, http.StatusInternalServerError, msg)
}

func splitChoices(values []string) []string {
	var out []string
	for _, value := range values {
		for _, choice := range strings.Split(value, ",") {
			if choice = strings.TrimSpace(choice); choice != "" {
				out = append(out, choice)
			}
		}
	}
	return out
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
