package gateway

import (
	"net/http"

	"synonyms/internal/descriptor"
	"synonyms/internal/logging"
	"synonyms/internal/sqlite"
)

type Server struct {
	descriptors *descriptor.Map
	db          *sqlite.DB
	logger      *logging.Logger
	mux         *http.ServeMux
}

// NewServer serves queries over an already built descriptor map. db may be
// nil, in which case the run history endpoints report 503.
func NewServer(descriptors *descriptor.Map, db *sqlite.DB, logger *logging.Logger) *Server {
	mux := http.NewServeMux()
	server := &Server{descriptors: descriptors, db: db, logger: logger, mux: mux}

	mux.HandleFunc("/health", server.handleHealth)
	mux.Handle("/similar", NewSimilarHandler(descriptors, logger))
	mux.Handle("/evaluate", NewEvaluateHandler(descriptors, logger))
	mux.Handle("/runs", NewRunsHandler(db, logger))

	return server
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
