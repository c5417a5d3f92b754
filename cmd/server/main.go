package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/arjunmenon/pagebase/internal/config"
	"github.com/arjunmenon/pagebase/internal/engine"
)

// server serializes every request that touches db through mu, held for the
// duration of Execute. engine.Database assumes single-threaded access, and
// this is the one place multiple goroutines (one per HTTP request) can call
// into it concurrently.
type server struct {
	db  *engine.Database
	log *logrus.Logger
	mu  sync.Mutex
}

type execRequest struct {
	SQL string `json:"sql"`
}

type execResponse struct {
	Columns      []string `json:"columns,omitempty"`
	Rows         [][]any  `json:"rows,omitempty"`
	Message      string   `json:"message,omitempty"`
	RowsAffected int      `json:"rows_affected,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req execRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, execResponse{Error: fmt.Sprintf("invalid JSON: %v", err)})
		return
	}

	s.mu.Lock()
	result, err := s.db.Execute(req.SQL)
	s.mu.Unlock()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, execResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, execResponse{
		Columns:      result.Columns,
		Rows:         result.Rows,
		Message:      result.Message,
		RowsAffected: result.RowsAffected,
	})
}

func (s *server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stats := s.db.Stats()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, stats)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// requestLogger stamps every request with a UUID and logs its method, path,
// status, and latency once it completes.
func requestLogger(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.NewString()
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(rec, r)

			log.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     rec.status,
				"duration":   time.Since(start).String(),
			}).Info("handled request")
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		return
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	db, err := engine.Open(cfg.DBPath, cfg.CacheCapacity, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	s := &server{db: db, log: log}

	router := mux.NewRouter()
	router.Use(requestLogger(log))
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	router.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)

	log.WithField("addr", cfg.HTTPAddr).Info("listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, router); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
