// Package server exposes the board over HTTP: the listing page, memory
// submission, privileged deletion and the random decorative image.
package server

import (
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lethe-board/lethe/internal/board"
	"github.com/lethe-board/lethe/internal/config"
	"github.com/lethe-board/lethe/internal/session"
)

const sessionCookie = "lethe_session"

// Server wires the pipeline to HTTP handlers.
type Server struct {
	cfg      config.Config
	pipeline *board.Pipeline
	sessions *session.Manager
	log      *zap.Logger

	mu      sync.Mutex
	entropy *rand.Rand
}

// New builds a server. logger may be nil.
func New(cfg config.Config, pipeline *board.Pipeline, sessions *session.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		pipeline: pipeline,
		sessions: sessions,
		log:      logger,
		entropy:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleListing)
	mux.HandleFunc("POST /new_memory", s.handleNewMemory)
	mux.HandleFunc("POST /forget", s.handleForget)
	mux.HandleFunc("GET /random_image", s.handleRandomImage)
	return s.logRequests(mux)
}

// ListenAndServe serves until the listener fails.
func (s *Server) ListenAndServe() error {
	s.log.Info("listening", zap.String("addr", s.cfg.Listen))
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

// sessionFor resolves the caller's session from the cookie, issuing a
// fresh one (and setting the cookie) when needed.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	var token string
	if c, err := r.Cookie(sessionCookie); err == nil {
		token = c.Value
	}
	sess := s.sessions.GetOrNew(token)
	if sess.Token() != token {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.Token(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return sess
}

func (s *Server) handleListing(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	memories, err := s.pipeline.List(r.Context())
	if err != nil {
		s.log.Error("list memories", zap.Error(err))
		http.Error(w, "something went wrong", http.StatusInternalServerError)
		return
	}

	s.renderListing(w, listingData{
		Memories:    memories,
		Flashes:     sess.PopFlashes(),
		Privileged:  sess.Privileged(),
		Placeholder: s.cfg.Placeholder,
	})
}

func (s *Server) handleNewMemory(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	result, err := s.pipeline.Submit(r.Context(), sess, r.PostFormValue("text"))
	if err != nil {
		// The reference posture: external command failures surface as a
		// request fault rather than being quietly converted.
		s.log.Error("submit", zap.Error(err))
		http.Error(w, "something went wrong", http.StatusInternalServerError)
		return
	}
	s.writeResult(w, r, result)
}

func (s *Server) handleForget(w http.ResponseWriter, r *http.Request) {
	sess := s.sessionFor(w, r)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(r.PostFormValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad ID", http.StatusBadRequest)
		return
	}

	result, err := s.pipeline.Forget(r.Context(), sess, id)
	if err != nil {
		s.log.Error("forget", zap.Error(err))
		http.Error(w, "something went wrong", http.StatusInternalServerError)
		return
	}
	s.writeResult(w, r, result)
}

// handleRandomImage serves one uniformly random file from the configured
// image directory.
func (s *Server) handleRandomImage(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.cfg.RandomImageDir)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	name := names[s.entropy.Intn(len(names))]
	s.mu.Unlock()

	http.ServeFile(w, r, filepath.Join(s.cfg.RandomImageDir, name))
}

func (s *Server) writeResult(w http.ResponseWriter, r *http.Request, result board.Result) {
	if result.Redirect {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Error(w, result.Message, result.Status)
}
