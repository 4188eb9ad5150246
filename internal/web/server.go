// ABOUTME: Web page presenting the post board and bot controls.
// ABOUTME: Reloads posts from the store on every request; start/stop drive the supervisor.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/2389-research/postboard/internal/models"
	"github.com/2389-research/postboard/internal/storage"
	"github.com/2389-research/postboard/internal/supervisor"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// BotControl starts and stops the bot process.
type BotControl interface {
	Start(ctx context.Context) (*supervisor.Handle, error)
	Stop(ctx context.Context, h *supervisor.Handle) error
	Current() *supervisor.Handle
	State() supervisor.State
}

// stopTimeout bounds how long a stop request waits before killing the bot.
const stopTimeout = 5 * time.Second

type flash struct {
	Level   string
	Message string
}

// flashes maps redirect keys to the messages shown on the page.
var flashes = map[string]flash{
	"started":         {"success", "Bot started successfully!"},
	"already-running": {"warning", "Bot is already running!"},
	"stopped":         {"success", "Bot stopped successfully!"},
	"not-running":     {"warning", "Bot is not running!"},
	"start-failed":    {"error", "Bot failed to start. Check the server log."},
	"stop-failed":     {"error", "Bot failed to stop. Check the server log."},
}

type pageData struct {
	Posts      []postView
	Recovered  bool
	Flash      *flash
	BotControl bool
	BotState   string
}

// Config configures a Server.
type Config struct {
	// Store provides the posts to display. Required.
	Store storage.PostStore

	// Bot enables the start/stop controls when set.
	Bot BotControl

	// Logger for request failures. Falls back to slog.Default() if nil.
	Logger *slog.Logger
}

// Server serves the post board page.
type Server struct {
	store storage.PostStore
	bot   BotControl
	log   *slog.Logger
	mux   *http.ServeMux
}

// New creates a Server and wires up all routes.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("post store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{store: cfg.Store, bot: cfg.Bot, log: cfg.Logger, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /", s.index)
	s.mux.HandleFunc("GET /health", s.health)
	s.mux.HandleFunc("GET /api/posts", s.listPosts)
	s.mux.HandleFunc("POST /bot/start", s.startBot)
	s.mux.HandleFunc("POST /bot/stop", s.stopBot)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	posts, status := s.store.Load()
	data := pageData{
		Posts:     buildViews(posts),
		Recovered: status == storage.LoadRecovered,
	}
	if f, ok := flashes[r.URL.Query().Get("flash")]; ok {
		data.Flash = &f
	}
	if s.bot != nil {
		data.BotControl = true
		data.BotState = s.bot.State().String()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.log.Error("failed to render page", "error", err)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type postsResponse struct {
	Posts  []models.Post `json:"posts"`
	Status string        `json:"status"`
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, status := s.store.Load()
	if posts == nil {
		posts = []models.Post{}
	}
	writeJSON(w, http.StatusOK, postsResponse{Posts: posts, Status: status.String()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) startBot(w http.ResponseWriter, r *http.Request) {
	if s.bot == nil {
		http.NotFound(w, r)
		return
	}

	key := "started"
	if _, err := s.bot.Start(r.Context()); err != nil {
		if errors.Is(err, supervisor.ErrAlreadyRunning) {
			key = "already-running"
		} else {
			s.log.Error("failed to start bot", "error", err)
			key = "start-failed"
		}
	}
	http.Redirect(w, r, "/?flash="+key, http.StatusSeeOther)
}

func (s *Server) stopBot(w http.ResponseWriter, r *http.Request) {
	if s.bot == nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), stopTimeout)
	defer cancel()

	key := "stopped"
	if err := s.bot.Stop(ctx, s.bot.Current()); err != nil {
		if errors.Is(err, supervisor.ErrNotRunning) {
			key = "not-running"
		} else {
			s.log.Error("failed to stop bot", "error", err)
			key = "stop-failed"
		}
	}
	http.Redirect(w, r, "/?flash="+key, http.StatusSeeOther)
}
