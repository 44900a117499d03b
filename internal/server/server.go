package server

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/network-feed/internal/domain"
	"github.com/orgball2608/network-feed/internal/feed"
	"github.com/orgball2608/network-feed/internal/network"
	"github.com/orgball2608/network-feed/internal/render/htmlview"
	"github.com/orgball2608/network-feed/pkg/config"
	"github.com/orgball2608/network-feed/pkg/logger"
	"go.uber.org/fx"
)

const (
	feedPath  = "/feed"
	csrfField = "csrfmiddlewaretoken"
)

type Opts struct {
	fx.In

	Network network.Client
	Logger  logger.Logger
	Config  *config.Config
}

// Server serves the health check and an HTML preview of the configured
// viewer's feed.
type Server struct {
	network network.Client
	logger  logger.Logger
	cfg     *config.Config
	view    *htmlview.View
	http    *http.Server
	// token is issued per process and must come back with every POST.
	token string
}

func New(opts Opts) (*Server, error) {
	token := uuid.NewString()
	view, err := htmlview.New(htmlview.Options{ActionPath: feedPath, PagePath: feedPath, CSRFToken: token})
	if err != nil {
		return nil, err
	}

	s := &Server{
		network: opts.Network,
		logger:  opts.Logger.WithComponent("HTTPServer"),
		cfg:     opts.Config,
		view:    view,
		token:   token,
	}
	s.http = &http.Server{
		Addr:              net.JoinHostPort(opts.Config.App.Host, strconv.Itoa(opts.Config.App.Port)),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.healthCheckHandler)
	mux.HandleFunc("GET "+feedPath, s.feedHandler)
	mux.HandleFunc("POST "+feedPath+"/like/{id}", s.protect(s.likeHandler))
	mux.HandleFunc("POST "+feedPath+"/update/{id}", s.protect(s.updateHandler))
	mux.HandleFunc("POST "+feedPath+"/follow/{id}", s.protect(s.followHandler))
	return mux
}

// protect rejects a POST whose form token does not match the one rendered
// into the page, or that comes from another origin.
func (s *Server) protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			u, err := url.Parse(origin)
			if err != nil || u.Host != r.Host {
				s.logger.Warn("Cross-origin request rejected", "origin", origin, "path", r.URL.Path)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		got := r.PostForm.Get(csrfField)
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			s.logger.Warn("CSRF token missing or invalid", "path", r.URL.Path)
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}

	s.logger.Info(fmt.Sprintf("Starting server on %s", s.http.Addr))
	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server stopped unexpectedly", "error", err)
		}
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) viewer() domain.Viewer {
	return domain.Viewer{
		LoggedIn:  s.cfg.Network.LoggedIn,
		UserID:    s.cfg.Network.UserID,
		Filter:    domain.ParseFilter(s.cfg.Network.Filter),
		ProfileID: s.cfg.Network.ProfileID,
	}
}

func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("Health check request received", "Method", r.Method, "URL", r.URL.String())
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Error("Failed to write response", "Error", err)
	}
}

// feedHandler renders ?page=N. With &edit=ID the author's post opens in its
// edit form.
func (s *Server) feedHandler(w http.ResponseWriter, r *http.Request) {
	renderer, view := s.load(r)

	if editID, err := strconv.Atoi(r.URL.Query().Get("edit")); err == nil {
		edited, err := renderer.Edit(editID)
		if err != nil {
			s.logger.Warn("Edit rejected", "post_id", editID, "error", err)
		} else {
			view = edited
		}
	}

	s.write(w, http.StatusOK, view)
}

func (s *Server) likeHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r)
	if !ok {
		return
	}

	renderer, _ := s.load(r)
	view, err := renderer.ToggleLikePost(r.Context(), postID)
	if err != nil && !errors.Is(err, feed.ErrStale) {
		// The view carries the alert under the post.
		s.write(w, http.StatusOK, view)
		return
	}
	s.redirect(w, r, renderer.CurrentPage())
}

func (s *Server) followHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	renderer, view := s.load(r)
	view, err := renderer.ToggleFollow(r.Context(), userID)
	switch {
	case errors.Is(err, feed.ErrNotFollowable):
		s.write(w, http.StatusForbidden, view)
		return
	case err != nil && !errors.Is(err, feed.ErrStale):
		s.write(w, http.StatusOK, view)
		return
	}
	s.redirect(w, r, renderer.CurrentPage())
}

func (s *Server) updateHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r)
	if !ok {
		return
	}

	renderer, view := s.load(r)
	if _, err := renderer.Edit(postID); err != nil {
		s.logger.Warn("Update rejected", "post_id", postID, "error", err)
		s.write(w, http.StatusForbidden, view)
		return
	}

	view, err := renderer.UpdatePost(r.Context(), postID, r.PostForm.Get("post_content"))
	if err != nil && !errors.Is(err, feed.ErrStale) {
		s.write(w, http.StatusUnprocessableEntity, view)
		return
	}
	s.redirect(w, r, renderer.CurrentPage())
}

// load builds a renderer for this request and loads the requested page.
// Nothing is kept between requests.
func (s *Server) load(r *http.Request) (*feed.Renderer, feed.View) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	renderer := feed.New(s.network, s.viewer(), s.logger)
	view, err := renderer.LoadAllPosts(r.Context(), page)
	if err != nil {
		s.logger.Warn("Feed load failed", "page", page, "error", err)
	}
	return renderer, view
}

func (s *Server) write(w http.ResponseWriter, status int, view feed.View) {
	var body bytes.Buffer
	body.WriteString(pageHeader)
	if err := s.view.Render(&body, view); err != nil {
		s.logger.Error("Failed to render feed", "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	body.WriteString(pageFooter)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body.Bytes()); err != nil {
		s.logger.Error("Failed to write response", "Error", err)
	}
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, page int) {
	http.Redirect(w, r, fmt.Sprintf("%s?page=%d", feedPath, page), http.StatusSeeOther)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

const pageHeader = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Network</title>
<link rel="stylesheet" href="https://stackpath.bootstrapcdn.com/bootstrap/4.5.2/css/bootstrap.min.css">
</head>
<body>
<div class="container mt-3">
`

const pageFooter = `</div>
</body>
</html>
`
