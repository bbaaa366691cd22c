package gateway

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tackernao0522/demochat-client/internal/client/config"
	"github.com/tackernao0522/demochat-client/internal/client/guard"
	"github.com/tackernao0522/demochat-client/internal/cryptox"
	"github.com/tackernao0522/demochat-client/internal/logging"
)

// BasicAuthRealm is sent in WWW-Authenticate when basic auth fails.
const BasicAuthRealm = "Secure Area"

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	cfg     *config.Config
	log     logging.Logger
	cipher  cryptox.FieldCipher
	pages   *template.Template
	limiter *formLimiter
	router  http.Handler
}

func NewServer(cfg *config.Config, log logging.Logger) (*Server, error) {
	if log == nil {
		log = logging.Nop()
	}
	cipher, err := cryptox.New(cfg.Encryption, cfg.EncryptionKey, log)
	if err != nil {
		return nil, fmt.Errorf("encryption setup error: %w", err)
	}
	pages, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("template parse error: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		log:     log.With("module", "gateway"),
		cipher:  cipher,
		pages:   pages,
		limiter: newFormLimiter(loginEvery, loginBurst),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/healthz"))

	if s.cfg.IsProduction() {
		if s.cfg.BasicAuthUsername == "" {
			s.log.Warn(context.Background(), "production without basic auth credentials, every request is refused")
			r.Use(refuseAll(BasicAuthRealm))
		} else {
			r.Use(middleware.BasicAuth(BasicAuthRealm, map[string]string{
				s.cfg.BasicAuthUsername: s.cfg.BasicAuthPassword,
			}))
		}
	}

	r.Use(middleware.NoCache)
	r.Use(s.withSession)
	r.Use(guard.Middleware(s.guardFor, guard.Entry, guard.Chatroom))

	r.Get(guard.Entry.Path, s.handleEntry)
	r.With(s.limiter.Middleware).Post("/login", s.handleLogin)
	r.With(s.limiter.Middleware).Post("/signup", s.handleSignup)
	r.Post("/logout", s.handleLogout)
	r.Get(guard.Chatroom.Path, s.handleChatroom)
	r.Get("/session", s.handleSession)
	return r
}

// refuseAll answers every request with a basic-auth challenge that no
// credentials can satisfy.
func refuseAll(realm string) func(http.Handler) http.Handler {
	return func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("WWW-Authenticate", fmt.Sprintf(`Basic realm="%s"`, realm))
			w.WriteHeader(http.StatusUnauthorized)
		})
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.log.Info(ctx, "Stopping gateway...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info(ctx, "Starting gateway", "address", s.cfg.ListenAddr, "api", s.cfg.APIURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
