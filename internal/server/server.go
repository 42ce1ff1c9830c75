package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/linguacenter/apiserver/config"
	"github.com/linguacenter/apiserver/internal/auth"
	"github.com/linguacenter/apiserver/internal/db"
	"github.com/linguacenter/apiserver/internal/handlers"
	"github.com/linguacenter/apiserver/internal/services"
)

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	jwtSecret := strings.TrimSpace(cfg.Auth.JWTSecret)
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	accountService := services.NewAccountService(
		dbConn,
		auth.NewBcryptHasher(),
		jwtSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)
	studentService := services.NewStudentService(dbConn)
	teacherService := services.NewTeacherService(dbConn)

	authMiddleware := handlers.RequireAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Post("/register", handlers.NewAuthHandler(accountService).Register)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, accountService)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, accountService, authMiddleware)
	})
	router.Route("/students", func(r chi.Router) {
		handlers.StudentRouter(r, studentService, accountService, authMiddleware)
	})
	router.Route("/teachers", func(r chi.Router) {
		handlers.TeacherRouter(r, teacherService, accountService, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
