// This is a **mock authentication service**, designed to provide JWT tokens
// for the matchmaker's protected endpoints, simulating recruiter sign-in.
package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gartstein/matchmaker/internal/matchmaker/auth"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	defaultPort    = "8081"       // Default port for the authentication service
	defaultSecret  = "jwt_secret" // Secret for signing JWT
	defaultSubject = "recruiter"
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type tokenService struct {
	secret string
	ttl    time.Duration
	logger *zap.Logger
}

// ServeHTTP generates a JWT for the optional ?sub= query parameter.
func (s *tokenService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("sub")
	if subject == "" {
		subject = defaultSubject
	}

	token, err := auth.GenerateToken(subject, s.secret, s.ttl)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	resp := TokenResponse{Token: token, ExpiresAt: time.Now().Add(s.ttl).UTC()}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Failed to encode token", zap.Error(err))
	}
	s.logger.Info("Token issued", zap.String("sub", subject))
}

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatal("failed to load .env", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/token", &tokenService{
		secret: envOr("JWT_SECRET", defaultSecret),
		ttl:    auth.DefaultTokenTTL,
		logger: logger.Named("auth"),
	})

	port := envOr("AUTH_PORT", defaultPort)
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("Authentication service running", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Authentication service failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	_ = srv.Close()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
