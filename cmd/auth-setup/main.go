package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rodpaiva/mensageiro-fit/internal/config"
	"github.com/rodpaiva/mensageiro-fit/internal/database"
	"github.com/rodpaiva/mensageiro-fit/internal/domain"
	"github.com/rodpaiva/mensageiro-fit/internal/logger"
	"github.com/rodpaiva/mensageiro-fit/internal/repository"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes needed for the fitness reads plus the profile email.
var scopes = []string{
	"https://www.googleapis.com/auth/fitness.activity.read",
	"https://www.googleapis.com/auth/fitness.heart_rate.read",
	"https://www.googleapis.com/auth/fitness.sleep.read",
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",
}

const redirectAddr = "localhost:8080"

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}

	logger.Info("🛠️ Ensuring database schema exists...")
	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  "http://" + redirectAddr + "/",
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}

	ctx := context.Background()
	token, err := runConsentFlow(ctx, oauthCfg)
	if err != nil {
		logger.Fatal("Authorization failed", "error", err)
	}
	if token.RefreshToken == "" {
		logger.Fatal("Google did not return a refresh token; revoke access at myaccount.google.com/permissions and retry")
	}
	logger.Info("✅ Google authorization succeeded")

	userRepo := repository.NewUserRepository(db)
	credRepo := repository.NewCredentialRepository(db)

	user, err := userRepo.GetByEmail(ctx, cfg.UserEmail)
	if errors.Is(err, domain.ErrNotFound) {
		user = &domain.User{
			Email:    cfg.UserEmail,
			GoogleID: "google_authenticated_user",
		}
		if err := userRepo.Create(ctx, user); err != nil {
			logger.Fatal("Failed to create user", "error", err)
		}
		logger.Info("Created user", "email", cfg.UserEmail)
	} else if err != nil {
		logger.Fatal("Failed to look up user", "error", err)
	}

	cred := &domain.OAuthCredential{
		UserID:       user.ID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}
	if err := credRepo.Upsert(ctx, cred); err != nil {
		logger.Fatal("Failed to store credentials", "error", err)
	}

	logger.Info("🚀 Refresh token stored, setup complete", "email", cfg.UserEmail)
}

// runConsentFlow prints the consent URL, waits for the redirect on a
// local server and exchanges the authorization code.
func runConsentFlow(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	state := fmt.Sprintf("st%d", time.Now().UnixNano())
	// offline + consent prompt so a refresh token is always issued.
	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("\nAbra no navegador e autorize o acesso:\n\n%s\n\n", authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- errors.New("oauth state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errCh <- errors.New("redirect missing authorization code")
			return
		}
		fmt.Fprintln(w, "✅ Autorizado! Pode fechar esta aba.")
		codeCh <- code
	})

	server := &http.Server{Addr: redirectAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	defer server.Shutdown(ctx)

	select {
	case code := <-codeCh:
		return cfg.Exchange(ctx, code)
	case err := <-errCh:
		return nil, err
	case <-time.After(5 * time.Minute):
		return nil, errors.New("timed out waiting for authorization")
	}
}
