package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/jakechorley/shift-rules/internal/config"
)

const (
	AuthPort       = 3000
	authTimeout    = 5 * time.Minute
	callbackPath   = "/oauth/callback"
	tokenDirName   = ".shift-rules/tokens"
	tokenFilePerms = 0600
	tokenDirPerms  = 0700
	tokenInfoURL   = "https://oauth2.googleapis.com/tokeninfo"
)

// OAuth scopes for Google APIs
const (
	ScopeSheetsReadonly = "https://www.googleapis.com/auth/spreadsheets.readonly"
	ScopeGmailSend      = "https://www.googleapis.com/auth/gmail.send"
)

// RequiredScopes returns the scopes used by the roster import and mail notifications
func RequiredScopes() []string {
	return []string{ScopeSheetsReadonly, ScopeGmailSend}
}

// GetOAuthConfig creates an OAuth2 config from the OAuth client configuration
func GetOAuthConfig(oauthCfg *config.OAuthClientConfig) (*oauth2.Config, error) {
	raw, err := json.Marshal(oauthCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal oauth config: %w", err)
	}

	googleConfig, err := google.ConfigFromJSON(raw, RequiredScopes()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create google config: %w", err)
	}

	googleConfig.RedirectURL = fmt.Sprintf("http://localhost:%d%s", AuthPort, callbackPath)
	return googleConfig, nil
}

// TokenStore persists one OAuth token per environment under Dir
type TokenStore struct {
	Dir string
}

// DefaultTokenStore stores tokens under ~/.shift-rules/tokens
func DefaultTokenStore() (*TokenStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return &TokenStore{Dir: filepath.Join(homeDir, tokenDirName)}, nil
}

func (s *TokenStore) path(env string) string {
	if env == "" {
		env = "default"
	}
	return filepath.Join(s.Dir, fmt.Sprintf("token-%s.json", env))
}

// Load returns nil without error when no token has been saved for env
func (s *TokenStore) Load(env string) (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path(env))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &token, nil
}

// Save writes the token with owner-only permissions
func (s *TokenStore) Save(env string, token *oauth2.Token) error {
	if err := os.MkdirAll(s.Dir, tokenDirPerms); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(s.path(env), data, tokenFilePerms); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Delete removes the token for env; a missing file is not an error
func (s *TokenStore) Delete(env string) error {
	if err := os.Remove(s.path(env)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete token file: %w", err)
	}
	return nil
}

// Authenticator obtains a token for one environment, preferring the in-memory
// copy, then the token file (refreshing if needed), then the browser flow.
// Only one flow runs at a time.
type Authenticator struct {
	oauthConfig  *oauth2.Config
	store        *TokenStore
	env          string
	logger       *zap.Logger
	httpClient   *http.Client
	tokenInfoURL string

	mu     sync.Mutex
	cached *oauth2.Token
}

// NewAuthenticator creates an Authenticator
func NewAuthenticator(oauthConfig *oauth2.Config, store *TokenStore, env string, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		oauthConfig:  oauthConfig,
		store:        store,
		env:          env,
		logger:       logger,
		httpClient:   http.DefaultClient,
		tokenInfoURL: tokenInfoURL,
	}
}

// Token returns a valid token carrying every required scope
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cached != nil && a.cached.Valid() {
		return a.cached, nil
	}

	if token := a.fromStore(ctx); token != nil {
		a.cached = token
		return token, nil
	}

	a.logger.Info("No valid token found, starting OAuth flow")
	authURL := a.oauthConfig.AuthCodeURL("state", oauth2.AccessTypeOffline)
	fmt.Printf("\nVisit this URL to authorize the application:\n%s\n\n", authURL)

	code, err := listenForAuthCallback(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get authorization code: %w", err)
	}

	token, err := a.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if err := a.checkScopes(ctx, token); err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if err := a.store.Save(a.env, token); err != nil {
		a.logger.Warn("Failed to save token", zap.Error(err))
	}

	a.cached = token
	return token, nil
}

// HTTPClient returns a client that authorizes and refreshes with the current token
func (a *Authenticator) HTTPClient(ctx context.Context) (*http.Client, error) {
	token, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	return a.oauthConfig.Client(ctx, token), nil
}

// Clear forgets the in-memory token
func (a *Authenticator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cached = nil
}

// fromStore returns a usable stored token, refreshing it if expired.
// Stored tokens missing a scope are deleted.
func (a *Authenticator) fromStore(ctx context.Context) *oauth2.Token {
	token, err := a.store.Load(a.env)
	if err != nil {
		a.logger.Warn("Failed to load token from file", zap.Error(err))
		return nil
	}
	if token == nil {
		return nil
	}

	if !token.Valid() {
		if token.RefreshToken == "" {
			return nil
		}
		refreshed, err := a.oauthConfig.TokenSource(ctx, token).Token()
		if err != nil {
			a.logger.Warn("Failed to refresh token", zap.Error(err))
			return nil
		}
		token = refreshed
		if err := a.store.Save(a.env, token); err != nil {
			a.logger.Warn("Failed to save refreshed token", zap.Error(err))
		}
		a.logger.Debug("Token refreshed")
	}

	if err := a.checkScopes(ctx, token); err != nil {
		a.logger.Warn("Stored token rejected, deleting", zap.Error(err))
		if err := a.store.Delete(a.env); err != nil {
			a.logger.Warn("Failed to delete token", zap.Error(err))
		}
		return nil
	}

	return token
}

// checkScopes asks the tokeninfo endpoint which scopes the token carries
func (a *Authenticator) checkScopes(ctx context.Context, token *oauth2.Token) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.tokenInfoURL+"?access_token="+token.AccessToken, nil)
	if err != nil {
		return fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call tokeninfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("tokeninfo request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var info struct {
		Scope string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	return missingScopes(strings.Fields(info.Scope))
}

func missingScopes(granted []string) error {
	var missing []string
	for _, required := range RequiredScopes() {
		if !slices.Contains(granted, required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("token is missing required scopes: %v", missing)
	}
	return nil
}

// listenForAuthCallback serves the redirect URI until a code arrives or the flow times out
func listenForAuthCallback(ctx context.Context) (string, error) {
	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			select {
			case errChan <- fmt.Errorf("no authorization code received"):
			default:
			}
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>Authorization Successful</title></head>
<body><h1>Authorization successful!</h1><p>You can close this window.</p></body></html>`)

		select {
		case codeChan <- code:
		default:
		}
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", AuthPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errChan <- fmt.Errorf("server error: %w", err):
			default:
			}
		}
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	var code string
	var authErr error
	select {
	case code = <-codeChan:
	case authErr = <-errChan:
	case <-timeoutCtx.Done():
		authErr = fmt.Errorf("authorization timeout after %v", authTimeout)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)

	if authErr != nil {
		return "", authErr
	}
	return code, nil
}
