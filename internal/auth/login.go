package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	// OAuth callback timeout
	DefaultCallbackTimeout = 5 * time.Minute

	// Token exchange timeout
	DefaultExchangeTimeout = 30 * time.Second

	// Starting port for OAuth callback server
	DefaultStartPort = 8085

	// Max port attempts
	DefaultMaxPortAttempts = 5
)

var (
	// ErrCallbackTimeout is returned when the browser never calls back.
	ErrCallbackTimeout = errors.New("oauth callback timed out")

	// ErrNoPort is returned when no callback port can be bound.
	ErrNoPort = errors.New("could not bind to local port for OAuth callback")
)

// Authorizer runs the authorization code flow with PKCE against a local
// callback server.
type Authorizer struct {
	Config *oauth2.Config

	// StartPort is the first callback port tried. Zero picks any free port.
	StartPort       int
	MaxPortAttempts int
	CallbackTimeout time.Duration
	ExchangeTimeout time.Duration
}

// NewAuthorizer creates an authorizer with the default ports and timeouts.
func NewAuthorizer(conf *oauth2.Config) *Authorizer {
	return &Authorizer{
		Config:          conf,
		StartPort:       DefaultStartPort,
		MaxPortAttempts: DefaultMaxPortAttempts,
		CallbackTimeout: DefaultCallbackTimeout,
		ExchangeTimeout: DefaultExchangeTimeout,
	}
}

// Authorize hands the URL the user must visit to openURL and blocks until
// the browser calls back, then exchanges the code for a token.
func (a *Authorizer) Authorize(ctx context.Context, openURL func(string)) (*oauth2.Token, error) {
	port, listener, err := a.listen()
	if err != nil {
		return nil, err
	}
	defer listener.Close()

	conf := *a.Config
	conf.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)

	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()

	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)
	openURL(authURL)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "State mismatch", http.StatusBadRequest)
			trySend(errCh, fmt.Errorf("state mismatch in callback"))
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			trySend(errCh, fmt.Errorf("no code in callback"))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		trySend(codeCh, code)
	})

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			trySend(errCh, err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-time.After(a.CallbackTimeout):
		return nil, ErrCallbackTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, a.ExchangeTimeout)
	defer cancel()

	token, err := conf.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// listen binds the first available callback port.
func (a *Authorizer) listen() (int, net.Listener, error) {
	attempts := a.MaxPortAttempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		port := a.StartPort
		if port != 0 {
			port += i
		}
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return listener.Addr().(*net.TCPAddr).Port, listener, nil
		}
	}
	return 0, nil, ErrNoPort
}

func trySend[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}
