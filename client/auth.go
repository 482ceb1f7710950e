package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/paularlott/toon/pool"
)

// BearerTokenAuth implements static bearer token authentication.
type BearerTokenAuth struct {
	token string
}

// NewBearerTokenAuth creates a new bearer token auth provider.
func NewBearerTokenAuth(token string) *BearerTokenAuth {
	return &BearerTokenAuth{token: token}
}

func (b *BearerTokenAuth) GetAuthHeader() (string, error) {
	return fmt.Sprintf("Bearer %s", b.token), nil
}

func (b *BearerTokenAuth) Refresh() error {
	return nil // static tokens never change
}

// OAuth2Auth fetches tokens with the OAuth2 client-credentials grant and
// caches them until they expire.
type OAuth2Auth struct {
	config *clientcredentials.Config
	token  *oauth2.Token
	mu     sync.RWMutex
}

// NewOAuth2Auth creates a new OAuth2 auth provider.
func NewOAuth2Auth(clientID, clientSecret, tokenURL string, scopes []string) *OAuth2Auth {
	return &OAuth2Auth{
		config: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		},
	}
}

func (o *OAuth2Auth) GetAuthHeader() (string, error) {
	o.mu.RLock()
	token := o.token
	o.mu.RUnlock()

	if token == nil || !token.Valid() {
		if err := o.Refresh(); err != nil {
			return "", err
		}
		o.mu.RLock()
		token = o.token
		o.mu.RUnlock()
	}

	return fmt.Sprintf("Bearer %s", token.AccessToken), nil
}

// Refresh fetches a new token regardless of the cached one.
func (o *OAuth2Auth) Refresh() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, pool.GetPool().GetHTTPClient())

	token, err := o.config.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	o.token = token
	return nil
}
