package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/fruitsalade/drive/internal/logging"
	"github.com/fruitsalade/drive/internal/protocol"
)

// TokenFile holds a saved authentication token.
type TokenFile struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Server    string    `json:"server"`
	Username  string    `json:"username"`
}

// IsExpired returns true if the token expires within margin.
func (t *TokenFile) IsExpired(margin time.Duration) bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().Add(margin).After(t.ExpiresAt)
}

// TokenExpiry reads the exp claim of a JWT without verifying it. The server
// is the verifier; the client only needs to know when to refresh.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, err
	}
	if exp == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return exp.Time, nil
}

func expiryOf(resp protocol.TokenResponse) time.Time {
	if resp.ExpiresAt != nil {
		return *resp.ExpiresAt
	}
	exp, err := TokenExpiry(resp.Token)
	if err != nil {
		logging.Debug("token expiry unknown", zap.Error(err))
		return time.Time{}
	}
	return exp
}

// Login authenticates with username/password and returns the token to save.
func (c *Client) Login(ctx context.Context, username, password, deviceName string) (*TokenFile, error) {
	body := protocol.LoginRequest{Username: username, Password: password, DeviceName: deviceName}
	var resp protocol.TokenResponse
	r := request{op: "login", method: http.MethodPost, path: "/auth/token", expect: []int{http.StatusOK, http.StatusCreated}}
	if err := c.sendJSON(ctx, r, body, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	c.SetAuthToken(resp.Token)
	return &TokenFile{
		Token:     resp.Token,
		ExpiresAt: expiryOf(resp),
		Server:    c.baseURL,
		Username:  username,
	}, nil
}

// RefreshToken exchanges the current bearer token for a new one and updates tf.
func (c *Client) RefreshToken(ctx context.Context, tf *TokenFile) error {
	var resp protocol.TokenResponse
	r := request{op: "refresh", method: http.MethodPost, path: "/auth/token/refresh"}
	if err := c.sendJSON(ctx, r, nil, &resp); err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	c.SetAuthToken(resp.Token)
	tf.Token = resp.Token
	tf.ExpiresAt = expiryOf(resp)
	return nil
}

// Logout revokes the current token on the server.
func (c *Client) Logout(ctx context.Context) error {
	r := request{op: "logout", method: http.MethodDelete, path: "/auth/token", expect: []int{http.StatusOK, http.StatusNoContent}}
	err := c.sendJSON(ctx, r, nil, nil)
	c.SetAuthToken("")
	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// StartTokenRefreshLoop refreshes the token in the background before it
// expires, saving it to path.
func (c *Client) StartTokenRefreshLoop(ctx context.Context, tf *TokenFile, path string) {
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !tf.IsExpired(time.Hour) {
					continue
				}
				logging.Info("token expiring soon, refreshing")
				if err := c.RefreshToken(ctx, tf); err != nil {
					logging.Error("token refresh failed", zap.Error(err))
					continue
				}
				if err := SaveToken(path, tf); err != nil {
					logging.Error("failed to save refreshed token", zap.Error(err))
					continue
				}
				logging.Info("token refreshed", zap.Time("expires_at", tf.ExpiresAt))
			}
		}
	}()
}

// SaveToken writes a token file with owner-only permissions.
func SaveToken(path string, tf *TokenFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// LoadToken reads a token file.
func LoadToken(path string) (*TokenFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tf TokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, err
	}
	return &tf, nil
}

// DeleteToken removes a token file. A missing file is not an error.
func DeleteToken(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
