package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/fruitsalade/drive/internal/protocol"
	"github.com/fruitsalade/drive/internal/retry"
)

func testAuthClient(handler http.Handler) (*Client, *httptest.Server) {
	ts := httptest.NewServer(handler)
	c := New(Config{
		BaseURL:     ts.URL,
		RetryConfig: retry.Config{MaxAttempts: 1, InitialWait: time.Millisecond, MaxWait: time.Millisecond},
	})
	return c, ts
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestLogin_Success(t *testing.T) {
	expires := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	c, ts := testAuthClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/token" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req protocol.LoginRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "alice" {
			t.Errorf("expected username alice, got %s", req.Username)
		}
		writeJSON(w, http.StatusOK, protocol.TokenResponse{Token: "jwt-token-123", ExpiresAt: &expires})
	}))
	defer ts.Close()

	tf, err := c.Login(context.Background(), "alice", "pass123", "test-device")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tf.Token != "jwt-token-123" || tf.Username != "alice" || tf.Server != ts.URL {
		t.Errorf("unexpected token file %+v", tf)
	}
	if !tf.ExpiresAt.Equal(expires) {
		t.Errorf("expected expiry %v, got %v", expires, tf.ExpiresAt)
	}
}

func TestLogin_ExpiryFromJWT(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token := signedToken(t, exp)
	c, ts := testAuthClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, protocol.TokenResponse{Token: token})
	}))
	defer ts.Close()

	tf, err := c.Login(context.Background(), "alice", "pass", "device")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tf.ExpiresAt.Equal(exp) {
		t.Errorf("expected expiry from exp claim %v, got %v", exp, tf.ExpiresAt)
	}
}

func TestLogin_Failure(t *testing.T) {
	c, ts := testAuthClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`invalid credentials`))
	}))
	defer ts.Close()

	_, err := c.Login(context.Background(), "alice", "wrong", "device")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if StatusCode(err) != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestRefreshToken_Success(t *testing.T) {
	c, ts := testAuthClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/token/refresh" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer old-token" {
			t.Errorf("expected Bearer old-token, got %q", auth)
		}
		expires := time.Now().Add(30 * 24 * time.Hour)
		writeJSON(w, http.StatusOK, protocol.TokenResponse{Token: "new-jwt-token", ExpiresAt: &expires})
	}))
	defer ts.Close()

	c.SetAuthToken("old-token")
	tf := &TokenFile{Token: "old-token"}
	if err := c.RefreshToken(context.Background(), tf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tf.Token != "new-jwt-token" {
		t.Errorf("expected new-jwt-token, got %s", tf.Token)
	}
}

func TestTokenFile_SaveLoadDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	original := &TokenFile{
		Token:     "test-token-abc",
		ExpiresAt: time.Now().Add(24 * time.Hour).Truncate(time.Millisecond),
		Server:    "http://localhost:8080",
		Username:  "testuser",
	}

	if err := SaveToken(path, original); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadToken(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Token != original.Token || loaded.Server != original.Server || loaded.Username != original.Username {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, original)
	}
	if err := DeleteToken(path); err != nil {
		t.Fatal(err)
	}
	if err := DeleteToken(path); err != nil {
		t.Errorf("deleting a missing token should not fail: %v", err)
	}
}

func TestIsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		margin  time.Duration
		want    bool
	}{
		{"future token", time.Now().Add(24 * time.Hour), 0, false},
		{"past token", time.Now().Add(-1 * time.Hour), 0, true},
		{"expires within margin", time.Now().Add(30 * time.Minute), time.Hour, true},
		{"expires after margin", time.Now().Add(2 * time.Hour), time.Hour, false},
		{"unknown expiry", time.Time{}, time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := &TokenFile{ExpiresAt: tt.expires}
			if got := tf.IsExpired(tt.margin); got != tt.want {
				t.Errorf("IsExpired(%v) = %v, want %v", tt.margin, got, tt.want)
			}
		})
	}
}

func TestTokenExpiry_Invalid(t *testing.T) {
	if _, err := TokenExpiry("not-a-jwt"); err == nil {
		t.Error("expected error for malformed token")
	}
	if _, err := TokenExpiry(strings.Repeat("a", 3)); err == nil {
		t.Error("expected error for malformed token")
	}
}
