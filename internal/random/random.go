// Package random supplies unguessable CSRF state tokens.
package random

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	autherrors "github.com/jrsteele09/go-edge-auth/internal/errors"
)

// Source returns a fresh random string on each call.
type Source interface {
	String(ctx context.Context) (string, error)
}

// CryptoSource reads from crypto/rand.
type CryptoSource struct {
	Bytes int
}

var _ Source = CryptoSource{}

// String returns Bytes random bytes (default 32) encoded as base64url.
func (s CryptoSource) String(_ context.Context) (string, error) {
	n := s.Bytes
	if n <= 0 {
		n = 32
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", autherrors.Wrapf(autherrors.ErrRandomUnavailable, "crypto/rand: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HTTPSource fetches a random string from a CSPRNG web API that answers
// with {"Data": "<random>"}, such as https://csprng.xyz/v1/api.
type HTTPSource struct {
	url    string
	client *http.Client
}

var _ Source = (*HTTPSource)(nil)

// NewHTTPSource creates a source backed by endpoint. A nil client uses http.DefaultClient.
func NewHTTPSource(endpoint string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{url: endpoint, client: client}
}

type csprngResponse struct {
	Data string `json:"Data"`
}

func (s *HTTPSource) String(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("random: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", autherrors.Wrapf(autherrors.ErrRandomUnavailable, "fetch %s: %v", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", autherrors.Wrapf(autherrors.ErrRandomUnavailable, "fetch %s: status %d", s.url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", autherrors.Wrapf(autherrors.ErrRandomUnavailable, "read body: %v", err)
	}

	var data csprngResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", autherrors.Wrapf(autherrors.ErrRandomUnavailable, "decode body: %v", err)
	}
	if data.Data == "" {
		return "", autherrors.Wrapf(autherrors.ErrRandomUnavailable, "empty random data")
	}
	return data.Data, nil
}
