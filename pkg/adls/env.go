package adls

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	envEndpoint = "ADLS_ENDPOINT"
	envToken    = "ADLS_TOKEN"
)

// NewFromEnv builds an HTTP client for the endpoint in ADLS_ENDPOINT. When
// ADLS_TOKEN is set it is sent as a bearer token.
func NewFromEnv(opts ...Option) (*Client, error) {
	baseURL := strings.TrimSpace(os.Getenv(envEndpoint))
	if baseURL == "" {
		return nil, errors.Errorf("adls: HTTP mode requires %s", envEndpoint)
	}
	if token := strings.TrimSpace(os.Getenv(envToken)); token != "" {
		opts = append([]Option{WithBearerToken(token)}, opts...)
	}
	client, err := New(baseURL, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "adls: init HTTP client")
	}
	return client, nil
}
