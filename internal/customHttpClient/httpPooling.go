package customHttpClient

import (
	"net/http"
	"time"

	"github.com/akolanti/LectureRAG/internal/config"
)

var customTransport = &http.Transport{
	MaxIdleConns:        config.MaxIdleConns,
	MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
	IdleConnTimeout:     config.IdleConnTimeout,
}

// GetPooledClient returns an http client sharing the pooled transport.
// The timeout bounds a single provider call attempt; the composer's
// retry loop is therefore bounded by attempts x (timeout + backoff).
func GetPooledClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: customTransport,
		Timeout:   timeout,
	}
}
