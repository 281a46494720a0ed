package helpers

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// ESOptions are the connection settings for NewESClient.
type ESOptions struct {
	Addrs    []string
	Username string
	Password string
	// MaxRetries applies to 502/503/504 responses only.
	MaxRetries int
}

// NewESClient returns (nil, nil) when no address is configured so callers can treat
// search as optional.
func NewESClient(o ESOptions) (*elasticsearch.Client, error) {
	if len(o.Addrs) == 0 {
		return nil, nil
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 2
	}
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     o.Addrs,
		Username:      o.Username,
		Password:      o.Password,
		RetryOnStatus: []int{502, 503, 504},
		MaxRetries:    o.MaxRetries,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
		},
	})
}
