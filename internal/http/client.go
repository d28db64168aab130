// Package http builds the net/http client r3 hands to the remote.it SDK:
// tuned transport, TLS 1.2 minimum and proxy support.
package http

import (
	"crypto/tls"
	"net"
	nethttp "net/http"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"

	"github.com/remoteit/remoteit-go/internal/config"
	"github.com/remoteit/remoteit-go/internal/constants"
	"github.com/remoteit/remoteit-go/internal/ratelimit"
	"github.com/remoteit/remoteit-go/internal/version"
)

// NewClient builds an HTTP client from r3 settings.
//
// HTTP/2 is enabled for direct connections and disabled when a proxy is in
// use; set DISABLE_HTTP2=true to force HTTP/1.1 everywhere. Rate limiting is
// not done here: it must happen before signing, see NewLimiter.
func NewClient(s *config.Settings, logger zerolog.Logger) (*nethttp.Client, error) {
	transport := &nethttp.Transport{
		DialContext: (&net.Dialer{
			Timeout:   constants.HTTPDialTimeout,
			KeepAlive: constants.HTTPDialKeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:          constants.HTTPMaxIdleConnsPerHost,
		MaxIdleConnsPerHost:   constants.HTTPMaxIdleConnsPerHost,
		IdleConnTimeout:       constants.HTTPIdleConnTimeout,
		TLSHandshakeTimeout:   constants.HTTPTLSHandshakeTimeout,
		ExpectContinueTimeout: constants.HTTPExpectContinueTimeout,
	}

	if useHTTP2(s) {
		transport.ForceAttemptHTTP2 = true
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Debug().Err(err).Msg("HTTP/2 not configured, using HTTP/1.1")
		}
	} else {
		transport.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
	}

	rt, err := configureProxy(transport, s, logger)
	if err != nil {
		return nil, err
	}

	return &nethttp.Client{
		Transport: &userAgentTransport{next: rt},
		Timeout:   s.Timeout,
	}, nil
}

// useHTTP2 reports whether HTTP/2 should be negotiated. Proxies often break
// HTTP/2 multiplexing, so any active proxy turns it off.
func useHTTP2(s *config.Settings) bool {
	if os.Getenv("DISABLE_HTTP2") == "true" {
		return false
	}
	switch s.ProxyMode {
	case config.ProxyModeNone, "":
		return true
	case config.ProxyModeSystem:
		return os.Getenv("HTTP_PROXY") == "" && os.Getenv("HTTPS_PROXY") == "" &&
			os.Getenv("http_proxy") == "" && os.Getenv("https_proxy") == ""
	default:
		return false
	}
}

// UserAgent is sent with every request.
func UserAgent() string {
	return constants.AppName + "/" + version.Version
}

type userAgentTransport struct {
	next nethttp.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	// RoundTrip must not modify the caller's request.
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", UserAgent())
	return t.next.RoundTrip(req)
}

// NewLimiter returns the request limiter for s, or nil when RateLimit is
// zero. Pass it as remoteit.Options.Limiter so requests wait before they are
// signed.
func NewLimiter(s *config.Settings, logger zerolog.Logger) *ratelimit.RateLimiter {
	if s.RateLimit <= 0 {
		return nil
	}
	return ratelimit.NewRateLimiter(s.RateLimit, ratelimit.DefaultBurst, logger)
}
