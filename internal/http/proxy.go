package http

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"
	"time"

	ntlmssp "github.com/Azure/go-ntlmssp"
	"github.com/rs/zerolog"
	"golang.org/x/net/http/httpproxy"

	"github.com/remoteit/remoteit-go/internal/config"
	"github.com/remoteit/remoteit-go/internal/constants"
)

// configureProxy sets transport.Proxy for the configured mode and returns the
// round tripper to use, which wraps transport for NTLM.
func configureProxy(transport *nethttp.Transport, s *config.Settings, logger zerolog.Logger) (nethttp.RoundTripper, error) {
	switch s.ProxyMode {
	case config.ProxyModeNone, "":
		transport.Proxy = nil
		return transport, nil

	case config.ProxyModeSystem:
		// HTTP_PROXY, HTTPS_PROXY and NO_PROXY from the environment
		transport.Proxy = nethttp.ProxyFromEnvironment
		return transport, nil

	case config.ProxyModeBasic:
		proxyURL, err := s.ParsedProxyURL()
		if err != nil {
			return nil, err
		}
		if proxyURL.User != nil {
			if _, ok := proxyURL.User.Password(); !ok {
				logger.Warn().Str("proxy", proxyURL.Redacted()).Msg("proxy user configured but password missing; proxy auth disabled")
				proxyURL.User = nil
			}
		}
		transport.Proxy = proxyFuncWithBypass(proxyURL, s.NoProxy, logger)
		return transport, nil

	case config.ProxyModeNTLM:
		proxyURL, err := s.ParsedProxyURL()
		if err != nil {
			return nil, err
		}
		transport.Proxy = proxyFuncWithBypass(proxyURL, s.NoProxy, logger)
		return ntlmssp.Negotiator{RoundTripper: transport}, nil

	default:
		return nil, fmt.Errorf("unsupported proxy mode: %s", s.ProxyMode)
	}
}

// proxyFuncWithBypass returns a proxy function that respects the NoProxy bypass list.
// If noProxy is empty, behaves identically to nethttp.ProxyURL.
// When noProxy is set, uses golang.org/x/net/http/httpproxy to match hosts/CIDRs.
func proxyFuncWithBypass(proxyURL *url.URL, noProxy string, logger zerolog.Logger) func(*nethttp.Request) (*url.URL, error) {
	if noProxy == "" {
		return nethttp.ProxyURL(proxyURL)
	}
	cfg := httpproxy.Config{
		HTTPProxy:  proxyURL.String(),
		HTTPSProxy: proxyURL.String(),
		NoProxy:    noProxy,
	}
	proxyFunc := cfg.ProxyFunc()
	return func(req *nethttp.Request) (*url.URL, error) {
		result, err := proxyFunc(req.URL)
		if result == nil {
			logger.Debug().Str("host", req.URL.Host).Msg("proxy bypass (direct connection)")
		} else {
			logger.Debug().Str("host", req.URL.Host).Str("proxy", result.Host).Msg("proxied")
		}
		return result, err
	}
}

// Warmup sends one unauthenticated request through client to baseURL so a
// proxy handshake fails early with a clear error. Any response below 500 counts
// as success.
func Warmup(ctx context.Context, client *nethttp.Client, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.ProxyWarmupTimeout)
	defer cancel()

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodHead, baseURL, nil)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("warmup request failed after %s: %w", time.Since(start).Round(time.Millisecond), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("warmup request returned server error: %d", resp.StatusCode)
	}
	return nil
}
