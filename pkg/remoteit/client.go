package remoteit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	graphql "github.com/hasura/go-graphql-client"
	"github.com/rs/zerolog"

	"github.com/remoteit/remoteit-go/pkg/auth"
	"github.com/remoteit/remoteit-go/pkg/credentials"
)

// Options configures a Client. The zero value is ready to use.
type Options struct {
	// HTTPClient supplies the transport, timeout and proxy settings. Its
	// Transport is wrapped with request signing. Defaults to a client with
	// DefaultTimeout.
	HTTPClient *http.Client

	// BaseURL overrides the scheme and host requests are sent to, typically
	// a mock server in tests. Signatures always cover host api.remote.it.
	BaseURL string

	// MaxRetries is the number of extra attempts for failed requests.
	// Zero, the default, sends every request exactly once.
	MaxRetries int

	// Logger receives per-call debug logs. The zero value logs nothing.
	Logger zerolog.Logger

	// Limiter, when set, is waited on before each attempt is signed, so a
	// request held back by it still goes out with a fresh date. If it also
	// implements ResponseObserver it sees every response.
	Limiter Limiter
}

// Limiter paces outgoing requests.
type Limiter interface {
	Wait(ctx context.Context) error
}

// ResponseObserver is notified of each response, e.g. to back off on 429.
type ResponseObserver interface {
	Observe(resp *http.Response)
}

// Client calls the remote.it API with one set of credentials.
type Client struct {
	credentials *credentials.Credentials
	baseURL     string
	httpClient  *http.Client
	gql         *graphql.Client
	logger      zerolog.Logger
}

// New creates a Client. Credentials are validated when they are built, so New
// only fails on nil credentials or bad options.
func New(creds *credentials.Credentials, opts Options) (*Client, error) {
	if creds == nil {
		return nil, ErrNoCredentials
	}
	if opts.MaxRetries < 0 {
		return nil, fmt.Errorf("max retries must not be negative, got %d", opts.MaxRetries)
	}

	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = BaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: expected http(s)://host", baseURL)
	}
	// The signature covers the request path, which must be GraphQLPath or
	// FileUploadPath exactly.
	if u.Path != "" || u.RawQuery != "" {
		return nil, fmt.Errorf("invalid base URL %q: must not have a path or query", baseURL)
	}

	logger := opts.Logger
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: DefaultTimeout}
	}
	next := base.Transport
	if next == nil {
		next = http.DefaultTransport
	}

	// Signing sits below the retry loop and after the limiter so each
	// attempt carries a fresh date.
	signed := &http.Client{
		Transport: &signingTransport{
			keyID:   creds.AccessKeyID(),
			key:     creds.Key(),
			limiter: opts.Limiter,
			next:    next,
		},
		Timeout:       base.Timeout,
		Jar:           base.Jar,
		CheckRedirect: base.CheckRedirect,
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = signed
	retryClient.RetryMax = opts.MaxRetries
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = &retryLogger{logger: logger}

	httpClient := retryClient.StandardClient()

	c := &Client{
		credentials: creds,
		baseURL:     baseURL,
		httpClient:  httpClient,
		logger:      logger,
	}
	c.gql = graphql.NewClient(baseURL+GraphQLPath, &recordingDoer{client: httpClient})
	return c, nil
}

// BaseURL returns the scheme and host requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AccessKeyID returns the key id the client signs with.
func (c *Client) AccessKeyID() string {
	return c.credentials.AccessKeyID()
}

// signingTransport signs every outgoing request with a freshly generated date.
// The date is taken after the limiter releases the request, immediately
// before it is handed to next.
type signingTransport struct {
	keyID   string
	key     []byte
	limiter Limiter
	next    http.RoundTripper
}

func (t *signingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(req.Context()); err != nil {
			if req.Body != nil {
				req.Body.Close()
			}
			return nil, err
		}
	}

	// RoundTrip must not modify the caller's request.
	signed := req.Clone(req.Context())
	auth.SignRequest(signed, t.keyID, t.key, auth.Date())
	resp, err := t.next.RoundTrip(signed)
	if err == nil {
		if obs, ok := t.limiter.(ResponseObserver); ok {
			obs.Observe(resp)
		}
	}
	return resp, err
}

// retryLogger implements retryablehttp.LeveledLogger on top of zerolog.
type retryLogger struct {
	logger zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Trace().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

// isStatusOK reports whether code is a 2xx status.
func isStatusOK(code int) bool {
	return code >= 200 && code < 300
}
