// Package constants holds tuning values shared by the r3 command and its HTTP stack.
package constants

import (
	"time"
)

// Application identity
const (
	// AppName is the command name, also used in the User-Agent header.
	AppName = "r3"
)

// API and Context Timeouts
const (
	// APIContextTimeout - default timeout for one API call (30 seconds)
	APIContextTimeout = 30 * time.Second

	// UploadContextTimeout - timeout for a file upload (10 minutes)
	// The whole script body travels in one request.
	UploadContextTimeout = 10 * time.Minute

	// ProxyWarmupTimeout - timeout for the optional proxy warmup request (15 seconds)
	ProxyWarmupTimeout = 15 * time.Second
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (30 seconds)
	HTTPTLSHandshakeTimeout = 30 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (30 seconds)
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPMaxIdleConnsPerHost - idle connections kept per host
	// All requests go to the single API host.
	HTTPMaxIdleConnsPerHost = 8
)

// Pagination Safety Limits
const (
	// DevicePageSize - devices requested per page by `r3 devices list --all`
	DevicePageSize = 100

	// MaxPaginationPages - maximum pages to fetch before stopping (prevents infinite loops)
	// At 100 items/page, this allows up to 100,000 devices.
	MaxPaginationPages = 1000
)
