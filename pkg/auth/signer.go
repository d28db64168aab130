// Package auth implements request signing for the remote.it API.
//
// Every request to the API carries an Authorization header of the form
//
//	Signature keyId="<id>",algorithm="hmac-sha256",headers="(request-target) host date content-type",signature="<b64>"
//
// where the signature is the base64 encoded HMAC-SHA256 of a four line
// signing string built from the request method, path, host, date and
// content type. The functions here are used by the remoteit client, but they
// can also be used directly to sign requests built by other HTTP stacks.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// Host is the host name that goes into every signing string. It is not
	// taken from the request: the API verifies signatures against this name,
	// so a transport pointed at another host must still sign for it.
	Host = "api.remote.it"

	// Algorithm is the value of the algorithm field of the header.
	Algorithm = "hmac-sha256"

	// SignedHeaders lists the pseudo headers covered by the signature, in order.
	SignedHeaders = "(request-target) host date content-type"

	// DateFormat is the layout of the Date header and of the date line in the
	// signing string. Always rendered in UTC.
	DateFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
)

// Request holds the inputs of a single signature.
type Request struct {
	// KeyID is the R3 access key id. It only appears in the keyId field.
	KeyID string
	// Key is the decoded secret access key.
	Key []byte
	// ContentType must equal the Content-Type header sent on the wire.
	ContentType string
	// Method is the HTTP verb; it is lower-cased for signing.
	Method string
	// Path is the request path without scheme or host, e.g. /graphql/v1.
	Path string
	// Date must equal the Date header sent on the wire.
	Date string
}

// SigningString returns the canonical string covered by the signature.
// Lines are joined by "\n" with no trailing newline.
func SigningString(method, path, date, contentType string) string {
	return strings.Join([]string{
		"(request-target): " + strings.ToLower(method) + " " + path,
		"host: " + Host,
		"date: " + date,
		"content-type: " + contentType,
	}, "\n")
}

// CreateSignature signs message with key using HMAC-SHA256 and returns the
// digest as standard padded base64.
func CreateSignature(key []byte, message string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// BuildAuthHeader returns the Authorization header value for r.
func BuildAuthHeader(r Request) string {
	signature := CreateSignature(r.Key, SigningString(r.Method, r.Path, r.Date, r.ContentType))
	return fmt.Sprintf(`Signature keyId="%s",algorithm="%s",headers="%s",signature="%s"`,
		r.KeyID, Algorithm, SignedHeaders, signature)
}

// FormatDate renders t in the layout the API expects.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateFormat)
}

// Date returns the current time formatted for the Date header.
// Generate it once per request and use the same value for signing and sending.
func Date() string {
	return FormatDate(time.Now())
}

// SignRequest sets the Date and Authorization headers of req.
//
// The signature covers req.Method, the escaped URL path and the Content-Type header
// already present on req, so set the body and content type before calling.
func SignRequest(req *http.Request, keyID string, key []byte, date string) {
	req.Header.Set("Date", date)
	req.Header.Set("Authorization", BuildAuthHeader(Request{
		KeyID:       keyID,
		Key:         key,
		ContentType: req.Header.Get("Content-Type"),
		Method:      req.Method,
		Path:        req.URL.EscapedPath(),
		Date:        date,
	}))
}
