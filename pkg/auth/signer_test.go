package auth

import (
	"encoding/base64"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDate = "Tue, 01 Jan 2025 00:00:00 GMT"

func testKey(t testing.TB) []byte {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString("YmFy")
	require.NoError(t, err)
	return key
}

func baseRequest(t testing.TB) Request {
	return Request{
		KeyID:       "foo",
		Key:         testKey(t),
		ContentType: "application/json",
		Method:      http.MethodPost,
		Path:        "/graphql/v1",
		Date:        testDate,
	}
}

var headerPattern = regexp.MustCompile(`^Signature keyId="([^"]*)",algorithm="hmac-sha256",headers="\(request-target\) host date content-type",signature="([A-Za-z0-9+/=]+)"$`)

func signatureOf(t *testing.T, header string) string {
	t.Helper()
	m := headerPattern.FindStringSubmatch(header)
	require.NotNil(t, m, "header %q does not match the template", header)
	return m[2]
}

func TestSigningString(t *testing.T) {
	got := SigningString("POST", "/graphql/v1", testDate, "application/json")
	want := "(request-target): post /graphql/v1\n" +
		"host: api.remote.it\n" +
		"date: Tue, 01 Jan 2025 00:00:00 GMT\n" +
		"content-type: application/json"
	assert.Equal(t, want, got)
	assert.False(t, strings.HasSuffix(got, "\n"))
}

func TestCreateSignature(t *testing.T) {
	assert.Equal(t, "y/cimb3aSwWBhfxt9cv1Ifuivug8wxQm8R/RqYotjUM=", CreateSignature([]byte("bar"), "hello"))
}

func TestBuildAuthHeaderGolden(t *testing.T) {
	tests := []struct {
		name        string
		path        string
		contentType string
		want        string
	}{
		{
			name:        "graphql",
			path:        "/graphql/v1",
			contentType: "application/json",
			want:        `Signature keyId="foo",algorithm="hmac-sha256",headers="(request-target) host date content-type",signature="qn2uszpc+Di3g9IOmjj+pT99C6Ok6UKoqTGx4oTbuXk="`,
		},
		{
			name:        "file upload",
			path:        "/graphql/v1/file/upload",
			contentType: "multipart/form-data; boundary=abc123",
			want:        `Signature keyId="foo",algorithm="hmac-sha256",headers="(request-target) host date content-type",signature="RLCE2KP3foI/Q0hto/mGnQlY7EhBtSdxyJNTxYUW6NE="`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := baseRequest(t)
			r.Path = tt.path
			r.ContentType = tt.contentType
			assert.Equal(t, tt.want, BuildAuthHeader(r))
		})
	}
}

func TestBuildAuthHeaderDeterministic(t *testing.T) {
	r := baseRequest(t)
	assert.Equal(t, BuildAuthHeader(r), BuildAuthHeader(r))
}

func TestBuildAuthHeaderMethodCase(t *testing.T) {
	upper := baseRequest(t)
	lower := baseRequest(t)
	lower.Method = "post"
	assert.Equal(t, BuildAuthHeader(upper), BuildAuthHeader(lower))
}

func TestBuildAuthHeaderTemplate(t *testing.T) {
	header := BuildAuthHeader(baseRequest(t))
	sig := signatureOf(t, header)

	raw, err := base64.StdEncoding.DecodeString(sig)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestBuildAuthHeaderInputSensitivity(t *testing.T) {
	base := baseRequest(t)
	baseSig := signatureOf(t, BuildAuthHeader(base))

	mutations := map[string]func(r *Request){
		"method":       func(r *Request) { r.Method = http.MethodGet },
		"path":         func(r *Request) { r.Path = "/graphql/v1/file/upload" },
		"date":         func(r *Request) { r.Date = "Wed, 02 Jan 2025 00:00:00 GMT" },
		"content type": func(r *Request) { r.ContentType = "text/plain" },
		"key":          func(r *Request) { r.Key = []byte("baz") },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			r := base
			mutate(&r)
			assert.NotEqual(t, baseSig, signatureOf(t, BuildAuthHeader(r)))
		})
	}

	t.Run("key id", func(t *testing.T) {
		r := base
		r.KeyID = "other"
		header := BuildAuthHeader(r)
		assert.Equal(t, baseSig, signatureOf(t, header))
		assert.Contains(t, header, `keyId="other"`)
		assert.NotEqual(t, BuildAuthHeader(base), header)
	})
}

func TestBuildAuthHeaderConcurrent(t *testing.T) {
	r := baseRequest(t)
	want := BuildAuthHeader(r)

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = BuildAuthHeader(r)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Wed, 01 Jan 2025 12:00:00 GMT", FormatDate(ts))

	// Non-UTC input is converted.
	berlin := time.FixedZone("CET", 3600)
	assert.Equal(t, "Wed, 01 Jan 2025 12:00:00 GMT", FormatDate(ts.In(berlin)))
}

func TestDate(t *testing.T) {
	d := Date()
	parsed, err := time.Parse(DateFormat, d)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, 5*time.Second)
}

func TestSignRequest(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "https://api.remote.it/graphql/v1", strings.NewReader("{}"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	SignRequest(req, "foo", testKey(t), testDate)

	assert.Equal(t, testDate, req.Header.Get("Date"))
	assert.Equal(t, BuildAuthHeader(baseRequest(t)), req.Header.Get("Authorization"))
}

func TestSignRequestIgnoresURLHost(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "http://127.0.0.1:8080/graphql/v1", nil)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	SignRequest(req, "foo", testKey(t), testDate)

	assert.Equal(t, BuildAuthHeader(baseRequest(t)), req.Header.Get("Authorization"))
}
