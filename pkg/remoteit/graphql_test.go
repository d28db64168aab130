package remoteit

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func TestGetFilesSendsSignedGraphQLRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, GraphQLPath, r.URL.Path)
		assert.Equal(t, ContentTypeJSON, r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		assertSigned(t, r)

		req := decodeGraphQLRequest(t, r)
		assert.Equal(t, GetFilesOp.Document, req.Query)
		assert.Empty(t, req.Variables)

		writeJSON(w, http.StatusOK, `{"data":{"files":[{
			"id":"f1","name":"hello.sh","executable":true,
			"created":"2025-01-01T00:00:00Z","updated":"2025-01-02T00:00:00Z",
			"owner":{"id":"u1","email":"me@example.com"},
			"versions":{"items":[{"id":"v1","version":2,"created":"2025-01-02T00:00:00Z",
				"arguments":[{"name":"target","argumentType":"StringEntry"}]}]}
		}]}}`)
	})

	data, err := c.GetFiles(testContext(t))
	require.NoError(t, err)
	require.Len(t, data.Files, 1)

	f := data.Files[0]
	assert.Equal(t, "f1", f.ID)
	assert.Equal(t, "hello.sh", f.Name)
	assert.True(t, f.Executable)
	assert.Equal(t, "me@example.com", f.Owner.Email)
	assert.Equal(t, 2025, f.Created.Year())
	require.Len(t, f.Versions.Items, 1)
	assert.Equal(t, 2, f.Versions.Items[0].Version)
	assert.Equal(t, "target", f.Versions.Items[0].Arguments[0].Name)
}

func TestExecuteReturnsRequestID(t *testing.T) {
	var sent string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		sent = r.Header.Get(RequestIDHeader)
		writeJSON(w, http.StatusOK, `{"data":{"applicationTypes":[]}}`)
	})

	resp, err := Execute(testContext(t), c, GetApplicationTypesOp, NoVariables{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.RequestID)
	assert.Equal(t, sent, resp.RequestID)
}

func TestExecuteNonSuccessStatusIsTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"invalid signature"}`)
	})

	_, err := c.GetFiles(testContext(t))
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr), "got %T: %v", err, err)
	assert.Equal(t, http.StatusUnauthorized, terr.StatusCode)
	assert.Contains(t, terr.Body, "invalid signature")
	assert.True(t, IsTransportError(err))
	assert.False(t, IsAPIError(err))
	assert.False(t, IsDecodeError(err))
}

func TestExecuteNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(testCredentials(t), Options{BaseURL: url})
	require.NoError(t, err)

	_, err = c.GetFiles(testContext(t))
	require.Error(t, err)

	var terr *TransportError
	require.True(t, errors.As(err, &terr), "got %T: %v", err, err)
	assert.Zero(t, terr.StatusCode)
	assert.Error(t, terr.Err)
}

func TestExecuteCanceledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"files":[]}}`)
	})

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	_, err := c.GetFiles(ctx)
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteGraphQLErrorsAreAPIErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":null,"errors":[{"message":"file not found"},{"message":"try again"}]}`)
	})

	data, err := c.DeleteFile(testContext(t), "missing")
	require.Error(t, err)
	assert.Nil(t, data)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr), "got %T: %v", err, err)
	assert.Equal(t, "DeleteFile", apiErr.Operation)
	assert.Equal(t, []string{"file not found", "try again"}, apiErr.Messages)
	assert.Contains(t, err.Error(), "file not found")
}

func TestExecuteKeepsPartialData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"files":[{"id":"f1","name":"a.sh"}]},"errors":[{"message":"versions unavailable"}]}`)
	})

	data, err := c.GetFiles(testContext(t))
	assert.True(t, IsAPIError(err))
	require.NotNil(t, data)
	require.Len(t, data.Files, 1)
	assert.Equal(t, "f1", data.Files[0].ID)
}

func TestExecuteInvalidJSONIsDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":`)
	})

	_, err := c.GetFiles(testContext(t))
	require.Error(t, err)
	assert.True(t, IsDecodeError(err), "got %T: %v", err, err)
}

func TestExecuteMismatchedDataIsDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"files":"not a list"}}`)
	})

	_, err := c.GetFiles(testContext(t))
	require.Error(t, err)

	var derr *DecodeError
	require.True(t, errors.As(err, &derr), "got %T: %v", err, err)
	assert.Equal(t, "GetFiles", derr.Operation)
}

func TestExecuteMissingDataIsDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	_, err := c.GetApplicationTypes(testContext(t))
	assert.True(t, IsDecodeError(err), "got %T: %v", err, err)
}

func TestToVariables(t *testing.T) {
	vars, err := toVariables(NoVariables{})
	require.NoError(t, err)
	assert.Empty(t, vars)

	vars, err = toVariables(GetJobsOptions{Limit: Int(5), Statuses: []JobStatus{JobStatusFailed}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"limit":    float64(5),
		"statuses": []any{"FAILED"},
	}, vars)
}
