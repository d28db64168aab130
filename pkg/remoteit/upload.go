package remoteit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const uploadOperation = "UploadFile"

// FileUpload describes a file to upload. Uploading a Name that already
// exists creates a new version of that file.
type FileUpload struct {
	// Name is the file's name in remote.it.
	Name string
	// Path is the file on the local filesystem.
	Path       string
	Executable bool
	ShortDesc  string
	LongDesc   string
}

// UploadFileResponse is the result of a successful upload.
type UploadFileResponse struct {
	FileID        string            `json:"fileId"`
	FileVersionID string            `json:"fileVersionId"`
	Version       int               `json:"version"`
	Name          string            `json:"name"`
	Executable    bool              `json:"executable"`
	OwnerID       string            `json:"ownerId"`
	FileArguments []json.RawMessage `json:"fileArguments"`
}

type uploadErrorResponse struct {
	Message string `json:"message"`
}

// UploadFile sends a file as a multipart form to the upload endpoint.
//
// A rejected upload with an error message is returned as an *APIError; other
// non-2xx responses are *TransportErrors.
func (c *Client) UploadFile(ctx context.Context, upload FileUpload) (*UploadFileResponse, error) {
	if upload.Name == "" {
		return nil, errors.New("upload name is required")
	}

	body, contentType, err := buildUploadForm(upload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+FileUploadPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Str("operation", uploadOperation).Str("request_id", requestID).Err(err).Msg("upload failed")
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("operation", uploadOperation).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("file upload")

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{StatusCode: resp.StatusCode, Err: err}
	}

	if !isStatusOK(resp.StatusCode) {
		var apiErr uploadErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Message != "" {
			return nil, &APIError{
				Operation:  uploadOperation,
				StatusCode: resp.StatusCode,
				Messages:   []string{apiErr.Message},
			}
		}
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: truncate(respBody, maxErrorBody)}
	}

	var out UploadFileResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, &DecodeError{Operation: uploadOperation, Err: err}
	}
	return &out, nil
}

// buildUploadForm encodes upload as multipart/form-data and returns the body
// with its content type, boundary included.
func buildUploadForm(upload FileUpload) ([]byte, string, error) {
	f, err := os.Open(upload.Path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", upload.Path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(upload.Name, filepath.Base(upload.Path))
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", upload.Path, err)
	}

	fields := [][2]string{{"executable", strconv.FormatBool(upload.Executable)}}
	if upload.ShortDesc != "" {
		fields = append(fields, [2]string{"shortDesc", upload.ShortDesc})
	}
	if upload.LongDesc != "" {
		fields = append(fields, [2]string{"longDesc", upload.LongDesc})
	}
	for _, field := range fields {
		if err := w.WriteField(field[0], field[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", field[0], err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
