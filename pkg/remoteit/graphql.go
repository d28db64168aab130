package remoteit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	graphql "github.com/hasura/go-graphql-client"
)

// maxErrorBody caps how much of a failed response is kept in a TransportError.
const maxErrorBody = 4 << 10

// RequestIDHeader carries a per-call id for correlating client and server logs.
const RequestIDHeader = "X-Request-Id"

// OperationKind distinguishes queries from mutations.
type OperationKind string

const (
	KindQuery    OperationKind = "query"
	KindMutation OperationKind = "mutation"
)

// Operation is a GraphQL document with typed variables V and typed data R.
type Operation[V, R any] struct {
	Name     string
	Kind     OperationKind
	Document string
}

// Descriptor returns the untyped description of the operation.
func (o Operation[V, R]) Descriptor() Descriptor {
	return Descriptor{Name: o.Name, Kind: o.Kind, Document: o.Document}
}

// Descriptor describes a catalog entry independent of its Go types.
type Descriptor struct {
	Name     string        `json:"name"`
	Kind     OperationKind `json:"kind"`
	Document string        `json:"document"`
}

// Response is the decoded result of one GraphQL call.
type Response[R any] struct {
	Data      R
	RequestID string
}

// callState is shared between Execute and recordingDoer through the request
// context. It records what the transport saw, which the GraphQL client does
// not report in a structured way.
type callState struct {
	requestID  string
	statusCode int
	err        *TransportError
}

type callStateKey struct{}

// recordingDoer sends GraphQL requests and turns non-2xx responses and
// network failures into TransportErrors.
type recordingDoer struct {
	client *http.Client
}

func (d *recordingDoer) Do(req *http.Request) (*http.Response, error) {
	state, _ := req.Context().Value(callStateKey{}).(*callState)
	if state != nil && state.requestID != "" {
		req.Header.Set(RequestIDHeader, state.requestID)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		terr := &TransportError{Err: err}
		if state != nil {
			state.err = terr
		}
		return nil, terr
	}
	if state != nil {
		state.statusCode = resp.StatusCode
	}
	if !isStatusOK(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		terr := &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
		if state != nil {
			state.err = terr
		}
		return nil, terr
	}
	return resp, nil
}

// Execute runs op with vars as one signed POST to the GraphQL endpoint.
//
// The error is a *TransportError when the request failed or returned a
// non-2xx status, an *APIError when the response carried GraphQL errors, and
// a *DecodeError when the body could not be decoded into R. With an
// *APIError the response is also returned if the server sent partial data.
func Execute[V, R any](ctx context.Context, c *Client, op Operation[V, R], vars V) (*Response[R], error) {
	variables, err := toVariables(vars)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode variables: %w", op.Name, err)
	}

	state := &callState{requestID: uuid.NewString()}
	ctx = context.WithValue(ctx, callStateKey{}, state)

	start := time.Now()
	raw, err := c.gql.ExecRaw(ctx, op.Document, variables)
	c.logger.Debug().
		Str("operation", op.Name).
		Str("request_id", state.requestID).
		Int("status", state.statusCode).
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("graphql call")

	if state.err != nil {
		return nil, state.err
	}

	if err != nil {
		var gqlErrs graphql.Errors
		if !errors.As(err, &gqlErrs) {
			return nil, fmt.Errorf("%s: %w", op.Name, err)
		}
		if hasCode(gqlErrs, graphql.ErrRequestError) {
			return nil, &TransportError{StatusCode: state.statusCode, Err: err}
		}
		if hasCode(gqlErrs, graphql.ErrJsonDecode, graphql.ErrGraphQLDecode) {
			return nil, &DecodeError{Operation: op.Name, Err: err}
		}
		apiErr := &APIError{Operation: op.Name, Messages: messages(gqlErrs)}
		if hasData(raw) {
			resp := &Response[R]{RequestID: state.requestID}
			if json.Unmarshal(raw, &resp.Data) == nil {
				return resp, apiErr
			}
		}
		return nil, apiErr
	}

	resp := &Response[R]{RequestID: state.requestID}
	if !hasData(raw) {
		return nil, &DecodeError{Operation: op.Name, Err: errors.New("response has no data")}
	}
	if err := json.Unmarshal(raw, &resp.Data); err != nil {
		return nil, &DecodeError{Operation: op.Name, Err: err}
	}
	return resp, nil
}

// toVariables converts a variables struct into the map the GraphQL client
// sends, honoring json tags and omitempty.
func toVariables(vars any) (map[string]any, error) {
	data, err := json.Marshal(vars)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if string(data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// hasCode reports whether any of errs was raised by the GraphQL client itself
// with one of codes, as opposed to being sent by the server.
func hasCode(errs graphql.Errors, codes ...string) bool {
	for _, e := range errs {
		code, _ := e.Extensions["code"].(string)
		for _, c := range codes {
			if code == c {
				return true
			}
		}
	}
	return false
}

func messages(errs graphql.Errors) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Message)
	}
	return out
}

func hasData(raw []byte) bool {
	return len(raw) > 0 && string(raw) != "null"
}
