package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crm/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// API sends JSON requests to an engine in-process
type API struct {
	Engine  http.Handler
	Headers map[string]string
}

// NewAPI wraps engine; headers are sent with every request
func NewAPI(engine http.Handler, headers map[string]string) *API {
	return &API{Engine: engine, Headers: headers}
}

// Envelope is a decoded response whose data is left raw
type Envelope struct {
	Status  int
	Success bool
	Data    json.RawMessage
	Error   *dto.ErrorInfo
	Meta    *dto.Meta
}

// Do sends body (marshalled unless nil) and decodes the response envelope
func (a *API) Do(t testing.TB, method, path string, body any) *Envelope {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)

	env := &Envelope{Status: w.Code}
	if w.Body.Len() == 0 {
		return env
	}
	var decoded struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *dto.ErrorInfo  `json:"error"`
		Meta    *dto.Meta       `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	env.Success, env.Data, env.Error, env.Meta = decoded.Success, decoded.Data, decoded.Error, decoded.Meta
	return env
}

// RequireStatus fails the test unless the response has the given status
func (e *Envelope) RequireStatus(t testing.TB, status int) *Envelope {
	t.Helper()
	if e.Status != status {
		msg := string(e.Data)
		if e.Error != nil {
			msg = e.Error.Code + ": " + e.Error.Message
		}
		require.Failf(t, "unexpected status", "want %d, got %d (%s)", status, e.Status, msg)
	}
	return e
}

// ErrorCode returns the error code, or "" for a successful response
func (e *Envelope) ErrorCode() string {
	if e.Error == nil {
		return ""
	}
	return e.Error.Code
}

// DataAs decodes the envelope data into T
func DataAs[T any](t testing.TB, e *Envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(e.Data, &out), string(e.Data))
	return out
}
