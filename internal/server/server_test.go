package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/f3rmion/tabconv/internal/convert"
	"github.com/f3rmion/tabconv/internal/dispatch"
	"github.com/f3rmion/tabconv/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyServer(t *testing.T) (*Server, *convert.Engine) {
	t.Helper()
	s := New(logging.Discard())
	e, err := convert.Load(context.Background())
	require.NoError(t, err)
	require.True(t, dispatch.NewGate().Open(e, s))
	return s, e
}

func post(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNotReady(t *testing.T) {
	s := New(logging.Discard())

	rec := post(t, s.Handler(), "/v1/csv", ConvertRequest{Input: "a,b"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":false}`, rec.Body.String())
}

func TestConvertLaTeX(t *testing.T) {
	s, e := readyServer(t)

	rec := post(t, s.Handler(), "/v1/latex", ConvertRequest{Input: "a,b\n1,2"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "latex", resp.Format)
	assert.Equal(t, "\\begin{tabular}{cc}\n\\hline\na & b \\\\\n1 & 2 \\\\\n\\hline\n\\end{tabular}", resp.Output)
	assert.Zero(t, e.Live())
}

func TestConvertCSVRounded(t *testing.T) {
	s, _ := readyServer(t)

	tests := []struct {
		name string
		req  ConvertRequest
		want string
	}{
		{"decimal", ConvertRequest{Input: "1.23456,2", RoundMode: "decimal", Decimals: "2"}, "1.23,2.00"},
		{"decimal unparseable", ConvertRequest{Input: "1.6", RoundMode: "decimal", Decimals: "abc"}, "2"},
		{"sig figs", ConvertRequest{Input: "12345", RoundMode: "sig-figs", SigFigs: "2"}, "12000"},
		{"sig figs unparseable", ConvertRequest{Input: "87", RoundMode: "sig-figs", SigFigs: "x"}, "90"},
		{"no mode", ConvertRequest{Input: "1.23456", Decimals: "2"}, "1.23456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s.Handler(), "/v1/csv", tt.req)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp ConvertResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Output)
		})
	}
}

func TestOversizedParamIsBadRequest(t *testing.T) {
	s, e := readyServer(t)

	for _, req := range []ConvertRequest{
		{Input: "1.5", RoundMode: "decimal", Decimals: "200000000"},
		{Input: "1.5", RoundMode: "sig-figs", SigFigs: "2147483647"},
	} {
		rec := post(t, s.Handler(), "/v1/csv", req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "out of range")
		assert.Less(t, rec.Body.Len(), 512)
	}

	// The limit only applies to the parameter the selected mode reads.
	rec := post(t, s.Handler(), "/v1/csv", ConvertRequest{Input: "1.5", RoundMode: "none", Decimals: "200000000"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = post(t, s.Handler(), "/v1/csv", ConvertRequest{Input: "1.5", RoundMode: "decimal", Decimals: "100"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ConvertResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Output, len("1.")+100)
	assert.Zero(t, e.Live())
}

func TestEmptyInputIsNoContent(t *testing.T) {
	s, _ := readyServer(t)

	rec := post(t, s.Handler(), "/v1/latex", ConvertRequest{Input: "  \n "})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestBadBody(t *testing.T) {
	s, _ := readyServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/csv", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	s, _ := readyServer(t)

	rec := post(t, s.Handler(), "/v1/csv", ConvertRequest{Input: "a"})
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get(RequestIDHeader))
	assert.JSONEq(t, `{"ready":true}`, rec.Body.String())
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	s := New(logging.New(&buf, "info"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"msg":"http_request"`)
	assert.Contains(t, out, `"path":"/healthz"`)
	assert.Contains(t, out, `"status":200`)
}
