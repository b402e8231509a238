package testhelpers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/stretchr/testify/require"
)

// BuildAuthRequest builds a request carrying a bearer token (if any).
func (h *TestHelper) BuildAuthRequest(method, reqURL, jwtString string, body []byte) *http.Request {
	req, err := http.NewRequest(method, reqURL, bytes.NewReader(body))
	require.NoError(h.T, err)

	if jwtString != "" {
		req.Header.Set("Authorization", "Bearer "+jwtString)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// NoRedirectClient stops at the first response so 302s can be inspected.
func (h *TestHelper) NoRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// DoRequest performs an HTTP request and asserts that no network-level error occurred.
func (h *TestHelper) DoRequest(req *http.Request, client *http.Client) *http.Response {
	resp, err := client.Do(req)
	require.NoError(h.T, err, "HTTP request failed")
	return resp
}

// ReadBody reads the response body and restores it for later reads.
func (h *TestHelper) ReadBody(resp *http.Response) string {
	if resp == nil || resp.Body == nil {
		return "<nil response or body>"
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "<error reading body>"
	}
	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	return string(bodyBytes)
}
