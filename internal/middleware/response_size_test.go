package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubTransport(body []byte, contentLength int64) http.RoundTripper {
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode:    http.StatusOK,
			Body:          io.NopCloser(bytes.NewReader(body)),
			ContentLength: contentLength,
		}, nil
	})
}

func TestResponseSizeLimit(t *testing.T) {
	tests := []struct {
		name          string
		body          []byte
		contentLength int64
		expectedError error
		roundTripErr  bool
	}{
		{
			name:          "small body",
			body:          []byte("audio"),
			contentLength: 5,
		},
		{
			name:          "exactly at limit",
			body:          bytes.Repeat([]byte("a"), maxResponseSize),
			contentLength: -1,
		},
		{
			name:          "declared too large",
			body:          []byte("audio"),
			contentLength: maxResponseSize + 1,
			expectedError: ErrResponseTooLarge,
			roundTripErr:  true,
		},
		{
			name:          "streamed too large",
			body:          bytes.Repeat([]byte("a"), maxResponseSize+10),
			contentLength: -1,
			expectedError: ErrResponseTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := ResponseSizeLimit(stubTransport(tt.body, tt.contentLength))
			req, err := http.NewRequest(http.MethodPost, "http://tts.local/voice", strings.NewReader("{}"))
			require.NoError(t, err)

			resp, err := transport.RoundTrip(req)
			if tt.roundTripErr {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, resp)
				return
			}
			require.NoError(t, err)
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.body, data)
		})
	}
}

func TestResponseSizeLimit_PropagatesTransportError(t *testing.T) {
	transport := ResponseSizeLimit(RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return nil, io.ErrUnexpectedEOF
	}))
	req, err := http.NewRequest(http.MethodGet, "http://tts.local", nil)
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Nil(t, resp)
}
