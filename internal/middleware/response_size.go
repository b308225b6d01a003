package middleware

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxResponseSize = 10 * 1024 * 1024 // 10MB

// ErrResponseTooLarge is returned when an upstream body exceeds the size limit
var ErrResponseTooLarge = errors.New("response body too large")

// RoundTripperFunc adapts a function to http.RoundTripper
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// ResponseSizeLimit limits the size of response bodies read through next
func ResponseSizeLimit(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
		resp, err := next.RoundTrip(r)
		if err != nil {
			return nil, err
		}

		if resp.ContentLength > maxResponseSize {
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d bytes", ErrResponseTooLarge, resp.ContentLength)
		}

		resp.Body = &limitedBody{body: resp.Body, remaining: maxResponseSize}
		return resp, nil
	})
}

type limitedBody struct {
	body      io.ReadCloser
	remaining int64
}

func (b *limitedBody) Read(p []byte) (int, error) {
	if b.remaining <= 0 {
		// One more byte tells a body of exactly the limit apart from a larger one
		var probe [1]byte
		if n, _ := b.body.Read(probe[:]); n > 0 {
			return 0, ErrResponseTooLarge
		}
		return 0, io.EOF
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.body.Read(p)
	b.remaining -= int64(n)
	return n, err
}

func (b *limitedBody) Close() error {
	return b.body.Close()
}
