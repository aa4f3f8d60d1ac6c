// Package middleware provides reusable http.RoundTripper wrappers for the upload client.
package middleware

import (
	"net/http"
	"time"

	"github.com/radif/uploader/internal/logger"
)

// RoundTripperFunc adapts a function to http.RoundTripper.
type RoundTripperFunc func(*http.Request) (*http.Response, error)

// RoundTrip calls f(req).
func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Logger logs method, path, status code, and duration for every outgoing request.
// A nil next uses http.DefaultTransport.
func Logger(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
		start := time.Now()
		resp, err := next.RoundTrip(req)
		elapsed := time.Since(start)

		switch {
		case err != nil:
			logger.Errorf("HTTP %s %s - Error: %v, Duration: %v", req.Method, req.URL.Path, err, elapsed)
		case resp.StatusCode >= 500:
			logger.Errorf("HTTP %s %s - Status: %d, Duration: %v", req.Method, req.URL.Path, resp.StatusCode, elapsed)
		case resp.StatusCode >= 400:
			logger.Warnf("HTTP %s %s - Status: %d, Duration: %v", req.Method, req.URL.Path, resp.StatusCode, elapsed)
		default:
			logger.Debugf("HTTP %s %s - Status: %d, Duration: %v", req.Method, req.URL.Path, resp.StatusCode, elapsed)
		}
		return resp, err
	})
}
