package client

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type loggingRoundTripper struct {
	next http.RoundTripper
	log  *zap.Logger
}

// LoggingRoundTripper logs method, path, status and duration of every
// request. Headers and bodies are never logged.
func LoggingRoundTripper(next http.RoundTripper, log *zap.Logger) http.RoundTripper {
	return &loggingRoundTripper{next: next, log: log}
}

func (rt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.String("request_id", req.Header.Get(HeaderRequestID)),
		zap.Duration("dur", time.Since(start)),
	}
	if err != nil {
		rt.log.Warn("http", append(fields, zap.Error(err))...)
		return resp, err
	}
	fields = append(fields, zap.Int("status", resp.StatusCode))
	if resp.StatusCode >= 400 {
		rt.log.Info("http", fields...)
	} else {
		rt.log.Debug("http", fields...)
	}
	return resp, nil
}
