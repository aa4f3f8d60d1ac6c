// Package upload sends a single file to the backend as a base64 data URL
// wrapped in a JSON {name, data} envelope.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/radif/uploader/internal/dataurl"
	"github.com/radif/uploader/internal/endpoint"
	"github.com/radif/uploader/internal/identifier"
	"github.com/radif/uploader/internal/logger"
	"github.com/radif/uploader/internal/metrics"
	"github.com/radif/uploader/internal/middleware"
)

const tracerName = "github.com/radif/uploader/internal/upload"

// Uploader performs one POST per Upload call. It is safe for concurrent use.
type Uploader struct {
	client  *http.Client
	ids     identifier.Generator
	builder *endpoint.Builder
	policy  Policy
	metrics *metrics.Collector
	tracer  trace.Tracer
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithHTTPClient sets the client used for the POST. Timeouts and
// cancellation are the client's and the caller's context's concern.
func WithHTTPClient(c *http.Client) Option {
	return func(u *Uploader) {
		u.client = c
	}
}

// WithGenerator sets the source of per-request identifiers.
func WithGenerator(g identifier.Generator) Option {
	return func(u *Uploader) {
		u.ids = g
	}
}

// WithPolicy sets the error handling policy (default Strict).
func WithPolicy(p Policy) Option {
	return func(u *Uploader) {
		u.policy = p
	}
}

// WithMetrics records every upload on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(u *Uploader) {
		u.metrics = c
	}
}

// WithTracer sets the tracer; the global provider's tracer is used otherwise.
func WithTracer(t trace.Tracer) Option {
	return func(u *Uploader) {
		u.tracer = t
	}
}

// New creates an Uploader targeting the backend described by cfg.
func New(cfg endpoint.Config, opts ...Option) (*Uploader, error) {
	u := &Uploader{policy: Strict}
	for _, opt := range opts {
		opt(u)
	}
	if u.client == nil {
		u.client = &http.Client{Transport: middleware.Logger(http.DefaultTransport)}
	}
	if u.ids == nil {
		u.ids = identifier.Pattern{}
	}
	if u.tracer == nil {
		u.tracer = otel.Tracer(tracerName)
	}

	b, err := endpoint.NewBuilder(cfg, u.ids)
	if err != nil {
		return nil, err
	}
	u.builder = b
	return u, nil
}

// Policy returns the configured error handling policy.
func (u *Uploader) Policy() Policy {
	return u.policy
}

// Upload encodes req, POSTs it to a freshly generated URL and returns the
// parsed JSON reply.
//
// Under Strict, every failure is returned as *Error. Under Permissive, only
// read, transport and JSON parse failures are errors, and they are returned
// unnormalized.
func (u *Uploader) Upload(ctx context.Context, req Request) (*Response, error) {
	resp, err := u.execute(ctx, req)
	if err != nil {
		if u.policy == Strict {
			return nil, normalize(err)
		}
		return nil, err
	}
	return resp, nil
}

// UploadFile opens path and uploads it under its base name.
func (u *Uploader) UploadFile(ctx context.Context, path string) (*Response, error) {
	f, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("open %s: %w", path, err)
		u.metrics.Observe(metrics.OutcomeReadError, 0)
		if u.policy == Strict {
			return nil, normalize(err)
		}
		return nil, err
	}
	defer f.Close()

	return u.Upload(ctx, Request{Name: filepath.Base(path), Content: f})
}

func (u *Uploader) execute(ctx context.Context, req Request) (resp *Response, err error) {
	start := time.Now()
	outcome := metrics.OutcomeSuccess
	defer func() {
		u.metrics.Observe(outcome, time.Since(start))
	}()

	ctx, span := u.tracer.Start(ctx, "upload",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("upload.name", req.Name)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if req.Content == nil {
		outcome = metrics.OutcomeReadError
		return nil, ErrNoContent
	}

	data, err := dataurl.Encode(req.Name, req.Content)
	if err != nil {
		outcome = metrics.OutcomeReadError
		return nil, err
	}

	body, err := json.Marshal(Envelope{Name: req.Name, Data: data})
	if err != nil {
		outcome = metrics.OutcomeReadError
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	u.metrics.ObservePayload(len(body))

	url, id := u.builder.Build()
	span.SetAttributes(attribute.String("upload.request_id", id))
	logger.Debugf("upload: name=%s request_id=%s bytes=%d", req.Name, id, len(body))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		outcome = metrics.OutcomeNetworkErr
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := u.client.Do(httpReq)
	if err != nil {
		outcome = metrics.OutcomeNetworkErr
		return nil, err
	}
	defer httpResp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", httpResp.StatusCode))

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		outcome = metrics.OutcomeNetworkErr
		return nil, &responseError{status: httpResp.StatusCode, err: fmt.Errorf("read response: %w", err)}
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		outcome = metrics.OutcomeParseError
		return nil, &responseError{status: httpResp.StatusCode, err: fmt.Errorf("parse response: %w", err)}
	}

	if !isSuccess(httpResp.StatusCode) {
		outcome = metrics.OutcomeStatusError
		if u.policy == Strict {
			return nil, &StatusError{
				Status:     httpResp.StatusCode,
				StatusText: statusText(httpResp),
				Detail:     detailOf(parsed),
			}
		}
	}

	logger.Debugf("upload: request_id=%s status=%d", id, httpResp.StatusCode)
	return &Response{
		Status:    httpResp.StatusCode,
		RequestID: id,
		Body:      json.RawMessage(raw),
	}, nil
}

// statusText returns the reason phrase sent by the server, or the standard one.
func statusText(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// AsError returns err as an *Error when it is one.
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
