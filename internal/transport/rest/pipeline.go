package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/Mujahid2000/lms/internal/auth"
	infra "github.com/Mujahid2000/lms/internal/infrastructure"
	"github.com/Mujahid2000/lms/internal/infrastructure/uuid"
	"go.uber.org/zap"
)

// RefreshPath fixed endpoint used by the silent token refresh
const RefreshPath = "/auth/refresh-token"

// Request description of a remote call. Body is kept as bytes so the
// request can be replayed after a token refresh
type Request struct {
	Method      string
	Path        string
	Body        []byte
	ContentType string
}

// Response final outcome of a pipeline call, a 2xx status with the raw body
type Response struct {
	Status int
	Body   []byte
}

type refreshEnvelope struct {
	Data struct {
		AccessToken string            `json:"accessToken"`
		User        *auth.UserProfile `json:"user"`
	} `json:"data"`
}

// Pipeline authenticated request pipeline. Every remote call carries the
// current credential; a 401 triggers a single-flight token refresh and
// exactly one transparent retry of the original request
type Pipeline struct {
	base    string
	client  *http.Client
	cred    *auth.CredentialStore
	traceID uuid.Generator
	logger  *zap.Logger

	mu        sync.Mutex
	refreshCh chan struct{} // non-nil while a refresh is in flight
}

// NewPipeline create a Pipeline against the API base URL
func NewPipeline(base string, timeout time.Duration, cred *auth.CredentialStore, traceID uuid.Generator, logger *zap.Logger) *Pipeline {
	// refresh token travels in a cookie, mirror browser credentials behavior
	jar, _ := cookiejar.New(nil)
	return &Pipeline{
		base: base,
		client: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		cred:    cred,
		traceID: traceID,
		logger:  logger,
	}
}

// Execute run the request through the pipeline and classify the outcome.
// On 401 it performs (or waits for) one refresh and retries once; it never
// loops further regardless of how many callers hit 401 concurrently
func (p *Pipeline) Execute(ctx context.Context, req *Request) (*Response, error) {
	trace, _ := p.traceID.Generate()

	if err := p.waitForRefresh(ctx); err != nil {
		return nil, &infra.NetworkError{Method: req.Method, Path: req.Path, TraceID: trace, Err: err}
	}

	res, err := p.send(ctx, req, trace)
	if err != nil {
		return nil, err
	}
	if res.StatusCode == http.StatusUnauthorized {
		drain(res)
		p.reauthorize(ctx, trace)
		if !p.cred.Authenticated() {
			return nil, &infra.UnauthorizedError{Method: req.Method, Path: req.Path, TraceID: trace}
		}
		res, err = p.send(ctx, req, trace)
		if err != nil {
			return nil, err
		}
		if res.StatusCode == http.StatusUnauthorized {
			drain(res)
			return nil, &infra.UnauthorizedError{Method: req.Method, Path: req.Path, TraceID: trace}
		}
	}
	return p.classify(req, res, trace)
}

// waitForRefresh block until no refresh is in progress
func (p *Pipeline) waitForRefresh(ctx context.Context) error {
	p.mu.Lock()
	ch := p.refreshCh
	p.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// reauthorize single-flight refresh. The first caller holding the slot
// issues the refresh call; concurrent callers wait for the same outcome
func (p *Pipeline) reauthorize(ctx context.Context, trace string) {
	p.mu.Lock()
	if ch := p.refreshCh; ch != nil {
		p.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
		}
		return
	}
	ch := make(chan struct{})
	p.refreshCh = ch
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.refreshCh = nil
		p.mu.Unlock()
		close(ch)
	}()

	p.refresh(ctx, trace)
}

func (p *Pipeline) refresh(ctx context.Context, trace string) {
	p.logger.Debug("Refreshing session token", zap.String("trace.id", trace))

	res, err := p.send(ctx, &Request{Method: http.MethodPost, Path: RefreshPath}, trace)
	if err != nil {
		p.logger.Warn("Token refresh transport failure", zap.String("trace.id", trace), zap.Error(err))
		p.cred.Clear()
		return
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		p.logger.Info("Token refresh rejected, session ended",
			zap.String("trace.id", trace),
			zap.Int("http.response.status_code", res.StatusCode))
		p.cred.Clear()
		return
	}

	var envelope refreshEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil || envelope.Data.AccessToken == "" {
		p.logger.Warn("Token refresh returned malformed payload", zap.String("trace.id", trace))
		p.cred.Clear()
		return
	}
	p.cred.SetCredential(envelope.Data.User, envelope.Data.AccessToken)
	p.logger.Debug("Session token refreshed", zap.String("trace.id", trace))
}

func (p *Pipeline) send(ctx context.Context, req *Request, trace string) (*http.Response, error) {
	var body *bytes.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	} else {
		body = bytes.NewReader(nil)
	}

	hr, err := http.NewRequestWithContext(ctx, req.Method, p.base+req.Path, body)
	if err != nil {
		return nil, &infra.NetworkError{Method: req.Method, Path: req.Path, TraceID: trace, Err: err}
	}
	if req.ContentType != "" {
		hr.Header.Set("Content-Type", req.ContentType)
	}
	hr.Header.Set("X-Request-ID", trace)
	if token := p.cred.Token(); token != "" {
		hr.Header.Set("Authorization", token)
	}

	res, err := p.client.Do(hr)
	if err != nil {
		p.logger.Warn("Request transport failure",
			zap.String("trace.id", trace),
			zap.String("http.request.method", req.Method),
			zap.String("url.path", req.Path),
			zap.Error(err))
		return nil, &infra.NetworkError{Method: req.Method, Path: req.Path, TraceID: trace, Err: err}
	}
	p.logger.Debug(http.StatusText(res.StatusCode),
		zap.String("trace.id", trace),
		zap.String("http.request.method", req.Method),
		zap.String("url.path", req.Path),
		zap.Int("http.response.status_code", res.StatusCode))
	return res, nil
}

func (p *Pipeline) classify(req *Request, res *http.Response, trace string) (*Response, error) {
	defer res.Body.Close()
	payload, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return nil, &infra.NetworkError{Method: req.Method, Path: req.Path, TraceID: trace, Err: err}
	}

	status := res.StatusCode
	switch {
	case status >= 200 && status < 300:
		return &Response{Status: status, Body: payload}, nil
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return nil, &infra.ValidationError{Detail: errorDetail(payload, status)}
	default:
		return nil, &infra.ServerError{
			Method:  req.Method,
			Path:    req.Path,
			TraceID: trace,
			Status:  status,
			Detail:  errorDetail(payload, status),
		}
	}
}

func errorDetail(payload []byte, status int) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(payload, &body); err == nil {
		for _, detail := range []string{body.Detail, body.Message, body.Error} {
			if detail != "" {
				return detail
			}
		}
	}
	return fmt.Sprintf("request rejected with status %d", status)
}

func drain(res *http.Response) {
	ioutil.ReadAll(res.Body)
	res.Body.Close()
}
