package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Mujahid2000/lms/internal/auth"
	infra "github.com/Mujahid2000/lms/internal/infrastructure"
	"github.com/Mujahid2000/lms/internal/infrastructure/driver"
	"github.com/Mujahid2000/lms/internal/infrastructure/uuid"
	"go.uber.org/zap"
)

func newTestPipeline(base string) (*Pipeline, *auth.CredentialStore) {
	logger := zap.NewNop()
	cred := auth.NewCredentialStore(driver.NewMemoryStore(), logger)
	pipeline := NewPipeline(base, 5*time.Second, cred, uuid.NewNanoIDGenerator(8), logger)
	return pipeline, cred
}

func TestExecuteAttachesToken(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	pipeline, cred := newTestPipeline(server.URL)
	cred.SetCredential(&auth.UserProfile{ID: "u1"}, "token-1")

	res, err := pipeline.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/courses"})
	if err != nil {
		t.Fatalf("Execute failed: %s", err)
	}
	if res.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Status)
	}
	if gotToken != "token-1" {
		t.Fatalf("expected raw token in Authorization header, got %q", gotToken)
	}
}

func TestSingleFlightRefresh(t *testing.T) {
	const workers = 8

	var refreshCalls int32
	var firstWave int32
	allRejected := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == RefreshPath {
			atomic.AddInt32(&refreshCalls, 1)
			// hold the refresh until every worker has been rejected once,
			// so all of them contend for the same refresh slot
			<-allRejected
			w.Write([]byte(`{"data":{"accessToken":"fresh","user":{"_id":"u1","name":"Demo"}}}`))
			return
		}
		if r.Header.Get("Authorization") != "fresh" {
			if atomic.AddInt32(&firstWave, 1) == workers {
				close(allRejected)
			}
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	pipeline, cred := newTestPipeline(server.URL)
	cred.SetCredential(&auth.UserProfile{ID: "u1"}, "stale")

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = pipeline.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/courses"})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d failed: %s", i, err)
		}
	}
	if calls := atomic.LoadInt32(&refreshCalls); calls != 1 {
		t.Fatalf("expected exactly one refresh call, got %d", calls)
	}
	if cred.Token() != "fresh" {
		t.Fatalf("expected refreshed token, got %q", cred.Token())
	}
}

func TestRefreshFailureEndsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	pipeline, cred := newTestPipeline(server.URL)
	cred.SetCredential(&auth.UserProfile{ID: "u1"}, "stale")

	_, err := pipeline.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/courses"})
	var unauthorized *infra.UnauthorizedError
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected UnauthorizedError, got %v", err)
	}
	if cred.Authenticated() {
		t.Fatal("expected credential to be cleared after failed refresh")
	}
}

func TestRetryHappensOnlyOnce(t *testing.T) {
	var protectedCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == RefreshPath {
			w.Write([]byte(`{"data":{"accessToken":"fresh","user":{"_id":"u1"}}}`))
			return
		}
		// the protected endpoint keeps rejecting even the fresh token
		atomic.AddInt32(&protectedCalls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	pipeline, cred := newTestPipeline(server.URL)
	cred.SetCredential(&auth.UserProfile{ID: "u1"}, "stale")

	_, err := pipeline.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/courses"})
	var unauthorized *infra.UnauthorizedError
	if !errors.As(err, &unauthorized) {
		t.Fatalf("expected UnauthorizedError, got %v", err)
	}
	if calls := atomic.LoadInt32(&protectedCalls); calls != 2 {
		t.Fatalf("expected the original call plus one retry, got %d calls", calls)
	}
}

func TestClassifyValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"title is required"}`))
	}))
	defer server.Close()

	pipeline, _ := newTestPipeline(server.URL)
	_, err := pipeline.Execute(context.Background(), &Request{Method: http.MethodPost, Path: "/courses"})
	var validation *infra.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validation.Detail != "title is required" {
		t.Fatalf("expected server detail, got %q", validation.Detail)
	}
}

func TestClassifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	}))
	defer server.Close()

	pipeline, _ := newTestPipeline(server.URL)
	_, err := pipeline.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/courses"})
	var serverErr *infra.ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if serverErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", serverErr.Status)
	}
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	pipeline, _ := newTestPipeline(server.URL)
	_, err := pipeline.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/courses"})
	var network *infra.NetworkError
	if !errors.As(err, &network) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}
