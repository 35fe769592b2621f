package module

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Mujahid2000/lms/internal/auth"
	"github.com/Mujahid2000/lms/internal/infrastructure/driver"
	"github.com/Mujahid2000/lms/internal/infrastructure/uuid"
	"github.com/Mujahid2000/lms/internal/query"
	"github.com/Mujahid2000/lms/internal/transport/rest"
	"go.uber.org/zap"
)

const moduleTreePayload = `[
	{"_id":"m2","course":"c1","title":"Components","moduleNumber":2,"lectures":[
		{"_id":"C","moduleId":"m2","title":"Understanding Components","order":1}
	]},
	{"_id":"m1","course":"c1","title":"Getting Started","moduleNumber":1,"lectures":[
		{"_id":"B","moduleId":"m1","title":"Setup","order":2,"isUnlocked":false},
		{"_id":"A","moduleId":"m1","title":"What is React?","order":1,"isUnlocked":true}
	]}
]`

func newTestRepository(base string) *RESTModuleRepository {
	logger := zap.NewNop()
	cred := auth.NewCredentialStore(driver.NewMemoryStore(), logger)
	cred.SetCredential(&auth.UserProfile{ID: "u1"}, "token-1")
	pipeline := rest.NewPipeline(base, 5*time.Second, cred, uuid.NewNanoIDGenerator(8), logger)
	return NewModuleRepository(pipeline, query.NewCache())
}

func TestGetModulesByCourseNormalizesAndSorts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/modules/c1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(moduleTreePayload))
	}))
	defer server.Close()

	repo := newTestRepository(server.URL)
	modules, err := repo.GetModulesByCourse(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetModulesByCourse failed: %s", err)
	}

	if len(modules) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(modules))
	}
	// modules come back in moduleNumber order regardless of wire order
	if modules[0].ID != "m1" || modules[1].ID != "m2" {
		t.Fatalf("expected m1 before m2, got %q, %q", modules[0].ID, modules[1].ID)
	}
	if modules[0].CourseID != "c1" {
		t.Fatalf("expected course id normalized, got %q", modules[0].CourseID)
	}

	lectures := modules[0].Lectures
	if len(lectures) != 2 || lectures[0].ID != "A" || lectures[1].ID != "B" {
		t.Fatalf("expected embedded lectures sorted by order with normalized ids, got %+v", lectures)
	}
	if !lectures[0].IsUnlocked || lectures[1].IsUnlocked {
		t.Fatal("expected lecture flags to survive decoding")
	}
}
