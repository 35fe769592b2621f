package lmsd

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func lectureFormBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("failed to build form: %s", err)
		}
	}
	part, err := writer.CreateFormFile("notes", "notes.pdf")
	if err != nil {
		t.Fatalf("failed to attach notes: %s", err)
	}
	part.Write([]byte("pdf"))
	writer.Close()
	return &buf, writer.FormDataContentType()
}

func TestUpdateLectureStatusByID(t *testing.T) {
	ta := newCRUDTestApp(t)
	target := ta.moduleTree(t)[0].Lectures[1]
	if target.IsCompleted || target.IsUnlocked {
		t.Fatal("expected the second lecture to start locked")
	}

	rec := ta.jsonRequest(http.MethodPatch, "/api/lectures/"+target.ID,
		`{"lectureId":"`+target.ID+`","isCompleted":false,"isUnlocked":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status patch failed with %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := ta.data.LectureByID(target.ID)
	if err != nil {
		t.Fatalf("failed to reread lecture: %s", err)
	}
	if stored.IsCompleted || !stored.IsUnlocked {
		t.Fatalf("expected persisted unlock flags, got %+v", stored)
	}

	rec = ta.jsonRequest(http.MethodPatch, "/api/lectures/nope",
		`{"lectureId":"nope","isCompleted":true,"isUnlocked":true}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown lecture, got %d", rec.Code)
	}
}

func TestUpdateLectureByID(t *testing.T) {
	ta := newCRUDTestApp(t)
	target := ta.moduleTree(t)[0].Lectures[0]

	body, contentType := lectureFormBody(t, map[string]string{
		"moduleId": target.ModuleID,
		"title":    "Renamed Lecture",
		"duration": "600",
		"videoUrl": "https://example.com/renamed",
	})
	req := httptest.NewRequest(http.MethodPut, "/api/lectures/"+target.ID, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("lecture update failed with %d: %s", rec.Code, rec.Body.String())
	}

	stored, _ := ta.data.LectureByID(target.ID)
	if stored.Title != "Renamed Lecture" || stored.Duration != 600 {
		t.Fatalf("expected persisted update, got %+v", stored)
	}
	if len(stored.Notes) != 1 {
		t.Fatalf("expected the uploaded note to be recorded, got %v", stored.Notes)
	}
}

func TestCreateLectureContinuesOrder(t *testing.T) {
	ta := newCRUDTestApp(t)
	moduleID := ta.moduleTree(t)[0].ID

	body, contentType := lectureFormBody(t, map[string]string{
		"moduleId": moduleID,
		"title":    "Third Lecture",
		"duration": "300",
		"videoUrl": "https://example.com/third",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/lectures", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	ta.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("lecture create failed with %d: %s", rec.Code, rec.Body.String())
	}

	var created LectureRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode created lecture: %s", err)
	}
	if created.Order != 3 {
		t.Fatalf("expected order to continue the module sequence, got %d", created.Order)
	}
	if created.IsUnlocked {
		t.Fatal("expected a later lecture to start locked")
	}
}

func TestDeleteLectureByID(t *testing.T) {
	ta := newCRUDTestApp(t)
	target := ta.moduleTree(t)[1].Lectures[0]

	rec := ta.jsonRequest(http.MethodDelete, "/api/lectures/"+target.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, err := ta.data.LectureByID(target.ID); err != ErrNotFound {
		t.Fatalf("expected lecture to be gone, got %v", err)
	}

	rec = ta.jsonRequest(http.MethodGet, "/api/lectures/"+target.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}
