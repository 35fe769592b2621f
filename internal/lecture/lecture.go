package lecture

import (
	"context"
	"time"

	"github.com/Mujahid2000/lms/internal/transport/rest"
)

// LectureModel single lecture inside a module. Order is the position
// within the module, server assigned
type LectureModel struct {
	ID          string    `json:"id"`
	ModuleID    string    `json:"moduleId"`
	Title       string    `json:"title"`
	Duration    int       `json:"duration"` // seconds
	VideoURL    string    `json:"videoUrl"`
	Notes       []string  `json:"notes"`
	Order       int       `json:"order"`
	IsPreview   bool      `json:"isPreview"`
	IsCompleted bool      `json:"isCompleted"`
	IsUnlocked  bool      `json:"isUnlocked"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// LectureData create/update payload, sent as multipart form data
type LectureData struct {
	ModuleID string `json:"moduleId" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Duration int    `json:"duration" validate:"gte=0"`
	VideoURL string `json:"videoUrl" validate:"required,url"`
	Notes    []*rest.FormFile
}

// StatusUpdate progression flags for a lecture, sent via PATCH
type StatusUpdate struct {
	LectureID   string `json:"lectureId"`
	IsCompleted bool   `json:"isCompleted"`
	IsUnlocked  bool   `json:"isUnlocked"`
}

// LectureRepository remote lecture operations
type LectureRepository interface {
	GetLectures(ctx context.Context) ([]*LectureModel, error)
	GetLectureByID(ctx context.Context, id string) (*LectureModel, error)
	CreateLecture(ctx context.Context, data *LectureData) (*LectureModel, error)
	UpdateLecture(ctx context.Context, id string, data *LectureData) (*LectureModel, error)
	DeleteLecture(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, lectureID string, status *StatusUpdate) (*LectureModel, error)
}

// LectureUseCase lecture operations exposed to the presentation layer
type LectureUseCase interface {
	GetLectures(ctx context.Context) ([]*LectureModel, error)
	GetLectureByID(ctx context.Context, id string) (*LectureModel, error)
	CreateLecture(ctx context.Context, data *LectureData) (*LectureModel, error)
	UpdateLecture(ctx context.Context, id string, data *LectureData) (*LectureModel, error)
	DeleteLecture(ctx context.Context, id string) error
}
