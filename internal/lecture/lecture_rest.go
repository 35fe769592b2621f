package lecture

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/Mujahid2000/lms/internal/query"
	"github.com/Mujahid2000/lms/internal/transport/rest"
)

type lectureDTO struct {
	OID         string    `json:"_id"`
	AltID       string    `json:"id"`
	ModuleID    string    `json:"moduleId"`
	Title       string    `json:"title"`
	Duration    int       `json:"duration"`
	VideoURL    string    `json:"videoUrl"`
	Notes       []string  `json:"notes"`
	Order       int       `json:"order"`
	IsPreview   bool      `json:"isPreview"`
	IsCompleted bool      `json:"isCompleted"`
	IsUnlocked  bool      `json:"isUnlocked"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (d *lectureDTO) model() *LectureModel {
	return &LectureModel{
		ID:          rest.EntityID(d.OID, d.AltID),
		ModuleID:    d.ModuleID,
		Title:       d.Title,
		Duration:    d.Duration,
		VideoURL:    d.VideoURL,
		Notes:       d.Notes,
		Order:       d.Order,
		IsPreview:   d.IsPreview,
		IsCompleted: d.IsCompleted,
		IsUnlocked:  d.IsUnlocked,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// Models convert and sort a list of decoded lectures by order
func models(dtos []*lectureDTO) []*LectureModel {
	result := make([]*LectureModel, 0, len(dtos))
	for _, d := range dtos {
		result = append(result, d.model())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Order < result[j].Order
	})
	return result
}

// RESTLectureRepository LectureRepository against the remote API. Query
// results are cached under the Lecture tag; mutations invalidate it
type RESTLectureRepository struct {
	Pipeline *rest.Pipeline
	Cache    *query.Cache
}

var _ LectureRepository = &RESTLectureRepository{}

// NewLectureRepository create a RESTLectureRepository
func NewLectureRepository(pipeline *rest.Pipeline, cache *query.Cache) *RESTLectureRepository {
	return &RESTLectureRepository{Pipeline: pipeline, Cache: cache}
}

// GetLectures fetch all lectures
func (lr *RESTLectureRepository) GetLectures(ctx context.Context) ([]*LectureModel, error) {
	key := query.NewKey("getLectures")
	if cached, ok := lr.Cache.Get(key); ok {
		return cached.([]*LectureModel), nil
	}

	res, err := lr.Pipeline.Execute(ctx, &rest.Request{Method: http.MethodGet, Path: "/lectures"})
	if err != nil {
		return nil, err
	}
	var dtos []*lectureDTO
	if err := rest.DecodeJSON(res.Body, &dtos); err != nil {
		return nil, err
	}
	result := models(dtos)
	lr.Cache.Put(key, result, query.TagLecture)
	return result, nil
}

// GetLectureByID fetch one lecture
func (lr *RESTLectureRepository) GetLectureByID(ctx context.Context, id string) (*LectureModel, error) {
	key := query.NewKey("getLectureById", id)
	if cached, ok := lr.Cache.Get(key); ok {
		return cached.(*LectureModel), nil
	}

	res, err := lr.Pipeline.Execute(ctx, &rest.Request{Method: http.MethodGet, Path: "/lectures/" + id})
	if err != nil {
		return nil, err
	}
	var dto lectureDTO
	if err := rest.DecodeJSON(res.Body, &dto); err != nil {
		return nil, err
	}
	result := dto.model()
	lr.Cache.Put(key, result, query.TagLecture)
	return result, nil
}

// CreateLecture create a lecture from multipart form data
func (lr *RESTLectureRepository) CreateLecture(ctx context.Context, data *LectureData) (*LectureModel, error) {
	body, contentType, err := encodeLectureForm(data)
	if err != nil {
		return nil, err
	}
	res, err := lr.Pipeline.Execute(ctx, &rest.Request{
		Method:      http.MethodPost,
		Path:        "/lectures",
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	return lr.decodeMutation(res.Body)
}

// UpdateLecture replace a lecture from multipart form data
func (lr *RESTLectureRepository) UpdateLecture(ctx context.Context, id string, data *LectureData) (*LectureModel, error) {
	body, contentType, err := encodeLectureForm(data)
	if err != nil {
		return nil, err
	}
	res, err := lr.Pipeline.Execute(ctx, &rest.Request{
		Method:      http.MethodPut,
		Path:        "/lectures/" + id,
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	return lr.decodeMutation(res.Body)
}

// DeleteLecture remove a lecture
func (lr *RESTLectureRepository) DeleteLecture(ctx context.Context, id string) error {
	_, err := lr.Pipeline.Execute(ctx, &rest.Request{Method: http.MethodDelete, Path: "/lectures/" + id})
	if err != nil {
		return err
	}
	lr.Cache.Invalidate(query.TagLecture, query.TagModule)
	return nil
}

// UpdateStatus persist progression flags for a lecture. Invalidates the
// Module tag as well since the module tree query embeds lecture flags
func (lr *RESTLectureRepository) UpdateStatus(ctx context.Context, lectureID string, status *StatusUpdate) (*LectureModel, error) {
	status.LectureID = lectureID
	body, err := rest.EncodeJSON(status)
	if err != nil {
		return nil, err
	}
	res, err := lr.Pipeline.Execute(ctx, &rest.Request{
		Method:      http.MethodPatch,
		Path:        "/lectures/" + lectureID,
		Body:        body,
		ContentType: rest.JSONContentType,
	})
	if err != nil {
		return nil, err
	}
	return lr.decodeMutation(res.Body)
}

func (lr *RESTLectureRepository) decodeMutation(payload []byte) (*LectureModel, error) {
	lr.Cache.Invalidate(query.TagLecture, query.TagModule)
	var dto lectureDTO
	if err := rest.DecodeJSON(payload, &dto); err != nil {
		return nil, err
	}
	return dto.model(), nil
}

func encodeLectureForm(data *LectureData) ([]byte, string, error) {
	fields := map[string]string{
		"moduleId": data.ModuleID,
		"title":    data.Title,
		"duration": strconv.Itoa(data.Duration),
		"videoUrl": data.VideoURL,
	}
	return rest.EncodeMultipart(fields, data.Notes...)
}
