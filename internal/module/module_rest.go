package module

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/Mujahid2000/lms/internal/lecture"
	"github.com/Mujahid2000/lms/internal/query"
	"github.com/Mujahid2000/lms/internal/transport/rest"
)

type moduleDTO struct {
	OID          string          `json:"_id"`
	AltID        string          `json:"id"`
	Course       string          `json:"course"`
	CourseID     string          `json:"courseId"`
	Title        string          `json:"title"`
	ModuleNumber int             `json:"moduleNumber"`
	Description  string          `json:"description"`
	Lectures     json.RawMessage `json:"lectures"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (d *moduleDTO) model() (*ModuleModel, error) {
	m := &ModuleModel{
		ID:           rest.EntityID(d.OID, d.AltID),
		CourseID:     rest.EntityID(d.Course, d.CourseID),
		Title:        d.Title,
		ModuleNumber: d.ModuleNumber,
		Description:  d.Description,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if len(d.Lectures) > 0 {
		var lectures []*lecture.LectureModel
		if err := decodeLectures(d.Lectures, &lectures); err != nil {
			return nil, err
		}
		sort.Slice(lectures, func(i, j int) bool {
			return lectures[i].Order < lectures[j].Order
		})
		m.Lectures = lectures
	}
	return m, nil
}

// lectures arrive with Mongo style ids, normalize them at the boundary
func decodeLectures(payload json.RawMessage, out *[]*lecture.LectureModel) error {
	var raw []struct {
		lecture.LectureModel
		OID string `json:"_id"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return err
	}
	for i := range raw {
		l := raw[i].LectureModel
		l.ID = rest.EntityID(raw[i].OID, l.ID)
		*out = append(*out, &l)
	}
	return nil
}

// RESTModuleRepository ModuleRepository against the remote API. The
// by-course query returns modules with embedded lectures; results are
// normalized to course order (moduleNumber, then lecture order)
type RESTModuleRepository struct {
	Pipeline *rest.Pipeline
	Cache    *query.Cache
}

var _ ModuleRepository = &RESTModuleRepository{}

// NewModuleRepository create a RESTModuleRepository
func NewModuleRepository(pipeline *rest.Pipeline, cache *query.Cache) *RESTModuleRepository {
	return &RESTModuleRepository{Pipeline: pipeline, Cache: cache}
}

// GetModulesByCourse fetch the module tree of a course, lectures included
func (mr *RESTModuleRepository) GetModulesByCourse(ctx context.Context, courseID string) ([]*ModuleModel, error) {
	key := query.NewKey("getModulesByCourse", courseID)
	if cached, ok := mr.Cache.Get(key); ok {
		return cached.([]*ModuleModel), nil
	}

	res, err := mr.Pipeline.Execute(ctx, &rest.Request{Method: http.MethodGet, Path: "/modules/" + courseID})
	if err != nil {
		return nil, err
	}
	var dtos []*moduleDTO
	if err := rest.DecodeJSON(res.Body, &dtos); err != nil {
		return nil, err
	}

	result := make([]*ModuleModel, 0, len(dtos))
	for _, d := range dtos {
		m, err := d.model()
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ModuleNumber < result[j].ModuleNumber
	})
	mr.Cache.Put(key, result, query.TagModule)
	return result, nil
}

// CreateModule create a module
func (mr *RESTModuleRepository) CreateModule(ctx context.Context, data *ModuleData) (*ModuleModel, error) {
	body, err := rest.EncodeJSON(data)
	if err != nil {
		return nil, err
	}
	res, err := mr.Pipeline.Execute(ctx, &rest.Request{
		Method:      http.MethodPost,
		Path:        "/modules",
		Body:        body,
		ContentType: rest.JSONContentType,
	})
	if err != nil {
		return nil, err
	}
	return mr.decodeMutation(res.Body)
}

// UpdateModule update a module
func (mr *RESTModuleRepository) UpdateModule(ctx context.Context, id string, data *ModuleData) (*ModuleModel, error) {
	body, err := rest.EncodeJSON(data)
	if err != nil {
		return nil, err
	}
	res, err := mr.Pipeline.Execute(ctx, &rest.Request{
		Method:      http.MethodPut,
		Path:        "/modules/" + id,
		Body:        body,
		ContentType: rest.JSONContentType,
	})
	if err != nil {
		return nil, err
	}
	return mr.decodeMutation(res.Body)
}

// DeleteModule remove a module
func (mr *RESTModuleRepository) DeleteModule(ctx context.Context, id string) error {
	_, err := mr.Pipeline.Execute(ctx, &rest.Request{Method: http.MethodDelete, Path: "/modules/" + id})
	if err != nil {
		return err
	}
	mr.Cache.Invalidate(query.TagModule)
	return nil
}

func (mr *RESTModuleRepository) decodeMutation(payload []byte) (*ModuleModel, error) {
	mr.Cache.Invalidate(query.TagModule)
	var dto moduleDTO
	if err := rest.DecodeJSON(payload, &dto); err != nil {
		return nil, err
	}
	return dto.model()
}
