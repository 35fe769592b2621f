package course

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Mujahid2000/lms/internal/query"
	"github.com/Mujahid2000/lms/internal/transport/rest"
)

type courseDTO struct {
	OID         string    `json:"_id"`
	AltID       string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Thumbnail   string    `json:"thumbnail"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (d *courseDTO) model() *CourseModel {
	return &CourseModel{
		ID:          rest.EntityID(d.OID, d.AltID),
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Thumbnail:   d.Thumbnail,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// RESTCourseRepository CourseRepository against the remote API. Query
// results are cached under the Courses tag; mutations invalidate it
type RESTCourseRepository struct {
	Pipeline *rest.Pipeline
	Cache    *query.Cache
}

var _ CourseRepository = &RESTCourseRepository{}

// NewCourseRepository create a RESTCourseRepository
func NewCourseRepository(pipeline *rest.Pipeline, cache *query.Cache) *RESTCourseRepository {
	return &RESTCourseRepository{Pipeline: pipeline, Cache: cache}
}

// GetCourses fetch the course catalog
func (cr *RESTCourseRepository) GetCourses(ctx context.Context) ([]*CourseModel, error) {
	key := query.NewKey("getCourses")
	if cached, ok := cr.Cache.Get(key); ok {
		return cached.([]*CourseModel), nil
	}

	res, err := cr.Pipeline.Execute(ctx, &rest.Request{Method: http.MethodGet, Path: "/courses"})
	if err != nil {
		return nil, err
	}
	var dtos []*courseDTO
	if err := rest.DecodeJSON(res.Body, &dtos); err != nil {
		return nil, err
	}
	result := make([]*CourseModel, 0, len(dtos))
	for _, d := range dtos {
		result = append(result, d.model())
	}
	cr.Cache.Put(key, result, query.TagCourses)
	return result, nil
}

// GetCourseByID fetch one course
func (cr *RESTCourseRepository) GetCourseByID(ctx context.Context, id string) (*CourseModel, error) {
	key := query.NewKey("getCourseById", id)
	if cached, ok := cr.Cache.Get(key); ok {
		return cached.(*CourseModel), nil
	}

	res, err := cr.Pipeline.Execute(ctx, &rest.Request{Method: http.MethodGet, Path: "/courses/" + id})
	if err != nil {
		return nil, err
	}
	var dto courseDTO
	if err := rest.DecodeJSON(res.Body, &dto); err != nil {
		return nil, err
	}
	result := dto.model()
	cr.Cache.Put(key, result, query.TagCourses)
	return result, nil
}

// CreateCourse create a course from multipart form data
func (cr *RESTCourseRepository) CreateCourse(ctx context.Context, data *CourseData) (*CourseModel, error) {
	body, contentType, err := encodeCourseForm(data)
	if err != nil {
		return nil, err
	}
	res, err := cr.Pipeline.Execute(ctx, &rest.Request{
		Method:      http.MethodPost,
		Path:        "/courses",
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	return cr.decodeMutation(res.Body)
}

// UpdateCourse replace a course from multipart form data
func (cr *RESTCourseRepository) UpdateCourse(ctx context.Context, id string, data *CourseData) (*CourseModel, error) {
	body, contentType, err := encodeCourseForm(data)
	if err != nil {
		return nil, err
	}
	res, err := cr.Pipeline.Execute(ctx, &rest.Request{
		Method:      http.MethodPut,
		Path:        "/courses/" + id,
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	return cr.decodeMutation(res.Body)
}

// DeleteCourse remove a course
func (cr *RESTCourseRepository) DeleteCourse(ctx context.Context, id string) error {
	_, err := cr.Pipeline.Execute(ctx, &rest.Request{Method: http.MethodDelete, Path: "/courses/" + id})
	if err != nil {
		return err
	}
	cr.Cache.Invalidate(query.TagCourses)
	return nil
}

func (cr *RESTCourseRepository) decodeMutation(payload []byte) (*CourseModel, error) {
	cr.Cache.Invalidate(query.TagCourses)
	var dto courseDTO
	if err := rest.DecodeJSON(payload, &dto); err != nil {
		return nil, err
	}
	return dto.model(), nil
}

func encodeCourseForm(data *CourseData) ([]byte, string, error) {
	fields := map[string]string{
		"title":       data.Title,
		"description": data.Description,
		"price":       strconv.FormatFloat(data.Price, 'f', -1, 64),
	}
	return rest.EncodeMultipart(fields, data.Thumbnail)
}
