package lmsd

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Mujahid2000/lms/internal/infrastructure/uuid"
)

// ErrNotFound entity does not exist
var ErrNotFound = errors.New("entity not found")

// ErrDuplicatedUser unique email constraint violation
var ErrDuplicatedUser = errors.New("email is already registered")

// UserRecord stored account
type UserRecord struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}

// CourseRecord stored course, serialized with a Mongo style identifier
// to match the deployed API wire format
type CourseRecord struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Thumbnail   string    `json:"thumbnail"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ModuleRecord stored module. ModuleNumber is assigned on create and
// not client mutable
type ModuleRecord struct {
	ID           string    `json:"_id"`
	CourseID     string    `json:"course"`
	Title        string    `json:"title"`
	ModuleNumber int       `json:"moduleNumber"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// LectureRecord stored lecture. Order is assigned on create within its
// module
type LectureRecord struct {
	ID          string    `json:"_id"`
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

// ModuleWithLectures module tree node returned by the by-course query
type ModuleWithLectures struct {
	*ModuleRecord
	Lectures []*LectureRecord `json:"lectures"`
}

// Dataset in-memory storage behind the dev server
type Dataset struct {
	mu       sync.RWMutex
	ids      uuid.Generator
	users    map[string]*UserRecord
	courses  map[string]*CourseRecord
	modules  map[string]*ModuleRecord
	lectures map[string]*LectureRecord
}

// NewDataset create an empty Dataset generating ids with ids
func NewDataset(ids uuid.Generator) *Dataset {
	return &Dataset{
		ids:      ids,
		users:    make(map[string]*UserRecord),
		courses:  make(map[string]*CourseRecord),
		modules:  make(map[string]*ModuleRecord),
		lectures: make(map[string]*LectureRecord),
	}
}

// CreateUser store a new account, email must be unique
func (ds *Dataset) CreateUser(name, email, role, passwordHash string) (*UserRecord, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	for _, u := range ds.users {
		if u.Email == email {
			return nil, ErrDuplicatedUser
		}
	}
	id, err := ds.ids.Generate()
	if err != nil {
		return nil, err
	}
	user := &UserRecord{ID: id, Name: name, Email: email, Role: role, PasswordHash: passwordHash}
	ds.users[id] = user
	return user, nil
}

// FindUserByEmail lookup an account by email
func (ds *Dataset) FindUserByEmail(email string) (*UserRecord, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	for _, u := range ds.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

// FindUserByID lookup an account by id
func (ds *Dataset) FindUserByID(id string) (*UserRecord, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if u, ok := ds.users[id]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

// Courses list all courses
func (ds *Dataset) Courses() []*CourseRecord {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	result := make([]*CourseRecord, 0, len(ds.courses))
	for _, c := range ds.courses {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// CourseByID lookup one course
func (ds *Dataset) CourseByID(id string) (*CourseRecord, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if c, ok := ds.courses[id]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

// CreateCourse store a new course
func (ds *Dataset) CreateCourse(title, description string, price float64, thumbnail string) (*CourseRecord, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	id, err := ds.ids.Generate()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	course := &CourseRecord{
		ID:          id,
		Title:       title,
		Description: description,
		Price:       price,
		Thumbnail:   thumbnail,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ds.courses[id] = course
	return course, nil
}

// UpdateCourse replace mutable course fields
func (ds *Dataset) UpdateCourse(id, title, description string, price float64, thumbnail string) (*CourseRecord, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	course, ok := ds.courses[id]
	if !ok {
		return nil, ErrNotFound
	}
	course.Title = title
	course.Description = description
	course.Price = price
	if thumbnail != "" {
		course.Thumbnail = thumbnail
	}
	course.UpdatedAt = time.Now().UTC()
	return course, nil
}

// DeleteCourse remove a course with its modules and lectures
func (ds *Dataset) DeleteCourse(id string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.courses[id]; !ok {
		return ErrNotFound
	}
	delete(ds.courses, id)
	for mid, m := range ds.modules {
		if m.CourseID != id {
			continue
		}
		delete(ds.modules, mid)
		for lid, l := range ds.lectures {
			if l.ModuleID == mid {
				delete(ds.lectures, lid)
			}
		}
	}
	return nil
}

// ModulesWithLectures module tree of a course, modules sorted by
// moduleNumber and lectures by order
func (ds *Dataset) ModulesWithLectures(courseID string) []*ModuleWithLectures {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	var result []*ModuleWithLectures
	for _, m := range ds.modules {
		if m.CourseID != courseID {
			continue
		}
		node := &ModuleWithLectures{ModuleRecord: m, Lectures: []*LectureRecord{}}
		for _, l := range ds.lectures {
			if l.ModuleID == m.ID {
				node.Lectures = append(node.Lectures, l)
			}
		}
		sortLectures(node.Lectures)
		result = append(result, node)
	}
	sortModules(result)
	return result
}

// CreateModule store a new module, moduleNumber continues the course sequence
func (ds *Dataset) CreateModule(courseID, title, description string) (*ModuleRecord, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.courses[courseID]; !ok {
		return nil, ErrNotFound
	}
	id, err := ds.ids.Generate()
	if err != nil {
		return nil, err
	}
	number := 1
	for _, m := range ds.modules {
		if m.CourseID == courseID && m.ModuleNumber >= number {
			number = m.ModuleNumber + 1
		}
	}
	now := time.Now().UTC()
	mod := &ModuleRecord{
		ID:           id,
		CourseID:     courseID,
		Title:        title,
		ModuleNumber: number,
		Description:  description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	ds.modules[id] = mod
	return mod, nil
}

// UpdateModule replace mutable module fields
func (ds *Dataset) UpdateModule(id, title, description string) (*ModuleRecord, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	mod, ok := ds.modules[id]
	if !ok {
		return nil, ErrNotFound
	}
	mod.Title = title
	mod.Description = description
	mod.UpdatedAt = time.Now().UTC()
	return mod, nil
}

// DeleteModule remove a module and its lectures
func (ds *Dataset) DeleteModule(id string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.modules[id]; !ok {
		return ErrNotFound
	}
	delete(ds.modules, id)
	for lid, l := range ds.lectures {
		if l.ModuleID == id {
			delete(ds.lectures, lid)
		}
	}
	return nil
}

// Lectures list all lectures
func (ds *Dataset) Lectures() []*LectureRecord {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	result := make([]*LectureRecord, 0, len(ds.lectures))
	for _, l := range ds.lectures {
		result = append(result, l)
	}
	sortLectures(result)
	return result
}

// LectureByID lookup one lecture
func (ds *Dataset) LectureByID(id string) (*LectureRecord, error) {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	if l, ok := ds.lectures[id]; ok {
		return l, nil
	}
	return nil, ErrNotFound
}

// CreateLecture store a new lecture, order continues the module sequence.
// The first lecture of the first module of a course starts unlocked
func (ds *Dataset) CreateLecture(moduleID, title string, duration int, videoURL string, notes []string, isPreview bool) (*LectureRecord, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	mod, ok := ds.modules[moduleID]
	if !ok {
		return nil, ErrNotFound
	}
	id, err := ds.ids.Generate()
	if err != nil {
		return nil, err
	}
	order := 1
	for _, l := range ds.lectures {
		if l.ModuleID == moduleID && l.Order >= order {
			order = l.Order + 1
		}
	}
	unlocked := false
	if order == 1 && mod.ModuleNumber == 1 {
		unlocked = true
	}
	now := time.Now().UTC()
	lec := &LectureRecord{
		ID:         id,
		ModuleID:   moduleID,
		Title:      title,
		Duration:   duration,
		VideoURL:   videoURL,
		Notes:      notes,
		Order:      order,
		IsPreview:  isPreview,
		IsUnlocked: unlocked,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	ds.lectures[id] = lec
	return lec, nil
}

// UpdateLecture replace mutable lecture fields
func (ds *Dataset) UpdateLecture(id, title string, duration int, videoURL string, notes []string) (*LectureRecord, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	lec, ok := ds.lectures[id]
	if !ok {
		return nil, ErrNotFound
	}
	lec.Title = title
	lec.Duration = duration
	lec.VideoURL = videoURL
	if len(notes) > 0 {
		lec.Notes = notes
	}
	lec.UpdatedAt = time.Now().UTC()
	return lec, nil
}

// SetLectureStatus persist progression flags
func (ds *Dataset) SetLectureStatus(id string, isCompleted, isUnlocked bool) (*LectureRecord, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	lec, ok := ds.lectures[id]
	if !ok {
		return nil, ErrNotFound
	}
	lec.IsCompleted = isCompleted
	lec.IsUnlocked = isUnlocked
	lec.UpdatedAt = time.Now().UTC()
	return lec, nil
}

// DeleteLecture remove a lecture
func (ds *Dataset) DeleteLecture(id string) error {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if _, ok := ds.lectures[id]; !ok {
		return ErrNotFound
	}
	delete(ds.lectures, id)
	return nil
}

func sortModules(modules []*ModuleWithLectures) {
	sort.Slice(modules, func(i, j int) bool {
		return modules[i].ModuleNumber < modules[j].ModuleNumber
	})
}

func sortLectures(lectures []*LectureRecord) {
	sort.Slice(lectures, func(i, j int) bool {
		return lectures[i].Order < lectures[j].Order
	})
}
