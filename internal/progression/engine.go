package progression

import (
	"context"
	"errors"
	"sync"

	infra "github.com/Mujahid2000/lms/internal/infrastructure"
	"github.com/Mujahid2000/lms/internal/lecture"
	"github.com/Mujahid2000/lms/internal/module"
	"go.elastic.co/apm"
	"go.uber.org/zap"
)

// ErrEmptyCourse course has no lectures to play
var ErrEmptyCourse = errors.New("course has no lectures")

// ErrNoActiveLecture no lecture is selected in the player
var ErrNoActiveLecture = errors.New("no active lecture")

// ErrLectureNotFound lecture id is not part of the loaded course
var ErrLectureNotFound = errors.New("lecture not found in course")

// ErrStartOfCourse already at the first lecture
var ErrStartOfCourse = errors.New("already at the first lecture")

// ErrEndOfCourse already at the last lecture
var ErrEndOfCourse = errors.New("already at the last lecture")

// State lifecycle of a single lecture
type State int

// Lecture states
const (
	Locked State = iota
	UnlockedIncomplete
	Completed
)

func (s State) String() string {
	switch s {
	case UnlockedIncomplete:
		return "unlocked"
	case Completed:
		return "completed"
	}
	return "locked"
}

// StateOf derive the state from the lecture flags
func StateOf(l *lecture.LectureModel) State {
	switch {
	case l.IsCompleted:
		return Completed
	case l.IsUnlocked:
		return UnlockedIncomplete
	}
	return Locked
}

// ModuleReader course tree source
type ModuleReader interface {
	GetModulesByCourse(ctx context.Context, courseID string) ([]*module.ModuleModel, error)
}

// StatusWriter persistence for lecture transitions
type StatusWriter interface {
	UpdateStatus(ctx context.Context, lectureID string, status *lecture.StatusUpdate) (*lecture.LectureModel, error)
}

// Engine lecture progression state machine. It owns the loaded course
// tree (modules sorted by moduleNumber, lectures by order) and the
// active lecture, and it is the only writer of completion/unlock flags.
// Every transition is persisted through the StatusWriter before the
// local state commits, so a rejected mutation never leaves the local
// tree ahead of the server
type Engine struct {
	mu       sync.Mutex
	courseID string
	modules  []*module.ModuleModel
	activeID string

	reader ModuleReader
	writer StatusWriter
	logger *zap.Logger
}

// NewEngine create an Engine with no course loaded
func NewEngine(reader ModuleReader, writer StatusWriter, logger *zap.Logger) *Engine {
	return &Engine{
		reader: reader,
		writer: writer,
		logger: logger,
	}
}

// Load fetch the module tree of a course and initialize the player on
// its first lecture. The first lecture of the first module has no
// predecessor gating; if the server still reports it locked, the unlock
// is persisted and then committed locally
func (e *Engine) Load(ctx context.Context, courseID string) error {
	apmSpan, ctx := apm.StartSpan(ctx, "Engine.Load", "progression")
	defer apmSpan.End()

	modules, err := e.reader.GetModulesByCourse(ctx, courseID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.courseID = courseID
	e.modules = modules
	first := firstLecture(modules)
	if first == nil {
		e.activeID = ""
		e.mu.Unlock()
		return ErrEmptyCourse
	}
	e.activeID = first.ID
	needUnlock := StateOf(first) == Locked
	firstID := first.ID
	e.mu.Unlock()

	if needUnlock {
		return e.persistUnlock(ctx, courseID, firstID)
	}
	return nil
}

// Complete transition the given lecture to Completed. Only the active
// lecture may be completed; anything else is a StateConflictError and
// produces no mutation. On success the successor lecture is unlocked,
// sequenced after the completion result is known
func (e *Engine) Complete(ctx context.Context, lectureID string) error {
	apmSpan, ctx := apm.StartSpan(ctx, "Engine.Complete", "progression")
	defer apmSpan.End()

	e.mu.Lock()
	if e.activeID == "" {
		e.mu.Unlock()
		return ErrNoActiveLecture
	}
	if lectureID != e.activeID {
		e.mu.Unlock()
		return &infra.StateConflictError{Op: "complete", LectureID: lectureID, Detail: "lecture is not the active one"}
	}
	target, _, _ := e.find(lectureID)
	if target == nil {
		e.mu.Unlock()
		return ErrLectureNotFound
	}
	switch StateOf(target) {
	case Locked:
		e.mu.Unlock()
		return &infra.StateConflictError{Op: "complete", LectureID: lectureID, Detail: "lecture is locked"}
	case Completed:
		e.mu.Unlock()
		return &infra.StateConflictError{Op: "complete", LectureID: lectureID, Detail: "lecture is already completed"}
	}
	courseID := e.courseID
	e.mu.Unlock()

	// persist first, commit after
	if _, err := e.writer.UpdateStatus(ctx, lectureID, &lecture.StatusUpdate{IsCompleted: true, IsUnlocked: true}); err != nil {
		return err
	}

	e.mu.Lock()
	if e.courseID != courseID {
		// course switched while the mutation was in flight, drop the
		// stale commit; the next Load reads server truth anyway
		e.mu.Unlock()
		e.logger.Debug("Dropping stale completion", zap.String("lecture.id", lectureID))
		return nil
	}
	target, mi, li := e.find(lectureID)
	if target == nil {
		e.mu.Unlock()
		return nil
	}
	target.IsCompleted = true
	target.IsUnlocked = true
	var successorID string
	if succ := successor(e.modules, mi, li); succ != nil && StateOf(succ) == Locked {
		successorID = succ.ID
	}
	e.mu.Unlock()

	e.logger.Debug("Lecture completed", zap.String("lecture.id", lectureID))
	if successorID == "" {
		return nil
	}
	return e.persistUnlock(ctx, courseID, successorID)
}

// CompleteCurrent complete the lecture active in the player
func (e *Engine) CompleteCurrent(ctx context.Context) error {
	e.mu.Lock()
	activeID := e.activeID
	e.mu.Unlock()
	if activeID == "" {
		return ErrNoActiveLecture
	}
	return e.Complete(ctx, activeID)
}

// SelectLecture activate a lecture for playback. Locked lectures are
// refused; selection never mutates completion or unlock flags
func (e *Engine) SelectLecture(lectureID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	target, _, _ := e.find(lectureID)
	if target == nil {
		return ErrLectureNotFound
	}
	if StateOf(target) == Locked {
		return &infra.StateConflictError{Op: "select", LectureID: lectureID, Detail: "lecture is locked"}
	}
	e.activeID = lectureID
	return nil
}

// GoToNext activate the lecture after the active one in course order
func (e *Engine) GoToNext() (*lecture.LectureModel, error) {
	return e.navigate(1)
}

// GoToPrevious activate the lecture before the active one in course order
func (e *Engine) GoToPrevious() (*lecture.LectureModel, error) {
	return e.navigate(-1)
}

func (e *Engine) navigate(step int) (*lecture.LectureModel, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeID == "" {
		return nil, ErrNoActiveLecture
	}
	flat := flatten(e.modules)
	idx := -1
	for i, l := range flat {
		if l.ID == e.activeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrLectureNotFound
	}
	next := idx + step
	if next < 0 {
		return nil, ErrStartOfCourse
	}
	if next >= len(flat) {
		return nil, ErrEndOfCourse
	}
	target := flat[next]
	if StateOf(target) == Locked {
		return nil, &infra.StateConflictError{Op: "navigate", LectureID: target.ID, Detail: "lecture is locked"}
	}
	e.activeID = target.ID
	clone := *target
	return &clone, nil
}

// Active snapshot of the lecture active in the player, nil when none
func (e *Engine) Active() *lecture.LectureModel {
	e.mu.Lock()
	defer e.mu.Unlock()

	target, _, _ := e.find(e.activeID)
	if target == nil {
		return nil
	}
	clone := *target
	return &clone
}

// Modules loaded course tree. Read only from the caller's perspective,
// the engine is the single writer of lecture flags
func (e *Engine) Modules() []*module.ModuleModel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.modules
}

// Progress completed and total lecture counts for the loaded course
func (e *Engine) Progress() (completed int, total int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, l := range flatten(e.modules) {
		total++
		if l.IsCompleted {
			completed++
		}
	}
	return
}

// persistUnlock write the Locked -> Unlocked-Incomplete transition and
// commit it locally once the server accepted it. The commit is dropped
// if the course changed while the call was in flight
func (e *Engine) persistUnlock(ctx context.Context, courseID, lectureID string) error {
	if _, err := e.writer.UpdateStatus(ctx, lectureID, &lecture.StatusUpdate{IsCompleted: false, IsUnlocked: true}); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.courseID != courseID {
		e.logger.Debug("Dropping stale unlock", zap.String("lecture.id", lectureID))
		return nil
	}
	if target, _, _ := e.find(lectureID); target != nil && !target.IsCompleted {
		target.IsUnlocked = true
	}
	return nil
}

// find locate a lecture in the loaded tree, callers hold e.mu
func (e *Engine) find(lectureID string) (*lecture.LectureModel, int, int) {
	if lectureID == "" {
		return nil, -1, -1
	}
	for mi, m := range e.modules {
		for li, l := range m.Lectures {
			if l.ID == lectureID {
				return l, mi, li
			}
		}
	}
	return nil, -1, -1
}

func firstLecture(modules []*module.ModuleModel) *lecture.LectureModel {
	for _, m := range modules {
		if len(m.Lectures) > 0 {
			return m.Lectures[0]
		}
	}
	return nil
}

// successor next lecture by order in the same module, else the first
// lecture of the next non-empty module
func successor(modules []*module.ModuleModel, mi, li int) *lecture.LectureModel {
	current := modules[mi]
	if li+1 < len(current.Lectures) {
		return current.Lectures[li+1]
	}
	for _, m := range modules[mi+1:] {
		if len(m.Lectures) > 0 {
			return m.Lectures[0]
		}
	}
	return nil
}

func flatten(modules []*module.ModuleModel) []*lecture.LectureModel {
	var flat []*lecture.LectureModel
	for _, m := range modules {
		flat = append(flat, m.Lectures...)
	}
	return flat
}
