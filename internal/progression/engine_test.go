package progression

import (
	"context"
	"errors"
	"testing"

	infra "github.com/Mujahid2000/lms/internal/infrastructure"
	"github.com/Mujahid2000/lms/internal/lecture"
	"github.com/Mujahid2000/lms/internal/module"
	"go.uber.org/zap"
)

type fakeReader struct {
	fn func(courseID string) ([]*module.ModuleModel, error)
}

func (f *fakeReader) GetModulesByCourse(ctx context.Context, courseID string) ([]*module.ModuleModel, error) {
	return f.fn(courseID)
}

type statusCall struct {
	lectureID string
	status    lecture.StatusUpdate
}

type fakeWriter struct {
	calls []statusCall
	err   error
	hook  func() // runs before the write result is reported
}

func (f *fakeWriter) UpdateStatus(ctx context.Context, lectureID string, status *lecture.StatusUpdate) (*lecture.LectureModel, error) {
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, statusCall{lectureID: lectureID, status: *status})
	return &lecture.LectureModel{ID: lectureID, IsCompleted: status.IsCompleted, IsUnlocked: status.IsUnlocked}, nil
}

func mkLecture(id, moduleID string, order int, unlocked bool) *lecture.LectureModel {
	return &lecture.LectureModel{ID: id, ModuleID: moduleID, Title: "Lecture " + id, Order: order, IsUnlocked: unlocked}
}

// two modules: m1 holds A and B, m2 holds C and D; only A starts unlocked
func twoModuleCourse() []*module.ModuleModel {
	return []*module.ModuleModel{
		{ID: "m1", ModuleNumber: 1, Title: "Module One", Lectures: []*lecture.LectureModel{
			mkLecture("A", "m1", 1, true),
			mkLecture("B", "m1", 2, false),
		}},
		{ID: "m2", ModuleNumber: 2, Title: "Module Two", Lectures: []*lecture.LectureModel{
			mkLecture("C", "m2", 1, false),
			mkLecture("D", "m2", 2, false),
		}},
	}
}

func newTestEngine(modules []*module.ModuleModel) (*Engine, *fakeWriter) {
	reader := &fakeReader{fn: func(string) ([]*module.ModuleModel, error) { return modules, nil }}
	writer := &fakeWriter{}
	return NewEngine(reader, writer, zap.NewNop()), writer
}

func loadCourse(t *testing.T, e *Engine, courseID string) {
	t.Helper()
	if err := e.Load(context.Background(), courseID); err != nil {
		t.Fatalf("Load failed: %s", err)
	}
}

func TestLoadActivatesFirstLecture(t *testing.T) {
	e, writer := newTestEngine(twoModuleCourse())
	loadCourse(t, e, "c1")

	active := e.Active()
	if active == nil || active.ID != "A" {
		t.Fatalf("expected first lecture active, got %+v", active)
	}
	if len(writer.calls) != 0 {
		t.Fatalf("expected no writes for an already unlocked first lecture, got %d", len(writer.calls))
	}
}

func TestLoadUnlocksLockedFirstLecture(t *testing.T) {
	modules := twoModuleCourse()
	modules[0].Lectures[0].IsUnlocked = false
	e, writer := newTestEngine(modules)
	loadCourse(t, e, "c1")

	if len(writer.calls) != 1 || writer.calls[0].lectureID != "A" {
		t.Fatalf("expected one unlock write for A, got %+v", writer.calls)
	}
	if writer.calls[0].status.IsCompleted || !writer.calls[0].status.IsUnlocked {
		t.Fatalf("expected unlock-only flags, got %+v", writer.calls[0].status)
	}
	if StateOf(e.Active()) != UnlockedIncomplete {
		t.Fatal("expected first lecture unlocked after load")
	}
}

func TestLoadEmptyCourse(t *testing.T) {
	e, _ := newTestEngine([]*module.ModuleModel{{ID: "m1", ModuleNumber: 1}})
	if err := e.Load(context.Background(), "c1"); err != ErrEmptyCourse {
		t.Fatalf("expected ErrEmptyCourse, got %v", err)
	}
	if e.Active() != nil {
		t.Fatal("expected no active lecture in an empty course")
	}
}

func TestCompleteUnlocksNextInModule(t *testing.T) {
	e, writer := newTestEngine(twoModuleCourse())
	loadCourse(t, e, "c1")

	if err := e.Complete(context.Background(), "A"); err != nil {
		t.Fatalf("Complete failed: %s", err)
	}

	if len(writer.calls) != 2 {
		t.Fatalf("expected completion then unlock, got %+v", writer.calls)
	}
	if writer.calls[0].lectureID != "A" || !writer.calls[0].status.IsCompleted {
		t.Fatalf("expected A completed first, got %+v", writer.calls[0])
	}
	if writer.calls[1].lectureID != "B" || writer.calls[1].status.IsCompleted || !writer.calls[1].status.IsUnlocked {
		t.Fatalf("expected B unlocked second, got %+v", writer.calls[1])
	}

	modules := e.Modules()
	if StateOf(modules[0].Lectures[0]) != Completed {
		t.Fatal("expected A committed as completed")
	}
	if StateOf(modules[0].Lectures[1]) != UnlockedIncomplete {
		t.Fatal("expected B committed as unlocked")
	}
	if StateOf(modules[1].Lectures[0]) != Locked {
		t.Fatal("expected C untouched")
	}
}

func TestCompleteUnlocksAcrossModules(t *testing.T) {
	modules := twoModuleCourse()
	modules[0].Lectures[0].IsCompleted = true
	modules[0].Lectures[1].IsUnlocked = true
	e, writer := newTestEngine(modules)
	loadCourse(t, e, "c1")

	if err := e.SelectLecture("B"); err != nil {
		t.Fatalf("SelectLecture failed: %s", err)
	}
	if err := e.Complete(context.Background(), "B"); err != nil {
		t.Fatalf("Complete failed: %s", err)
	}

	last := writer.calls[len(writer.calls)-1]
	if last.lectureID != "C" || !last.status.IsUnlocked || last.status.IsCompleted {
		t.Fatalf("expected first lecture of the next module unlocked, got %+v", last)
	}
	if StateOf(e.Modules()[1].Lectures[0]) != UnlockedIncomplete {
		t.Fatal("expected C committed as unlocked")
	}
}

func TestCompleteLastLectureHasNoSuccessor(t *testing.T) {
	modules := twoModuleCourse()
	for _, m := range modules {
		for _, l := range m.Lectures {
			l.IsUnlocked = true
		}
	}
	e, writer := newTestEngine(modules)
	loadCourse(t, e, "c1")

	if err := e.SelectLecture("D"); err != nil {
		t.Fatalf("SelectLecture failed: %s", err)
	}
	if err := e.Complete(context.Background(), "D"); err != nil {
		t.Fatalf("Complete failed: %s", err)
	}
	if len(writer.calls) != 1 {
		t.Fatalf("expected only the completion write, got %+v", writer.calls)
	}
}

func TestCompleteRejectsNonActiveLecture(t *testing.T) {
	e, writer := newTestEngine(twoModuleCourse())
	loadCourse(t, e, "c1")

	err := e.Complete(context.Background(), "B")
	var conflict *infra.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if len(writer.calls) != 0 {
		t.Fatal("rejected transition must not produce writes")
	}
	if StateOf(e.Modules()[0].Lectures[1]) != Locked {
		t.Fatal("rejected transition must not change state")
	}
}

func TestCompleteRejectsCompletedLecture(t *testing.T) {
	modules := twoModuleCourse()
	modules[0].Lectures[0].IsCompleted = true
	e, writer := newTestEngine(modules)
	loadCourse(t, e, "c1")

	err := e.Complete(context.Background(), "A")
	var conflict *infra.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if len(writer.calls) != 0 {
		t.Fatal("rejected transition must not produce writes")
	}
}

func TestCompleteNeverRelocks(t *testing.T) {
	e, _ := newTestEngine(twoModuleCourse())
	loadCourse(t, e, "c1")

	if err := e.Complete(context.Background(), "A"); err != nil {
		t.Fatalf("Complete A failed: %s", err)
	}
	if err := e.SelectLecture("B"); err != nil {
		t.Fatalf("SelectLecture failed: %s", err)
	}
	if err := e.Complete(context.Background(), "B"); err != nil {
		t.Fatalf("Complete B failed: %s", err)
	}

	modules := e.Modules()
	if StateOf(modules[0].Lectures[0]) != Completed {
		t.Fatal("expected A to stay completed")
	}
	if StateOf(modules[0].Lectures[1]) != Completed {
		t.Fatal("expected B completed")
	}
}

func TestCompletePersistFailureLeavesStateUntouched(t *testing.T) {
	e, writer := newTestEngine(twoModuleCourse())
	loadCourse(t, e, "c1")
	writer.err = errors.New("remote write rejected")

	if err := e.Complete(context.Background(), "A"); err == nil {
		t.Fatal("expected the persistence error to surface")
	}
	modules := e.Modules()
	if StateOf(modules[0].Lectures[0]) != UnlockedIncomplete {
		t.Fatal("failed persist must not commit the completion")
	}
	if StateOf(modules[0].Lectures[1]) != Locked {
		t.Fatal("failed persist must not cascade the unlock")
	}
	if len(writer.calls) != 0 {
		t.Fatalf("expected no recorded writes, got %+v", writer.calls)
	}
}

func TestCompleteDropsStaleCommitAfterCourseSwitch(t *testing.T) {
	courses := map[string][]*module.ModuleModel{
		"c1": twoModuleCourse(),
		"c2": {{ID: "m9", ModuleNumber: 1, Lectures: []*lecture.LectureModel{mkLecture("Z", "m9", 1, true)}}},
	}
	reader := &fakeReader{fn: func(courseID string) ([]*module.ModuleModel, error) { return courses[courseID], nil }}
	writer := &fakeWriter{}
	e := NewEngine(reader, writer, zap.NewNop())
	loadCourse(t, e, "c1")

	// switch to another course while the completion write is in flight
	writer.hook = func() {
		writer.hook = nil
		loadCourse(t, e, "c2")
	}
	if err := e.Complete(context.Background(), "A"); err != nil {
		t.Fatalf("Complete failed: %s", err)
	}

	if len(writer.calls) != 1 {
		t.Fatalf("stale completion must not cascade, got %+v", writer.calls)
	}
	if StateOf(courses["c1"][0].Lectures[1]) != Locked {
		t.Fatal("stale completion must not unlock the successor")
	}
	if active := e.Active(); active == nil || active.ID != "Z" {
		t.Fatalf("expected the newly loaded course to stay active, got %+v", active)
	}
}

func TestSelectLectureRefusesLocked(t *testing.T) {
	e, _ := newTestEngine(twoModuleCourse())
	loadCourse(t, e, "c1")

	err := e.SelectLecture("C")
	var conflict *infra.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if e.Active().ID != "A" {
		t.Fatal("refused selection must not move the active lecture")
	}
	if err := e.SelectLecture("nope"); err != ErrLectureNotFound {
		t.Fatalf("expected ErrLectureNotFound, got %v", err)
	}
}

func TestNavigationBounds(t *testing.T) {
	modules := twoModuleCourse()
	modules[0].Lectures[1].IsUnlocked = true
	e, _ := newTestEngine(modules)
	loadCourse(t, e, "c1")

	if _, err := e.GoToPrevious(); err != ErrStartOfCourse {
		t.Fatalf("expected ErrStartOfCourse, got %v", err)
	}
	next, err := e.GoToNext()
	if err != nil || next.ID != "B" {
		t.Fatalf("expected to advance to B, got %+v, %v", next, err)
	}

	// C is still locked, navigation refuses it without mutating anything
	_, err = e.GoToNext()
	var conflict *infra.StateConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected StateConflictError, got %v", err)
	}
	if e.Active().ID != "B" {
		t.Fatal("refused navigation must not move the active lecture")
	}
	if StateOf(e.Modules()[1].Lectures[0]) != Locked {
		t.Fatal("navigation must never unlock a lecture")
	}
}

func TestFullCourseRun(t *testing.T) {
	e, _ := newTestEngine(twoModuleCourse())
	loadCourse(t, e, "c1")

	order := []string{"A", "B", "C", "D"}
	for i, id := range order {
		if active := e.Active(); active.ID != id {
			t.Fatalf("step %d: expected %s active, got %s", i, id, active.ID)
		}
		if err := e.CompleteCurrent(context.Background()); err != nil {
			t.Fatalf("step %d: CompleteCurrent failed: %s", i, err)
		}
		if i < len(order)-1 {
			if _, err := e.GoToNext(); err != nil {
				t.Fatalf("step %d: GoToNext failed: %s", i, err)
			}
		}
	}

	completed, total := e.Progress()
	if completed != 4 || total != 4 {
		t.Fatalf("expected 4/4 progress, got %d/%d", completed, total)
	}
	if _, err := e.GoToNext(); err != ErrEndOfCourse {
		t.Fatalf("expected ErrEndOfCourse, got %v", err)
	}
}

func TestCompleteCurrentWithoutCourse(t *testing.T) {
	e, _ := newTestEngine(nil)
	if err := e.CompleteCurrent(context.Background()); err != ErrNoActiveLecture {
		t.Fatalf("expected ErrNoActiveLecture, got %v", err)
	}
}
