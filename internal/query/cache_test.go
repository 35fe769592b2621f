package query

import "testing"

func TestPutAndGet(t *testing.T) {
	cache := NewCache()
	key := NewKey("getCourses")

	if _, ok := cache.Get(key); ok {
		t.Fatal("expected a miss on an empty cache")
	}
	cache.Put(key, "payload", TagCourses)
	if v, ok := cache.Get(key); !ok || v.(string) != "payload" {
		t.Fatalf("expected cached payload, got %v, %v", v, ok)
	}
}

func TestKeyIncludesArguments(t *testing.T) {
	if NewKey("getCourseById", "c1") == NewKey("getCourseById", "c2") {
		t.Fatal("expected distinct keys for distinct arguments")
	}
	if NewKey("getCourses") != Key("getCourses") {
		t.Fatal("expected bare operation name without arguments")
	}
}

func TestInvalidateEvictsByTag(t *testing.T) {
	cache := NewCache()
	cache.Put(NewKey("getCourses"), 1, TagCourses)
	cache.Put(NewKey("getModulesByCourse", "c1"), 2, TagModule)
	cache.Put(NewKey("getLectures"), 3, TagLecture, TagModule)

	cache.Invalidate(TagModule)

	if _, ok := cache.Get(NewKey("getModulesByCourse", "c1")); ok {
		t.Fatal("expected tagged entry to be evicted")
	}
	if _, ok := cache.Get(NewKey("getLectures")); ok {
		t.Fatal("expected entry with overlapping tag to be evicted")
	}
	if _, ok := cache.Get(NewKey("getCourses")); !ok {
		t.Fatal("expected unrelated entry to survive")
	}
}

func TestSubscribe(t *testing.T) {
	cache := NewCache()
	var notified []Tag
	unsubscribe := cache.Subscribe(TagLecture, func(tag Tag) {
		notified = append(notified, tag)
	})

	cache.Invalidate(TagLecture)
	if len(notified) != 1 || notified[0] != TagLecture {
		t.Fatalf("expected one notification for Lecture, got %v", notified)
	}

	cache.Invalidate(TagCourses)
	if len(notified) != 1 {
		t.Fatal("expected no notification for an unrelated tag")
	}

	unsubscribe()
	cache.Invalidate(TagLecture)
	if len(notified) != 1 {
		t.Fatal("expected no notification after unsubscribe")
	}
}

func TestSubscriberMayQueryDuringNotification(t *testing.T) {
	cache := NewCache()
	cache.Put(NewKey("getLectures"), 1, TagLecture)

	done := false
	cache.Subscribe(TagLecture, func(Tag) {
		// callbacks run outside the cache lock, a refetch-and-store
		// sequence must not deadlock
		cache.Put(NewKey("getLectures"), 2, TagLecture)
		done = true
	})

	cache.Invalidate(TagLecture)
	if !done {
		t.Fatal("expected the subscriber callback to run")
	}
	if v, ok := cache.Get(NewKey("getLectures")); !ok || v.(int) != 2 {
		t.Fatal("expected the refetched value to be stored")
	}
}
