package query

import (
	"fmt"
	"strings"
	"sync"
)

// Tag label attached to cached query results and to mutations, used to
// decide which cached results must be evicted after a write
type Tag string

// Tags used by the domain resolvers
const (
	TagCourses Tag = "Courses"
	TagModule  Tag = "Module"
	TagLecture Tag = "Lecture"
	TagAuth    Tag = "auth"
)

// Key cache key derived from operation name and arguments
type Key string

// NewKey build a cache key for an operation invocation
func NewKey(op string, args ...string) Key {
	if len(args) == 0 {
		return Key(op)
	}
	return Key(fmt.Sprintf("%s(%s)", op, strings.Join(args, ",")))
}

type entry struct {
	value interface{}
	tags  []Tag
}

type subscriber struct {
	id int
	fn func(Tag)
}

// Cache process-wide result cache for query operations. Entries carry
// tags; invalidating a tag evicts every entry carrying it and notifies
// subscribers so they can refetch. Never persisted
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*entry
	subs    map[Tag][]subscriber
	nextID  int
}

// NewCache create an empty Cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[Key]*entry),
		subs:    make(map[Tag][]subscriber),
	}
}

// Get last known result for key
func (c *Cache) Get(key Key) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e, ok := c.entries[key]; ok {
		return e.value, true
	}
	return nil, false
}

// Put store a query result under key with its provided tags
func (c *Cache) Put(key Key, value interface{}, tags ...Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &entry{value: value, tags: tags}
}

// Invalidate evict every entry carrying any of the tags and notify
// subscribers of each tag
func (c *Cache) Invalidate(tags ...Tag) {
	c.mu.Lock()
	for key, e := range c.entries {
		if overlaps(e.tags, tags) {
			delete(c.entries, key)
		}
	}
	var notify []func(Tag)
	var notifyTags []Tag
	for _, tag := range tags {
		for _, sub := range c.subs[tag] {
			notify = append(notify, sub.fn)
			notifyTags = append(notifyTags, tag)
		}
	}
	c.mu.Unlock()

	// callbacks run outside the lock, they may issue queries
	for i, fn := range notify {
		fn(notifyTags[i])
	}
}

// Subscribe register fn to run whenever tag is invalidated. The returned
// function removes the subscription
func (c *Cache) Subscribe(tag Tag, fn func(Tag)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.subs[tag] = append(c.subs[tag], subscriber{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		subs := c.subs[tag]
		for i, sub := range subs {
			if sub.id == id {
				c.subs[tag] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

func overlaps(a, b []Tag) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
