package notify

import (
	"container/list"
	"fmt"
	"sync"
	"time"

	"smartspend/internal/models"
)

// DefaultSuppressorSize bounds the number of remembered alerts.
const DefaultSuppressorSize = 10000

// AlertKey identifies one alert state of one budget slot.
type AlertKey struct {
	UserID   string
	Category models.Category
	Year     int
	Month    int
	State    string
}

func (k AlertKey) String() string {
	return fmt.Sprintf("%s|%s|%04d-%02d|%s", k.UserID, k.Category, k.Year, k.Month, k.State)
}

type suppressEntry struct {
	key       string
	expiresAt time.Time
}

// Suppressor remembers recently published alerts for a fixed TTL, evicting
// the least recently marked key once full. A zero TTL suppresses nothing.
type Suppressor struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
	now     func() time.Time
}

// NewSuppressor creates a Suppressor holding at most maxSize keys.
func NewSuppressor(maxSize int, ttl time.Duration) *Suppressor {
	if maxSize <= 0 {
		maxSize = DefaultSuppressorSize
	}
	return &Suppressor{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
		now:     time.Now,
	}
}

// Suppressed reports whether key was marked within the TTL.
func (s *Suppressor) Suppressed(key AlertKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key.String()]
	if !ok {
		return false
	}
	if s.now().After(elem.Value.(*suppressEntry).expiresAt) {
		s.removeElement(elem)
		return false
	}
	return true
}

// Mark records that key has just been published.
func (s *Suppressor) Mark(key AlertKey) {
	if s.ttl <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	entry := &suppressEntry{key: k, expiresAt: s.now().Add(s.ttl)}
	if elem, ok := s.items[k]; ok {
		elem.Value = entry
		s.lru.MoveToFront(elem)
		return
	}

	s.items[k] = s.lru.PushFront(entry)
	if s.lru.Len() > s.maxSize {
		s.removeElement(s.lru.Back())
	}
}

// CleanExpired drops expired keys and returns how many were removed.
func (s *Suppressor) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for elem := s.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*suppressEntry).expiresAt) {
			s.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// Size returns the number of remembered keys.
func (s *Suppressor) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Suppressor) removeElement(elem *list.Element) {
	delete(s.items, elem.Value.(*suppressEntry).key)
	s.lru.Remove(elem)
}
