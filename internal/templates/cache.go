package templates

import (
	"context"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"billdoc/internal/port"
)

// CachedSource memoizes successfully loaded templates by name. Cached slices are
// shared between callers and must be treated as read-only.
type CachedSource struct {
	next   port.TemplateSource
	cache  *lru.LRU[string, []byte]
	onHit  func()
	onMiss func()
}

// NewCachedSource wraps next in a size- and TTL-bounded LRU. onHit and onMiss may be nil.
func NewCachedSource(next port.TemplateSource, size int, ttl time.Duration, onHit, onMiss func()) *CachedSource {
	return &CachedSource{
		next:   next,
		cache:  lru.NewLRU[string, []byte](size, nil, ttl),
		onHit:  onHit,
		onMiss: onMiss,
	}
}

func (s *CachedSource) Load(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.cache.Get(name); ok {
		if s.onHit != nil {
			s.onHit()
		}
		return data, nil
	}
	if s.onMiss != nil {
		s.onMiss()
	}

	data, err := s.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	s.cache.Add(name, data)
	log.Printf("templates.CachedSource.Load: cached %s (%d bytes)", name, len(data))
	return data, nil
}

// Purge drops every cached template.
func (s *CachedSource) Purge() {
	s.cache.Purge()
}

// Len returns the number of cached templates.
func (s *CachedSource) Len() int {
	return s.cache.Len()
}
