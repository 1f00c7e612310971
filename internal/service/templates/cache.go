package templates

import (
	"sync"

	"github.com/ignite/seo-noc/internal/domain"
)

// cache is an in-memory, write-invalidated lookup of resolved templates,
// keyed by (channel, event_type). There is no TTL — a save or
// reset must invalidate immediately rather than wait out a staleness
// window, since operators expect their edit to take effect on the very
// next notification.
type cache struct {
	mu    sync.RWMutex
	rows  map[domain.TemplateKey]*domain.NotificationTemplate
}

func newCache() *cache {
	return &cache{rows: make(map[domain.TemplateKey]*domain.NotificationTemplate)}
}

func (c *cache) get(key domain.TemplateKey) (*domain.NotificationTemplate, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tpl, ok := c.rows[key]
	return tpl, ok
}

func (c *cache) set(key domain.TemplateKey, tpl *domain.NotificationTemplate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows[key] = tpl
}

func (c *cache) invalidate(key domain.TemplateKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rows, key)
}
