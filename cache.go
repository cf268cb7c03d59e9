package labelpress

import (
	"context"
	"sync"
	"time"

	"github.com/eringen/labelpress/content"
)

type cachedUser struct {
	user    content.User
	fetched time.Time
}

// AuthorCache keeps recently looked-up post authors in memory. Users are
// never deleted and only their flags change, so a short TTL is enough.
type AuthorCache struct {
	mu    sync.RWMutex
	users map[int64]cachedUser
	ttl   time.Duration
	store *content.Store
	now   func() time.Time
}

// NewAuthorCache creates an AuthorCache backed by the given Store.
func NewAuthorCache(s *content.Store, ttl time.Duration) *AuthorCache {
	return &AuthorCache{
		users: make(map[int64]cachedUser),
		ttl:   ttl,
		store: s,
		now:   time.Now,
	}
}

// Author returns the author of p.
func (c *AuthorCache) Author(ctx context.Context, p *content.Post) (*content.User, error) {
	c.mu.RLock()
	e, ok := c.users[p.UserID]
	c.mu.RUnlock()
	if ok && c.now().Sub(e.fetched) < c.ttl {
		u := e.user
		return &u, nil
	}

	u, err := c.store.GetAuthor(ctx, p)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.users[u.ID] = cachedUser{user: *u, fetched: c.now()}
	c.mu.Unlock()
	return u, nil
}

// Invalidate drops one user, or every user when id is 0.
func (c *AuthorCache) Invalidate(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == 0 {
		clear(c.users)
		return
	}
	delete(c.users, id)
}
