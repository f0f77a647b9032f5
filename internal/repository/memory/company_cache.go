package memory

import (
	"strings"
	"time"

	"qbwc-sync-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// CompanyCache remembers username-to-company resolutions. It is a lookup
// shortcut only; queue and session state never come from here.
type CompanyCache struct {
	cache *cache.Cache
}

func NewCompanyCache(ttl time.Duration) *CompanyCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CompanyCache{
		cache: cache.New(ttl, 2*ttl),
	}
}

func key(identifier string) string {
	return strings.ToLower(strings.TrimSpace(identifier))
}

func (c *CompanyCache) Save(identifier string, company *entity.Company) {
	c.cache.Set(key(identifier), company, cache.DefaultExpiration)
}

func (c *CompanyCache) Get(identifier string) (*entity.Company, bool) {
	if x, found := c.cache.Get(key(identifier)); found {
		return x.(*entity.Company), true
	}
	return nil, false
}

func (c *CompanyCache) Delete(identifier string) {
	c.cache.Delete(key(identifier))
}

func (c *CompanyCache) Flush() {
	c.cache.Flush()
}
