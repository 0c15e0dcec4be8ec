// Package cache provides the key-value layer used for read-through caching
// of list queries. Values are opaque serialized payloads; callers own the
// encoding. A miss is reported as sentinel.ErrNotFound so services can
// distinguish "no entry" from "cache unreachable" and degrade gracefully on
// the latter.
package cache

import (
	"context"
	"time"

	id "projecthub/pkg/domain"
)

// Cache is the key-value contract with TTL and explicit invalidation.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DelPattern(ctx context.Context, pattern string) error
}

// ProjectListKey derives the cache key for a tenant's project listing. The
// tenant id is the scoping identifier: every member of a tenant shares one
// entry.
func ProjectListKey(tenantID id.TenantID) string {
	return "projects:tenant:" + tenantID.String()
}
