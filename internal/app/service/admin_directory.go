package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"labelquest/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

const adminDirectoryKey = "labelquest:admin_ids"

// A sentinel member so an empty admin set is still a cache hit.
const adminDirectorySentinel = "__none__"

// AdminLister is the slice of the directory the ranking engine needs.
type AdminLister interface {
	AdminIDs(ctx context.Context) (map[string]struct{}, error)
}

// AdminDirectory caches the set of admin user ids in redis with a TTL, so
// ranking calls avoid a full-table admin lookup. Invalidate must be called
// whenever a user's admin flag changes.
type AdminDirectory struct {
	rdb      *redis.Client
	userRepo repository.UserRepository
	ttl      time.Duration
}

func NewAdminDirectory(rdb *redis.Client, userRepo repository.UserRepository, ttl time.Duration) *AdminDirectory {
	return &AdminDirectory{rdb: rdb, userRepo: userRepo, ttl: ttl}
}

func (d *AdminDirectory) AdminIDs(ctx context.Context) (map[string]struct{}, error) {
	members, err := d.rdb.SMembers(ctx, adminDirectoryKey).Result()
	if err != nil && err != redis.Nil {
		// Cache trouble is not fatal; fall through to the repository.
		log.Printf("WARN: admin directory cache read failed: %v", err)
	}
	if len(members) > 0 {
		return memberSet(members), nil
	}

	ids, err := d.userRepo.ListAdminIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin ids: %w", err)
	}

	cached := append([]string{adminDirectorySentinel}, ids...)
	pipe := d.rdb.TxPipeline()
	pipe.Del(ctx, adminDirectoryKey)
	pipe.SAdd(ctx, adminDirectoryKey, toInterfaces(cached)...)
	pipe.Expire(ctx, adminDirectoryKey, d.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("WARN: admin directory cache write failed: %v", err)
	}

	return memberSet(ids), nil
}

// Invalidate drops the cached set; the next AdminIDs call repopulates it.
func (d *AdminDirectory) Invalidate(ctx context.Context) error {
	if err := d.rdb.Del(ctx, adminDirectoryKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate admin directory: %w", err)
	}
	return nil
}

func memberSet(members []string) map[string]struct{} {
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m == adminDirectorySentinel {
			continue
		}
		set[m] = struct{}{}
	}
	return set
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
