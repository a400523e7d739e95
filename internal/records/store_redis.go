package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/redis/go-redis/v9"

	"recordgate/pkg/platform/sentinel"
)

// Redis key layout:
//
//	records:{tenant}:{resource}:{id}  JSON-encoded Record
//	records:{tenant}:{resource}       set of ids
//
// Each part is query-escaped, so no part contains ':' and keys from different
// tenants or resources cannot collide.
const recordKeyPrefix = "records:"

// RedisStore is a Redis-backed Store shared by every instance of the service.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a RedisStore. The client lifecycle is managed by the caller.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func indexKey(tenantID, resource string) string {
	return recordKeyPrefix + url.QueryEscape(tenantID) + ":" + url.QueryEscape(resource)
}

func entryKey(tenantID, resource, id string) string {
	return indexKey(tenantID, resource) + ":" + url.QueryEscape(id)
}

func (s *RedisStore) Create(ctx context.Context, r Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	ok, err := s.client.SetNX(ctx, entryKey(r.TenantID, r.Resource, r.ID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("create record: %w", classifyRedis(err))
	}
	if !ok {
		return fmt.Errorf("record %s: %w", r.ID, sentinel.ErrConflict)
	}
	if err := s.client.SAdd(ctx, indexKey(r.TenantID, r.Resource), r.ID).Err(); err != nil {
		return fmt.Errorf("index record: %w", classifyRedis(err))
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, tenantID, resource, id string) (Record, error) {
	raw, err := s.client.Get(ctx, entryKey(tenantID, resource, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, fmt.Errorf("record %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get record: %w", classifyRedis(err))
	}
	var r Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return Record{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	return r, nil
}

// List reads every id in the index and fetches them in one round trip. Ids
// whose entry has disappeared are skipped.
func (s *RedisStore) List(ctx context.Context, tenantID, resource string) ([]Record, error) {
	ids, err := s.client.SMembers(ctx, indexKey(tenantID, resource)).Result()
	if err != nil {
		return nil, fmt.Errorf("list record ids: %w", classifyRedis(err))
	}
	out := []Record{}
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = entryKey(tenantID, resource, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch records: %w", classifyRedis(err))
	}
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", ids[i], err)
		}
		out = append(out, r)
	}
	sortByCreated(out)
	return out, nil
}

func (s *RedisStore) Update(ctx context.Context, r Record) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	ok, err := s.client.SetXX(ctx, entryKey(r.TenantID, r.Resource, r.ID), payload, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("update record: %w", classifyRedis(err))
	}
	if !ok {
		return fmt.Errorf("record %s: %w", r.ID, sentinel.ErrNotFound)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, tenantID, resource, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, entryKey(tenantID, resource, id))
		pipe.SRem(ctx, indexKey(tenantID, resource), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete record: %w", classifyRedis(err))
	}
	if del.Val() == 0 {
		return fmt.Errorf("record %s: %w", id, sentinel.ErrNotFound)
	}
	return nil
}

// classifyRedis marks transport failures as unavailable. Redis replies such as
// WRONGTYPE pass through unchanged.
func classifyRedis(err error) error {
	var reply redis.Error
	if errors.As(err, &reply) {
		return err
	}
	return errors.Join(sentinel.ErrUnavailable, err)
}
