package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// Redis keeps each document as a hash at "<prefix><table>:<key>" whose fields
// hold raw JSON values, and tracks the keys of a table in the set
// "<prefix><table>".
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps a go-redis client. prefix namespaces every key (may be empty).
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) docKey(table, key string) string { return fmt.Sprintf("%s%s:%s", r.prefix, table, key) }
func (r *Redis) setKey(table string) string      { return r.prefix + table }

func (r *Redis) Get(ctx context.Context, table, key string) (Document, error) {
	ok, err := r.client.SIsMember(ctx, r.setKey(table), key).Result()
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", table, key, err)
	}
	if !ok {
		return nil, ErrNotFound
	}
	fields, err := r.client.HGetAll(ctx, r.docKey(table, key)).Result()
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", table, key, err)
	}
	doc := make(Document, len(fields))
	for k, v := range fields {
		doc[k] = json.RawMessage(v)
	}
	return doc, nil
}

func (r *Redis) Put(ctx context.Context, table, key string, doc Document) error {
	hk := r.docKey(table, key)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, hk)
		if len(doc) > 0 {
			values := make([]any, 0, len(doc)*2)
			for k, v := range doc {
				values = append(values, k, string(v))
			}
			pipe.HSet(ctx, hk, values...)
		}
		pipe.SAdd(ctx, r.setKey(table), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", table, key, err)
	}
	return nil
}

func (r *Redis) DeleteField(ctx context.Context, table, key, field string) error {
	if err := r.client.HDel(ctx, r.docKey(table, key), field).Err(); err != nil {
		return fmt.Errorf("delete field %s on %s/%s: %w", field, table, key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, table, key string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.docKey(table, key))
		pipe.SRem(ctx, r.setKey(table), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, key, err)
	}
	return nil
}

func (r *Redis) Keys(ctx context.Context, table string) ([]string, error) {
	keys, err := r.client.SMembers(ctx, r.setKey(table)).Result()
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *Redis) Ping(ctx context.Context) error { return r.client.Ping(ctx).Err() }
