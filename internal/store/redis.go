package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/manpreetbhatti/beholder/internal/view"
)

const keyPrefix = "playerview:"

// Redis backs multi-instance deployments: all instances share one view
// of availability, and the claim script is atomic per key, so
// concurrent claims serialize to a single winner no matter which
// instance they arrive on.
type Redis struct {
	client      *redis.Client
	claimScript *redis.Script
}

// The claim must treat "check" and "reserve" as one step. A Lua script
// runs atomically in Redis, covering entries created by updates (hash
// fields) as well as bare reservations.
var claimScript = `
if redis.call('EXISTS', KEYS[1]) == 1 then
    return 0
end
redis.call('HSET', KEYS[1], 'claimed', '1')
return 1
`

func OpenRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{
		client:      client,
		claimScript: redis.NewScript(claimScript),
	}, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func key(roomID string) string {
	return keyPrefix + roomID
}

func (r *Redis) UpdateEncounter(ctx context.Context, roomID string, state view.EncounterState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal encounter state: %w", err)
	}
	return r.client.HSet(ctx, key(roomID), "encounter", string(data)).Err()
}

func (r *Redis) UpdateSettings(ctx context.Context, roomID string, settings view.ViewSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal view settings: %w", err)
	}
	return r.client.HSet(ctx, key(roomID), "settings", string(data)).Err()
}

func (r *Redis) Get(ctx context.Context, roomID string) (*Entry, error) {
	fields, err := r.client.HGetAll(ctx, key(roomID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	entry := &Entry{}
	if raw, ok := fields["encounter"]; ok {
		var state view.EncounterState
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			return nil, fmt.Errorf("unmarshal encounter state: %w", err)
		}
		entry.State = &state
	}
	if raw, ok := fields["settings"]; ok {
		var settings view.ViewSettings
		if err := json.Unmarshal([]byte(raw), &settings); err != nil {
			return nil, fmt.Errorf("unmarshal view settings: %w", err)
		}
		entry.Settings = &settings
	}
	return entry, nil
}

func (r *Redis) IsAvailable(ctx context.Context, roomID string) (bool, error) {
	exists, err := r.client.Exists(ctx, key(roomID)).Result()
	if err != nil {
		return false, err
	}
	return exists == 0, nil
}

func (r *Redis) Claim(ctx context.Context, roomID string) (bool, error) {
	result, err := r.claimScript.Run(ctx, r.client, []string{key(roomID)}).Int()
	if err != nil {
		return false, fmt.Errorf("claim script: %w", err)
	}
	return result == 1, nil
}

func (r *Redis) Destroy(ctx context.Context, roomID string) error {
	return r.client.Del(ctx, key(roomID)).Err()
}

func (r *Redis) Count(ctx context.Context) (int, error) {
	var cursor uint64
	count := 0
	for {
		keys, next, err := r.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}
