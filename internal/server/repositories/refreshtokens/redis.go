package refreshtokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/manishrnl/authservice/internal/common"
	"github.com/manishrnl/authservice/internal/server/models"
)

const redisKeyPrefix = "refresh_token:"

type redisRecord struct {
	AccountID string    `json:"account_id"`
	Username  string    `json:"username"`
	Expires   time.Time `json:"expires_at"`
}

// RedisRepository implements Repository on top of Redis. Records carry a key
// TTL of twice their logical lifetime: verification must still be able to
// observe and consume a logically expired token, while abandoned ones are
// eventually garbage-collected by Redis itself.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository constructs a repository over the given client.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) Save(ctx context.Context, token *models.RefreshToken) error {
	payload, err := json.Marshal(redisRecord{
		AccountID: token.AccountID,
		Username:  token.Username,
		Expires:   token.Expires,
	})
	if err != nil {
		return fmt.Errorf("encoding refresh token: %w", err)
	}

	ttl := 2 * time.Until(token.Expires)
	if ttl <= 0 {
		ttl = time.Minute
	}

	stored, err := r.client.SetNX(ctx, redisKeyPrefix+token.Token, payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if !stored {
		return ErrDuplicateToken
	}
	return nil
}

func (r *RedisRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	payload, err := r.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var record redisRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decoding refresh token: %w", err)
	}
	return &models.RefreshToken{
		Token:     token,
		AccountID: record.AccountID,
		Username:  record.Username,
		Expires:   record.Expires,
	}, nil
}

// replaceScript deletes the old key and writes the new one in a single
// atomic step on the server. It returns 0 without writing anything when the
// old key is already gone.
var replaceScript = redis.NewScript(`
if redis.call("DEL", KEYS[1]) == 0 then
  return 0
end
redis.call("SET", KEYS[2], ARGV[1], "PX", ARGV[2])
return 1
`)

// Replace rotates oldToken to record atomically via a Lua script, so two
// concurrent rotations of the same token cannot both succeed.
func (r *RedisRepository) Replace(ctx context.Context, oldToken string, record *models.RefreshToken) error {
	payload, err := json.Marshal(redisRecord{
		AccountID: record.AccountID,
		Username:  record.Username,
		Expires:   record.Expires,
	})
	if err != nil {
		return fmt.Errorf("encoding refresh token: %w", err)
	}

	ttl := 2 * time.Until(record.Expires)
	if ttl <= 0 {
		ttl = time.Minute
	}

	keys := []string{redisKeyPrefix + oldToken, redisKeyPrefix + record.Token}
	replaced, err := replaceScript.Run(ctx, r.client, keys, payload, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if replaced == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Delete removes the key for token. DEL reports how many keys it removed,
// which serializes concurrent consumers the same way the SQL row count does.
func (r *RedisRepository) Delete(ctx context.Context, token string) (bool, error) {
	removed, err := r.client.Del(ctx, redisKeyPrefix+token).Result()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return removed > 0, nil
}
