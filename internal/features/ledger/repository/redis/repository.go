package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"lucky-draw-backend/internal/common/logger"
	"lucky-draw-backend/internal/features/ledger/models"
	"lucky-draw-backend/internal/features/ledger/repository"
)

// Key layout, all under the configured prefix:
//
//	<prefix>:entries          ZSET id scored by timestamp micros
//	<prefix>:payloads         HASH id -> entry JSON
//	<prefix>:handle:<handle>  ZSET id scored by timestamp micros
//	<prefix>:claim:<day>:<handle>  STRING entry id, SETNX once-per-day claim
//	<prefix>:claims           HASH id -> claim key, for release on delete
//
// Readers only reach payloads through a ZSET, so an entry is visible once
// its ZADDs commit.
const (
	keyEntries   = "entries"
	keyPayloads  = "payloads"
	keyHandleFmt = "handle:%s"
	keyClaimFmt  = "claim:%s:%s"
	keyClaims    = "claims"

	// claimTTL outlives a local day in any timezone.
	claimTTL = 48 * time.Hour
)

type redisRepository struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisRepository(client redis.UniversalClient, prefix string) repository.EntryRepository {
	if prefix == "" {
		prefix = "ledger"
	}
	return &redisRepository{client: client, prefix: prefix}
}

func (r *redisRepository) key(name string) string {
	return r.prefix + ":" + name
}

func (r *redisRepository) handleKey(handle string) string {
	return r.key(fmt.Sprintf(keyHandleFmt, handle))
}

func (r *redisRepository) claimKey(day, handle string) string {
	return r.key(fmt.Sprintf(keyClaimFmt, day, handle))
}

func score(t time.Time) string {
	return strconv.FormatInt(t.UnixMicro(), 10)
}

func (r *redisRepository) Insert(ctx context.Context, entry models.Entry) error {
	return r.insert(ctx, entry, "")
}

func (r *redisRepository) InsertDaily(ctx context.Context, entry models.Entry, day string) error {
	claimKey := r.claimKey(day, entry.Handle)
	claimed, err := r.client.SetNX(ctx, claimKey, entry.ID, claimTTL).Result()
	if err != nil {
		return fmt.Errorf("claim day: %w", err)
	}
	if !claimed {
		return repository.ErrDailyClaimed
	}

	if err := r.insert(ctx, entry, claimKey); err != nil {
		if delErr := r.client.Del(context.WithoutCancel(ctx), claimKey).Err(); delErr != nil {
			logger.Warn().Err(delErr).Str("key", claimKey).Msg("Failed to release daily claim")
		}
		return err
	}
	return nil
}

func (r *redisRepository) insert(ctx context.Context, entry models.Entry, claimKey string) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	claimed, err := r.client.HSetNX(ctx, r.key(keyPayloads), entry.ID, data).Result()
	if err != nil {
		return fmt.Errorf("store entry payload: %w", err)
	}
	if !claimed {
		return repository.ErrDuplicateID
	}

	member := redis.Z{Score: float64(entry.Timestamp.UnixMicro()), Member: entry.ID}
	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, r.key(keyEntries), member)
	pipe.ZAdd(ctx, r.handleKey(entry.Handle), member)
	if claimKey != "" {
		pipe.HSet(ctx, r.key(keyClaims), entry.ID, claimKey)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		// payload without index entries is unreachable, drop it anyway
		if delErr := r.client.HDel(context.WithoutCancel(ctx), r.key(keyPayloads), entry.ID).Err(); delErr != nil {
			logger.Warn().Err(delErr).Str("entry_id", entry.ID).Msg("Failed to drop orphaned ledger payload")
		}
		return fmt.Errorf("index entry: %w", err)
	}
	return nil
}

func (r *redisRepository) ListRange(ctx context.Context, from, to time.Time, limit int) ([]models.Entry, error) {
	if limit <= 0 {
		return nil, repository.ErrInvalidLimit
	}
	ids, err := r.client.ZRevRangeByScore(ctx, r.key(keyEntries), &redis.ZRangeBy{
		Min:   score(from),
		Max:   "(" + score(to),
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("list entry ids: %w", err)
	}
	return r.load(ctx, ids)
}

func (r *redisRepository) ListRecent(ctx context.Context, limit int) ([]models.Entry, error) {
	if limit <= 0 {
		return nil, repository.ErrInvalidLimit
	}
	ids, err := r.client.ZRevRange(ctx, r.key(keyEntries), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list recent entry ids: %w", err)
	}
	return r.load(ctx, ids)
}

func (r *redisRepository) load(ctx context.Context, ids []string) ([]models.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	values, err := r.client.HMGet(ctx, r.key(keyPayloads), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	entries := make([]models.Entry, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// removed between the range read and HMGET
			continue
		}
		var e models.Entry
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode entry %s: %w", ids[i], err)
		}
		e.Timestamp = e.Timestamp.UTC()
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *redisRepository) ExistsForHandle(ctx context.Context, handle string, from, to time.Time) (bool, error) {
	n, err := r.client.ZCount(ctx, r.handleKey(handle), score(from), "("+score(to)).Result()
	if err != nil {
		return false, fmt.Errorf("check handle: %w", err)
	}
	return n > 0, nil
}

func (r *redisRepository) Delete(ctx context.Context, id string) error {
	raw, err := r.client.HGet(ctx, r.key(keyPayloads), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return repository.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load entry: %w", err)
	}
	var e models.Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return fmt.Errorf("decode entry %s: %w", id, err)
	}

	claimKey, err := r.client.HGet(ctx, r.key(keyClaims), id).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("load daily claim: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.ZRem(ctx, r.key(keyEntries), id)
	pipe.ZRem(ctx, r.handleKey(e.Handle), id)
	pipe.HDel(ctx, r.key(keyPayloads), id)
	if claimKey != "" {
		pipe.Del(ctx, claimKey)
		pipe.HDel(ctx, r.key(keyClaims), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

func (r *redisRepository) Clear(ctx context.Context) error {
	keys := []string{r.key(keyEntries), r.key(keyPayloads), r.key(keyClaims)}

	for _, pattern := range []string{r.handleKey("*"), r.claimKey("*", "*")} {
		iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("scan keys %s: %w", pattern, err)
		}
	}

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

func (r *redisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisRepository) Close() error {
	return r.client.Close()
}
