package leaderboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/voleai/padelpro/internal/padel"
)

const (
	standingsKeyPrefix = "standings:"
	infoKeyPrefix      = "standing:info:"
)

// RedisCache keeps per-kind standings in redis sorted sets.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
	}
}

var _ Cache = (*RedisCache)(nil)

// memberScore maps (points, seq) onto a single sorted-set score: negated
// points keep ZRange ascending equal to standings order, and on equal points
// the smaller (earlier) sequence wins, so the longer-standing total ranks
// first.
func memberScore(points float64, seq int64) float64 {
	return -points*1e9 + float64(seq)
}

func standingsKey(kind padel.SubjectKind) string {
	return standingsKeyPrefix + string(kind)
}

func infoKey(kind padel.SubjectKind, subjectID string) string {
	return fmt.Sprintf("%s%s:%s", infoKeyPrefix, kind, subjectID)
}

func (c *RedisCache) UpdateStanding(ctx context.Context, kind padel.SubjectKind, subjectID string, points float64, seq int64) error {
	if err := c.client.ZAdd(ctx, standingsKey(kind), &redis.Z{
		Score:  memberScore(points, seq),
		Member: subjectID,
	}).Err(); err != nil {
		return err
	}
	return c.client.HSet(ctx, infoKey(kind, subjectID), map[string]interface{}{
		"points": points,
		"seq":    seq,
	}).Err()
}

func (c *RedisCache) TopN(ctx context.Context, kind padel.SubjectKind, n int64) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	ids, err := c.client.ZRange(ctx, standingsKey(kind), 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(ids))
	for i, id := range ids {
		points, err := c.points(ctx, kind, id)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{SubjectID: id, Points: points, Rank: i + 1})
	}
	return entries, nil
}

func (c *RedisCache) Rank(ctx context.Context, kind padel.SubjectKind, subjectID string) (int, error) {
	rank, err := c.client.ZRank(ctx, standingsKey(kind), subjectID).Result()
	if err != nil {
		return 0, err
	}
	return int(rank) + 1, nil
}

func (c *RedisCache) Remove(ctx context.Context, kind padel.SubjectKind, subjectID string) error {
	if err := c.client.ZRem(ctx, standingsKey(kind), subjectID).Err(); err != nil {
		return err
	}
	return c.client.Del(ctx, infoKey(kind, subjectID)).Err()
}

func (c *RedisCache) Reset(ctx context.Context) error {
	for _, kind := range []padel.SubjectKind{padel.SubjectPlayer, padel.SubjectPair} {
		if err := c.client.Del(ctx, standingsKey(kind)).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (c *RedisCache) points(ctx context.Context, kind padel.SubjectKind, subjectID string) (float64, error) {
	val, err := c.client.HGet(ctx, infoKey(kind, subjectID), "points").Result()
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(val, 64)
}
