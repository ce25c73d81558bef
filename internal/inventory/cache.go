package inventory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/fekuna/blueice-inventory-service/pkg/cache"
	"github.com/pkg/errors"
)

// StatsVersionKey counts committed writes that change stock or wallets. The
// dashboard snapshot is cached under StatsKey(version), so a snapshot taken
// before a write can only land under a version nobody reads anymore.
const StatsVersionKey = "inventory:stats:version"

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

func StatsKey(version int64) string {
	return fmt.Sprintf("inventory:stats:v%d", version)
}

// StatsVersion reads the current version. A missing counter is version 0;
// any other failure is returned and the caller should skip the cache.
func StatsVersion(ctx context.Context, c Cache) (int64, error) {
	data, err := c.Get(ctx, StatsVersionKey)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return 0, nil
		}
		return 0, err
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse stats version %q", data)
	}
	return v, nil
}

// InvalidateStats bumps the version after a committed write.
func InvalidateStats(ctx context.Context, c Cache) error {
	_, err := c.Incr(ctx, StatsVersionKey)
	return err
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}
