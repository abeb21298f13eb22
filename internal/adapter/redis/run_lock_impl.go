package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/user/catalog-crawler/pkg/utils"
)

const runLockPrefix = "scrape:lock:"

// releaseScript deletes the lock only while it still holds our token, so a
// run that outlived its TTL cannot drop a newer run's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLockRepoImpl provides a concrete implementation for the RunLockRepository interface using Redis.
type RunLockRepoImpl struct {
	client redis.Cmdable
}

// NewRunLockRepo creates a new instance of RunLockRepoImpl.
func NewRunLockRepo(client redis.Cmdable) *RunLockRepoImpl {
	return &RunLockRepoImpl{client: client}
}

func (r *RunLockRepoImpl) generateKey(websiteID string) string {
	return fmt.Sprintf("%s%s", runLockPrefix, utils.HashURL(websiteID))
}

// Acquire sets the lock key if nobody holds it. The TTL frees the lock if
// the process dies mid-run.
func (r *RunLockRepoImpl) Acquire(ctx context.Context, websiteID, token string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.generateKey(websiteID), token, ttl).Result()
	if err != nil {
		return false, eris.Wrapf(err, "acquire run lock for %s", websiteID)
	}
	return ok, nil
}

func (r *RunLockRepoImpl) Release(ctx context.Context, websiteID, token string) error {
	err := releaseScript.Run(ctx, r.client, []string{r.generateKey(websiteID)}, token).Err()
	if err != nil {
		return eris.Wrapf(err, "release run lock for %s", websiteID)
	}
	return nil
}
