package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/kotoba-app/kotoba/pkg/lock"
)

var globalDeleteLock *lock.DistributedLock

// InitDeleteLock sets the distributed lock guarding prefix deletions.
// When set, delete endpoints serialize through this lock so two overlapping
// recursive deletes never race over the same listing cursor space.
func InitDeleteLock(l *lock.DistributedLock) {
	globalDeleteLock = l
}

// DeleteLockMw returns a middleware slice that acquires the delete lock.
// If the lock is not initialized (Redis disabled), returns nil so requests
// pass through without any locking overhead.
func DeleteLockMw() []app.HandlerFunc {
	if globalDeleteLock == nil {
		return nil
	}
	return []app.HandlerFunc{deleteLockHandler()}
}

func deleteLockHandler() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		lockID, err := globalDeleteLock.Acquire(ctx)
		if err != nil {
			log.Printf("[DeleteLock] failed to acquire lock: %v", err)
			c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"code": http.StatusServiceUnavailable,
				"msg":  "service busy, please retry later",
			})
			c.Abort()
			return
		}
		defer func() {
			if releaseErr := globalDeleteLock.Release(ctx, lockID); releaseErr != nil {
				log.Printf("[DeleteLock] failed to release lock: %v", releaseErr)
			}
		}()
		c.Next(ctx)
	}
}
