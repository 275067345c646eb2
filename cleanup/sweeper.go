// Package cleanup removes expired stories and stale recent-view rows in the
// background. The Mongo TTL index on stories is the backstop; the sweeper
// keeps collections small between TTL passes and handles recent views, which
// have no TTL index.
package cleanup

import (
	"context"
	"log"
	"time"

	"github.com/Sahareior/Shopee-Backend/database"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	sweepInterval       = time.Hour
	recentViewRetention = 30 * 24 * time.Hour
	sweepTimeout        = 30 * time.Second
)

// Sweeper runs periodic purges until its context is cancelled.
type Sweeper struct {
	interval time.Duration
}

func NewSweeper() *Sweeper {
	return &Sweeper{interval: sweepInterval}
}

// Run blocks, sweeping once immediately and then on every tick. Call it from
// its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	now := time.Now()

	res, err := database.Stories.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lte": now}})
	if err != nil {
		log.Printf("cleanup: expired story purge failed: %v", err)
	} else if res.DeletedCount > 0 {
		log.Printf("cleanup: purged %d expired stories", res.DeletedCount)
	}

	cutoff := now.Add(-recentViewRetention)
	res, err = database.RecentViews.DeleteMany(ctx, bson.M{"viewedAt": bson.M{"$lte": cutoff}})
	if err != nil {
		log.Printf("cleanup: recent view purge failed: %v", err)
	} else if res.DeletedCount > 0 {
		log.Printf("cleanup: purged %d stale recent views", res.DeletedCount)
	}
}
