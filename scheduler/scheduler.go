package scheduler

import (
	"context"
	"log"
	"time"

	"projectdesk/services"

	"github.com/robfig/cron/v3"
)

// StartScheduler runs the background jobs. The caller stops the returned
// cron on shutdown.
func StartScheduler(tokens *services.TokenService) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())

	// ทุกชั่วโมง
	_, err := c.AddFunc("0 0 * * * *", func() {
		PruneTokensJob(tokens)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Println("Scheduler started")
	return c, nil
}

func PruneTokensJob(tokens *services.TokenService) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	n, err := tokens.PruneExpired(ctx)
	if err != nil {
		log.Printf("prune expired tokens: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Pruned %d expired tokens", n)
	}
}
