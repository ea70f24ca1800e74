package raster

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// StartRefresh reloads the store on a cron schedule (standard five-field expression
// or descriptors such as "@hourly"). The returned stop function waits for a
// running refresh to finish.
func (s *Store) StartRefresh(schedule string, timeout time.Duration) (stop func(), err error) {
	c := cron.New()
	_, err = c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = s.Refresh(ctx) // failures are logged and the previous raster stays
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}

	c.Start()
	s.logger.Info("raster refresh scheduled", "schedule", schedule)

	return func() {
		<-c.Stop().Done()
	}, nil
}
