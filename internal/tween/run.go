package tween

import (
	"context"
	"time"
)

// Run drives tl from a frame ticker until ctx is cancelled or the timeline
// is killed. onFrame, when set, is called after every tick so the host can
// poll Time and Progress.
func Run(ctx context.Context, tl *Timeline, fps int, onFrame func(*Timeline)) error {
	if fps <= 0 {
		fps = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			tl.Tick(dt)
			if tl.Killed() {
				return nil
			}
			if onFrame != nil {
				onFrame(tl)
			}
		}
	}
}
