package replay

import "time"

// Scheduler abstracts the cancellable delayed task used to drive playback.
// Tests substitute a manual implementation to fast-forward virtual time.
type Scheduler interface {
	// Schedule runs fn after delay and returns a cancel function. Cancel is
	// idempotent: calling it twice, or after fn has fired, is a no-op.
	Schedule(delay time.Duration, fn func()) (cancel func())
}

// TimerScheduler schedules on real timers.
type TimerScheduler struct{}

func (TimerScheduler) Schedule(delay time.Duration, fn func()) func() {
	t := time.AfterFunc(delay, fn)
	return func() { t.Stop() }
}
