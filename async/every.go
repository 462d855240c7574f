// Package async includes helpers for scheduling runnable, periodic functions.
package async

import (
	"context"
	"reflect"
	"runtime"
	"time"

	log "github.com/sirupsen/logrus"
)

// RunEvery runs the provided command periodically.
// It runs in a goroutine, and can be cancelled by finishing the supplied context.
func RunEvery(ctx context.Context, period time.Duration, f func()) {
	funcName := runtime.FuncForPC(reflect.ValueOf(f).Pointer()).Name()
	ticker := time.NewTicker(period)
	go func() {
		for {
			select {
			case <-ticker.C:
				log.WithField("function", funcName).Trace("running")
				f()
			case <-ctx.Done():
				log.WithField("function", funcName).Debug("context is closed, exiting")
				ticker.Stop()
				return
			}
		}
	}()
}

// RunDaily schedules f at the given local hour once per day. The first run
// waits until the next occurrence of that hour. Cancellation follows the
// supplied context, same as RunEvery.
func RunDaily(ctx context.Context, hour int, f func()) {
	funcName := runtime.FuncForPC(reflect.ValueOf(f).Pointer()).Name()
	go func() {
		for {
			wait := untilHour(time.Now(), hour)
			log.WithField("function", funcName).WithField("wait", wait).Debug("scheduled daily run")
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
				f()
			case <-ctx.Done():
				timer.Stop()
				log.WithField("function", funcName).Debug("context is closed, exiting")
				return
			}
		}
	}()
}

// untilHour returns the duration from now until the next local occurrence of
// the given hour. A result of zero is pushed a full day out so callers never
// busy-loop.
func untilHour(now time.Time, hour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
