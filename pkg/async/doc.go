// Package async runs detached background work for request handlers.
//
// # Overview
//
// Handlers sometimes need a side effect that must not delay or fail the
// response, such as recording when an API key was last used. Runner.Go
// starts such a task with a context detached from the request's
// cancellation, its own timeout and panic recovery:
//
//	if err := runner.Go(r.Context(), "touch last login", func(ctx context.Context) error {
//		return apiUsers.TouchLastLogin(ctx, key, time.Now())
//	}); err != nil {
//		logger.WithError(err).Warn("last login not recorded")
//	}
//
// Failures are logged, counted in spezi_background_tasks_total and offered
// on Errors() without ever blocking the task.
//
// # Shutdown
//
// Close stops accepting tasks and waits, up to the context deadline, for
// tasks already running.
//
// # Related Packages
//
//   - pkg/middleware: schedules the last-login update
//   - cmd/spezi: closes the runner on shutdown
package async
