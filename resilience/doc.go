// Package resilience retries operations that fail transiently, such as
// writes to a SQLite file another process holds locked.
//
//	err := resilience.RetryFunc(ctx, resilience.RetryConfig{RetryIf: isBusy}, commit)
package resilience
