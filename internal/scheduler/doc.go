// Package scheduler runs the per-object tasks of one batch call.
//
// Two models are provided with the same contract: every task runs exactly
// once and Run returns only after all of them finished. Parallel starts all
// tasks at once; Sequential runs them in index order on the calling goroutine.
// Bounding real I/O is the job of the limiter, not the scheduler.
package scheduler
