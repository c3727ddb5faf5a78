// Package async provides a small generic Future for running a computation in its
// own goroutine and collecting the result later.
//
// Go starts the computation and returns immediately. Callers wait with Await,
// bound the wait with AwaitContext, select on Done, or poll IsComplete. Resolved
// builds a Future that is already complete, which lets an API return a Future
// from a fast path without starting a goroutine.
//
// # Usage
//
//	f := async.Go(ctx, func(ctx context.Context) (bool, error) {
//		return client.Enabled(ctx, "new-checkout"), nil
//	})
//
//	// do other work …
//
//	enabled, err := f.AwaitContext(ctx)
//
// Abandoning a wait through AwaitContext does not cancel the computation; pass a
// cancellable context to Go for that.
//
// # Error Handling
//
// Futures carry the error returned by the computation. A panic is recovered and
// reported as ErrPanic so one failing task cannot take down the process.
package async
