// Package logger builds *slog.Logger instances with functional options and
// provides attribute helpers that keep key names consistent across the client.
//
// New picks a JSON or text handler, applies static attributes, and, when
// ContextExtractor callbacks are registered, wraps the handler so each record
// also carries values pulled from the context passed to InfoContext, WarnContext
// and friends.
//
// # Usage
//
//	log := logger.New(
//		logger.WithTextFormatter(),
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithContextValue("invocation_id", invocationKey{}),
//	)
//
//	log.WarnContext(ctx, "flag evaluation failed, using default",
//		logger.FlagKey("new-checkout"),
//		logger.UserID("user-123"),
//		logger.ErrorKind("network"),
//		logger.Error(err),
//	)
//
// Helpers such as Error, UserID and ErrorKind return an empty slog.Attr for zero
// input, which slog drops, so callers need no nil checks.
package logger
