// Package requestid carries correlation identifiers from the caller's context to
// outgoing flag service requests and log records.
//
// A caller that already has a request ID (from an incoming HTTP request, a job,
// a CLI invocation) stores it with WithContext. Every fetch made on that context
// sends it as X-Request-ID, so service-side logs line up with the caller's.
// Without one, each request gets a fresh UUID.
//
// # Usage
//
//	ctx = requestid.WithContext(ctx, incomingID)
//	on := fl.Enabled(ctx, "new-checkout")
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//
// IDs longer than 128 characters or containing anything but letters, digits,
// '-' and '_' are replaced with a fresh UUID.
package requestid
