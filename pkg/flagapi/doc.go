// Package flagapi is the HTTP transport to the FlagLite flag service. Its Client
// implements feature.Fetcher: one GET request per uncached flag, the API key sent
// as a bearer token through golang.org/x/oauth2, and every response classified
// into the feature error sentinels.
//
// # Usage
//
//	api, err := flagapi.New("", os.Getenv("FLAGLITE_API_KEY"),
//		flagapi.WithTimeout(5*time.Second),
//	)
//	if err != nil {
//		return err // feature.ErrConfiguration
//	}
//	defer api.Close()
//
//	def, err := api.Fetch(ctx, "new-checkout")
//	switch {
//	case errors.Is(err, feature.ErrAuthentication):
//		// bad key
//	case errors.Is(err, feature.ErrRateLimit):
//		var apiErr *flagapi.APIError
//		if errors.As(err, &apiErr) {
//			time.Sleep(apiErr.RetryAfter)
//		}
//	}
//
// # Protocol
//
// GET {base}/flags/{key} with Authorization: Bearer <key>, a User-Agent and an
// X-Request-ID. A 200 response carries
//
//	{"key": "new-checkout", "enabled": true, "rollout_percentage": 25, "salt": ""}
//
// where rollout_percentage and salt are optional. A 404 means the flag does not
// exist and is returned as a disabled definition.
package flagapi
