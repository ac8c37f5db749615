// Package cloudantclient is a persistent-connection client for
// CouchDB-compatible document-database HTTP APIs, including IBM Cloudant.
//
// A Client owns one multiplexed HTTP/2 connection to a single server and
// issues arbitrary request/response exchanges over it, automatically
// attaching the correct credential, normalizing request shape, and
// classifying responses by status code.
//
// Two authentication modes are supported:
//
//   - Cookie sessions: AuthenticateWithPassword performs a form-encoded
//     POST to /_session; the server's Set-Cookie response is captured into
//     an RFC 6265 cookie store and replayed on subsequent requests.
//   - Bearer tokens: AuthenticateWithAPIKey trades an API key for a
//     short-lived access token at an identity service and can proactively
//     refresh it 60 seconds before expiry.
//
// Typical usage:
//
//	client, err := cloudantclient.NewClient("https://example.cloudant.com")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	if err := client.AuthenticateWithAPIKey(ctx, apiKey, true); err != nil {
//	    log.Fatal(err)
//	}
//	result, err := client.Request(ctx, cloudantclient.RequestDescription{
//	    Path: "/_all_dbs",
//	})
//
// Requests issues many exchanges concurrently over the same connection and
// returns their outcomes in input order. Set the COUCH_LOG environment
// variable to "debug" for per-exchange structured log lines, or supply a
// logger with WithLogger.
package cloudantclient
