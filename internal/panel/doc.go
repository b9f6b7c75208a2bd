// Package panel provides an HTTP client for cPanel UAPI and WHM API1 listings.
//
// # Overview
//
// The client performs read-only calls against a hosting control panel and
// turns the row arrays they return into tabview records. It authenticates
// with a pre-issued API token; login flows and session cookies are out of
// scope.
//
// # Architecture
//
//   - client.go: HTTP transport, auth header, envelope decoding
//   - listing.go: the listing catalog and row conversion
//   - provider.go: adapter from a listing to tabview.Provider
//   - types.go: response envelopes, Status and error types
//
// # Endpoints
//
//   - UAPI: GET /execute/<Module>/<function>?<params>
//     Authorization: cpanel <user>:<token>
//   - WHM:  GET /json-api/<function>?api.version=1&<params>
//     Authorization: whm <user>:<token>
//
// Status checks use WHM "version" or UAPI "Variables::get_user_information".
//
// # Listings
//
// Built-in listings:
//
//	accounts    WHM listaccts                 data.acct[]         id=user
//	email       UAPI Email::list_pops         data[]              id=email
//	ftp         UAPI Ftp::list_ftp            data[]              id=user
//	databases   UAPI Mysql::list_databases    data[]              id=database
//	subdomains  UAPI DomainInfo::list_domains data.sub_domains[]  id=domain
//
// Rows that are plain strings (sub_domains) become single-field records.
// A row without its identity field gets the synthetic key "#<index>" and a
// warning is logged, since selection on such rows does not survive reordering.
// Numbers are kept as json.Number; TimeFields become time.Time.
//
// # Error Handling
//
//   - *HTTPError for status >= 400; 401 and 403 also match ErrUnauthorized
//   - *APIError when the panel answers with status/result 0
//   - ErrKindMismatch when a WHM listing is requested with a UAPI token or
//     the other way around
//   - wrapped network and decode errors ("execute request: ...",
//     "decode response: ...")
//
// # Request Handling
//
// Every request carries a fresh UUID in X-Request-ID and in the zap fields of
// the request's log lines, so a failed poll can be matched with the panel's
// access log. Requests time out after 5 seconds. insecure_skip_verify turns
// off certificate verification for panels running self-signed certificates.
//
// # Thread Safety
//
// Client is safe for concurrent use.
package panel
