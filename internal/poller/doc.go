// Package poller provides the HTTP transport used to query the homework
// review API.
//
// The main component is [Client], an HTTP client wrapper with per-request
// timeouts, a response size limit and optional token authentication
// through golang.org/x/oauth2. It knows nothing about the shape of
// the API response; decoding and validation belong to the homeworkbot
// package.
package poller
