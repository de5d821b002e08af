// Package integration provides integration tests for the jobs server.
// The tests start the complete application on an ephemeral port with file
// backed storage and exercise the front-end modules, the sitemap, the
// back-end API and configuration reloads over HTTP.
package integration
