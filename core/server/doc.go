// Package server holds the HTTP server configuration.
//
// The start command serves the sync trigger, status and integrity endpoints on
// Config.Address. Every request must carry Config.ApiKey in the X-API-Key header.
package server
