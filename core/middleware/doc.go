// Package middleware groups the fiber middleware mounted in front of the sync API.
//
//   - auth rejects requests whose X-API-Key header does not match server.api_key.
//     Paths in Config.Skip bypass the check.
//   - rayid tags each request with an id, echoes it in the response header and
//     stores it in Locals, where logger.WithRayID picks it up.
//
// rayid is registered first so rejected requests are traced too.
package middleware
