// Package integrity provides health checks of the catalog and its snapshot archive.
//
// Unlike the sync runner, which repairs stale rows on its own, these checks only
// report; the structure check can create missing folders on request.
//
// # Checks Provided
//
//   - Schema: every catalog table exists with every column of its gorm model.
//   - Data: orphaned tag, type, sale, key and cursor rows, and items a pass never wrote.
//   - Structure: the snapshot folders of every dataset exist in the bucket.
//   - Snapshots: the newest archived payload of every dataset, for replay.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/data : Runs the data check (supports ?pass=prices).
//   - GET /integrity/structure : Runs the structure check (supports ?fix=true).
//   - GET /integrity/snapshots : Lists the newest snapshots.
package integrity
