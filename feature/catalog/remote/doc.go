// Package remote fetches the catalog datasets from tarkov-market and tarkov.dev.
//
// Both clients share one Transport: a timeout-bound http.Client behind a
// golang.org/x/time/rate limiter that halves its rate after a 429. Payloads are
// decoded with goccy/go-json. With snapshots enabled the Transport archives every
// raw payload to object storage, or replays the newest archived one instead of
// calling the remote at all.
//
// Dataset names: market-pve, market-pvp (REST, x-api-key header), dev-items,
// dev-types, dev-keys, dev-sales (GraphQL).
package remote
