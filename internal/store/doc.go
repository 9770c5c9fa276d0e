// Package store provides the SQLite-backed persistent cache for restaurant
// records.
//
// The store holds one keyed table, restaurants, with primary key id and
// secondary indexes on name, neighborhood and cuisine_type. It is additive
// from the pipeline's point of view: every fetched record is upserted as it
// streams in, so the cache heals itself from an empty or stale state without
// a sync protocol. Consistency with the remote feed is last write wins.
//
// # Schema versioning
//
// The schema version is a single monotonically increasing integer kept in
// PRAGMA user_version. Opening a store at a lower version than the one
// persisted fails with a STORE_INIT error; opening at a higher known version
// runs the pending migrations in order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
