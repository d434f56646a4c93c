// Package store provides SQLite-backed run history for testrig.
//
// Each Runner has one row in the runs table, keyed by its run ID. The row
// is written when the Runner reports and updated on every later report, so
// a Runner shared by several suites ends with its lifetime totals. Only
// counts are stored; individual test outcomes are not persisted.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Timestamps are stored as Unix milliseconds. Listings are ordered by
// started_at DESC, id DESC so that runs started in the same millisecond
// still come back in a stable order.
package store
