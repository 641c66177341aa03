// Package syncer reconciles the local store with the remote store.
//
// The package has two reconciliation paths:
//
//  1. Login merge: runs once when an identity becomes available,
//     comparing every record on both sides and keeping the newer copy
//     by modification time. Ties keep the local copy.
//
//  2. Queue drain: runs on a fixed interval while connected, replaying
//     pending writes that accumulated during outages. Keyed record
//     kinds are replayed in a single atomic batch per collection;
//     singleton kinds are replayed individually.
//
// The Daemon type drives both paths from identity changes, a drain
// ticker, and an optional snapshot drop directory.
package syncer
