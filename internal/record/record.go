// Package record defines the persisted record types shared by the
// local store and the remote store.
//
// Every mutable record carries an UpdatedAt timestamp assigned by the
// writer at write time. Records are flat with last-write-wins
// semantics: when two copies of the same record diverge, the copy
// with the strictly greater UpdatedAt wins, and on equal timestamps
// the local copy is kept.
package record

// Collection names, identical on both stores. The remote store
// additionally partitions each collection by the owning identity.
const (
	CollectionProgress    = "progress"
	CollectionDailyLogs   = "daily_logs"
	CollectionSettings    = "settings"
	CollectionTestResults = "test_results"
	CollectionQuestions   = "questions"
)
