// Package catalog persists the table catalog in SQLite: records, media
// references, play history, and the remote listing cache. Multi-step changes
// go through mutation batches so each logical file or record commits
// atomically.
package catalog
