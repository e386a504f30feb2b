// Package metadata extracts descriptive table information from table files.
// The shipped extractor works from the filename alone; richer extractors
// (reading the table file itself) plug in behind the same interface.
package metadata

import "context"

// Info is the descriptive metadata of one table file. Fields an extractor
// cannot determine stay zero.
type Info struct {
	Name         string
	Manufacturer string
	Year         int
	Author       string
	ROMName      string
	TableType    string
	Players      int
	Description  string
}

// Extractor derives table metadata from a file on disk.
type Extractor interface {
	// Extract returns the metadata of the table at path. An extraction that
	// cannot produce at least a name fails.
	Extract(ctx context.Context, path string) (Info, error)
}
