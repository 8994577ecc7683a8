package object

import "time"

// Info describes a single object discovered while listing.
type Info struct {
	Key     string
	Size    int64
	ModTime time.Time
}
