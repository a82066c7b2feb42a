package model

// CacheChecksum is the lightweight freshness probe clients compare
// against their locally stored value before re-fetching a collection.
type CacheChecksum struct {
	Checksum        string `json:"checksum"`
	Count           int    `json:"count"`
	LatestTimestamp int64  `json:"latest_timestamp"`
}

type Stats struct {
	Submitted  int `json:"submitted"`
	InProgress int `json:"in_progress"`
	Confirmed  int `json:"confirmed"`
	Resolved   int `json:"resolved"`
}
