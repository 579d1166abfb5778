package runtime

import "time"

// Stats are the execution statistics of a query.
type Stats struct {
	// ScannedFull counts documents passed over by full collection scans,
	// including documents skipped without being materialized.
	ScannedFull int64 `json:"scannedFull"`
	// ScannedIndex counts index entries passed over by index scans.
	ScannedIndex int64 `json:"scannedIndex"`
	// Filtered counts rows removed by filters.
	Filtered int64 `json:"filtered"`
	// FullCount is the number of rows the outermost LIMIT would have
	// returned without the limit.  It is only maintained when the fullCount
	// option is set.
	FullCount       int64         `json:"fullCount,omitempty"`
	PeakMemoryUsage int64         `json:"peakMemoryUsage"`
	ExecutionTime   time.Duration `json:"executionTime"`
}
