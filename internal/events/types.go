package events

// EventType identifies the kind of system event
type EventType string

const (
	// DatasetReloaded is emitted after a dataset snapshot is swapped in
	DatasetReloaded EventType = "DATASET_RELOADED"
	// DatasetLoadFailed is emitted when a reload could not produce a snapshot
	DatasetLoadFailed EventType = "DATASET_LOAD_FAILED"
	// BacktestComputed is emitted when a backtest outcome is computed (not served from cache)
	BacktestComputed EventType = "BACKTEST_COMPUTED"
	// CachePurged is emitted when the backtest cache is invalidated
	CachePurged EventType = "CACHE_PURGED"
	// ErrorOccurred is emitted for errors worth surfacing to clients
	ErrorOccurred EventType = "ERROR_OCCURRED"
)

// AllTypes lists every event type, used by stream subscribers
func AllTypes() []EventType {
	return []EventType{DatasetReloaded, DatasetLoadFailed, BacktestComputed, CachePurged, ErrorOccurred}
}
