package events

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// DatasetReloadedData contains data for DatasetReloaded events
type DatasetReloadedData struct {
	SnapshotID  string `json:"snapshot_id"`
	Source      string `json:"source"`
	Fingerprint string `json:"fingerprint"`
	Rows        int    `json:"rows"`
	Warnings    int    `json:"warnings"`
	Changed     bool   `json:"changed"`
}

// EventType returns the event type for DatasetReloadedData
func (d *DatasetReloadedData) EventType() EventType {
	return DatasetReloaded
}

// DatasetLoadFailedData contains data for DatasetLoadFailed events
type DatasetLoadFailedData struct {
	Source         string   `json:"source"`
	Error          string   `json:"error"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

// EventType returns the event type for DatasetLoadFailedData
func (d *DatasetLoadFailedData) EventType() EventType {
	return DatasetLoadFailed
}

// BacktestComputedData contains data for BacktestComputed events
type BacktestComputedData struct {
	Category        string `json:"category"`
	Fingerprint     string `json:"fingerprint"`
	Years           int    `json:"years"`
	Recommendations int    `json:"recommendations"`
}

// EventType returns the event type for BacktestComputedData
func (d *BacktestComputedData) EventType() EventType {
	return BacktestComputed
}

// CachePurgedData contains data for CachePurged events
type CachePurgedData struct {
	Reason  string `json:"reason"`
	Removed int64  `json:"removed"`
}

// EventType returns the event type for CachePurgedData
func (d *CachePurgedData) EventType() EventType {
	return CachePurged
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
