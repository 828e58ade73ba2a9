package recorder

// ObservationEvent is one market-data read. Signals are never recorded.
type ObservationEvent struct {
	CoinID      string
	Symbol      string
	Source      string
	Placeholder bool
	Price       float64
	Change24h   float64
	Samples     int
	High7d      float64
	Low7d       float64
}

// FetchFailureEvent records a provider failure that was degraded to a fallback.
type FetchFailureEvent struct {
	Source      string
	CoinID      string
	RateLimited bool
	Error       string
}

// Recorder persists the market-data audit trail for analysis.
type Recorder interface {
	RecordObservation(evt *ObservationEvent) error
	RecordFetchFailure(evt *FetchFailureEvent) error
	Close() error
}
