package domain

// ContextObservation is what a single goroutine sees in its request context.
type ContextObservation struct {
	// Installed reports whether a request context was explicitly installed
	// in the observing goroutine's slot (as opposed to the process default).
	Installed bool `json:"installed"`

	// RequestID is the request ID read from the context store.
	RequestID string `json:"requestId"`

	// CorrelationID is the correlation ID read from the context store.
	CorrelationID string `json:"correlationId"`

	// Path is the request path read from the context store.
	Path string `json:"path"`
}

// WorkerObservation is a ContextObservation made from a fanned-out worker
// goroutine, annotated with the worker index and whether the worker saw the
// very same context instance as the request goroutine.
type WorkerObservation struct {
	Worker int `json:"worker"`

	ContextObservation

	// SameContext reports whether the worker's slot held the identical
	// context instance as the request goroutine, not a copy.
	SameContext bool `json:"sameContext"`
}

// InspectionReport aggregates what the request goroutine and its workers
// observed in their propagated request contexts.
type InspectionReport struct {
	Parent  ContextObservation  `json:"parent"`
	Workers []WorkerObservation `json:"workers"`
}
