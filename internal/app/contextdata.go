package app

import "github.com/jsamuelsen/reqctx"

// Request data keys the service installs into each request context.
const (
	// DataKeyRequestID holds the per-request ID.
	DataKeyRequestID = "request_id"

	// DataKeyCorrelationID holds the cross-service correlation ID.
	DataKeyCorrelationID = "correlation_id"

	// DataKeyPath holds the matched route path.
	DataKeyPath = "path"
)

// StringData is a plain string payload for the request-context store.
type StringData struct {
	reqctx.DataCore

	Value string
}

// NewStringData creates a string payload.
func NewStringData(value string) *StringData {
	return &StringData{Value: value}
}

// StringFromContext reads a string payload from the given request context.
// Returns empty string when the key is absent or holds another payload type.
func StringFromContext(rc *reqctx.Context, key string) string {
	if sd, ok := rc.GetData(key).(*StringData); ok {
		return sd.Value
	}

	return ""
}
