package ctxutil

import "context"

type traceDataKey struct{}

// TraceData carries the per-request correlation ids. It is attached once by
// the trace middleware and read back wherever a log line needs correlating.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// LogFields renders the ids as logger key/value pairs, skipping empties.
func (td *TraceData) LogFields() []interface{} {
	if td == nil {
		return nil
	}
	fields := []interface{}{}
	if td.TraceID != "" {
		fields = append(fields, "trace_id", td.TraceID)
	}
	if td.RequestID != "" {
		fields = append(fields, "request_id", td.RequestID)
	}
	return fields
}
