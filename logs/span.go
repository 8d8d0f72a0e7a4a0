package logs

type Span string

type spanKey struct{}

var SpanKey spanKey

// SpanOf returns the span carried by ctx, if any.
func SpanOf(ctx interface{ Value(any) any }) Span {
	if v, ok := ctx.Value(SpanKey).(Span); ok {
		return v
	}
	return ""
}
