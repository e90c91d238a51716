package requestctx

import "context"

// Meta is the per-request identity shared by access logging and auditing.
// It is stored by pointer so that Auth, which runs after the access logger,
// can fill Subject for the log line written on the way out.
type Meta struct {
	RequestID string
	Subject   string
}

type metaKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, metaKey{}, &Meta{RequestID: requestID})
}

func from(ctx context.Context) *Meta {
	meta, _ := ctx.Value(metaKey{}).(*Meta)
	return meta
}

func GetRequestID(ctx context.Context) string {
	if meta := from(ctx); meta != nil {
		return meta.RequestID
	}
	return ""
}

// SetSubject records the authenticated caller. It is a no-op outside a
// request carrying Meta.
func SetSubject(ctx context.Context, subject string) {
	if meta := from(ctx); meta != nil {
		meta.Subject = subject
	}
}

func Subject(ctx context.Context) string {
	if meta := from(ctx); meta != nil {
		return meta.Subject
	}
	return ""
}
