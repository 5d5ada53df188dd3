package logging

import (
	"context"
	"slices"
)

type fieldsKey struct{}

// ContextWith returns a copy of ctx carrying key-value pairs that every
// Logger appends to the records it writes with that context.
func ContextWith(ctx context.Context, args ...any) context.Context {
	return context.WithValue(ctx, fieldsKey{}, append(slices.Clip(fieldsFrom(ctx)), args...))
}

func fieldsFrom(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(fieldsKey{}).([]any)
	return f
}

// withContextFields prepends the fields carried by ctx to args.
func withContextFields(ctx context.Context, args []any) []any {
	f := fieldsFrom(ctx)
	if len(f) == 0 {
		return args
	}
	return append(slices.Clip(f), args...)
}
