package document

import "context"

// Sink consumes a complete document tree. The tree is handed over once, at
// the end of input, and must not be modified by the sink.
type Sink interface {
	Write(ctx context.Context, doc *Document) error
}

// SinkFunc adapts ordinary function to Sink.
type SinkFunc func(ctx context.Context, doc *Document) error

func (f SinkFunc) Write(ctx context.Context, doc *Document) error {
	return f(ctx, doc)
}
