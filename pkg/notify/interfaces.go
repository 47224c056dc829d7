package notify

import "context"

// Notifier delivers feed events to a downstream sink (SQS, SNS, Pub/Sub, HTTP, log).
type Notifier interface {
	ID() string
	Type() string
	Notify(ctx context.Context, evt Event) error
}
