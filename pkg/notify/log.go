package notify

import "context"

// logNotifier writes events to the configured logger. Useful as a default
// sink and in development.
type logNotifier struct {
	id  string
	log Logger
}

func newLogNotifier(_ context.Context, cfg NotifierConfig, log Logger) (Notifier, error) {
	return &logNotifier{id: cfg.ID, log: ensureLogger(log)}, nil
}

func (l *logNotifier) ID() string   { return l.id }
func (l *logNotifier) Type() string { return TypeLog }

func (l *logNotifier) Notify(_ context.Context, evt Event) error {
	l.log.InfoObj("feed event", "feed_event", evt)
	return nil
}
