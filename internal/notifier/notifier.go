package notifier

// Notifier delivers a text message somewhere a human will read it.
type Notifier interface {
	Send(text string) error
}

// NoopNotifier discards messages; used when Telegram is not configured.
type NoopNotifier struct{}

func NewNoopNotifier() *NoopNotifier { return &NoopNotifier{} }

func (n *NoopNotifier) Send(_ string) error { return nil }
