package realtime

import "time"

// Observer is notified of manager activity. Methods run on the manager's event
// goroutine and must return quickly; they must not call back into the manager
// synchronously with a blocking wait.
type Observer interface {
	StatusChanged(from, to Status)
	MessageReceived(msg InboundMessage)
	MessageSent(kind string)
	// MessageDropped reports user text that was not written; status is the
	// state the manager was in when it handled the send.
	MessageDropped(status Status)
	ParseFailed(data []byte, err error)
	RetryScheduled(attempt int, delay time.Duration)
}

// NopObserver ignores every notification. Embed it to implement only part of Observer.
type NopObserver struct{}

func (NopObserver) StatusChanged(from, to Status)                   {}
func (NopObserver) MessageReceived(msg InboundMessage)              {}
func (NopObserver) MessageSent(kind string)                         {}
func (NopObserver) MessageDropped(status Status)                    {}
func (NopObserver) ParseFailed(data []byte, err error)              {}
func (NopObserver) RetryScheduled(attempt int, delay time.Duration) {}

// Observers fans notifications out to several observers in order.
type Observers []Observer

func (o Observers) StatusChanged(from, to Status) {
	for _, obs := range o {
		obs.StatusChanged(from, to)
	}
}

func (o Observers) MessageReceived(msg InboundMessage) {
	for _, obs := range o {
		obs.MessageReceived(msg)
	}
}

func (o Observers) MessageSent(kind string) {
	for _, obs := range o {
		obs.MessageSent(kind)
	}
}

func (o Observers) MessageDropped(status Status) {
	for _, obs := range o {
		obs.MessageDropped(status)
	}
}

func (o Observers) ParseFailed(data []byte, err error) {
	for _, obs := range o {
		obs.ParseFailed(data, err)
	}
}

func (o Observers) RetryScheduled(attempt int, delay time.Duration) {
	for _, obs := range o {
		obs.RetryScheduled(attempt, delay)
	}
}
