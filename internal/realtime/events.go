package realtime

type eventKind int

const (
	evOpen eventKind = iota
	evFrame
	evError
	evClose
	evRetry
	evHeartbeat
	evSettle
	evSend
	evReconnect
	evVisible
	evOnline
	evOffline
	evBarrier
)

// event is one input to the manager loop. Only the fields relevant to kind are set.
type event struct {
	kind eventKind

	conn  uint64 // Transport id for transport callbacks
	timer uint64 // Token for timer fires

	data   []byte
	text   string
	code   int
	reason string
	err    error

	ack chan struct{}
}
