package emit

// NullEmitter discards all events. Use it when observability output is not
// wanted; it is safe for concurrent use and has no overhead.
type NullEmitter struct{}

// NewNullEmitter creates an emitter that drops every event.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(Event) {}
