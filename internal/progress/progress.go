// Package progress defines the synchronous progress-reporting hook invoked at
// fixed pipeline checkpoints. Handlers run on the caller's goroutine and must
// not block.
package progress

// Event describes one checkpoint of a long-running operation.
type Event struct {
	Operation string
	Current   int
	// Total is zero when the number of steps is unknown.
	Total   int
	Message string
}

// Handler receives progress events. Implement it to drive progress bars or
// status displays. Errors must not propagate out of OnProgress.
type Handler interface {
	OnProgress(event Event)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(event Event)

func (f HandlerFunc) OnProgress(event Event) {
	f(event)
}

// Emit sends an event to the handler if one is set.
func Emit(h Handler, operation string, current, total int, message string) {
	if h == nil {
		return
	}
	h.OnProgress(Event{
		Operation: operation,
		Current:   current,
		Total:     total,
		Message:   message,
	})
}
