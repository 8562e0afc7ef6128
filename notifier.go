package numgen

import (
	"fmt"
	"io"
	"sync"
)

// WriterNotifier prints notices as single lines
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a notifier writing to w
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Success prints "✓ msg"
func (n *WriterNotifier) Success(msg string) { n.write("✓", msg) }

// Error prints "✗ msg"
func (n *WriterNotifier) Error(msg string) { n.write("✗", msg) }

// write ignores the writer's error: notices are fire-and-forget
func (n *WriterNotifier) write(mark, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, _ = fmt.Fprintf(n.w, "%s %s\n", mark, msg)
}

// NopNotifier discards every notice
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}
