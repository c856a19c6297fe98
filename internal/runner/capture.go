package runner

import (
	"bytes"
	"sync"
)

// Capture is a bounded writer for callers that cannot hand their own
// standard streams to the child. It keeps up to Limit bytes and silently
// discards the rest.
type Capture struct {
	Limit int

	mu        sync.Mutex
	buf       bytes.Buffer
	truncated bool
}

// NewCapture returns a Capture that keeps at most limit bytes.
func NewCapture(limit int) *Capture {
	return &Capture{Limit: limit}
}

func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	remaining := c.Limit - c.buf.Len()
	if remaining <= 0 {
		if len(p) > 0 {
			c.truncated = true
		}
		return len(p), nil // discard
	}
	if len(p) > remaining {
		// Write only what fits, but report all bytes as consumed
		// to avoid short write errors from io.Copy.
		c.buf.Write(p[:remaining])
		c.truncated = true
		return len(p), nil
	}
	return c.buf.Write(p)
}

// Bytes returns a copy of the captured output.
func (c *Capture) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bytes.Clone(c.buf.Bytes())
}

// Truncated reports whether any output was discarded.
func (c *Capture) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}
