package realtime

import (
	"time"
)

// Buffer size for outgoing messages
const sendBufferSize = 16

// Client is one subscriber's mailbox.
// Every message is a full snapshot, so when the buffer is full the oldest
// message is discarded to make room for the newest.
type Client struct {
	id          string
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new client mailbox
func NewClient(id string) *Client {
	return &Client{
		id:          id,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ID returns the client identifier used in logs
func (c *Client) ID() string {
	return c.id
}

// Messages returns the receive side of the mailbox.
// The channel is closed when the client is unregistered from its hub.
func (c *Client) Messages() <-chan []byte {
	return c.send
}

// Offer enqueues a message without blocking. It reports whether an older
// message had to be discarded. Only one goroutine may offer to a client.
func (c *Client) Offer(message []byte) bool {
	select {
	case c.send <- message:
		return false
	default:
	}
	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- message:
	default:
	}
	return true
}
