package websocket

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

const defaultSendBuffer = 32

var (
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
)

// Conn is one client socket with a bounded outgoing queue drained by its write pump.
type Conn struct {
	ws   *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func newConn(ws *websocket.Conn, buffer int) *Conn {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}

	return &Conn{
		ws:   ws,
		send: make(chan []byte, buffer),
	}
}

// TrySend queues a frame without blocking.
func (that *Conn) TrySend(data []byte) error {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.closed {
		return ErrConnectionClosed
	}

	select {
	case that.send <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (that *Conn) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	that.closed = true
	close(that.send)
}
