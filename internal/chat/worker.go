package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/MegaGrindStone/ollamachat/internal/models"
	"github.com/MegaGrindStone/ollamachat/internal/stream"
)

// chatRequest is the JSON payload sent to the chat endpoint.
type chatRequest struct {
	Model    string           `json:"model"`
	Stream   bool             `json:"stream"`
	Think    bool             `json:"think"`
	Messages []models.Message `json:"messages"`
}

// run is the worker loop: one goroutine per Context, blocking on the condition
// variable until a message is published or shutdown is requested. One request is
// serviced at a time; the Context layer rejects submissions while one is in
// flight, so the mailbox never holds more than one message.
func (c *Context) run() {
	defer close(c.workerDone)

	for {
		c.mu.Lock()
		for !c.hasPending && !c.closed {
			c.cond.Wait()
		}
		if c.closed {
			c.mu.Unlock()
			return
		}

		msg := c.pending
		c.pending = ""
		c.hasPending = false
		cb := c.cb
		c.mu.Unlock()

		c.process(msg, cb)
	}
}

// process executes one request: append the user message, build the payload,
// connect, send, stream, finalize. Exactly one of cb.OnDone or cb.OnError fires,
// strictly after all token callbacks, and the completion flag is set before
// either. Network I/O happens outside the lock.
func (c *Context) process(msg string, cb Callbacks) {
	c.mu.Lock()
	c.history.append(models.Message{Role: models.RoleUser, Content: msg})

	req := chatRequest{
		Model:    c.model,
		Stream:   true,
		Think:    true,
		Messages: c.history.snapshot(),
	}
	host, port, timeout := c.host, c.port, c.timeout
	c.mu.Unlock()

	body, err := json.Marshal(req)
	if err != nil {
		c.fail(cb, fmt.Errorf("%w: %v", ErrRequestBuild, err))
		return
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		c.fail(cb, fmt.Errorf("%w: %v", ErrConnection, err))
		return
	}
	defer conn.Close()

	c.logger.Debug("Sending request",
		slog.String("addr", addr),
		slog.Int("historyLen", len(req.Messages)),
	)

	if err := writeRequest(conn, host, port, body); err != nil {
		c.fail(cb, fmt.Errorf("%w: %v", ErrSend, err))
		return
	}

	// Timeout and EOF while streaming are a natural end of response; whatever
	// content arrived before them is the final response.
	for tok := range stream.Tokens(deadlineReader{conn: conn, timeout: timeout}) {
		c.mu.Lock()
		c.response.WriteString(tok)
		c.tokens = append(c.tokens, tok)
		c.mu.Unlock()

		if cb.OnToken != nil {
			cb.OnToken(tok)
		}
	}

	c.mu.Lock()
	full := c.response.String()
	if full != "" {
		c.history.append(models.Message{Role: models.RoleAssistant, Content: full})
	}
	c.done = true
	c.mu.Unlock()

	c.logger.Debug("Request completed", slog.Int("responseLen", len(full)))

	if cb.OnDone != nil {
		cb.OnDone(full)
	}
}

// fail marks the request terminal with the given error. The user message stays
// in history; no assistant message is appended.
func (c *Context) fail(cb Callbacks, err error) {
	c.mu.Lock()
	c.err = err
	c.done = true
	c.mu.Unlock()

	c.logger.Error("Request failed", slog.String("err", err.Error()))

	if cb.OnError != nil {
		cb.OnError(err)
	}
}

// writeRequest sends a minimal HTTP/1.1 POST carrying the JSON payload. One
// connection per request; the server closes it after the response.
func writeRequest(conn net.Conn, host string, port int, body []byte) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "POST /api/chat HTTP/1.1\r\n")
	fmt.Fprintf(&buf, "Host: %s:%d\r\n", host, port)
	buf.WriteString("Content-Type: application/json\r\n")
	fmt.Fprintf(&buf, "Content-Length: %d\r\n", len(body))
	buf.WriteString("Connection: close\r\n")
	buf.WriteString("\r\n")
	buf.Write(body)

	_, err := conn.Write(buf.Bytes())
	return err
}

// deadlineReader applies the configured read timeout before every read, so the
// timeout bounds idle time rather than total response time.
type deadlineReader struct {
	conn    net.Conn
	timeout time.Duration
}

func (r deadlineReader) Read(p []byte) (int, error) {
	if err := r.conn.SetReadDeadline(time.Now().Add(r.timeout)); err != nil {
		return 0, err
	}
	return r.conn.Read(p)
}
