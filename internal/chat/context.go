// Package chat implements an asynchronous client for a streaming chat completion
// API. A Context owns one conversation, one connection configuration, and one
// background worker goroutine; requests are serialized through a single-slot
// mailbox, and tokens are delivered incrementally through callbacks and a
// pollable buffer as the model generates them.
package chat

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MegaGrindStone/ollamachat/internal/models"
)

// Defaults applied by New when the corresponding Options field is empty or
// non-positive.
const (
	DefaultHost    = "192.168.0.61"
	DefaultPort    = 11434
	DefaultModel   = "nemotron-3-nano"
	DefaultTimeout = 60 * time.Second
)

// pollInterval is how often Send checks for request completion.
const pollInterval = 10 * time.Millisecond

// Options configures a Context. Zero values fall back to the package defaults;
// a nil Logger discards all log output.
type Options struct {
	Host    string
	Port    int
	Model   string
	Timeout time.Duration

	Logger *slog.Logger
}

// Callbacks carries the per-request notification hooks. All of them are
// optional, fire from the worker goroutine, and are only borrowed for the
// duration of the request: tokens arrive through OnToken in emission order, and
// exactly one of OnDone or OnError fires after the last token.
type Callbacks struct {
	OnToken func(token string)
	OnDone  func(response string)
	OnError func(err error)
}

// Context is the unit of conversation state. It owns the message history, the
// token buffer, the response accumulator, and the single worker goroutine that
// executes requests. All methods are safe for concurrent use; at most one
// request is in flight at a time.
type Context struct {
	mu   sync.Mutex
	cond *sync.Cond

	// Everything below is guarded by mu.
	host    string
	port    int
	model   string
	timeout time.Duration

	history historyStore

	pending    string
	hasPending bool
	cb         Callbacks

	tokens   []string
	response strings.Builder
	err      error
	done     bool

	closed bool

	logger     *slog.Logger
	workerDone chan struct{}
}

// New creates a Context with a running worker. Empty or non-positive Options
// fields fall back to the package defaults.
func New(opts Options) *Context {
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.Port <= 0 {
		opts.Port = DefaultPort
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Context{
		host:       opts.Host,
		port:       opts.Port,
		model:      opts.Model,
		timeout:    opts.Timeout,
		done:       true,
		logger:     logger.With(slog.String("module", "chat")),
		workerDone: make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)

	go c.run()

	return c
}

// Close signals shutdown, wakes the worker, and waits for it to exit. It is safe
// to call with a request in flight: shutdown only interrupts the worker's
// wait-for-work point, so an in-flight request runs to natural completion,
// timeout, or error before the worker observes it. Close is idempotent, and
// every call waits for the worker to exit before returning.
func (c *Context) Close() error {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		c.cond.Signal()
	}
	c.mu.Unlock()

	<-c.workerDone
	return nil
}

// SendAsync publishes a message for the worker and returns immediately. It
// fails with ErrBusy while a previous request has not reached a terminal state,
// and with ErrClosed after Close. On acceptance the accumulator, token buffer,
// and stored error are reset and the worker is woken.
func (c *Context) SendAsync(message string, cb Callbacks) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if !c.done {
		return ErrBusy
	}

	c.done = false
	c.response.Reset()
	c.tokens = nil
	c.err = nil
	c.cb = cb
	c.pending = message
	c.hasPending = true

	c.cond.Signal()

	return nil
}

// Send submits a message and blocks until the request reaches a terminal state,
// polling at a fixed short interval. It returns a snapshot of the accumulated
// response, or the stored error if the request failed. An optional onToken hook
// receives tokens as they stream in.
func (c *Context) Send(message string, onToken func(token string)) (string, error) {
	if err := c.SendAsync(message, Callbacks{OnToken: onToken}); err != nil {
		return "", err
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for !c.Done() {
		<-ticker.C
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	return c.response.String(), nil
}

// PollTokens atomically drains and returns all tokens buffered since the last
// poll, in emission order. It returns nil if none are pending; ownership of the
// returned slice transfers to the caller.
func (c *Context) PollTokens() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	tokens := c.tokens
	c.tokens = nil
	return tokens
}

// Done reports whether no request is in flight, i.e. the current request has
// reached a terminal state. When Done returns true the request's done or error
// callback has already been invoked or is about to be.
func (c *Context) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Response returns the accumulated response of the in-flight or most recently
// completed request. The second return value is false if no content has been
// received. The snapshot stays valid across the next request's reset.
func (c *Context) Response() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.response.String(), c.response.Len() > 0
}

// Err returns the stored error of the most recent request, or nil.
func (c *Context) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ClearHistory empties the message history. In-flight request state is not
// touched.
func (c *Context) ClearHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history.clear()
}

// HistoryLen returns the number of messages in the history.
func (c *Context) HistoryLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.count()
}

// HistoryAt returns the message at the given position, or ErrOutOfRange.
func (c *Context) HistoryAt(i int) (models.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg, ok := c.history.at(i)
	if !ok {
		return models.Message{}, ErrOutOfRange
	}
	return msg, nil
}

// History returns a copy of the full message history, e.g. for persisting the
// conversation.
func (c *Context) History() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.snapshot()
}

// AddMessage appends a message directly to the history without triggering a
// request, e.g. to seed a restored conversation.
func (c *Context) AddMessage(role models.Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history.append(models.Message{Role: role, Content: content})
}

// SetTimeout updates the network read timeout used by future requests.
// Non-positive values fall back to the default.
func (c *Context) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if d <= 0 {
		d = DefaultTimeout
	}
	c.timeout = d
}
