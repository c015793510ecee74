// Package dispatch hosts asynchronous execution of engine requests. A Client
// wraps the synchronous calculation engine behind a request/response protocol
// keyed by request id, so callers can fan out work without the engine itself
// knowing about goroutines.
package dispatch

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/finpath/trajectory-engine/internal/calculation"
	"github.com/finpath/trajectory-engine/internal/domain"
)

var (
	// ErrClientClosed is returned when submitting to or closing an already
	// closed client.
	ErrClientClosed = errors.New("dispatch client is closed")

	// ErrDuplicateRequest is returned when a request id is already in flight.
	ErrDuplicateRequest = errors.New("duplicate request")

	// ErrUnknownRequestKind is returned for request kinds the client cannot
	// dispatch.
	ErrUnknownRequestKind = errors.New("unknown request kind")
)

// RequestKind identifies which engine operation a request invokes.
type RequestKind string

const (
	KindGenerate      RequestKind = "generate"
	KindGenerateQuick RequestKind = "generate_quick"
	KindCompare       RequestKind = "compare"
)

// Request describes one unit of work. ID may be left empty, in which case the
// client assigns one; the Response echoes it either way.
type Request struct {
	ID   string
	Kind RequestKind

	// Generate and generate_quick inputs.
	Profile *domain.Profile
	Years   int

	// Compare inputs.
	Baseline  *domain.Trajectory
	Alternate *domain.Trajectory
	Changes   []domain.ProfileChange
	Name      string
}

// Response carries the outcome of one request. Exactly one of Trajectory,
// Comparison, or Err is set.
type Response struct {
	RequestID  string
	Trajectory *domain.Trajectory
	Comparison *domain.Comparison
	Err        error
}

// Engine is the calculation surface the client dispatches to.
type Engine interface {
	GenerateTrajectory(ctx context.Context, profile *domain.Profile) (*domain.Trajectory, error)
	GenerateQuick(ctx context.Context, profile *domain.Profile, years int) (*domain.Trajectory, error)
	CompareTrajectories(baseline, alternate *domain.Trajectory, changes []domain.ProfileChange, name string) (*domain.Comparison, error)
}

// Client dispatches requests to an engine on background goroutines. Its
// lifecycle belongs to the caller: construct with NewClient, stop with Close.
type Client struct {
	engine Engine

	mu      sync.Mutex
	pending map[string]chan Response
	closed  bool
	wg      sync.WaitGroup
}

// NewClient creates a dispatch client over the given engine. A nil engine
// gets a default calculation engine.
func NewClient(engine Engine) *Client {
	if engine == nil {
		engine = calculation.NewEngine()
	}
	return &Client{
		engine:  engine,
		pending: make(map[string]chan Response),
	}
}

// Submit queues a request for execution and returns the channel its single
// response will arrive on. The channel is buffered, so a caller that loses
// interest can simply drop it.
func (c *Client) Submit(ctx context.Context, req Request) (<-chan Response, error) {
	switch req.Kind {
	case KindGenerate, KindGenerateQuick, KindCompare:
	default:
		return nil, errors.Wrapf(ErrUnknownRequestKind, "kind %q", req.Kind)
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClientClosed
	}
	if _, inFlight := c.pending[req.ID]; inFlight {
		c.mu.Unlock()
		return nil, errors.Wrapf(ErrDuplicateRequest, "id %q", req.ID)
	}
	done := make(chan Response, 1)
	c.pending[req.ID] = done
	c.wg.Add(1)
	c.mu.Unlock()

	go c.serve(ctx, req, done)
	return done, nil
}

// Pending reports how many requests are currently in flight.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Close stops accepting requests and waits for in-flight work to deliver its
// responses. Closing twice returns ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClientClosed
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
	return nil
}

func (c *Client) serve(ctx context.Context, req Request, done chan Response) {
	defer c.wg.Done()

	done <- c.execute(ctx, req)

	c.mu.Lock()
	delete(c.pending, req.ID)
	c.mu.Unlock()
}

// execute runs one request against the engine. Panics during computation are
// recovered into an error response tagged with the request id, so a bad
// profile can never take the host process down.
func (c *Client) execute(ctx context.Context, req Request) (resp Response) {
	resp.RequestID = req.ID
	defer func() {
		if r := recover(); r != nil {
			resp = Response{
				RequestID: req.ID,
				Err:       errors.Errorf("request %s panicked: %v", req.ID, r),
			}
		}
	}()

	var err error
	switch req.Kind {
	case KindGenerate:
		resp.Trajectory, err = c.engine.GenerateTrajectory(ctx, req.Profile)
	case KindGenerateQuick:
		resp.Trajectory, err = c.engine.GenerateQuick(ctx, req.Profile, req.Years)
	case KindCompare:
		resp.Comparison, err = c.engine.CompareTrajectories(req.Baseline, req.Alternate, req.Changes, req.Name)
	}
	if err != nil {
		resp.Err = errors.Wrapf(err, "request %s", req.ID)
	}
	return resp
}
