package wevolor

import (
	"context"
	"fmt"
	"sync"
)

// Call is one command received by a Simulator.
type Call struct {
	Method  string
	Channel int
}

// Simulator is an in-memory controller. It answers Status with its
// configured identity and records every command.
//
// A Simulator without a status behaves like an unreachable controller:
// Status returns (nil, nil).
type Simulator struct {
	mu     sync.Mutex
	status *Status
	calls  []Call
	err    error
}

// NewSimulator creates a simulated controller. A nil status simulates a
// host that gives no status payload.
func NewSimulator(status *Status) *Simulator {
	return &Simulator{status: status}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (s *Simulator) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns a copy of the commands received so far.
func (s *Simulator) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// Status implements Client.
func (s *Simulator) Status(ctx context.Context) (*Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.status == nil {
		return nil, nil
	}
	status := *s.status
	return &status, nil
}

func (s *Simulator) command(ctx context.Context, method string, channel int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if channel < MinChannel || channel > MaxChannel {
		return fmt.Errorf("%w: %d", ErrInvalidChannel, channel)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.calls = append(s.calls, Call{Method: method, Channel: channel})
	return nil
}

// Open implements Client.
func (s *Simulator) Open(ctx context.Context, channel int) error {
	return s.command(ctx, "open", channel)
}

// Close implements Client.
func (s *Simulator) Close(ctx context.Context, channel int) error {
	return s.command(ctx, "close", channel)
}

// Stop implements Client.
func (s *Simulator) Stop(ctx context.Context, channel int) error {
	return s.command(ctx, "stop", channel)
}

// OpenTilt implements Client.
func (s *Simulator) OpenTilt(ctx context.Context, channel int) error {
	return s.command(ctx, "open_tilt", channel)
}

// CloseTilt implements Client.
func (s *Simulator) CloseTilt(ctx context.Context, channel int) error {
	return s.command(ctx, "close_tilt", channel)
}

// StopTilt implements Client.
func (s *Simulator) StopTilt(ctx context.Context, channel int) error {
	return s.command(ctx, "stop_tilt", channel)
}

// SetFavorite implements Client.
func (s *Simulator) SetFavorite(ctx context.Context, channel int) error {
	return s.command(ctx, "favorite", channel)
}

// SimulatorFleet hands out one Simulator per host. Hosts not in the fleet
// get a Simulator without status.
type SimulatorFleet struct {
	mu       sync.Mutex
	statuses map[string]Status
	sims     map[string]*Simulator
}

// NewSimulatorFleet creates a fleet answering for the given hosts.
func NewSimulatorFleet(statuses map[string]Status) *SimulatorFleet {
	known := make(map[string]Status, len(statuses))
	for host, st := range statuses {
		known[host] = st
	}
	return &SimulatorFleet{
		statuses: known,
		sims:     make(map[string]*Simulator),
	}
}

// Client returns the Simulator for host, creating it on first use.
// It has the ClientFactory signature.
func (f *SimulatorFleet) Client(host string) Client {
	return f.Simulator(host)
}

// Simulator returns the concrete Simulator for host.
func (f *SimulatorFleet) Simulator(host string) *Simulator {
	f.mu.Lock()
	defer f.mu.Unlock()

	if sim, ok := f.sims[host]; ok {
		return sim
	}
	var status *Status
	if st, ok := f.statuses[host]; ok {
		status = &st
	}
	sim := NewSimulator(status)
	f.sims[host] = sim
	return sim
}
