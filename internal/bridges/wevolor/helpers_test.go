package wevolor

import (
	"context"
	"sync"

	"github.com/nerrad567/gray-logic-wevolor/internal/entity"
)

// MockClient is a controllable Client for testing.
type MockClient struct {
	mu          sync.Mutex
	status      *Status
	statusErr   error
	commandErr  error
	statusCalls int
	calls       []Call
}

func (m *MockClient) Status(context.Context) (*Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls++
	return m.status, m.statusErr
}

func (m *MockClient) record(method string, channel int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Channel: channel})
	return m.commandErr
}

func (m *MockClient) Open(_ context.Context, ch int) error      { return m.record("open", ch) }
func (m *MockClient) Close(_ context.Context, ch int) error     { return m.record("close", ch) }
func (m *MockClient) Stop(_ context.Context, ch int) error      { return m.record("stop", ch) }
func (m *MockClient) OpenTilt(_ context.Context, ch int) error  { return m.record("open_tilt", ch) }
func (m *MockClient) CloseTilt(_ context.Context, ch int) error { return m.record("close_tilt", ch) }
func (m *MockClient) StopTilt(_ context.Context, ch int) error  { return m.record("stop_tilt", ch) }
func (m *MockClient) SetFavorite(_ context.Context, ch int) error {
	return m.record("favorite", ch)
}

func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockClient) StatusCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls
}

// clientFor returns a factory that always yields client and records hosts.
func clientFor(client Client, hosts *[]string) ClientFactory {
	return func(host string) Client {
		if hosts != nil {
			*hosts = append(*hosts, host)
		}
		return client
	}
}

// fakeEntries is an EntryUpdater with a fixed set of configured uids.
type fakeEntries struct {
	configured map[string]bool
	err        error
	updates    []map[string]any
}

func (f *fakeEntries) UpdateIfConfigured(_ context.Context, domain, uniqueID string, updates map[string]any) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if domain != Domain || !f.configured[uniqueID] {
		return false, nil
	}
	f.updates = append(f.updates, updates)
	return true, nil
}

// fakePlatform records entities per entry. Detached entries stay in
// hub until removed.
type fakePlatform struct {
	mu        sync.Mutex
	entities  map[string][]entity.Entity
	hub       map[string][]string
	removed   []string
	addErr    error
	detachErr error
	removeErr error
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		entities: make(map[string][]entity.Entity),
		hub:      make(map[string][]string),
	}
}

func (p *fakePlatform) AddEntities(_ context.Context, entryID string, entities []entity.Entity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.addErr != nil {
		return p.addErr
	}
	p.entities[entryID] = entities
	ids := make([]string, 0, len(entities))
	for _, ent := range entities {
		ids = append(ids, ent.Info().UniqueID)
	}
	p.hub[entryID] = ids
	return nil
}

func (p *fakePlatform) DetachEntities(_ context.Context, entryID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entities, entryID)
	return p.detachErr
}

func (p *fakePlatform) RemoveEntities(_ context.Context, entryID string, entities []entity.Entity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entities, entryID)
	if p.removeErr != nil {
		return p.removeErr
	}
	for _, ent := range entities {
		p.removed = append(p.removed, ent.Info().UniqueID)
	}
	delete(p.hub, entryID)
	return nil
}
