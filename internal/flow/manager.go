package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-wevolor/internal/configentry"
)

// AbortAlreadyConfigured is the abort reason used when the finished flow
// collides with an existing entry.
const AbortAlreadyConfigured = "already_configured"

// Logger defines the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// session is one in-progress flow. mu serialises steps of the same flow.
type session struct {
	mu      sync.Mutex
	id      string
	domain  string
	handler Handler
	form    Form
	closed  bool
}

// Manager hosts in-progress flows keyed by flow id. Nothing is persisted
// until a flow finishes with a create_entry result.
//
// Thread Safety:
//   - Safe for concurrent use. Steps of one flow run one at a time.
type Manager struct {
	entries   EntryCreator
	validator *Validator

	mu        sync.Mutex
	factories map[string]HandlerFactory
	sessions  map[string]*session
	logger    Logger
}

// NewManager creates a flow Manager that hands finished flows to entries.
func NewManager(entries EntryCreator) *Manager {
	return &Manager{
		entries:   entries,
		validator: NewValidator(),
		factories: make(map[string]HandlerFactory),
		sessions:  make(map[string]*session),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// Register makes flows available for domain.
func (m *Manager) Register(domain string, factory HandlerFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[domain] = factory
}

// Start begins a new flow for domain and returns its first step.
func (m *Manager) Start(ctx context.Context, domain string) (Result, error) {
	m.mu.Lock()
	factory, ok := m.factories[domain]
	m.mu.Unlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownDomain, domain)
	}

	s := &session{
		id:      uuid.NewString(),
		domain:  domain,
		handler: factory(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Debug("flow started", "flow_id", s.id, "domain", domain)
	return m.finishStep(ctx, s, s.handler.Init(ctx))
}

// Submit validates input against the current step's form, fills in
// defaults and advances the flow.
func (m *Manager) Submit(ctx context.Context, flowID string, input Input) (Result, error) {
	s, err := m.session(flowID)
	if err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{}, fmt.Errorf("%w: %s", ErrFlowNotFound, flowID)
	}

	if input == nil {
		input = Input{}
	}
	if len(s.form) > 0 {
		input = s.form.ApplyDefaults(input)
		if err := m.validator.Validate(s.form, input); err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	return m.finishStep(ctx, s, s.handler.Submit(ctx, input))
}

// Abort discards an in-progress flow.
func (m *Manager) Abort(flowID string) error {
	s, err := m.session(flowID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m.close(s)
	m.logger.Debug("flow aborted by user", "flow_id", flowID)
	return nil
}

// InProgress returns the number of open flows.
func (m *Manager) InProgress() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) session(flowID string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[flowID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, flowID)
	}
	return s, nil
}

// finishStep stamps the result and closes the session on a terminal
// result. Must be called with s.mu held.
func (m *Manager) finishStep(ctx context.Context, s *session, r Result) (Result, error) {
	r.FlowID = s.id
	r.Domain = s.domain

	switch r.Type {
	case ResultForm:
		s.form = r.Form
		return r, nil

	case ResultCreateEntry:
		m.close(s)
		entryID, err := m.entries.CreateEntry(ctx, s.domain, r.Title, r.UniqueID, r.Data)
		if errors.Is(err, configentry.ErrEntryExists) {
			m.logger.Info("flow finished for an already configured device", "flow_id", s.id, "unique_id", r.UniqueID)
			if len(r.UpdateOnDuplicate) > 0 {
				if _, err := m.entries.UpdateIfConfigured(ctx, s.domain, r.UniqueID, r.UpdateOnDuplicate); err != nil {
					return Result{}, fmt.Errorf("updating existing entry: %w", err)
				}
			}
			abort := Abort(AbortAlreadyConfigured)
			abort.FlowID, abort.Domain = s.id, s.domain
			return abort, nil
		}
		if err != nil {
			return Result{}, fmt.Errorf("creating entry: %w", err)
		}
		r.EntryID = entryID
		m.logger.Info("flow created entry", "flow_id", s.id, "entry_id", entryID, "title", r.Title)
		return r, nil

	default:
		m.close(s)
		m.logger.Info("flow aborted", "flow_id", s.id, "reason", r.Reason)
		return r, nil
	}
}

func (m *Manager) close(s *session) {
	s.closed = true
	m.mu.Lock()
	delete(m.sessions, s.id)
	m.mu.Unlock()
}
