package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-wevolor/internal/configentry"
)

var nameForm = Form{
	{Name: "name", Type: FieldString, Required: true},
	{Name: "flag", Type: FieldBoolean, Default: false},
}

// twoStepHandler asks for a name, then creates an entry or aborts.
type twoStepHandler struct {
	inputs []Input
}

func (h *twoStepHandler) Init(context.Context) Result {
	return ShowForm("user", nameForm, nil, nil)
}

func (h *twoStepHandler) Submit(_ context.Context, input Input) Result {
	h.inputs = append(h.inputs, input)
	switch input.String("name") {
	case "retry":
		return ShowForm("user", nameForm, map[string]string{"base": "try_again"}, nil)
	case "quit":
		return Abort("user_quit")
	}
	data, _ := json.Marshal(map[string]any{"name": input.String("name"), "flag": input.Bool("flag")})
	r := CreateEntry("Title "+input.String("name"), "uid-"+input.String("name"), data)
	if input.Bool("flag") {
		r.UpdateOnDuplicate = map[string]any{"flag": true}
	}
	return r
}

type fakeEntries struct {
	mu        sync.Mutex
	created   []string
	err       error
	updated   []string
	updateErr error
}

func (f *fakeEntries) CreateEntry(_ context.Context, domain, title, uniqueID string, data json.RawMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, domain+"/"+uniqueID+"/"+string(data))
	return "ent-1", nil
}

func (f *fakeEntries) UpdateIfConfigured(_ context.Context, domain, uniqueID string, updates map[string]any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return false, f.updateErr
	}
	f.updated = append(f.updated, domain+"/"+uniqueID+"/"+fmt.Sprint(updates))
	return true, nil
}

func newTestManager(entries *fakeEntries) (*Manager, *twoStepHandler) {
	h := &twoStepHandler{}
	m := NewManager(entries)
	m.Register("demo", func() Handler { return h })
	return m, h
}

func TestManager_CreateEntry(t *testing.T) {
	entries := &fakeEntries{}
	m, h := newTestManager(entries)
	ctx := context.Background()

	r, err := m.Start(ctx, "demo")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if r.Type != ResultForm || r.StepID != "user" || r.FlowID == "" || r.Domain != "demo" {
		t.Fatalf("Start() = %+v", r)
	}
	if m.InProgress() != 1 {
		t.Errorf("InProgress() = %d, want 1", m.InProgress())
	}

	done, err := m.Submit(ctx, r.FlowID, Input{"name": "kitchen"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if done.Type != ResultCreateEntry || done.EntryID != "ent-1" || done.FlowID != r.FlowID {
		t.Errorf("Submit() = %+v", done)
	}
	if len(entries.created) != 1 || entries.created[0] != `demo/uid-kitchen/{"flag":false,"name":"kitchen"}` {
		t.Errorf("created = %v", entries.created)
	}
	if _, ok := h.inputs[0]["flag"]; !ok {
		t.Error("default for flag was not applied before Submit")
	}

	if _, err := m.Submit(ctx, r.FlowID, Input{"name": "again"}); !errors.Is(err, ErrFlowNotFound) {
		t.Errorf("Submit() after finish error = %v, want ErrFlowNotFound", err)
	}
	if m.InProgress() != 0 {
		t.Errorf("InProgress() = %d, want 0", m.InProgress())
	}
}

func TestManager_FormErrorsKeepFlowOpen(t *testing.T) {
	m, _ := newTestManager(&fakeEntries{})
	ctx := context.Background()

	r, err := m.Start(ctx, "demo")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	again, err := m.Submit(ctx, r.FlowID, Input{"name": "retry"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if again.Type != ResultForm || again.Errors["base"] != "try_again" {
		t.Errorf("Submit() = %+v", again)
	}
	if m.InProgress() != 1 {
		t.Error("flow should stay open after a form error")
	}
}

func TestManager_InvalidInput(t *testing.T) {
	m, h := newTestManager(&fakeEntries{})
	ctx := context.Background()

	r, err := m.Start(ctx, "demo")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := m.Submit(ctx, r.FlowID, Input{"flag": true}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Submit() missing required error = %v, want ErrInvalidInput", err)
	}
	if len(h.inputs) != 0 {
		t.Error("handler received invalid input")
	}
}

func TestManager_AbortResult(t *testing.T) {
	entries := &fakeEntries{}
	m, _ := newTestManager(entries)
	ctx := context.Background()

	r, _ := m.Start(ctx, "demo")
	done, err := m.Submit(ctx, r.FlowID, Input{"name": "quit"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if done.Type != ResultAbort || done.Reason != "user_quit" {
		t.Errorf("Submit() = %+v", done)
	}
	if m.InProgress() != 0 || len(entries.created) != 0 {
		t.Error("aborted flow should close without creating an entry")
	}
}

func TestManager_DuplicateEntryAborts(t *testing.T) {
	m, _ := newTestManager(&fakeEntries{err: configentry.ErrEntryExists})
	ctx := context.Background()

	r, _ := m.Start(ctx, "demo")
	done, err := m.Submit(ctx, r.FlowID, Input{"name": "kitchen"})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if done.Type != ResultAbort || done.Reason != AbortAlreadyConfigured || done.FlowID != r.FlowID {
		t.Errorf("Submit() = %+v", done)
	}
}

func TestManager_DuplicateEntryUpdatesExisting(t *testing.T) {
	tests := []struct {
		name        string
		input       Input
		wantUpdated []string
	}{
		{"with updates", Input{"name": "kitchen", "flag": true}, []string{"demo/uid-kitchen/map[flag:true]"}},
		{"without updates", Input{"name": "kitchen"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := &fakeEntries{err: configentry.ErrEntryExists}
			m, _ := newTestManager(entries)
			ctx := context.Background()

			r, _ := m.Start(ctx, "demo")
			done, err := m.Submit(ctx, r.FlowID, tt.input)
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if done.Type != ResultAbort || done.Reason != AbortAlreadyConfigured {
				t.Errorf("Submit() = %+v", done)
			}
			if !reflect.DeepEqual(entries.updated, tt.wantUpdated) {
				t.Errorf("updated = %v, want %v", entries.updated, tt.wantUpdated)
			}
		})
	}

	t.Run("update fails", func(t *testing.T) {
		entries := &fakeEntries{err: configentry.ErrEntryExists, updateErr: errors.New("disk full")}
		m, _ := newTestManager(entries)
		ctx := context.Background()

		r, _ := m.Start(ctx, "demo")
		if _, err := m.Submit(ctx, r.FlowID, Input{"name": "kitchen", "flag": true}); err == nil {
			t.Error("Submit() expected error when the update fails")
		}
		if m.InProgress() != 0 {
			t.Error("flow left open after failed update")
		}
	})
}

func TestManager_EntryCreationFailure(t *testing.T) {
	m, _ := newTestManager(&fakeEntries{err: errors.New("disk full")})
	ctx := context.Background()

	r, _ := m.Start(ctx, "demo")
	if _, err := m.Submit(ctx, r.FlowID, Input{"name": "kitchen"}); err == nil {
		t.Error("Submit() expected error when entry creation fails")
	}
}

func TestManager_UserAbortAndUnknown(t *testing.T) {
	m, _ := newTestManager(&fakeEntries{})
	ctx := context.Background()

	if _, err := m.Start(ctx, "missing"); !errors.Is(err, ErrUnknownDomain) {
		t.Errorf("Start() error = %v, want ErrUnknownDomain", err)
	}

	r, _ := m.Start(ctx, "demo")
	if err := m.Abort(r.FlowID); err != nil {
		t.Fatalf("Abort() error = %v", err)
	}
	if err := m.Abort(r.FlowID); !errors.Is(err, ErrFlowNotFound) {
		t.Errorf("Abort() twice error = %v, want ErrFlowNotFound", err)
	}
	if _, err := m.Submit(ctx, r.FlowID, Input{"name": "x"}); !errors.Is(err, ErrFlowNotFound) {
		t.Errorf("Submit() after abort error = %v, want ErrFlowNotFound", err)
	}
}
