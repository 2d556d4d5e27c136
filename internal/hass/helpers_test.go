package hass

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-wevolor/internal/infrastructure/mqtt"
)

// fakeBroker keeps retained messages and delivers published commands to
// matching subscriptions.
type fakeBroker struct {
	mu         sync.Mutex
	retained   map[string][]byte
	published  []string
	handlers   map[string]mqtt.MessageHandler
	failTopic  string
	failAfter  int
	failAll    bool
	publishN   int
	subscribed []string
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		retained:  make(map[string][]byte),
		handlers:  make(map[string]mqtt.MessageHandler),
		failAfter: -1,
	}
}

func (b *fakeBroker) PublishRetained(topic string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failAll || topic == b.failTopic || (b.failAfter >= 0 && b.publishN >= b.failAfter && len(payload) > 0) {
		return errors.New("broker rejected publish")
	}
	b.publishN++
	b.published = append(b.published, topic)
	if len(payload) == 0 {
		delete(b.retained, topic)
		return nil
	}
	b.retained[topic] = payload
	return nil
}

func (b *fakeBroker) setFailing(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failAll = fail
}

func (b *fakeBroker) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = handler
	b.subscribed = append(b.subscribed, topic)
	return nil
}

func (b *fakeBroker) Unsubscribe(topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, topic)
	return nil
}

// deliver routes a message to the first subscription whose pattern
// matches. Only trailing # wildcards are supported.
func (b *fakeBroker) deliver(topic, payload string) error {
	b.mu.Lock()
	var handler mqtt.MessageHandler
	for pattern, h := range b.handlers {
		if pattern == topic || (strings.HasSuffix(pattern, "/#") && strings.HasPrefix(topic, strings.TrimSuffix(pattern, "#"))) {
			handler = h
			break
		}
	}
	b.mu.Unlock()
	if handler == nil {
		return errors.New("no subscriber for " + topic)
	}
	return handler(topic, []byte(payload))
}

func (b *fakeBroker) retainedConfig(topic string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.retained[topic]
	return p, ok
}

func (b *fakeBroker) retainedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.retained)
}

type recordedCommand struct {
	entityID string
	command  string
	err      error
}

type fakeRecorder struct {
	mu       sync.Mutex
	commands []recordedCommand
}

func (r *fakeRecorder) RecordCommand(entityID, command string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, recordedCommand{entityID, command, err})
}

func (r *fakeRecorder) all() []recordedCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedCommand, len(r.commands))
	copy(out, r.commands)
	return out
}
