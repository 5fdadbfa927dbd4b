// Package eventbus is a small in-memory publish/subscribe bus.
//
// The AI façade publishes call and fallback events on it, and the audit
// recorder consumes them. Delivery is fire-and-forget: each subscriber gets
// a buffered channel, and a publish to a full buffer drops the event rather
// than blocking the caller. Nothing is persisted.
package eventbus

import "sync"

// Event is a single published message.
type Event struct {
	Topic   string
	Payload any
}

// EventBus is the interface for publishing and subscribing to topics.
type EventBus interface {
	Publish(topic string, payload any)
	Subscribe(topic string) <-chan Event
}

// subscriberBuffer is the channel capacity handed to each subscriber.
// A slow consumer loses events once this fills up.
const subscriberBuffer = 100

// Bus is the in-memory implementation of EventBus.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

// New returns an empty in-memory Bus.
func New() *Bus {
	return &Bus{subscribers: make(map[string][]chan Event)}
}

// Subscribe registers a subscriber for topic and returns its channel.
// The caller owns the consumption loop and must keep draining the channel
// to avoid dropped events.
func (b *Bus) Subscribe(topic string) <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers an Event to every subscriber of topic without blocking.
func (b *Bus) Publish(topic string, payload any) {
	evt := Event{Topic: topic, Payload: payload}
	b.mu.RLock()
	subs := b.subscribers[topic]
	b.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
			// subscriber buffer full — event dropped
		}
	}
}
