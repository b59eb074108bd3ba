package events

import (
	"sync"
)

// Wildcard subscribes to every event type.
const Wildcard EventType = "*"

// Broker fans events out to buffered subscriber channels.
// A slow subscriber drops events instead of blocking publishers.
type Broker struct {
	subscribers map[EventType][]chan Event
	channels    map[<-chan Event]chan Event
	mu          sync.RWMutex
	bufferSize  int
}

// NewBroker creates a new event broker
func NewBroker() *Broker {
	return NewBrokerWithBuffer(32)
}

// NewBrokerWithBuffer creates a broker whose subscriber channels hold size events.
func NewBrokerWithBuffer(size int) *Broker {
	if size < 1 {
		size = 1
	}
	return &Broker{
		subscribers: make(map[EventType][]chan Event),
		channels:    make(map[<-chan Event]chan Event),
		bufferSize:  size,
	}
}

// Subscribe creates a subscription to specific event types.
// With no types the subscription receives everything.
func (b *Broker) Subscribe(eventTypes ...EventType) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.bufferSize)
	if len(eventTypes) == 0 {
		eventTypes = []EventType{Wildcard}
	}
	for _, eventType := range eventTypes {
		b.subscribers[eventType] = append(b.subscribers[eventType], ch)
	}
	b.channels[ch] = ch
	return ch
}

// Unsubscribe removes the subscription everywhere and closes its channel.
func (b *Broker) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.channels[sub]
	if !ok {
		return
	}
	for eventType := range b.subscribers {
		b.removeChannel(eventType, ch)
	}
	delete(b.channels, sub)
	close(ch)
}

// Publish sends an event to all subscribers
func (b *Broker) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers[event.Type] {
		send(ch, event)
	}
	if event.Type == Wildcard {
		return
	}
	for _, ch := range b.subscribers[Wildcard] {
		send(ch, event)
	}
}

// PublishAsync sends an event asynchronously
func (b *Broker) PublishAsync(event Event) {
	go b.Publish(event)
}

func send(ch chan Event, event Event) {
	select {
	case ch <- event:
	default:
		// full
	}
}

func (b *Broker) removeChannel(eventType EventType, target chan Event) {
	subscribers := b.subscribers[eventType]
	for i, ch := range subscribers {
		if ch == target {
			b.subscribers[eventType] = append(subscribers[:i], subscribers[i+1:]...)
			break
		}
	}
	if len(b.subscribers[eventType]) == 0 {
		delete(b.subscribers, eventType)
	}
}

// Clear removes all subscriptions and closes their channels.
func (b *Broker) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.channels {
		close(ch)
	}
	b.subscribers = make(map[EventType][]chan Event)
	b.channels = make(map[<-chan Event]chan Event)
}
