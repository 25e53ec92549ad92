package bus

import (
	"context"
	"errors"
	"sync"
)

// ErrBusClosed se devuelve al publicar o suscribir sobre un bus ya apagado.
var ErrBusClosed = errors.New("bus closed")

const memoryEventBuffer = 32

// Memory implementa Bus en memoria: un registro canal -> suscriptores
// protegido por mutex. Reproduce la semantica de Redis (best-effort, sin
// buffering para ausentes) y sirve para tests y para correr sin Redis.
type Memory struct {
	mu     sync.Mutex
	subs   map[string]map[*memorySubscription]struct{}
	closed bool
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[string]map[*memorySubscription]struct{})}
}

// Publish entrega a los suscriptores presentes. Un suscriptor con el buffer
// lleno pierde el evento; no se bloquea a los demas por un lector lento.
func (b *Memory) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrBusClosed
	}
	for sub := range b.subs[channel] {
		select {
		case sub.events <- Event{Channel: channel, Payload: payload}:
		default:
		}
	}
	return nil
}

func (b *Memory) Subscribe(_ context.Context, channels ...string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	sub := &memorySubscription{
		bus:      b,
		channels: channels,
		events:   make(chan Event, memoryEventBuffer),
	}
	for _, ch := range channels {
		if b.subs[ch] == nil {
			b.subs[ch] = make(map[*memorySubscription]struct{})
		}
		b.subs[ch][sub] = struct{}{}
	}
	return sub, nil
}

// Subscribers cuenta los suscriptores actuales de un canal.
func (b *Memory) Subscribers(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel])
}

// Close apaga el bus y termina todas las suscripciones abiertas.
func (b *Memory) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	seen := make(map[*memorySubscription]struct{})
	for _, subs := range b.subs {
		for sub := range subs {
			if _, ok := seen[sub]; ok {
				continue
			}
			seen[sub] = struct{}{}
			close(sub.events)
			sub.detached = true
		}
	}
	b.subs = make(map[string]map[*memorySubscription]struct{})
	return nil
}

type memorySubscription struct {
	bus      *Memory
	channels []string
	events   chan Event
	detached bool
}

func (s *memorySubscription) Events() <-chan Event {
	return s.events
}

func (s *memorySubscription) Close() error {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if s.detached {
		return nil
	}
	s.detached = true
	for _, ch := range s.channels {
		delete(s.bus.subs[ch], s)
		if len(s.bus.subs[ch]) == 0 {
			delete(s.bus.subs, ch)
		}
	}
	close(s.events)
	return nil
}
