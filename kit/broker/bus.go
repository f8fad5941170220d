package broker

import (
	"context"
	"errors"
	"log"
	"sync"
)

var ErrHandlerPanic = errors.New("broker: handler panic")

type Event interface {
	Name() string
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) []error
}

type Handler func(ctx context.Context, evt Event) error

// Bus is an in-process publish/subscribe fan-out. Publish runs every handler
// for the event name in subscription order and collects their errors; a
// panicking handler never takes down the publisher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

func (b *Bus) Subscribe(eventName string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], h)
}

func (b *Bus) Publish(ctx context.Context, evt Event) []error {
	b.mu.RLock()
	hs := append([]Handler(nil), b.handlers[evt.Name()]...)
	b.mu.RUnlock()

	var errs []error
	for i, h := range hs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("layer=kit component=broker method=Publish event=%s handler_index=%d panic=%v", evt.Name(), i, r)
					errs = append(errs, ErrHandlerPanic)
				}
			}()
			if err := h(ctx, evt); err != nil {
				log.Printf("layer=kit component=broker method=Publish event=%s handler_index=%d err=%v", evt.Name(), i, err)
				errs = append(errs, err)
			}
		}()
	}
	return errs
}
