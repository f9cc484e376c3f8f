package events

import (
	"cloud-drive/internal/catalog"
)

// Publisher delivers journaled events to live consumers. Publish must not
// block the request that produced the event.
type Publisher interface {
	Publish(event *catalog.Event)
}

// Multi fans an event out to every publisher.
type Multi []Publisher

func (m Multi) Publish(event *catalog.Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(event)
		}
	}
}

type Nop struct{}

func (Nop) Publish(*catalog.Event) {}
