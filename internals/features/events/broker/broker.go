// Package broker: pub/sub in-memory untuk push event scan ke dashboard (SSE).
//
// Kanal push adalah jalur utama; endpoint polling since-id tetap ada sebagai
// jalur rekonsiliasi setelah reconnect.
package broker

import (
	"sync"

	"rajabrawijaya_backend/internals/features/events/model"
)

type Subscriber struct {
	Ch chan model.ScanEventModel
	id int
}

type Broker struct {
	mu     sync.Mutex
	subs   map[int]*Subscriber
	nextID int
	closed bool
}

func New() *Broker {
	return &Broker{subs: make(map[int]*Subscriber)}
}

// Subscribe mendaftarkan pelanggan dengan buffer. Pelanggan lambat tidak
// memblok publisher: event yang tidak muat di buffer di-drop, klien akan
// menyusul lewat polling since-id saat reconcile.
func (b *Broker) Subscribe() *Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscriber{
		Ch: make(chan model.ScanEventModel, 64),
		id: b.nextID,
	}
	if b.closed {
		close(sub.Ch)
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Broker) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		close(sub.Ch)
	}
}

func (b *Broker) Publish(ev model.ScanEventModel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		select {
		case sub.Ch <- ev:
		default:
			// buffer penuh; klien reconcile via since-id
		}
	}
}

func (b *Broker) CloseAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub.Ch)
	}
}
