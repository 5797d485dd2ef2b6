package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/batch-ledger/internal/application/inventory"
)

var _ inventory.BatchLocker = (*Locker)(nil)

// Locker da un mutex por clave dentro del proceso. Claves distintas no se bloquean entre sí.
type Locker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocker crea el locker en memoria.
func NewLocker() *Locker {
	return &Locker{slots: make(map[string]*slot)}
}

// Lock espera el turno de la clave o hasta que ctx se cancele.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.release(key, s)
		})
	}, nil
}

func (l *Locker) release(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
