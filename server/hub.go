package server

import "sync"

// feed fans one stream of values out to any number of subscribers. Slow
// subscribers drop values instead of blocking the producer.
type feed[T any] struct {
	mu   sync.RWMutex
	subs map[chan T]struct{}
}

func newFeed[T any]() *feed[T] {
	return &feed[T]{subs: make(map[chan T]struct{})}
}

func (f *feed[T]) subscribe(buffer int) chan T {
	ch := make(chan T, buffer)
	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()
	return ch
}

func (f *feed[T]) unsubscribe(ch chan T) {
	f.mu.Lock()
	delete(f.subs, ch)
	f.mu.Unlock()
	close(ch)
}

func (f *feed[T]) broadcast(value T) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for ch := range f.subs {
		select {
		case ch <- value:
		default:
		}
	}
}

func (f *feed[T]) len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
