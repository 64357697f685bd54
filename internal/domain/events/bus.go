// Package events is a typed in-process pub/sub bus for LFG lifecycle events.
package events

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
)

type subscriber struct {
	id uint64
	fn func(any)
}

var (
	mu     sync.RWMutex
	subs   = map[string][]subscriber{} // type name -> subscribers
	nextID uint64
	log    = zap.NewNop()
)

// SetLogger sets where subscriber panics are reported.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	log = l
	mu.Unlock()
}

func typeNameOf[T any]() string {
	var zero *T
	rt := reflect.TypeOf(zero).Elem() // *T -> T without dereferencing nil
	return rt.PkgPath() + "." + rt.Name()
}

// Subscribe registers fn for events of type T and returns its cancel func.
// Cancel is idempotent.
func Subscribe[T any](fn func(T)) func() {
	name := typeNameOf[T]()
	wrapped := func(v any) {
		if ev, ok := v.(T); ok {
			fn(ev)
		}
	}

	mu.Lock()
	nextID++
	id := nextID
	subs[name] = append(subs[name], subscriber{id: id, fn: wrapped})
	mu.Unlock()

	return func() {
		mu.Lock()
		defer mu.Unlock()
		ss := subs[name]
		for i, s := range ss {
			if s.id == id {
				subs[name] = append(ss[:i:i], ss[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers ev synchronously to every subscriber of T. A panicking
// subscriber is logged and does not stop delivery.
func Publish[T any](ev T) {
	name := typeNameOf[T]()
	mu.RLock()
	ss := append([]subscriber(nil), subs[name]...)
	l := log
	mu.RUnlock()
	for _, s := range ss {
		func() {
			defer func() {
				if r := recover(); r != nil {
					l.Error("events: subscriber panic",
						zap.String("event", name),
						zap.Any("panic", r),
					)
				}
			}()
			s.fn(ev)
		}()
	}
}

// Count returns how many subscribers T has.
func Count[T any]() int {
	name := typeNameOf[T]()
	mu.RLock()
	defer mu.RUnlock()
	return len(subs[name])
}
