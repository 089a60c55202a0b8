package bus

import (
	"fmt"

	"bondtrading/internal/schema"
	"bondtrading/pkg/exception"
)

// Service is a keyed store of V that fans changes out to its listeners.
type Service[K comparable, V any] interface {
	GetData(key K) (V, error)
	OnMessage(v V) error
	AddListener(l Listener[V])
	Listeners() []Listener[V]
}

// Store is the keyed store and listener registry embedded by every service.
// It is not safe for concurrent use; the pipeline runs on one goroutine.
type Store[K comparable, V any] struct {
	name        string
	data        map[K]V
	listeners   []Listener[V]
	dispatching bool
}

// NewStore creates an empty store. name is used in error messages.
func NewStore[K comparable, V any](name string) *Store[K, V] {
	return &Store[K, V]{name: name, data: make(map[K]V)}
}

// Name returns the store name.
func (s *Store[K, V]) Name() string { return s.name }

// GetData returns the value stored under key.
func (s *Store[K, V]) GetData(key K) (V, error) {
	v, ok := s.data[key]
	if !ok {
		var zero V
		return zero, fmt.Errorf("%s: key %v: %w", s.name, key, exception.ErrNotFound)
	}
	return v, nil
}

// Contains reports whether key has been stored.
func (s *Store[K, V]) Contains(key K) bool {
	_, ok := s.data[key]
	return ok
}

// Put stores v under key and reports whether the key was new. Presence is
// checked before the insert.
func (s *Store[K, V]) Put(key K, v V) (added bool) {
	_, exists := s.data[key]
	s.data[key] = v
	return !exists
}

// Range calls fn for every stored value until fn returns false. The order is
// unspecified.
func (s *Store[K, V]) Range(fn func(key K, v V) bool) {
	for k, v := range s.data {
		if !fn(k, v) {
			return
		}
	}
}

// Len returns the number of stored keys.
func (s *Store[K, V]) Len() int { return len(s.data) }

// AddListener registers l. Listeners are notified in registration order.
func (s *Store[K, V]) AddListener(l Listener[V]) {
	if l == nil {
		return
	}
	s.listeners = append(s.listeners, l)
}

// Listeners returns the registered listeners in registration order.
func (s *Store[K, V]) Listeners() []Listener[V] {
	out := make([]Listener[V], len(s.listeners))
	copy(out, s.listeners)
	return out
}

// Notify delivers v to every listener and stops at the first error. A store
// that is already dispatching refuses to dispatch again.
func (s *Store[K, V]) Notify(kind schema.EventKind, v V) error {
	if s.dispatching {
		return fmt.Errorf("%s: %s: %w", s.name, kind, exception.ErrReentrantDispatch)
	}
	s.dispatching = true
	defer func() { s.dispatching = false }()

	for i, l := range s.listeners {
		var err error
		switch kind {
		case schema.EventKindAdd:
			err = l.ProcessAdd(v)
		case schema.EventKindRemove:
			err = l.ProcessRemove(v)
		case schema.EventKindUpdate:
			err = l.ProcessUpdate(v)
		default:
			return fmt.Errorf("%s: unknown event kind %d: %w", s.name, kind, exception.ErrInvalidArgument)
		}
		if err != nil {
			return fmt.Errorf("%s: listener %d %s: %w", s.name, i, kind, err)
		}
	}
	return nil
}

// Upsert stores v and notifies add for a new key or update otherwise.
func (s *Store[K, V]) Upsert(key K, v V) (schema.EventKind, error) {
	kind := schema.EventKindUpdate
	if s.Put(key, v) {
		kind = schema.EventKindAdd
	}
	return kind, s.Notify(kind, v)
}
