// Package historical persists the records emitted by the pipeline's terminal
// services through egress connectors.
package historical

import (
	"fmt"

	"bondtrading/internal/bus"
	"bondtrading/pkg/exception"
)

// Service persists values keyed by a persist key. The last persisted value
// per key is kept for lookup.
type Service[V any] struct {
	store *bus.Store[string, V]
	key   func(V) string
	out   bus.Connector[V]
}

// NewService creates a persisting service. key derives the persist key used
// by OnMessage and the listener.
func NewService[V any](name string, key func(V) string, out bus.Connector[V]) *Service[V] {
	return &Service[V]{
		store: bus.NewStore[string, V](name),
		key:   key,
		out:   out,
	}
}

func (s *Service[V]) Name() string { return s.store.Name() }

// PersistData publishes v through the connector, then records it under
// persistKey and notifies listeners.
func (s *Service[V]) PersistData(persistKey string, v V) error {
	if s.out == nil {
		return fmt.Errorf("%w: %s has no connector", exception.ErrNilInstance, s.store.Name())
	}
	if err := s.out.Publish(v); err != nil {
		return err
	}
	_, err := s.store.Upsert(persistKey, v)
	return err
}

func (s *Service[V]) OnMessage(v V) error {
	return s.PersistData(s.key(v), v)
}

func (s *Service[V]) GetData(persistKey string) (V, error) {
	return s.store.GetData(persistKey)
}

func (s *Service[V]) AddListener(l bus.Listener[V]) { s.store.AddListener(l) }

func (s *Service[V]) Listeners() []bus.Listener[V] { return s.store.Listeners() }

// Listener persists every added or updated value it is handed.
func (s *Service[V]) Listener() bus.Listener[V] {
	return bus.Forward(s.OnMessage)
}

// Tee fans a record out to every connector in order, stopping at the first
// failure.
func Tee[V any](outs ...bus.Connector[V]) bus.Connector[V] {
	return bus.ConnectorFunc[V](func(v V) error {
		for _, out := range outs {
			if err := out.Publish(v); err != nil {
				return err
			}
		}
		return nil
	})
}
