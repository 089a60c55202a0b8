package bus

// Listener receives add, remove and update notifications for one value type.
type Listener[V any] interface {
	ProcessAdd(v V) error
	ProcessRemove(v V) error
	ProcessUpdate(v V) error
}

// ListenerFuncs adapts optional callbacks into a Listener. Nil callbacks are
// no-ops.
type ListenerFuncs[V any] struct {
	OnAdd    func(V) error
	OnRemove func(V) error
	OnUpdate func(V) error
}

func (f ListenerFuncs[V]) ProcessAdd(v V) error {
	if f.OnAdd == nil {
		return nil
	}
	return f.OnAdd(v)
}

func (f ListenerFuncs[V]) ProcessRemove(v V) error {
	if f.OnRemove == nil {
		return nil
	}
	return f.OnRemove(v)
}

func (f ListenerFuncs[V]) ProcessUpdate(v V) error {
	if f.OnUpdate == nil {
		return nil
	}
	return f.OnUpdate(v)
}

// Forward returns a listener that hands adds and updates to fn.
func Forward[V any](fn func(V) error) Listener[V] {
	return ListenerFuncs[V]{OnAdd: fn, OnUpdate: fn}
}

// ForwardAdds returns a listener that hands only adds to fn.
func ForwardAdds[V any](fn func(V) error) Listener[V] {
	return ListenerFuncs[V]{OnAdd: fn}
}

// Connector is the egress contract: Publish is called once per emitted record.
type Connector[V any] interface {
	Publish(v V) error
}

// ConnectorFunc adapts a function into a Connector.
type ConnectorFunc[V any] func(V) error

func (f ConnectorFunc[V]) Publish(v V) error { return f(v) }
