// Package publish carries recognition output to the outside world as
// (key, value) tuples. Three backends are provided: an append-only log file,
// an MQTT broker with retained topics (the tuple-space middleware), and a
// sqlite tuple store for offline analysis. Backends are selected at
// configuration time; the core never branches on the concrete type.
package publish

// Publisher emits one (key, value) tuple. Implementations must be safe for
// use from the sample loop: a publish that can block is the backend's problem
// to buffer, not the caller's.
type Publisher interface {
	Publish(key, value string) error
	Close() error
}

// Namespaced returns a publisher that prepends prefix to every key.
func Namespaced(p Publisher, prefix string) Publisher {
	return &namespaced{inner: p, prefix: prefix}
}

type namespaced struct {
	inner  Publisher
	prefix string
}

func (n *namespaced) Publish(key, value string) error {
	return n.inner.Publish(n.prefix+key, value)
}

func (n *namespaced) Close() error { return n.inner.Close() }
