// Package backend provides the static backend registry for the reachability core.
package backend

import (
	"fmt"
	"net"
	"strconv"
)

// Backend represents a named local service reachable by address and port.
type Backend struct {
	Name    string
	Address string
	Port    int
}

// HostPort returns the backend's address in host:port form.
func (b Backend) HostPort() string {
	return net.JoinHostPort(b.Address, strconv.Itoa(b.Port))
}

// URL returns the backend's base URL.
func (b Backend) URL() string {
	return "http://" + b.HostPort()
}

// Registry is an immutable name to backend table. It is populated once at
// process start and never mutated afterwards, so reads need no locking.
type Registry struct {
	backends map[string]Backend
	names    []string
}

// NewRegistry creates a registry from the given backends.
func NewRegistry(backends []Backend) (*Registry, error) {
	r := &Registry{
		backends: make(map[string]Backend, len(backends)),
		names:    make([]string, 0, len(backends)),
	}

	for _, b := range backends {
		if b.Name == "" {
			return nil, fmt.Errorf("backend name is required")
		}
		if b.Address == "" {
			return nil, fmt.Errorf("backend %s: address is required", b.Name)
		}
		if b.Port <= 0 || b.Port > 65535 {
			return nil, fmt.Errorf("backend %s: invalid port %d", b.Name, b.Port)
		}
		if _, exists := r.backends[b.Name]; exists {
			return nil, fmt.Errorf("duplicate backend name: %s", b.Name)
		}
		r.backends[b.Name] = b
		r.names = append(r.names, b.Name)
	}

	return r, nil
}

// Lookup returns the backend with the given name.
func (r *Registry) Lookup(name string) (Backend, bool) {
	b, ok := r.backends[name]
	return b, ok
}

// Names returns the backend names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Count returns the number of registered backends.
func (r *Registry) Count() int {
	return len(r.backends)
}
