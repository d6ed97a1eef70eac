// Package client provides the resilient single-attempt backend client.
package client

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// ErrorKind classifies a failed backend call. Kinds are distinct and
// inspectable so operators and alerting can branch on them.
type ErrorKind string

const (
	// ErrorKindTimeout indicates no response within the configured timeout.
	ErrorKindTimeout ErrorKind = "Timeout"
	// ErrorKindConnectionRefused indicates the backend process is not listening.
	ErrorKindConnectionRefused ErrorKind = "ConnectionRefused"
	// ErrorKindDNSOrNetworkUnreachable indicates the backend hostname is
	// unresolvable or the network path is broken.
	ErrorKindDNSOrNetworkUnreachable ErrorKind = "DNSOrNetworkUnreachable"
	// ErrorKindBackendError indicates the backend responded with a
	// non-success status.
	ErrorKindBackendError ErrorKind = "BackendError"
)

// Sentinel errors for call preconditions.
var (
	// ErrUnknownBackend indicates the backend name is not in the registry.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrInvalidTimeout indicates a non-positive timeout.
	ErrInvalidTimeout = errors.New("timeout must be positive")
)

// remediationHints maps an error kind to an actionable hint surfaced in
// call diagnostics.
var remediationHints = map[ErrorKind]string{
	ErrorKindTimeout:                 "backend did not respond in time; check backend load and network latency, or raise the call timeout",
	ErrorKindConnectionRefused:       "verify backend process is running and attached to the same network",
	ErrorKindDNSOrNetworkUnreachable: "verify the backend hostname resolves and the network path between the services is up",
	ErrorKindBackendError:            "backend answered but reported a failure; inspect the backend logs for the returned status code",
}

// RemediationHint returns the operator hint for an error kind.
func RemediationHint(kind ErrorKind) string {
	return remediationHints[kind]
}

// classify maps a transport error to an ErrorKind.
func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorKindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorKindTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrorKindConnectionRefused
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrorKindDNSOrNetworkUnreachable
	}

	if errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) {
		return ErrorKindDNSOrNetworkUnreachable
	}

	// Anything else on the wire is a broken network path.
	return ErrorKindDNSOrNetworkUnreachable
}
