// Package ingress provides ordered hostname to backend routing.
package ingress

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"go.uber.org/zap"

	"github.com/muhammad21236/limbic-devops-assessment/internal/backend"
)

// ErrNoRoute indicates that no non-terminal rule matched the hostname.
// Callers must render it as a fixed "no route" response, never as a
// transient failure.
var ErrNoRoute = errors.New("no route for hostname")

// Rule binds an exact hostname to a backend name. The terminal catch-all
// rule has Terminal set and no backend.
type Rule struct {
	Hostname string
	Backend  string
	Terminal bool
}

// Router resolves inbound hostnames against an ordered rule list. The rule
// list is immutable after construction, so Resolve is a pure function and
// safe for concurrent use without locking.
type Router struct {
	rules    []Rule
	registry *backend.Registry
}

// testHookRuleEvaluated is invoked with the index of every rule Resolve
// inspects. Tests replace it to observe evaluation order.
var testHookRuleEvaluated = func(ruleIndex int) {}

// NewRouter creates a router over the given ordered rules. Exactly one
// terminal rule is required and it must be the last rule. Duplicate hostname
// patterns are logged as configuration warnings; the earlier declaration
// stays authoritative.
func NewRouter(rules []Rule, registry *backend.Registry, logger *zap.Logger) (*Router, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(rules) == 0 {
		return nil, fmt.Errorf("at least one rule is required")
	}

	seen := make(map[string]int)
	for i, rule := range rules {
		if rule.Terminal {
			if i != len(rules)-1 {
				return nil, fmt.Errorf("rule %d: terminal rule must be last", i)
			}
			continue
		}
		if rule.Hostname == "" {
			return nil, fmt.Errorf("rule %d: hostname is required", i)
		}
		if _, ok := registry.Lookup(rule.Backend); !ok {
			return nil, fmt.Errorf("rule %d: unknown backend %q", i, rule.Backend)
		}

		hostname := Normalize(rule.Hostname)
		if first, dup := seen[hostname]; dup {
			logger.Warn("duplicate ingress hostname, earlier rule wins",
				zap.String("hostname", rule.Hostname),
				zap.Int("rule", i),
				zap.Int("authoritative_rule", first))
		} else {
			seen[hostname] = i
		}
	}

	if !rules[len(rules)-1].Terminal {
		return nil, fmt.Errorf("last rule must be the terminal catch-all")
	}

	// Rules go through the same normalization as inbound hostnames so a
	// rule written with mixed case or a trailing dot still matches.
	normalized := make([]Rule, len(rules))
	for i, rule := range rules {
		rule.Hostname = Normalize(rule.Hostname)
		normalized[i] = rule
	}

	return &Router{rules: normalized, registry: registry}, nil
}

// Resolve matches the hostname against the ordered rule list and returns the
// backend of the first matching rule. Evaluation stops at the first match;
// reaching the terminal rule yields ErrNoRoute.
func (r *Router) Resolve(hostname string) (backend.Backend, error) {
	hostname = Normalize(hostname)

	for i, rule := range r.rules {
		testHookRuleEvaluated(i)
		if rule.Terminal {
			return backend.Backend{}, fmt.Errorf("%w: %s", ErrNoRoute, hostname)
		}
		if rule.Hostname == hostname {
			b, ok := r.registry.Lookup(rule.Backend)
			if !ok {
				// Unreachable: rules are checked against the registry at load time.
				return backend.Backend{}, fmt.Errorf("%w: %s", ErrNoRoute, hostname)
			}
			return b, nil
		}
	}

	return backend.Backend{}, fmt.Errorf("%w: %s", ErrNoRoute, hostname)
}

// RuleCount returns the number of rules, terminal rule included.
func (r *Router) RuleCount() int {
	return len(r.rules)
}

// Normalize lowercases a hostname and strips any port suffix.
func Normalize(hostname string) string {
	if host, _, err := net.SplitHostPort(hostname); err == nil {
		hostname = host
	}
	return strings.ToLower(strings.TrimSuffix(hostname, "."))
}
