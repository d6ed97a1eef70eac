package ingress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muhammad21236/limbic-devops-assessment/internal/backend"
)

func testRegistry(t *testing.T) *backend.Registry {
	t.Helper()
	registry, err := backend.NewRegistry([]backend.Backend{
		{Name: "app1", Address: "app1", Port: 3000},
		{Name: "app2", Address: "app2", Port: 5000},
	})
	require.NoError(t, err)
	return registry
}

func testRules() []Rule {
	return []Rule{
		{Hostname: "app1.example.com", Backend: "app1"},
		{Hostname: "app2.example.com", Backend: "app2"},
		{Terminal: true},
	}
}

func TestNewRouter(t *testing.T) {
	t.Run("valid rules", func(t *testing.T) {
		router, err := NewRouter(testRules(), testRegistry(t), zap.NewNop())
		require.NoError(t, err)
		assert.Equal(t, 3, router.RuleCount())
	})

	t.Run("empty rules", func(t *testing.T) {
		_, err := NewRouter(nil, testRegistry(t), zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("terminal not last", func(t *testing.T) {
		rules := []Rule{
			{Terminal: true},
			{Hostname: "app1.example.com", Backend: "app1"},
		}
		_, err := NewRouter(rules, testRegistry(t), zap.NewNop())
		assert.ErrorContains(t, err, "terminal rule must be last")
	})

	t.Run("missing terminal", func(t *testing.T) {
		rules := []Rule{{Hostname: "app1.example.com", Backend: "app1"}}
		_, err := NewRouter(rules, testRegistry(t), zap.NewNop())
		assert.ErrorContains(t, err, "terminal catch-all")
	})

	t.Run("unknown backend", func(t *testing.T) {
		rules := []Rule{
			{Hostname: "x.example.com", Backend: "ghost"},
			{Terminal: true},
		}
		_, err := NewRouter(rules, testRegistry(t), zap.NewNop())
		assert.ErrorContains(t, err, "unknown backend")
	})

	t.Run("duplicate hostname logs warning", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		rules := []Rule{
			{Hostname: "app1.example.com", Backend: "app1"},
			{Hostname: "app1.example.com", Backend: "app2"},
			{Terminal: true},
		}

		_, err := NewRouter(rules, testRegistry(t), zap.New(core))
		require.NoError(t, err)

		entries := logs.FilterMessageSnippet("duplicate ingress hostname").All()
		require.Len(t, entries, 1)
	})
}

func TestRouter_Resolve(t *testing.T) {
	router, err := NewRouter(testRules(), testRegistry(t), zap.NewNop())
	require.NoError(t, err)

	t.Run("exact match", func(t *testing.T) {
		b, err := router.Resolve("app1.example.com")
		require.NoError(t, err)
		assert.Equal(t, "app1", b.Name)
	})

	t.Run("second rule", func(t *testing.T) {
		b, err := router.Resolve("app2.example.com")
		require.NoError(t, err)
		assert.Equal(t, "app2", b.Name)
	})

	t.Run("unknown hostname hits terminal rule", func(t *testing.T) {
		_, err := router.Resolve("unknown.example.com")
		assert.ErrorIs(t, err, ErrNoRoute)
	})

	t.Run("no wildcard subdomain matching", func(t *testing.T) {
		_, err := router.Resolve("sub.app1.example.com")
		assert.ErrorIs(t, err, ErrNoRoute)
	})

	t.Run("case insensitive", func(t *testing.T) {
		b, err := router.Resolve("APP1.Example.COM")
		require.NoError(t, err)
		assert.Equal(t, "app1", b.Name)
	})

	t.Run("port suffix stripped", func(t *testing.T) {
		b, err := router.Resolve("app1.example.com:8080")
		require.NoError(t, err)
		assert.Equal(t, "app1", b.Name)
	})

	t.Run("rule hostname with trailing dot and mixed case", func(t *testing.T) {
		rules := []Rule{
			{Hostname: "App1.Example.Com.", Backend: "app1"},
			{Terminal: true},
		}
		router, err := NewRouter(rules, testRegistry(t), zap.NewNop())
		require.NoError(t, err)

		b, err := router.Resolve("app1.example.com")
		require.NoError(t, err)
		assert.Equal(t, "app1", b.Name)
	})
}

// First-match-wins: with two rules for the same hostname pointing at
// different backends, the earlier declaration is authoritative and
// evaluation short-circuits at it.
func TestRouter_Resolve_FirstMatchWins(t *testing.T) {
	rules := []Rule{
		{Hostname: "app.example.com", Backend: "app1"},
		{Hostname: "app.example.com", Backend: "app2"},
		{Terminal: true},
	}
	router, err := NewRouter(rules, testRegistry(t), zap.NewNop())
	require.NoError(t, err)

	b, err := router.Resolve("app.example.com")
	require.NoError(t, err)
	assert.Equal(t, "app1", b.Name)
}

// Resolve must stop at the first matching rule: later rules are never
// evaluated once a match is found.
func TestRouter_Resolve_ShortCircuits(t *testing.T) {
	rules := []Rule{
		{Hostname: "a.example.com", Backend: "app1"},
		{Hostname: "b.example.com", Backend: "app2"},
		{Hostname: "a.example.com", Backend: "app2"},
		{Terminal: true},
	}
	router, err := NewRouter(rules, testRegistry(t), zap.NewNop())
	require.NoError(t, err)

	var evaluated []int
	prev := testHookRuleEvaluated
	testHookRuleEvaluated = func(ruleIndex int) { evaluated = append(evaluated, ruleIndex) }
	defer func() { testHookRuleEvaluated = prev }()

	t.Run("first rule match evaluates exactly one rule", func(t *testing.T) {
		evaluated = nil
		b, err := router.Resolve("a.example.com")
		require.NoError(t, err)
		assert.Equal(t, "app1", b.Name)
		assert.Equal(t, []int{0}, evaluated)
	})

	t.Run("second rule match evaluates exactly two rules", func(t *testing.T) {
		evaluated = nil
		b, err := router.Resolve("b.example.com")
		require.NoError(t, err)
		assert.Equal(t, "app2", b.Name)
		assert.Equal(t, []int{0, 1}, evaluated)
	})

	t.Run("no match walks every rule up to the terminal", func(t *testing.T) {
		evaluated = nil
		_, err := router.Resolve("c.example.com")
		assert.ErrorIs(t, err, ErrNoRoute)
		assert.Equal(t, []int{0, 1, 2, 3}, evaluated)
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "app1.example.com", Normalize("APP1.example.com:443"))
	assert.Equal(t, "app1.example.com", Normalize("app1.example.com."))
	assert.Equal(t, "localhost", Normalize("localhost:8080"))
}
