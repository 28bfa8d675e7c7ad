package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-rental-agent/internal/browser"
)

func TestLoginDetected(t *testing.T) {
	const domain = "example.test"

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"on login page", "https://example.test/login", false},
		{"on dutch login page", "https://example.test/inloggen", false},
		{"login with query", "https://example.test/login?redirect=/account", false},
		{"after login", "https://example.test/dashboard", true},
		{"site root", "https://example.test/", true},
		{"different domain", "https://other.test/dashboard", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LoginDetected(tt.url, domain))
		})
	}
}

func TestObserveEmail(t *testing.T) {
	// latest non-empty observation wins
	got := ObserveEmail("", "user@example.test")
	assert.Equal(t, "user@example.test", got)

	got = ObserveEmail("user@example.test", "corrected@example.test")
	assert.Equal(t, "corrected@example.test", got)

	// empty or invalid observations keep the accumulated value
	got = ObserveEmail("user@example.test", "")
	assert.Equal(t, "user@example.test", got)

	got = ObserveEmail("user@example.test", "not-an-email")
	assert.Equal(t, "user@example.test", got)

	got = ObserveEmail("user@example.test", "   ")
	assert.Equal(t, "user@example.test", got)

	// observation order does not matter beyond "latest valid wins"
	acc := ""
	for _, obs := range []string{"", "u", "user@", "user@example.test", ""} {
		acc = ObserveEmail(acc, obs)
	}
	assert.Equal(t, "user@example.test", acc)
}

func TestManagerInactiveByDefault(t *testing.T) {
	m := NewManager(nil, "https://example.test/login", "example.test")
	assert.False(t, m.Active())

	_, err := m.View()
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = m.PerformAction(Action{Type: "click", X: 10, Y: 10})
	assert.ErrorIs(t, err, ErrNoSession)

	assert.Empty(t, m.CapturedEmail())

	// closing an idle registry is always safe
	m.Close()
	assert.False(t, m.Active())
}

func TestStartFailureLeavesNoSession(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	b, err := browser.NewManager(true)
	if err != nil {
		t.Skipf("playwright not available: %v", err)
	}
	defer b.Close()

	// nothing listens on port 9, so the login navigation fails
	m := NewManager(b, "http://127.0.0.1:9/login", "127.0.0.1")

	_, err = m.Start()
	require.Error(t, err)

	// a failed start must not leave a live session behind: the caller was
	// told the session did not start, so polling must agree
	assert.False(t, m.Active())
	_, err = m.View()
	assert.ErrorIs(t, err, ErrNoSession)
}
