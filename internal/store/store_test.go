package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-rental-agent/internal/models"
)

func TestAddPropertyDedup(t *testing.T) {
	s := newTestStore(t)

	full := models.Property{ID: "deadbeef-1234-5678-9abc-def012345678", Name: "Herengracht 10"}
	assert.True(t, s.AddProperty(full))
	assert.False(t, s.AddProperty(full), "exact duplicate rejected")

	// Short-id prefix duplicates are rejected too: shortened site links reuse
	// the first 8 characters of the listing id.
	short := models.Property{ID: "deadbeef", Name: "Herengracht 10 (short link)"}
	assert.False(t, s.AddProperty(short))

	other := models.Property{ID: "cafebabe-0000-0000-0000-000000000000", Name: "Prinsengracht 2"}
	assert.True(t, s.AddProperty(other))
	assert.Len(t, s.Properties(), 2)
}

func TestAddPropertyDefaultsState(t *testing.T) {
	s := newTestStore(t)
	s.AddProperty(models.Property{ID: "p1"})

	p, ok := s.Property("p1")
	require.True(t, ok)
	assert.Equal(t, models.PropertyNew, p.State)
}

func TestMarkApplied(t *testing.T) {
	s := newTestStore(t)
	s.AddProperty(models.Property{ID: "p1"})

	at := time.Now()
	assert.True(t, s.MarkApplied("p1", at))

	p, _ := s.Property("p1")
	assert.Equal(t, models.PropertyShortlisted, p.State)
	require.NotNil(t, p.AppliedAt)
	assert.WithinDuration(t, at, *p.AppliedAt, time.Second)

	assert.False(t, s.MarkApplied("missing", at))
}

func TestCredentialLifecycle(t *testing.T) {
	s := newTestStore(t)

	// fresh store starts disconnected
	cred := s.Credential()
	assert.Equal(t, models.CredentialNotConnected, cred.Status)
	assert.Empty(t, cred.EncryptedAuthState)

	at := time.Now()
	s.SaveCredential(`{"iv":"00","data":"00","tag":"00"}`, "user@example.test", at)
	cred = s.Credential()
	assert.Equal(t, models.CredentialConnected, cred.Status)
	assert.NotEmpty(t, cred.EncryptedAuthState)
	assert.Equal(t, "user@example.test", cred.Email)
	require.NotNil(t, cred.ConnectedAt)

	// needs_reconnect keeps the ciphertext for inspection
	s.SetCredentialStatus(models.CredentialNeedsReconnect)
	cred = s.Credential()
	assert.Equal(t, models.CredentialNeedsReconnect, cred.Status)
	assert.NotEmpty(t, cred.EncryptedAuthState)

	// disconnect wipes it
	s.DisconnectCredential()
	cred = s.Credential()
	assert.Equal(t, models.CredentialNotConnected, cred.Status)
	assert.Empty(t, cred.EncryptedAuthState)
}

func TestProfilePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	s1 := New(dir)
	s1.UpdateProfile(func(p *models.Profile) {
		p.FirstName = "Hidde"
		p.Occupation = "software engineer"
	})

	s2 := New(dir)
	p := s2.Profile()
	assert.Equal(t, "Hidde", p.FirstName)
	assert.Equal(t, "software engineer", p.Occupation)
}
