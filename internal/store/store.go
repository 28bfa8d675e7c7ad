package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go-rental-agent/internal/models"
)

// Store is the file-backed record store: three independent JSON collections
// (properties, profile, jobs) under one data directory. Writes are
// read-modify-write under a single mutex; last writer wins across processes,
// which the single-operator usage model accepts.
type Store struct {
	mu      sync.Mutex
	dataDir string
}

func New(dataDir string) *Store {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Printf("⚠️ Failed to create data directory: %v", err)
	}
	return &Store{dataDir: dataDir}
}

type propertiesFile struct {
	Properties []models.Property `json:"properties"`
}

func (s *Store) propertiesPath() string { return filepath.Join(s.dataDir, "properties.json") }
func (s *Store) profilePath() string    { return filepath.Join(s.dataDir, "user.json") }
func (s *Store) jobsPath() string       { return filepath.Join(s.dataDir, "jobs.json") }

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, in any) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ---------------- PROPERTY OPERATIONS ----------------

func (s *Store) Properties() []models.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readProperties()
}

func (s *Store) Property(id string) (models.Property, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.readProperties() {
		if p.ID == id {
			return p, true
		}
	}
	return models.Property{}, false
}

// AddProperty inserts a listing unless one with the same id (or the same
// short-id prefix, which the site reuses in shortened links) already exists.
func (s *Store) AddProperty(p models.Property) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	props := s.readProperties()
	shortID := p.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	for _, existing := range props {
		if existing.ID == p.ID || existing.ID == shortID || strings.HasPrefix(existing.ID, shortID+"-") {
			return false
		}
	}

	if p.State == "" {
		p.State = models.PropertyNew
	}
	props = append(props, p)
	s.writeProperties(props)
	return true
}

// UpdateProperty applies the mutation to the stored listing with that id.
func (s *Store) UpdateProperty(id string, update func(*models.Property)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	props := s.readProperties()
	for i := range props {
		if props[i].ID == id {
			update(&props[i])
			s.writeProperties(props)
			return true
		}
	}
	return false
}

// MarkApplied advances a listing to shortlisted with the apply timestamp.
func (s *Store) MarkApplied(id string, at time.Time) bool {
	return s.UpdateProperty(id, func(p *models.Property) {
		p.State = models.PropertyShortlisted
		p.AppliedAt = &at
	})
}

func (s *Store) readProperties() []models.Property {
	var file propertiesFile
	if err := readJSON(s.propertiesPath(), &file); err != nil {
		log.Printf("⚠️ %v", err)
	}
	return file.Properties
}

func (s *Store) writeProperties(props []models.Property) {
	if err := writeJSON(s.propertiesPath(), propertiesFile{Properties: props}); err != nil {
		log.Printf("⚠️ %v", err)
	}
}

// ---------------- PROFILE / CREDENTIAL OPERATIONS ----------------

func (s *Store) Profile() models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readProfile()
}

func (s *Store) UpdateProfile(update func(*models.Profile)) models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile := s.readProfile()
	update(&profile)
	if err := writeJSON(s.profilePath(), profile); err != nil {
		log.Printf("⚠️ %v", err)
	}
	return profile
}

func (s *Store) Credential() models.Credential {
	return s.Profile().Credential
}

// SaveCredential stores a freshly captured, encrypted auth state.
func (s *Store) SaveCredential(encryptedAuthState, email string, at time.Time) {
	s.UpdateProfile(func(p *models.Profile) {
		p.Credential = models.Credential{
			Status:             models.CredentialConnected,
			EncryptedAuthState: encryptedAuthState,
			ConnectedAt:        &at,
			Email:              email,
		}
	})
}

// SetCredentialStatus flips only the status, keeping the ciphertext around
// so a needs_reconnect credential can still be inspected.
func (s *Store) SetCredentialStatus(status models.CredentialStatus) {
	s.UpdateProfile(func(p *models.Profile) {
		p.Credential.Status = status
	})
}

// DisconnectCredential drops the stored auth state entirely.
func (s *Store) DisconnectCredential() {
	s.UpdateProfile(func(p *models.Profile) {
		p.Credential = models.Credential{Status: models.CredentialNotConnected}
	})
}

func (s *Store) readProfile() models.Profile {
	profile := models.Profile{}
	if err := readJSON(s.profilePath(), &profile); err != nil {
		log.Printf("⚠️ %v", err)
	}
	if profile.Credential.Status == "" {
		profile.Credential.Status = models.CredentialNotConnected
	}
	return profile
}
