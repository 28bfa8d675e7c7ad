package apply

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-rental-agent/internal/models"
	"go-rental-agent/internal/resolver"
	"go-rental-agent/internal/store"
	"go-rental-agent/internal/vault"
)

type recordingNotifier struct {
	jobs []models.Job
}

func (n *recordingNotifier) NotifyJob(job models.Job) {
	n.jobs = append(n.jobs, job)
}

func newTestPipeline(t *testing.T) (*Pipeline, *store.Store, *recordingNotifier) {
	s := store.New(t.TempDir())
	v, err := vault.New("test-secret")
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	p := NewPipeline(s, v, nil, resolver.New("https://example.test"), nil, NewViewer(), notifier)
	return p, s, notifier
}

func TestSubmitUnknownProperty(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	_, err := p.Submit(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSubmitNotConnected(t *testing.T) {
	p, s, notifier := newTestPipeline(t)
	s.AddProperty(models.Property{ID: "prop-1", Name: "Keizersgracht 1", URL: "https://example.test/listing"})

	result, err := p.Submit(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "niet verbonden")

	// ledger entry exists, is terminal, and carries its start time
	job, ok := s.Job(result.JobID)
	require.True(t, ok)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.Contains(t, job.Error, "niet verbonden")
	assert.NotNil(t, job.StartedAt)

	// no live apply session was registered
	assert.False(t, p.viewer.Active())

	// terminal outcome was reported
	require.Len(t, notifier.jobs, 1)
	assert.Equal(t, result.JobID, notifier.jobs[0].ID)
}

func TestSubmitDecryptionFailure(t *testing.T) {
	p, s, _ := newTestPipeline(t)
	s.AddProperty(models.Property{ID: "prop-1", URL: "https://example.test/listing"})
	s.SaveCredential(`{"iv":"00","data":"00","tag":"00"}`, "user@example.test", time.Now())

	result, err := p.Submit(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.True(t, result.NeedsReconnect)

	// decryption failure forces recapture
	assert.Equal(t, models.CredentialNeedsReconnect, s.Credential().Status)

	job, _ := s.Job(result.JobID)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.NotNil(t, job.StartedAt, "job entered running before the decrypt step")
}

func TestSubmitCorruptAuthState(t *testing.T) {
	p, s, _ := newTestPipeline(t)
	s.AddProperty(models.Property{ID: "prop-1", URL: "https://example.test/listing"})

	// decrypts fine but is not an auth-state snapshot
	v, _ := vault.New("test-secret")
	env, err := v.Encrypt([]byte("not an auth state"))
	require.NoError(t, err)
	s.SaveCredential(env, "", time.Now())

	result, err := p.Submit(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.True(t, result.NeedsReconnect)
	assert.Equal(t, models.CredentialNeedsReconnect, s.Credential().Status)
}

func TestSubmitSingleFlight(t *testing.T) {
	p, s, _ := newTestPipeline(t)
	s.AddProperty(models.Property{ID: "prop-1", URL: "https://example.test/listing"})

	// occupy the apply slot as if another job were in flight
	require.True(t, p.slot.TryAcquire(1))
	defer p.slot.Release(1)

	result, err := p.Submit(context.Background(), "prop-1")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "al een sollicitatie bezig")

	job, _ := s.Job(result.JobID)
	assert.Equal(t, models.JobFailed, job.Status)
	assert.NotNil(t, job.StartedAt)
}

func TestGenerateLetterAsyncWithoutClient(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	ch := p.generateLetterAsync(context.Background(), models.Property{}, models.Profile{})
	select {
	case got := <-ch:
		assert.Empty(t, got)
	case <-time.After(time.Second):
		t.Fatal("letter channel did not yield")
	}
}

func TestRunLoginRedirectMeansSessionExpired(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	pw, err := playwright.Run()
	if err != nil {
		t.Skipf("playwright not available: %v", err)
	}
	defer pw.Stop()
	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Skipf("could not launch browser: %v", err)
	}
	defer b.Close()
	page, err := b.NewPage()
	require.NoError(t, err)

	// the listing page renders, but the contact form bounces to the login
	// page: the vaulted session no longer authenticates
	err = page.Route("**/*", func(route playwright.Route) {
		url := route.Request().URL()
		switch {
		case strings.Contains(url, "/contact/"):
			route.Fulfill(playwright.RouteFulfillOptions{
				Status:  playwright.Int(302),
				Headers: map[string]string{"Location": "https://example.test/inloggen"},
			})
		case strings.Contains(url, "/inloggen"):
			route.Fulfill(playwright.RouteFulfillOptions{
				Status:      playwright.Int(200),
				ContentType: playwright.String("text/html"),
				Body:        `<html><body><form><input type="email" name="email"></form></body></html>`,
			})
		default:
			route.Fulfill(playwright.RouteFulfillOptions{
				Status:      playwright.Int(200),
				ContentType: playwright.String("text/html"),
				Body:        `<html><body><h1>Keizersgracht 1</h1></body></html>`,
			})
		}
	})
	require.NoError(t, err)

	p, s, _ := newTestPipeline(t)
	property := models.Property{ID: "prop-1", Name: "Keizersgracht 1", URL: "https://example.test/listing"}
	s.AddProperty(property)
	s.SaveCredential("envelope", "user@example.test", time.Now())
	job := s.AddJob("apply", property.ID, property.Name, property.URL)
	require.NoError(t, s.MarkJobRunning(job.ID))

	letterCh := make(chan string, 1)
	letterCh <- ""

	result := p.run(page, job.ID, property, models.Profile{}, letterCh)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "sessie verlopen")
	assert.True(t, result.NeedsReconnect)
	assert.Equal(t, models.CredentialNeedsReconnect, s.Credential().Status)
}

func TestViewerInactiveWithoutPage(t *testing.T) {
	v := NewViewer()
	assert.False(t, v.Active())

	view := v.View()
	assert.False(t, view.Active)
	assert.Empty(t, view.Screenshot)
}
