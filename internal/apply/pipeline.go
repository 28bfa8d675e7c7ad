package apply

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/sync/semaphore"

	"go-rental-agent/internal/autofill"
	"go-rental-agent/internal/browser"
	"go-rental-agent/internal/letter"
	"go-rental-agent/internal/models"
	"go-rental-agent/internal/resolver"
	"go-rental-agent/internal/store"
	"go-rental-agent/internal/vault"
)

const (
	applyTimeoutMs = 60000
	letterTimeout  = 45 * time.Second

	// field-name prefix of the rental site's application form
	formPrefix = "contact_agent_huurprofiel_form"

	sendButtonSelectors = `button:has-text("Versturen"), button:has-text("Verstuur"), button:has-text("Verzenden"), button:has-text("Send"), button[type="submit"]`

	errNotConnected   = "Pararius niet verbonden. Ga naar Integrations om te verbinden."
	errSessionExpired = "Pararius-sessie verlopen. Ga naar Integrations om opnieuw te verbinden."
	errReconnect      = "Auth state kon niet worden ontsleuteld. Verbind Pararius opnieuw."
)

// Notifier receives terminal job outcomes. Optional.
type Notifier interface {
	NotifyJob(job models.Job)
}

// Result is the outcome of one submission attempt, returned to the caller
// alongside the ledger update.
type Result struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
	ContactURL     string `json:"contactUrl,omitempty"`
	UsedAILetter   bool   `json:"usedAILetter"`
	JobID          string `json:"jobId"`
	NeedsReconnect bool   `json:"needsReconnect,omitempty"`
}

// Pipeline runs the headless apply workflow end to end: decrypt the vaulted
// auth state, drive a fresh browser context through the listing's contact
// form, and record the outcome in the job ledger.
type Pipeline struct {
	store    *store.Store
	vault    *vault.Vault
	browser  *browser.Manager
	resolver *resolver.Resolver
	letters  letter.Client
	viewer   *Viewer
	notifier Notifier

	// single apply at a time: admission control, not queueing
	slot *semaphore.Weighted
}

func NewPipeline(s *store.Store, v *vault.Vault, b *browser.Manager, r *resolver.Resolver, letters letter.Client, viewer *Viewer, notifier Notifier) *Pipeline {
	return &Pipeline{
		store:    s,
		vault:    v,
		browser:  b,
		resolver: r,
		letters:  letters,
		viewer:   viewer,
		notifier: notifier,
		slot:     semaphore.NewWeighted(1),
	}
}

// Submit runs one apply attempt for the property. Every return path leaves
// the job in a terminal state and the browser context closed.
func (p *Pipeline) Submit(ctx context.Context, propertyID string) (Result, error) {
	property, ok := p.store.Property(propertyID)
	if !ok {
		return Result{}, fmt.Errorf("property %s not found", propertyID)
	}

	job := p.store.AddJob("apply", property.ID, property.Name, property.URL)

	// The job enters running before any admission or credential check, so
	// every ledger entry past queued carries its start time.
	if err := p.store.MarkJobRunning(job.ID); err != nil {
		return p.fail(job.ID, fmt.Sprintf("Job kon niet worden gestart: %v", err), false), nil
	}

	if !p.slot.TryAcquire(1) {
		return p.fail(job.ID, "Er is al een sollicitatie bezig. Wacht tot deze klaar is.", false), nil
	}
	defer p.slot.Release(1)

	profile := p.store.Profile()
	cred := profile.Credential
	if cred.Status != models.CredentialConnected || cred.EncryptedAuthState == "" {
		return p.fail(job.ID, errNotConnected, false), nil
	}

	// Decrypt the stored auth state. Failure means the secret changed or the
	// record is corrupt; either way the credentials must be recaptured.
	plain, err := p.vault.Decrypt(cred.EncryptedAuthState)
	if err != nil {
		log.Printf("❌ Auth state decryption failed: %v", err)
		p.store.SetCredentialStatus(models.CredentialNeedsReconnect)
		result := p.fail(job.ID, errReconnect, false)
		result.NeedsReconnect = true
		return result, nil
	}
	authState, err := browser.ParseAuthState(plain)
	if err != nil {
		p.store.SetCredentialStatus(models.CredentialNeedsReconnect)
		result := p.fail(job.ID, errReconnect, false)
		result.NeedsReconnect = true
		return result, nil
	}

	// Letter generation runs concurrently with browser startup and
	// navigation; the pipeline only blocks on it at motivation-fill time.
	letterCh := p.generateLetterAsync(ctx, property, profile)

	browserCtx, err := p.browser.NewAuthContext(authState)
	if err != nil {
		return p.fail(job.ID, fmt.Sprintf("Browser kon niet starten: %v", err), false), nil
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		browserCtx.Close()
		return p.fail(job.ID, fmt.Sprintf("Browser kon niet starten: %v", err), false), nil
	}

	// The live view registration must be cleared on every exit path; a stale
	// page handle here would leak into later unrelated polls.
	p.viewer.Set(page, job.ID)
	defer func() {
		p.viewer.Clear()
		if err := browserCtx.Close(); err != nil {
			log.Printf("⚠️ Could not close apply context: %v", err)
		}
	}()

	result := p.run(page, job.ID, property, profile, letterCh)

	if result.Success {
		p.store.MarkApplied(property.ID, time.Now())
		if err := p.store.CompleteJob(job.ID, result.Message, result.UsedAILetter); err != nil {
			log.Printf("⚠️ Could not complete job: %v", err)
		}
	} else {
		if err := p.store.FailJob(job.ID, result.Error, result.UsedAILetter); err != nil {
			log.Printf("⚠️ Could not fail job: %v", err)
		}
	}
	result.JobID = job.ID
	p.notify(job.ID)
	return result, nil
}

// run drives the browser once the context is up. It returns a Result and
// never panics past the pipeline boundary; the caller owns the ledger
// transition and cleanup.
func (p *Pipeline) run(page playwright.Page, jobID string, property models.Property, profile models.Profile, letterCh <-chan string) Result {
	// Step 1: the listing page, where the contact endpoint is resolved
	if _, err := page.Goto(property.URL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(applyTimeoutMs),
	}); err != nil {
		return Result{Error: fmt.Sprintf("Kon de woningpagina niet openen: %v", err)}
	}
	page.WaitForTimeout(2000)
	browser.DismissConsent(page)

	snap, err := resolver.Snapshot(page)
	if err != nil {
		log.Printf("⚠️ Page snapshot incomplete: %v", err)
	}
	contactURL := p.resolver.Resolve(snap, resolver.Listing{ID: property.ID, URL: property.URL})
	log.Printf("🔗 Contact URL resolved: %s", contactURL)

	// Step 2: the contact form itself
	if _, err := page.Goto(contactURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(applyTimeoutMs),
	}); err != nil {
		return Result{Error: fmt.Sprintf("Kon het contactformulier niet openen: %v", err), ContactURL: contactURL}
	}
	page.WaitForTimeout(2000)
	browser.DismissConsent(page)

	// A login redirect means the vaulted session no longer authenticates.
	currentURL := page.URL()
	if strings.Contains(currentURL, "/login") || strings.Contains(currentURL, "/inloggen") {
		p.store.SetCredentialStatus(models.CredentialNeedsReconnect)
		return Result{Error: errSessionExpired, NeedsReconnect: true}
	}
	if !strings.Contains(currentURL, "/contact/") {
		return Result{Error: fmt.Sprintf("Could not reach the contact form. Ended up at: %s", currentURL), ContactURL: contactURL}
	}

	// Step 3: motivation letter, AI first, then the saved template, then the
	// generic fallback. The field is never left empty.
	aiLetter := <-letterCh
	usedAILetter := aiLetter != ""

	formLetter := aiLetter
	if formLetter == "" && profile.DefaultLetter != "" {
		formLetter = letter.RenderDefault(profile.DefaultLetter, property, profile)
	}
	if formLetter == "" {
		formLetter = letter.Fallback(property, profile)
	}

	engine := autofill.New(page, formPrefix)
	engine.FillMotivation(formLetter)

	// Step 4: structured profile fields, each independently fault-tolerant
	engine.FillApplicationForm(profile)

	// Step 5: submit
	page.WaitForTimeout(800)
	sendBtn := page.Locator(sendButtonSelectors).First()
	if !browser.VisibleWithin(sendBtn, 5000) {
		// distinct from a navigation failure: the form was reached but not
		// completed, so the user can finish by hand at contactURL
		return Result{
			Error:        "Contact form found but could not locate the send button.",
			ContactURL:   contactURL,
			UsedAILetter: usedAILetter,
		}
	}

	if err := sendBtn.Click(); err != nil {
		return Result{
			Error:        fmt.Sprintf("Versturen mislukt: %v", err),
			ContactURL:   contactURL,
			UsedAILetter: usedAILetter,
		}
	}
	page.WaitForTimeout(7000)

	return Result{
		Success:      true,
		Message:      "Application submitted",
		ContactURL:   contactURL,
		UsedAILetter: usedAILetter,
	}
}

// generateLetterAsync starts letter generation in the background. The
// channel always yields exactly one value; empty means "no AI letter".
func (p *Pipeline) generateLetterAsync(ctx context.Context, property models.Property, profile models.Profile) <-chan string {
	ch := make(chan string, 1)
	if p.letters == nil {
		ch <- ""
		return ch
	}
	go func() {
		genCtx, cancel := context.WithTimeout(ctx, letterTimeout)
		defer cancel()

		text, err := p.letters.GenerateLetter(genCtx, property, profile)
		if err != nil {
			log.Printf("⚠️ AI letter generation failed: %v", err)
			ch <- ""
			return
		}
		ch <- text
	}()
	return ch
}

func (p *Pipeline) fail(jobID, msg string, usedAILetter bool) Result {
	if err := p.store.FailJob(jobID, msg, usedAILetter); err != nil {
		log.Printf("⚠️ Could not fail job: %v", err)
	}
	p.notify(jobID)
	return Result{Error: msg, JobID: jobID}
}

func (p *Pipeline) notify(jobID string) {
	if p.notifier == nil {
		return
	}
	if job, ok := p.store.Job(jobID); ok && job.Status.Terminal() {
		p.notifier.NotifyJob(job)
	}
}
