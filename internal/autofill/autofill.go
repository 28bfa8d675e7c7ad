package autofill

import (
	"fmt"
	"log"
	"strings"
	"unicode"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"go-rental-agent/internal/browser"
	"go-rental-agent/internal/models"
)

const fieldTimeoutMs = 2000

// Engine maps a profile onto the application form rendered on the page.
// Forms vary per listing, so every field attempt is independently
// fault-tolerant: a missing field or failed interaction is logged and the
// rest of the form continues.
type Engine struct {
	page   playwright.Page
	prefix string
}

// New binds the engine to a page showing the application form. prefix is
// the form's field-name prefix (fields render as prefix[field_name]).
func New(page playwright.Page, prefix string) *Engine {
	return &Engine{page: page, prefix: prefix}
}

func normalizeText(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	return strings.ToLower(result)
}

// MatchOption picks the option label for a profile value: exact trimmed
// match first, then case-insensitive (diacritic-folded) containment in
// either direction.
func MatchOption(options []string, value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	for _, o := range options {
		if strings.TrimSpace(o) == value {
			return strings.TrimSpace(o), true
		}
	}

	normValue := normalizeText(value)
	for _, o := range options {
		normOption := normalizeText(strings.TrimSpace(o))
		if normOption == "" {
			continue
		}
		if strings.Contains(normOption, normValue) || strings.Contains(normValue, normOption) {
			return strings.TrimSpace(o), true
		}
	}
	return "", false
}

// SelectField matches value against a select's option labels and picks the
// best one. Silently skips when the field is absent or nothing matches.
func (e *Engine) SelectField(field, value string) {
	if value == "" {
		return
	}
	sel := e.page.Locator(fmt.Sprintf(`select[name="%s[%s]"]`, e.prefix, field))
	if !browser.VisibleWithin(sel, fieldTimeoutMs) {
		return
	}

	options, err := sel.Locator("option").AllTextContents()
	if err != nil {
		log.Printf("⚠️ Could not read options for %s: %v", field, err)
		return
	}

	match, ok := MatchOption(options, value)
	if !ok {
		log.Printf("⚠️ No option match for %s=%q. Options: %s", field, value, strings.Join(options, ", "))
		return
	}

	if _, err := sel.SelectOption(playwright.SelectOptionValues{Labels: &[]string{match}}); err != nil {
		log.Printf("⚠️ Could not select %q for %s: %v", match, field, err)
		return
	}
	log.Printf("✅ Selected %q for %s", match, field)
}

// FillField fills a text or date input. Without overwrite, a value the user
// already entered is left alone.
func (e *Engine) FillField(field, value string, overwrite bool) {
	if value == "" {
		return
	}
	input := e.page.Locator(fmt.Sprintf(`input[name="%s[%s]"]`, e.prefix, field))
	if !browser.VisibleWithin(input, fieldTimeoutMs) {
		return
	}

	current, err := input.InputValue()
	if err != nil {
		current = ""
	}
	if current != "" && !overwrite {
		log.Printf("ℹ️ %s already has value %q, leaving it", field, current)
		return
	}

	if err := input.Fill(value); err != nil {
		log.Printf("⚠️ Could not fill %s: %v", field, err)
		return
	}
	log.Printf("✅ Filled %s", field)
}

// CheckField sets a checkbox when the profile value is truthy and the box
// is not already checked.
func (e *Engine) CheckField(field string, value bool) {
	if !value {
		return
	}
	box := e.page.Locator(fmt.Sprintf(`input[name="%s[%s]"]`, e.prefix, field))
	if !browser.VisibleWithin(box, fieldTimeoutMs) {
		return
	}

	checked, err := box.IsChecked()
	if err == nil && checked {
		return
	}
	if err := box.Check(); err != nil {
		log.Printf("⚠️ Could not check %s: %v", field, err)
		return
	}
	log.Printf("✅ Checked %s", field)
}

// TenantCountVisible is the visibility precondition for the tenant-count
// field: it only renders when the living-together answer is not "Nee".
func TenantCountVisible(livingTogether string) bool {
	return livingTogether != "" && !strings.EqualFold(strings.TrimSpace(livingTogether), "nee")
}

// FillApplicationForm maps the structured profile fields onto the form.
// The motivation textarea is handled by the caller, which owns the letter
// priority order.
func (e *Engine) FillApplicationForm(profile models.Profile) {
	// personal details
	e.SelectField("salutation", profile.Salutation)
	e.FillField("first_name", profile.FirstName, false)
	e.FillField("last_name", profile.LastName, false)
	e.FillField("phone_number", profile.Phone, false)
	e.FillField("date_of_birth", profile.DateOfBirth, false)

	// rental profile
	e.SelectField("work_situation", profile.WorkSituation)
	e.SelectField("gross_annual_household_income", profile.GrossIncome)
	e.SelectField("guarantor", profile.Guarantor)
	e.SelectField("preferred_living_situation", profile.LivingTogether)

	if profile.NumberOfTenants != "" && TenantCountVisible(profile.LivingTogether) {
		e.FillField("number_of_tenants", profile.NumberOfTenants, false)
	}

	e.CheckField("pets", profile.HasPets)

	e.FillField("rent_start_date", profile.DesiredStartDate, false)
	e.SelectField("preferred_contract_period", profile.DesiredRentalPeriod)
	e.SelectField("current_housing_situation", profile.CurrentLivingSituation)
}

// FillMotivation writes the letter into the motivation textarea. The letter
// is always authoritative, so an existing draft is overwritten.
func (e *Engine) FillMotivation(letter string) bool {
	field := e.page.Locator(fmt.Sprintf(`textarea[name="%s[motivation]"]`, e.prefix))
	if !browser.VisibleWithin(field, 5000) {
		log.Printf("⚠️ Motivation field not found")
		return false
	}
	if err := field.Click(); err != nil {
		log.Printf("⚠️ Could not focus motivation field: %v", err)
	}
	if err := field.Fill(letter); err != nil {
		log.Printf("⚠️ Could not fill motivation: %v", err)
		return false
	}
	return true
}
