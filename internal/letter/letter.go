package letter

import (
	"context"
	"fmt"
	"strings"

	"go-rental-agent/internal/models"
)

// Client is the interface for AI letter providers
type Client interface {
	// GenerateLetter drafts a Dutch motivation letter for the listing from
	// the applicant's profile. Returns an empty string when generation is
	// unavailable, never a partial letter.
	GenerateLetter(ctx context.Context, property models.Property, profile models.Profile) (string, error)
}

// buildSystemPrompt creates the system instruction for the AI model
func buildSystemPrompt() string {
	return `Je bent een ervaren tekstschrijver die motivatiebrieven schrijft voor huurwoningen in Amsterdam en omgeving. Je schrijft brieven die warm, concreet en menselijk klinken — geen AI-achtige marketingtaal, geen clichés.

Regels:
- Onderwerpregel: "Motivatie huurwoning [adres], [stad]"
- Aanhef: "Geachte verhuurder," of "Beste [makelaar]," als de makelaar bekend is
- Noem 4 tot 7 concrete, locatiegerichte redenen waarom dit adres past (fietsafstand naar werk, OV, parken, voorzieningen, buurtkarakter); alleen dingen die je redelijk zeker weet
- Natuurlijk Nederlands, 350-600 woorden, betrouwbaar en warm
- GEEN markdown, GEEN bullets — alleen doorlopende tekst met alinea's
- Sla ontbrekende profielgegevens subtiel over
- Lever ALLEEN de brief, geen uitleg`
}

// buildUserPrompt assembles property facts and the applicant profile into
// the user message.
func buildUserPrompt(property models.Property, profile models.Profile) string {
	var b strings.Builder

	b.WriteString("## Woninggegevens\n")
	fmt.Fprintf(&b, "- Adres: %s\n", property.Name)
	if property.Neighborhood != "" {
		fmt.Fprintf(&b, "- Buurt: %s\n", property.Neighborhood)
	}
	if property.ZipCode != "" {
		fmt.Fprintf(&b, "- Postcode: %s\n", property.ZipCode)
	}
	fmt.Fprintf(&b, "- Huurprijs: €%d/maand\n", property.Price)
	fmt.Fprintf(&b, "- Woonoppervlak: %dm²\n", property.SurfaceArea)
	fmt.Fprintf(&b, "- Slaapkamers: %d\n", property.Bedrooms)
	if property.Furniture != "" {
		fmt.Fprintf(&b, "- Meubilering: %s\n", property.Furniture)
	}
	if property.AgentName != "" {
		fmt.Fprintf(&b, "- Makelaar/verhuurder: %s\n", property.AgentName)
	}

	b.WriteString("\n## Persoonlijk profiel\n")
	fmt.Fprintf(&b, "- Naam: %s\n", profile.FullName())
	email := profile.Credential.Email
	if email == "" {
		email = profile.Email
	}
	if email != "" {
		fmt.Fprintf(&b, "- E-mail: %s\n", email)
	}
	optional := []struct{ label, value string }{
		{"Leeftijdscategorie", profile.AgeCategory},
		{"Werk", profile.Occupation},
		{"Contracttype", profile.ContractType},
		{"Inkomen", profile.IncomeDescription},
		{"Huishouden", profile.Household},
		{"Roken", profile.Smoking},
		{"Huisdieren", profile.Pets},
		{"Reden verhuizing", profile.MoveReason},
		{"Gewenste startdatum", profile.PreferredStartDate},
		{"Beschikbare documenten", profile.DocumentsAvailable},
		{"Bezichtiging mogelijk", profile.ViewingAvailability},
	}
	for _, f := range optional {
		if f.value != "" {
			fmt.Fprintf(&b, "- %s: %s\n", f.label, f.value)
		}
	}

	location := []struct{ label, value string }{
		{"Werklocatie", profile.WorkLocation},
		{"Reiswijze", profile.TransportMode},
		{"Belangrijke plekken", profile.ImportantPlaces},
		{"Buurtvoorkeuren", profile.NeighborhoodPrefs},
	}
	b.WriteString("\n## Locatiecontext\n")
	for _, f := range location {
		if f.value != "" {
			fmt.Fprintf(&b, "- %s: %s\n", f.label, f.value)
		}
	}
	if profile.PersonalNote != "" {
		fmt.Fprintf(&b, "\n## Persoonlijke noot\n%s\n", profile.PersonalNote)
	}
	if profile.HousingPrefs != "" {
		fmt.Fprintf(&b, "\nWoonwensen: %s\n", profile.HousingPrefs)
	}

	b.WriteString("\nSchrijf nu de motivatiebrief.")
	return b.String()
}

// RenderDefault substitutes the placeholders in the user's saved letter
// template. Unknown placeholders are left alone.
func RenderDefault(template string, property models.Property, profile models.Profile) string {
	name := profile.Username
	if name == "" {
		name = "Applicant"
	}
	address := property.Name
	if address == "" {
		address = property.URL
	}
	replacer := strings.NewReplacer(
		"{{NAME}}", name,
		"{{ADDRESS}}", address,
		"{{AGE}}", profile.AgeCategory,
		"{{OCCUPATION}}", profile.Occupation,
	)
	return replacer.Replace(template)
}

// Fallback is the minimal generic letter used when neither an AI letter nor
// a saved template is available. The motivation field is never left empty.
func Fallback(property models.Property, profile models.Profile) string {
	agent := property.AgentName
	if agent == "" {
		agent = "landlord"
	}
	name := profile.Username
	if name == "" {
		name = "Applicant"
	}
	address := property.Name
	if address == "" {
		address = property.URL
	}
	return fmt.Sprintf(
		"Dear %s,\n\nMy name is %s and I am very interested in the apartment at %s. I am a reliable tenant with a stable income and would love to schedule a viewing at your convenience.\n\nKind regards,\n%s",
		agent, name, address, name,
	)
}
