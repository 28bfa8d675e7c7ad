package letter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-rental-agent/internal/models"
)

func TestRenderDefault(t *testing.T) {
	template := "Beste verhuurder,\n\nIk ben {{NAME}} ({{AGE}}), werkzaam als {{OCCUPATION}}, en reageer op {{ADDRESS}}."
	property := models.Property{Name: "Keizersgracht 1"}
	profile := models.Profile{Username: "Hidde", AgeCategory: "25-30", Occupation: "engineer"}

	got := RenderDefault(template, property, profile)
	assert.Equal(t, "Beste verhuurder,\n\nIk ben Hidde (25-30), werkzaam als engineer, en reageer op Keizersgracht 1.", got)
}

func TestRenderDefaultFallsBackToURL(t *testing.T) {
	got := RenderDefault("{{ADDRESS}}", models.Property{URL: "https://example.test/listing"}, models.Profile{})
	assert.Equal(t, "https://example.test/listing", got)
}

func TestFallbackNeverEmpty(t *testing.T) {
	got := Fallback(models.Property{}, models.Profile{})
	assert.Contains(t, got, "Dear landlord,")
	assert.Contains(t, got, "Applicant")

	got = Fallback(
		models.Property{Name: "Keizersgracht 1", AgentName: "Makelaar Jansen"},
		models.Profile{Username: "Hidde"},
	)
	assert.Contains(t, got, "Dear Makelaar Jansen,")
	assert.Contains(t, got, "Keizersgracht 1")
	assert.Contains(t, got, "Hidde")
}

func TestCleanMarkdown(t *testing.T) {
	in := "## Motivatie\n\n**Geachte verhuurder,**\n\nIk schrijf u over *deze woning*.\n"
	got := CleanMarkdown(in)
	assert.Equal(t, "Motivatie\n\nGeachte verhuurder,\n\nIk schrijf u over deze woning.", got)
}

func TestBuildUserPromptSkipsEmptyFields(t *testing.T) {
	property := models.Property{Name: "Keizersgracht 1", Price: 1800, SurfaceArea: 62, Bedrooms: 2}
	profile := models.Profile{Username: "Hidde", Occupation: "engineer"}

	prompt := buildUserPrompt(property, profile)
	assert.Contains(t, prompt, "Adres: Keizersgracht 1")
	assert.Contains(t, prompt, "Werk: engineer")
	assert.NotContains(t, prompt, "Roken")
	assert.NotContains(t, prompt, "Garantsteller")
}
