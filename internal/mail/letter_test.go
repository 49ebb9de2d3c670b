package mail

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderLetter(t *testing.T) {
	subject, text, html, err := RenderLetter(LetterParams{
		CompanyName:   "Acme Corp",
		RoleTitle:     "React Developer",
		ApplicantName: "Jane Example",
		ContactEmail:  "jane@example.test",
	})
	require.NoError(t, err)

	assert.Equal(t, "Application for React Developer - Jane Example | 4+ Years React/Next.js Experience", subject)

	for _, body := range []string{text, html} {
		assert.Contains(t, body, "Acme Corp")
		assert.Contains(t, body, "React Developer")
		assert.Contains(t, body, "Jane Example")
		assert.Contains(t, body, "jane@example.test")
	}
	assert.True(t, strings.HasPrefix(text, "Dear Hiring Manager at Acme Corp"))
	assert.Contains(t, html, "<!DOCTYPE html>")
}

func TestRenderLetterEscapesHTML(t *testing.T) {
	_, text, html, err := RenderLetter(LetterParams{
		CompanyName:   `<b>Acme & Sons</b>`,
		RoleTitle:     "Dev",
		ApplicantName: "Jane",
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "<b>Acme")
	assert.Contains(t, html, "&lt;b&gt;")
	// The text variant is sent as text/plain; no escaping there.
	assert.Contains(t, text, "<b>Acme & Sons</b>")
}

func TestRenderLetterOmitsEmptyContact(t *testing.T) {
	_, text, _, err := RenderLetter(LetterParams{
		CompanyName:   "Acme",
		RoleTitle:     "Dev",
		ApplicantName: "Jane",
	})
	require.NoError(t, err)
	assert.NotContains(t, text, "Email:")
}
