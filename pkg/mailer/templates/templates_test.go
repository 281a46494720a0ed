package templates

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-postboard/config"
)

func testConfig() *config.Config {
	return &config.Config{AppName: "Postboard", CompanyName: "Acme", DashboardURL: "https://dash.example.com"}
}

func TestRenderWelcome(t *testing.T) {
	data := NewWelcomeData(testConfig(), "", "ann@example.com", WithTime(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)))

	subject, text, html, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Postboard", strings.TrimSpace(subject))
	assert.Contains(t, text, "Hi ann@example.com,")
	assert.Contains(t, text, "01 March 2024, 10:00")
	assert.Contains(t, html, `href="https://dash.example.com"`)
}

func TestRenderNewComment(t *testing.T) {
	data := NewCommentData(testConfig(), "Owner", "owner@example.com",
		WithPost("Hello <world>"),
		WithComment("", "reader@example.com", strings.Repeat("x", 600)),
	)

	subject, text, html, err := Render(NewComment, data)
	require.NoError(t, err)
	assert.Equal(t, `reader@example.com commented on "Hello <world>"`, strings.TrimSpace(subject))
	assert.Contains(t, text, strings.Repeat("x", 500)+"…")
	assert.NotContains(t, text, strings.Repeat("x", 501))
	// html output is escaped
	assert.Contains(t, html, "Hello &lt;world&gt;")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", map[string]any{})
	assert.Error(t, err)
}
