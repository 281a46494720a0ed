package mailer

// EmailJob is one email to render and send.
// Subject, Text and HTML are used as-is when Template is empty.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "welcome" or "new_comment"
	Data     map[string]any `json:"data,omitempty"`
}
