package notify

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/fitchallenge/challenge-backend/internal/mailer"
	"github.com/fitchallenge/challenge-backend/internal/models"
)

// Raw HTML in user supplied text (comments, notes) is dropped by the renderer.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Composer renders notification copy. Email bodies are written as Markdown
// and sent with both the Markdown text and the rendered HTML.
type Composer struct {
	from    string
	baseURL string
}

func NewComposer(from, baseURL string) *Composer {
	return &Composer{from: from, baseURL: strings.TrimRight(baseURL, "/")}
}

// InApp returns the bell title and message for one transition.
func (c *Composer) InApp(e Event) (string, string) {
	label := e.Category.Label()
	if e.Next == models.StatusFlagged {
		msg := fmt.Sprintf("Your %s log from %s was flagged for review: %s.", label, formatDate(e), e.Details)
		if e.Comment != nil && *e.Comment != "" {
			msg += " Admin comment: " + *e.Comment
		}
		return fmt.Sprintf("%s log flagged", label), msg
	}
	return fmt.Sprintf("%s log verified", label),
		fmt.Sprintf("Your %s log from %s was verified: %s.", label, formatDate(e), e.Details)
}

func (c *Composer) Immediate(user models.User, e Event) (mailer.Message, error) {
	var md strings.Builder
	fmt.Fprintf(&md, "Hi %s,\n\n", greetingName(user))
	if e.Next == models.StatusFlagged {
		fmt.Fprintf(&md, "One of your workout logs was **flagged** and needs your attention.\n\n")
	} else {
		fmt.Fprintf(&md, "One of your workout logs was **verified**.\n\n")
	}
	fmt.Fprintf(&md, "- **Type:** %s\n- **Date:** %s\n- **Details:** %s\n", e.Category.Label(), formatDate(e), e.Details)
	if e.Comment != nil && *e.Comment != "" {
		fmt.Fprintf(&md, "- **Admin comment:** %s\n", *e.Comment)
	}
	c.footer(&md)

	subject := fmt.Sprintf("Your %s log was verified", e.Category.Label())
	if e.Next == models.StatusFlagged {
		subject = fmt.Sprintf("Action needed: your %s log was flagged", e.Category.Label())
	}
	return c.message(user, subject, md.String(), map[string]string{
		"kind":   string(models.EmailImmediate),
		"log_id": e.LogID.String(),
		"status": string(e.Next),
	})
}

// Digest renders one consolidated email. Flagged items are listed first.
func (c *Composer) Digest(user models.User, entries []models.DigestQueueEntry) (mailer.Message, error) {
	flagged, verified := splitEntries(entries)

	var md strings.Builder
	fmt.Fprintf(&md, "Hi %s,\n\n", greetingName(user))
	fmt.Fprintf(&md, "Here is your verification summary: %d flagged, %d verified.\n\n", len(flagged), len(verified))
	if len(flagged) > 0 {
		md.WriteString("## Needs attention\n\n")
		for _, e := range flagged {
			fmt.Fprintf(&md, "- **%s** (%s): %s", e.LogCategory.Label(), e.ActivityDate.Format("Jan 2, 2006"), e.Details)
			if e.Comment != nil && *e.Comment != "" {
				fmt.Fprintf(&md, " *Admin comment:* %s", *e.Comment)
			}
			md.WriteString("\n")
		}
		md.WriteString("\n")
	}
	if len(verified) > 0 {
		md.WriteString("## Verified\n\n")
		for _, e := range verified {
			fmt.Fprintf(&md, "- **%s** (%s): %s\n", e.LogCategory.Label(), e.ActivityDate.Format("Jan 2, 2006"), e.Details)
		}
		md.WriteString("\n")
	}
	c.footer(&md)

	subject := fmt.Sprintf("Your workout verification digest (%d updates)", len(entries))
	if len(flagged) > 0 {
		subject = fmt.Sprintf("Action needed: %d flagged workout logs in your digest", len(flagged))
	}
	return c.message(user, subject, md.String(), map[string]string{
		"kind":     string(models.EmailDigest),
		"flagged":  fmt.Sprint(len(flagged)),
		"verified": fmt.Sprint(len(verified)),
	})
}

func (c *Composer) footer(md *strings.Builder) {
	if c.baseURL != "" {
		fmt.Fprintf(md, "\nReview your logs: %s/dashboard\n", c.baseURL)
		fmt.Fprintf(md, "\nManage email preferences: %s/profile\n", c.baseURL)
	}
}

func (c *Composer) message(user models.User, subject, md string, meta map[string]string) (mailer.Message, error) {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return mailer.Message{}, fmt.Errorf("render email: %w", err)
	}
	return mailer.Message{
		To:       user.Email,
		ToName:   user.DisplayName,
		From:     c.from,
		Subject:  subject,
		Text:     md,
		HTML:     buf.String(),
		Metadata: meta,
	}, nil
}

func splitEntries(entries []models.DigestQueueEntry) (flagged, verified []models.DigestQueueEntry) {
	for _, e := range entries {
		switch e.NewStatus {
		case models.StatusFlagged:
			flagged = append(flagged, e)
		case models.StatusVerified:
			verified = append(verified, e)
		}
	}
	return flagged, verified
}

func greetingName(u models.User) string {
	if strings.TrimSpace(u.DisplayName) != "" {
		return u.DisplayName
	}
	return "there"
}

func formatDate(e Event) string {
	if e.ActivityDate.IsZero() {
		return "an unknown date"
	}
	return e.ActivityDate.Format("Jan 2, 2006")
}
