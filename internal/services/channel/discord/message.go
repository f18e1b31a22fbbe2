// Package discord implements the Discord webhook channel sender
package discord

import (
	str "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/strings"
	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	noticedom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
)

// Webhook payload shapes per the Discord webhook resource docs
// https://discord.com/developers/docs/resources/webhook

// Payload is the top-level webhook body
type Payload struct {
	Username string  `json:"username,omitempty"`
	Content  string  `json:"content,omitempty"`
	Embeds   []Embed `json:"embeds,omitempty"`
}

// Embed is one rich-content block
type Embed struct {
	Title       string  `json:"title,omitempty"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description,omitempty"`
	Footer      *Footer `json:"footer,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
}

// Footer is the small text under an embed
type Footer struct {
	Text string `json:"text"`
}

// Field is a name/value block inside an embed
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// postedAtLayout matches the board's timestamp display
const postedAtLayout = "2006-01-02 15:04:05"

// descriptionLimit keeps embeds under Discord's 4096-char description cap
const descriptionLimit = 2000

// BuildPayload converts a channel message into the webhook body
func BuildPayload(username string, msg chandom.Message) Payload {
	title := msg.Title
	if msg.State == noticedom.StateUpdated {
		title = "[UPDATED] " + title
	}

	emb := Embed{
		Title:  title,
		URL:    msg.Link,
		Footer: &Footer{Text: msg.Category.String()},
		Fields: []Field{
			{Name: "Posted", Value: msg.PostedAt.Format(postedAtLayout), Inline: true},
		},
	}
	if body := str.Deref(msg.Content); body != "" {
		emb.Description = truncate(body, descriptionLimit)
	}

	return Payload{
		Username: username,
		Embeds:   []Embed{emb},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
