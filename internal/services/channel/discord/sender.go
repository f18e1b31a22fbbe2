package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/config"
	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	noticedom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
)

// Options configures the webhook sender
type Options struct {
	Username string
	Timeout  time.Duration
}

// Sender posts notices to category-routed Discord webhooks
type Sender struct {
	client *http.Client
	router chandom.Router
	opts   Options
}

// New constructs a Sender over the given category router
func New(router chandom.Router, opts Options) *Sender {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Username == "" {
		opts.Username = "KNU CSE Notice"
	}
	return &Sender{
		client: &http.Client{Timeout: opts.Timeout},
		router: router,
		opts:   opts,
	}
}

// RouterFromConfig builds the category router from DISCORD_URL_* env vars
// (DISCORD_URL_ALL, DISCORD_URL_STUDENT, ...). Missing categories surface at
// startup via Router.MustComplete.
func RouterFromConfig(cfg config.Conf) chandom.Router {
	urls := make(map[noticedom.Category]string)
	uc := cfg.Prefix("DISCORD_URL_")
	for _, c := range noticedom.Categories() {
		if u := uc.MayString(c.String(), ""); u != "" {
			urls[c] = u
		}
	}
	return chandom.NewRouter(urls)
}

// FromConfig builds a fully wired sender from env (router validated)
func FromConfig(cfg config.Conf) *Sender {
	dc := cfg.Prefix("DISCORD_")
	return New(
		RouterFromConfig(cfg).MustComplete(),
		Options{
			Username: dc.MayString("USERNAME", "KNU CSE Notice"),
			Timeout:  dc.MayDuration("TIMEOUT", 10*time.Second),
		},
	)
}

// Kind implements channel domain Sender
func (s *Sender) Kind() chandom.Kind { return chandom.KindDiscord }

// Send implements channel domain Sender.
// Transport failures and non-2xx responses both come back as send errors so
// the caller leaves the delivery record unsent.
func (s *Sender) Send(ctx context.Context, msg chandom.Message) error {
	url, err := s.router.URL(msg.Category)
	if err != nil {
		return err
	}

	body, err := json.Marshal(BuildPayload(s.opts.Username, msg))
	if err != nil {
		return perr.SendWrap(err, "encode webhook payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return perr.SendWrap(err, "build webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return perr.SendWrap(err, "post webhook")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Discord error bodies are short JSON blobs; keep a trimmed echo
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return perr.Sendf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
