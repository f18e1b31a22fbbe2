package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	noticedom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
)

func strp(s string) *string { return &s }

func testMessage() chandom.Message {
	return chandom.Message{
		Title:    "orientation",
		Link:     "https://cse.example.ac.kr/notice/100",
		Content:  strp("room 101"),
		Category: noticedom.CategoryStudent,
		State:    noticedom.StateNew,
		PostedAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
	}
}

func routerFor(url string) chandom.Router {
	urls := make(map[noticedom.Category]string)
	for _, c := range noticedom.Categories() {
		urls[c] = url
	}
	return chandom.NewRouter(urls)
}

func TestSendPostsWebhookPayload(t *testing.T) {
	t.Parallel()

	var got Payload
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := New(routerFor(srv.URL), Options{Username: "notice-bot"})
	if err := s.Send(context.Background(), testMessage()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if contentType != "application/json" {
		t.Fatalf("content type = %q", contentType)
	}
	if got.Username != "notice-bot" {
		t.Fatalf("username = %q", got.Username)
	}
	if len(got.Embeds) != 1 {
		t.Fatalf("embeds = %d, want 1", len(got.Embeds))
	}
	emb := got.Embeds[0]
	if emb.Title != "orientation" || emb.URL != "https://cse.example.ac.kr/notice/100" {
		t.Fatalf("embed = %+v", emb)
	}
	if emb.Description != "room 101" {
		t.Fatalf("description = %q", emb.Description)
	}
	if emb.Footer == nil || emb.Footer.Text != "STUDENT" {
		t.Fatalf("footer = %+v", emb.Footer)
	}
	if len(emb.Fields) != 1 || emb.Fields[0].Value != "2024-01-10 09:00:00" {
		t.Fatalf("fields = %+v", emb.Fields)
	}
}

func TestSendPrefixesUpdatedTitle(t *testing.T) {
	t.Parallel()

	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	msg := testMessage()
	msg.State = noticedom.StateUpdated

	s := New(routerFor(srv.URL), Options{})
	if err := s.Send(context.Background(), msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Embeds[0].Title != "[UPDATED] orientation" {
		t.Fatalf("title = %q", got.Embeds[0].Title)
	}
}

func TestSendNon2xxIsSendError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"rate limited"}`))
	}))
	defer srv.Close()

	s := New(routerFor(srv.URL), Options{})
	err := s.Send(context.Background(), testMessage())
	if !perr.IsCode(err, perr.ErrorCodeSend) {
		t.Fatalf("err = %v, want send error", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("err %q does not echo the status", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err %q does not echo the body snippet", err)
	}
}

func TestSendTransportFailureIsSendError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	s := New(routerFor(srv.URL), Options{Timeout: time.Second})
	err := s.Send(context.Background(), testMessage())
	if !perr.IsCode(err, perr.ErrorCodeSend) {
		t.Fatalf("err = %v, want send error", err)
	}
}

func TestSendUnroutedCategoryIsConfigError(t *testing.T) {
	t.Parallel()

	s := New(chandom.NewRouter(nil), Options{})
	err := s.Send(context.Background(), testMessage())
	if !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("err = %v, want config error", err)
	}
}

func TestBuildPayloadTruncatesLongContent(t *testing.T) {
	t.Parallel()

	msg := testMessage()
	msg.Content = strp(strings.Repeat("한", descriptionLimit+50))

	p := BuildPayload("u", msg)
	desc := []rune(p.Embeds[0].Description)
	if len(desc) != descriptionLimit+1 { // trailing ellipsis
		t.Fatalf("description runes = %d", len(desc))
	}
	if desc[len(desc)-1] != '…' {
		t.Fatalf("description not ellipsized")
	}

	// multibyte content over the byte limit but under the rune limit is kept whole
	whole := strings.Repeat("한", descriptionLimit-1)
	msg.Content = strp(whole)
	if got := BuildPayload("u", msg).Embeds[0].Description; got != whole {
		t.Fatalf("short multibyte content was cut to %d runes", len([]rune(got)))
	}
}
