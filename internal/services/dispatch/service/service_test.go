package service

import (
	"context"
	"testing"
	"time"

	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	noticedom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
	recdom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/domain"
)

type fakeStore struct {
	records map[recdom.Key]recdom.Record
}

func newFakeStore(rs ...recdom.Record) *fakeStore {
	m := make(map[recdom.Key]recdom.Record, len(rs))
	for _, r := range rs {
		m[r.Key()] = r
	}
	return &fakeStore{records: m}
}

func (f *fakeStore) ListUnsent(context.Context) ([]recdom.Record, error) {
	var out []recdom.Record
	for _, r := range f.records {
		if !r.IsSent {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkSent(_ context.Context, key recdom.Key) (bool, error) {
	r, ok := f.records[key]
	if !ok || r.IsSent {
		return false, nil
	}
	r.IsSent = true
	f.records[key] = r
	return true, nil
}

type fakeReader struct {
	notices map[int64]noticedom.Notice
}

func (f *fakeReader) ByID(_ context.Context, id int64) (noticedom.Notice, error) {
	n, ok := f.notices[id]
	if !ok {
		return noticedom.Notice{}, perr.NotFoundf("notice %d not found", id)
	}
	return n, nil
}

type fakeSender struct {
	sent    []chandom.Message
	failFor map[string]error // keyed by message title
}

func (f *fakeSender) Kind() chandom.Kind { return chandom.KindDiscord }

func (f *fakeSender) Send(_ context.Context, msg chandom.Message) error {
	if err, ok := f.failFor[msg.Title]; ok {
		return err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func record(noticeID int64, marker string, st noticedom.State) recdom.Record {
	return recdom.Record{
		NoticeID:     noticeID,
		Channel:      chandom.KindDiscord,
		MarkerID:     marker,
		NoticeStatus: st,
	}
}

func notice(id int64, title string) noticedom.Notice {
	return noticedom.Notice{
		ID:        id,
		Num:       id * 100,
		Category:  noticedom.CategoryStudent,
		Link:      "https://cse.example.ac.kr/notice/1",
		Title:     title,
		CreatedAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		Status:    noticedom.StateNew,
	}
}

func TestDispatchSendsAndMarks(t *testing.T) {
	t.Parallel()

	store := newFakeStore(record(1, "m1", noticedom.StateNew))
	reader := &fakeReader{notices: map[int64]noticedom.Notice{1: notice(1, "orientation")}}
	sender := &fakeSender{}
	svc := New(store, reader, chandom.NewRegistry(sender))

	sent, err := svc.Dispatch(context.Background())
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sender calls = %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.Title != "orientation" || msg.State != noticedom.StateNew || msg.Category != noticedom.CategoryStudent {
		t.Fatalf("message = %+v", msg)
	}
	if r := store.records[recdom.Key{NoticeID: 1, Channel: chandom.KindDiscord, MarkerID: "m1"}]; !r.IsSent {
		t.Fatalf("record not marked sent")
	}
}

func TestDispatchFailureLeavesRecordUnsent(t *testing.T) {
	t.Parallel()

	store := newFakeStore(
		record(1, "m1", noticedom.StateNew),
		record(2, "m2", noticedom.StateNew),
	)
	reader := &fakeReader{notices: map[int64]noticedom.Notice{
		1: notice(1, "works"),
		2: notice(2, "breaks"),
	}}
	sender := &fakeSender{failFor: map[string]error{"breaks": perr.Sendf("webhook returned 500")}}
	svc := New(store, reader, chandom.NewRegistry(sender))

	sent, err := svc.Dispatch(context.Background())
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want the healthy record only", sent)
	}
	if r := store.records[recdom.Key{NoticeID: 2, Channel: chandom.KindDiscord, MarkerID: "m2"}]; r.IsSent {
		t.Fatalf("failed record was marked sent")
	}

	// record stays visible for the next pass
	sender.failFor = nil
	sent, err = svc.Dispatch(context.Background())
	if err != nil || sent != 1 {
		t.Fatalf("retry Dispatch = (%d, %v), want (1, nil)", sent, err)
	}
}

func TestDispatchUpdateUsesRecordStatusAndFreshContent(t *testing.T) {
	t.Parallel()

	// an updated notice delivers under a new marker while the original record
	// stays sent; the message carries the record's status with current fields
	orig := record(1, "m1", noticedom.StateNew)
	orig.IsSent = true
	store := newFakeStore(orig, record(1, "m2", noticedom.StateUpdated))

	n := notice(1, "orientation (moved)")
	n.Status = noticedom.StateUpdated
	reader := &fakeReader{notices: map[int64]noticedom.Notice{1: n}}
	sender := &fakeSender{}
	svc := New(store, reader, chandom.NewRegistry(sender))

	sent, err := svc.Dispatch(context.Background())
	if err != nil || sent != 1 {
		t.Fatalf("Dispatch = (%d, %v), want (1, nil)", sent, err)
	}
	msg := sender.sent[0]
	if msg.State != noticedom.StateUpdated {
		t.Fatalf("state = %s, want UPDATED", msg.State)
	}
	if msg.Title != "orientation (moved)" {
		t.Fatalf("title = %q, want the current notice title", msg.Title)
	}
}

func TestDispatchMissingNoticeSkipsRecord(t *testing.T) {
	t.Parallel()

	store := newFakeStore(record(9, "m9", noticedom.StateNew))
	reader := &fakeReader{notices: map[int64]noticedom.Notice{}}
	sender := &fakeSender{}
	svc := New(store, reader, chandom.NewRegistry(sender))

	sent, err := svc.Dispatch(context.Background())
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if sent != 0 {
		t.Fatalf("sent = %d, want 0", sent)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("sender was called for a missing notice")
	}
}
