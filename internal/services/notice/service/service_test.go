package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/modkit/repokit"
	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/store"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/testkit"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
	noticerepo "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/repo"
	stagdom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/staging/domain"
	stagingrepo "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/staging/repo"
)

// fakeTx satisfies repokit.TxRunner; the raw SQL surface is never used because
// the binders below return in-memory storages
type fakeTx struct{}

func (fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) {
	panic("unexpected Exec")
}
func (fakeTx) Query(context.Context, string, ...any) (store.Rows, error) { panic("unexpected Query") }
func (fakeTx) QueryRow(context.Context, string, ...any) store.Row       { panic("unexpected QueryRow") }
func (fakeTx) Tx(ctx context.Context, fn func(q repokit.Queryer) error) error {
	return fn(fakeTx{})
}

type memNotices struct {
	byNum  map[int64]domain.Notice
	nextID int64
}

func newMemNotices() *memNotices {
	return &memNotices{byNum: make(map[int64]domain.Notice), nextID: 1}
}

func (m *memNotices) FindByNum(_ context.Context, num int64) (domain.Notice, error) {
	n, ok := m.byNum[num]
	if !ok {
		return domain.Notice{}, perr.NotFoundf("notice num %d not found", num)
	}
	return n, nil
}

func (m *memNotices) Insert(_ context.Context, n domain.Notice) (domain.Notice, error) {
	if _, ok := m.byNum[n.Num]; ok {
		return domain.Notice{}, perr.DBf("duplicate num %d", n.Num)
	}
	n.ID = m.nextID
	m.nextID++
	n.SavedAt = time.Now()
	m.byNum[n.Num] = n
	return n, nil
}

func (m *memNotices) Update(_ context.Context, n domain.Notice) error {
	for num, cur := range m.byNum {
		if cur.ID == n.ID {
			m.byNum[num] = n
			return nil
		}
	}
	return perr.NotFoundf("notice %d not found", n.ID)
}

func (m *memNotices) ByID(_ context.Context, id int64) (domain.Notice, error) {
	for _, n := range m.byNum {
		if n.ID == id {
			return n, nil
		}
	}
	return domain.Notice{}, perr.NotFoundf("notice %d not found", id)
}

func (m *memNotices) ListByState(_ context.Context, state domain.State) ([]domain.Notice, error) {
	var out []domain.Notice
	for _, n := range m.byNum {
		if n.Status == state {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotices) ChangeState(_ context.Context, id int64, state domain.State) error {
	for num, n := range m.byNum {
		if n.ID == id {
			n.Status = state
			m.byNum[num] = n
			return nil
		}
	}
	return perr.NotFoundf("notice %d not found", id)
}

type memMarkers struct {
	markers []stagdom.Marker
}

func (m *memMarkers) Insert(_ context.Context, mk stagdom.Marker) error {
	// pending marker per notice absorbs the insert, like the partial index
	for _, cur := range m.markers {
		if cur.NoticeID == mk.NoticeID && !cur.Recorded {
			return nil
		}
	}
	m.markers = append(m.markers, mk)
	return nil
}

func (m *memMarkers) ListUnrecorded(context.Context) ([]stagdom.Marker, error) {
	var out []stagdom.Marker
	for _, cur := range m.markers {
		if !cur.Recorded {
			out = append(out, cur)
		}
	}
	return out, nil
}

func (m *memMarkers) MarkRecorded(_ context.Context, id string) (bool, error) {
	for i, cur := range m.markers {
		if cur.ID == id && !cur.Recorded {
			m.markers[i].Recorded = true
			return true, nil
		}
	}
	return false, nil
}

func newTestService() (*Service, *memNotices, *memMarkers) {
	notices := newMemNotices()
	markers := &memMarkers{}
	svc := New(
		fakeTx{},
		repokit.BindFunc[noticerepo.Storage](func(repokit.Queryer) noticerepo.Storage { return notices }),
		repokit.BindFunc[stagingrepo.Storage](func(repokit.Queryer) stagingrepo.Storage { return markers }),
	)
	return svc, notices, markers
}

func strp(s string) *string { return &s }

func input(num int64, title string) domain.Input {
	return domain.Input{
		Num:       num,
		Category:  "STUDENT",
		Link:      fmt.Sprintf("https://cse.example.ac.kr/notice/%d", num),
		Title:     title,
		Content:   strp("body"),
		CreatedAt: domain.BoardTime{Time: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)},
	}
}

func TestIngestSavesNewNoticeAndStagesMarker(t *testing.T) {
	t.Parallel()

	svc, notices, markers := newTestService()

	report, err := svc.Ingest(context.Background(), domain.Batch{Data: []domain.Input{input(100, "orientation")}})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if report.Saved != 1 || report.Updated != 0 || len(report.Rejected) != 0 {
		t.Fatalf("report = %+v, want 1 saved", report)
	}

	n, ok := notices.byNum[100]
	if !ok {
		t.Fatalf("notice 100 not stored")
	}
	if n.Status != domain.StateNew {
		t.Fatalf("status = %s, want NEW", n.Status)
	}
	if len(markers.markers) != 1 {
		t.Fatalf("markers = %d, want 1", len(markers.markers))
	}
	if m := markers.markers[0]; m.NoticeID != n.ID || m.NoticeStatus != domain.StateNew {
		t.Fatalf("marker = %+v", m)
	}
}

func TestIngestUnchangedIsNoOp(t *testing.T) {
	t.Parallel()

	svc, _, markers := newTestService()
	batch := domain.Batch{Data: []domain.Input{input(100, "orientation")}}

	if _, err := svc.Ingest(context.Background(), batch); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	markers.markers[0].Recorded = true // simulate a completed relay pass

	report, err := svc.Ingest(context.Background(), batch)
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if report.Saved != 0 || report.Updated != 0 {
		t.Fatalf("re-ingest of identical notice produced %+v", report)
	}
	if len(markers.markers) != 1 {
		t.Fatalf("re-ingest staged a marker: %+v", markers.markers)
	}
}

func TestIngestComparesContentVerbatim(t *testing.T) {
	t.Parallel()

	svc, notices, markers := newTestService()
	ctx := context.Background()

	first := input(100, "orientation")
	first.Content = nil
	if _, err := svc.Ingest(ctx, domain.Batch{Data: []domain.Input{first}}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if notices.byNum[100].Content != nil {
		t.Fatalf("content stored as %q, want nil", *notices.byNum[100].Content)
	}
	markers.markers[0].Recorded = true

	// stored NULL and incoming "" are distinct values, so this is an update
	second := input(100, "orientation")
	second.Content = strp("")
	report, err := svc.Ingest(ctx, domain.Batch{Data: []domain.Input{second}})
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if report.Updated != 1 {
		t.Fatalf("report = %+v, want nil-to-empty content as 1 updated", report)
	}
	if n := notices.byNum[100]; n.Content == nil || *n.Content != "" || n.Status != domain.StateUpdated {
		t.Fatalf("notice = %+v, want empty content and UPDATED", n)
	}
	if len(markers.markers) != 2 || markers.markers[1].Recorded {
		t.Fatalf("markers = %+v, want a fresh pending marker", markers.markers)
	}
}

func TestIngestDetectsChangeAndRestages(t *testing.T) {
	t.Parallel()

	svc, notices, markers := newTestService()
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, domain.Batch{Data: []domain.Input{input(100, "orientation")}}); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	markers.markers[0].Recorded = true

	report, err := svc.Ingest(ctx, domain.Batch{Data: []domain.Input{input(100, "orientation (moved)")}})
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if report.Updated != 1 || report.Saved != 0 {
		t.Fatalf("report = %+v, want 1 updated", report)
	}

	n := notices.byNum[100]
	if n.Status != domain.StateUpdated {
		t.Fatalf("status = %s, want UPDATED", n.Status)
	}
	if n.Title != "orientation (moved)" {
		t.Fatalf("title not updated: %q", n.Title)
	}
	if len(markers.markers) != 2 {
		t.Fatalf("markers = %d, want a fresh one for the update", len(markers.markers))
	}
	if m := markers.markers[1]; m.NoticeStatus != domain.StateUpdated || m.Recorded {
		t.Fatalf("update marker = %+v", m)
	}
}

func TestIngestPendingMarkerAbsorbsResave(t *testing.T) {
	t.Parallel()

	svc, _, markers := newTestService()
	ctx := context.Background()

	if _, err := svc.Ingest(ctx, domain.Batch{Data: []domain.Input{input(100, "orientation")}}); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	// marker still pending; the changed notice must not queue a second one
	if _, err := svc.Ingest(ctx, domain.Batch{Data: []domain.Input{input(100, "orientation (moved)")}}); err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if len(markers.markers) != 1 {
		t.Fatalf("markers = %d, want pending marker reused", len(markers.markers))
	}
}

func TestIngestRejectionDoesNotAbortBatch(t *testing.T) {
	t.Parallel()

	svc, notices, _ := newTestService()

	bad := input(200, "broken")
	bad.Category = "SPORTS"

	report, err := svc.Ingest(context.Background(), domain.Batch{Data: []domain.Input{
		input(100, "first"),
		bad,
		input(300, "third"),
	}})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if report.Saved != 2 {
		t.Fatalf("saved = %d, want 2", report.Saved)
	}
	if len(report.Rejected) != 1 || report.Rejected[0].Num != 200 {
		t.Fatalf("rejected = %+v", report.Rejected)
	}
	if _, ok := notices.byNum[300]; !ok {
		t.Fatalf("item after the rejected one was dropped")
	}
}

func TestIngestValidatesFields(t *testing.T) {
	t.Parallel()

	svc, notices, _ := newTestService()

	noTitle := input(100, "")
	noLink := input(101, "x")
	noLink.Link = ""
	badNum := input(0, "x")
	noPostedAt := input(102, "x")
	noPostedAt.CreatedAt = domain.BoardTime{}

	report, err := svc.Ingest(context.Background(), domain.Batch{
		Data: []domain.Input{noTitle, noLink, badNum, noPostedAt},
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if report.Saved != 0 || len(report.Rejected) != 4 {
		t.Fatalf("report = %+v, want 4 rejections", report)
	}
	if len(notices.byNum) != 0 {
		t.Fatalf("rejected items were stored: %+v", notices.byNum)
	}
}

func TestIngestUsesMarkerIDSeam(t *testing.T) {
	testkit.Serial(t)

	testkit.Swap(t, &newMarkerID, func() string { return "fixed-marker-id" })

	svc, _, markers := newTestService()
	if _, err := svc.Ingest(context.Background(), domain.Batch{Data: []domain.Input{input(100, "x")}}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if markers.markers[0].ID != "fixed-marker-id" {
		t.Fatalf("marker id = %q", markers.markers[0].ID)
	}
}
