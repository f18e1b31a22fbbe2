package http

import (
	stdctx "context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/net/http"
	chandom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/channel/domain"
	noticedom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
	"github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/record/domain"
)

type fakeQuery struct {
	records []domain.Record
}

func (f *fakeQuery) ListByChannel(_ stdctx.Context, k chandom.Kind) ([]domain.Record, error) {
	var out []domain.Record
	for _, r := range f.records {
		if r.Channel == k {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeQuery) ListUnsent(stdctx.Context) ([]domain.Record, error) {
	var out []domain.Record
	for _, r := range f.records {
		if !r.IsSent {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestRouter(q domain.QueryPort) http.Handler {
	mux := chi.NewRouter()
	Register(phttp.AdaptChi(mux), q)
	return mux
}

func TestListByChannel(t *testing.T) {
	t.Parallel()

	h := newTestRouter(&fakeQuery{records: []domain.Record{
		{NoticeID: 1, Channel: chandom.KindDiscord, MarkerID: "m1", NoticeStatus: noticedom.StateNew},
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?channel=DISCORD", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data []domain.Record `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 1 || env.Data[0].MarkerID != "m1" {
		t.Fatalf("records = %+v", env.Data)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?channel=TELEGRAM", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown channel status = %d, want 400", rec.Code)
	}
}

func TestListUnsent(t *testing.T) {
	t.Parallel()

	h := newTestRouter(&fakeQuery{records: []domain.Record{
		{NoticeID: 1, Channel: chandom.KindDiscord, MarkerID: "m1", IsSent: true},
		{NoticeID: 2, Channel: chandom.KindDiscord, MarkerID: "m2"},
	}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/unsent", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var env struct {
		Data []domain.Record `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 1 || env.Data[0].NoticeID != 2 {
		t.Fatalf("unsent = %+v", env.Data)
	}
}
