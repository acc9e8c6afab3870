package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/sheepfold/internal/config"
	"github.com/vovakirdan/sheepfold/internal/engine"
	"github.com/vovakirdan/sheepfold/internal/flock"
	"github.com/vovakirdan/sheepfold/internal/httpapi"
	"github.com/vovakirdan/sheepfold/internal/pasture"
	"github.com/vovakirdan/sheepfold/internal/storage"
)

const adminKey = "let-me-pray"

type calmRandom struct{}

func (calmRandom) Float64() float64 { return 0.99 }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts, _ := newTestServerWithStore(t)
	return ts
}

func newTestServerWithStore(t *testing.T) (*httptest.Server, *storage.Store) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "sheep.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	logger := log.New(io.Discard)
	eng := engine.New(config.DefaultRules(), engine.WithRandom(calmRandom{}))
	m := pasture.NewManager(pasture.Config{}, eng, store, pasture.WithLogger(logger))

	ts := httptest.NewServer(httpapi.NewRouter(httpapi.Options{
		Manager:  m,
		AdminKey: adminKey,
		Logger:   logger,
	}))
	t.Cleanup(ts.Close)
	return ts, store
}

func doReq(t *testing.T, baseURL, method, path string, body any, header map[string]string) (int, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

func adopt(t *testing.T, baseURL, owner, name string) map[string]any {
	t.Helper()
	st, body := doReq(t, baseURL, "POST", "/owners/"+owner+"/sheep", map[string]any{"name": name}, nil)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 adopt, got %d body=%s", st, string(body))
	}
	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode adopt: %v", err)
	}
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	st, body := doReq(t, ts.URL, "GET", "/healthz", nil, nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Errorf("healthz = %d %q", st, body)
	}
}

func TestAdoptListAndPray(t *testing.T) {
	ts := newTestServer(t)
	sheep := adopt(t, ts.URL, "owner-1", "Dolly")
	id, _ := sheep["id"].(string)
	if id == "" || sheep["stage"] != "lamb" || sheep["status"] != "healthy" {
		t.Fatalf("adopted = %v", sheep)
	}
	if sheep["relationship"] != "companion" {
		t.Errorf("relationship = %v", sheep["relationship"])
	}

	st, body := doReq(t, ts.URL, "GET", "/owners/owner-1/sheep", nil, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list, got %d", st)
	}
	var list []map[string]any
	if err := json.Unmarshal(body, &list); err != nil || len(list) != 1 {
		t.Fatalf("list = %s (%v)", body, err)
	}

	for i := 1; i <= 3; i++ {
		st, body := doReq(t, ts.URL, "POST", "/owners/owner-1/sheep/"+id+"/pray", nil, nil)
		if st != http.StatusOK {
			t.Fatalf("prayer %d: expected 200, got %d body=%s", i, st, body)
		}
		var res struct {
			Outcome struct {
				Kind      string `json:"kind"`
				Remaining int    `json:"remaining"`
			} `json:"outcome"`
		}
		_ = json.Unmarshal(body, &res)
		if res.Outcome.Kind != "healed" || res.Outcome.Remaining != 3-i {
			t.Errorf("prayer %d outcome = %+v", i, res.Outcome)
		}
	}

	st, _ = doReq(t, ts.URL, "POST", "/owners/owner-1/sheep/"+id+"/pray", nil, nil)
	if st != http.StatusTooManyRequests {
		t.Errorf("expected 429 after the daily limit, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "POST", "/owners/owner-1/sheep/"+id+"/pray", nil,
		map[string]string{httpapi.AdminHeader: "wrong"})
	if st != http.StatusTooManyRequests {
		t.Errorf("expected 429 with a wrong admin key, got %d", st)
	}

	st, body = doReq(t, ts.URL, "POST", "/owners/owner-1/sheep/"+id+"/pray", nil,
		map[string]string{httpapi.AdminHeader: adminKey})
	if st != http.StatusOK {
		t.Errorf("expected 200 for admin prayer, got %d body=%s", st, body)
	}
}

func TestAdoptRejectsEmptyName(t *testing.T) {
	ts := newTestServer(t)
	st, _ := doReq(t, ts.URL, "POST", "/owners/owner-1/sheep", map[string]any{"name": "   "}, nil)
	if st != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "POST", "/owners/owner-1/sheep", nil, nil)
	if st != http.StatusBadRequest {
		t.Errorf("expected 400 for missing body, got %d", st)
	}
}

func TestAnnotateAndDelete(t *testing.T) {
	ts := newTestServer(t)
	id := adopt(t, ts.URL, "owner-1", "Dolly")["id"].(string)

	st, body := doReq(t, ts.URL, "PATCH", "/owners/owner-1/sheep/"+id, map[string]any{
		"note": "likes songs",
		"plan": map[string]any{"time": "2025-03-11T10:00:00Z", "content": "visit"},
	}, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 patch, got %d body=%s", st, body)
	}
	var got map[string]any
	_ = json.Unmarshal(body, &got)
	if got["note"] != "likes songs" || got["name"] != "Dolly" {
		t.Errorf("patched = %v", got)
	}

	st, _ = doReq(t, ts.URL, "DELETE", "/owners/owner-1/sheep/"+id, nil, nil)
	if st != http.StatusNoContent {
		t.Fatalf("expected 204 delete, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "GET", "/owners/owner-1/sheep/"+id, nil, nil)
	if st != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "DELETE", "/owners/owner-1/sheep/"+id, nil, nil)
	if st != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", st)
	}
}

func TestProfileAndScene(t *testing.T) {
	ts := newTestServer(t)
	adopt(t, ts.URL, "guest", "Dolly")

	st, body := doReq(t, ts.URL, "PATCH", "/owners/guest/", map[string]any{"name": "Abel"}, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 rename, got %d body=%s", st, body)
	}

	st, body = doReq(t, ts.URL, "GET", "/owners/guest/", nil, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 profile, got %d", st)
	}
	var prof struct {
		Name   string         `json:"name"`
		Sheep  int            `json:"sheep"`
		Counts map[string]int `json:"counts"`
	}
	_ = json.Unmarshal(body, &prof)
	if prof.Name != "Abel" || prof.Sheep != 1 || prof.Counts["healthy"] != 1 {
		t.Errorf("profile = %+v", prof)
	}

	st, body = doReq(t, ts.URL, "GET", "/owners/guest/scene", nil, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 scene, got %d", st)
	}
	var sc struct {
		Identity string           `json:"identity"`
		Elements []map[string]any `json:"elements"`
	}
	_ = json.Unmarshal(body, &sc)
	// 2 mountains, 15 trees, 7 horizon strips, 5 rocks, 10 grass.
	if sc.Identity != "guest" || len(sc.Elements) != 2+15+7+5+10 {
		t.Errorf("scene identity=%q elements=%d", sc.Identity, len(sc.Elements))
	}
}

func TestSheepReportsTodaysPrayers(t *testing.T) {
	ts, store := newTestServerWithStore(t)
	now := time.Now()
	stale := flock.Sheep{
		ID:             "sheep-1",
		OwnerID:        "owner-1",
		Name:           "Dolly",
		Health:         80,
		LastPrayedDate: flock.DayOf(now, time.Local).AddDays(-1),
		PrayedCount:    3,
		CreatedAt:      now.Add(-48 * time.Hour),
		UpdatedAt:      now,
	}
	if err := store.Upsert(context.Background(), stale); err != nil {
		t.Fatalf("Upsert() failed: %v", err)
	}

	st, body := doReq(t, ts.URL, "GET", "/owners/owner-1/sheep/sheep-1", nil, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", st, body)
	}
	var got struct {
		PrayedCount int `json:"prayed_count"`
		PrayedToday int `json:"prayed_today"`
		PrayersLeft int `json:"prayers_left"`
	}
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PrayedCount != 0 || got.PrayedToday != 0 || got.PrayersLeft != 3 {
		t.Errorf("yesterday's prayers leaked into today: %+v", got)
	}

	st, body = doReq(t, ts.URL, "POST", "/owners/owner-1/sheep/sheep-1/pray", nil, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 prayer, got %d body=%s", st, body)
	}
	var prayed struct {
		Sheep struct {
			PrayedToday int `json:"prayed_today"`
			PrayersLeft int `json:"prayers_left"`
		} `json:"sheep"`
	}
	_ = json.Unmarshal(body, &prayed)
	if prayed.Sheep.PrayedToday != 1 || prayed.Sheep.PrayersLeft != 2 {
		t.Errorf("after one prayer: %+v", prayed.Sheep)
	}
}
