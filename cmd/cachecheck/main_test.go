package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// cachingServer mimics the API: every view except the skipped path stores its key
func cachingServer(t *testing.T, rdb *redis.Client, eventID, skip string) *httptest.Server {
	t.Helper()
	keys := make(map[string]string)
	for _, v := range viewsFor(eventID) {
		keys[v.path] = v.key
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.RequestURI()
		key, ok := keys[path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if path != skip {
			rdb.Set(r.Context(), key, `{"ok":true}`, 0)
		}
		w.Write([]byte(`{"status":"success"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestRunReportsCachedViews(t *testing.T) {
	rdb := newRedis(t)
	eventID := "evt-1"
	skip := "/events/evt-1/capacity?expected_attendance=20"
	srv := cachingServer(t, rdb, eventID, skip)

	results := NewChecker(srv.URL, rdb).Run(context.Background(), eventID)
	if len(results) != 4 {
		t.Fatalf("Run() returned %d results, want 4", len(results))
	}
	for _, r := range results {
		want := r.Path != skip
		if r.Cached != want || r.Error != "" || r.StatusCode != http.StatusOK {
			t.Errorf("%s = %+v, want cached %v", r.Name, r, want)
		}
	}

	var buf bytes.Buffer
	if failed := printReport(&buf, results); failed != 1 {
		t.Errorf("printReport() failed = %d, want 1", failed)
	}
	if !strings.Contains(buf.String(), "3/4 views cached") || !strings.Contains(buf.String(), "(not cached)") {
		t.Errorf("report missing summary:\n%s", buf.String())
	}
}

func TestCheckClearsStaleKeyAndReportsHTTPErrors(t *testing.T) {
	rdb := newRedis(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ctx := context.Background()
	view := viewsFor("evt-2")[0]
	rdb.Set(ctx, view.key, "stale", 0)

	r := NewChecker(srv.URL, rdb).check(ctx, view)
	if r.Success() || r.StatusCode != http.StatusNotFound || r.Error != "HTTP 404" {
		t.Errorf("check() = %+v, want HTTP 404 failure", r)
	}
	if n := rdb.Exists(ctx, view.key).Val(); n != 0 {
		t.Errorf("stale key still present after check")
	}
}
