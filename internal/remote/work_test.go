package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const navigatePage = `<html><body>
<h2 class="heading"><a href="/works/123">The Long Road</a></h2>
<ol class="chapter index group" role="navigation">
  <li><a href="/works/123/chapters/1001">1. Departure</a> <span class="datetime">(2024-01-02)</span></li>
  <li><a href="/works/123/chapters/1002">2.   Into
      the Woods</a> <span class="datetime">(2024-02-03)</span></li>
  <li><a href="/works/123/chapters/1003">Epilogue</a></li>
</ol>
</body></html>`

func TestChapters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/works/123/navigate" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(navigatePage))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL+"/")
	work, err := c.Chapters(context.Background(), "123")
	if err != nil {
		t.Fatal(err)
	}

	if work.Title != "The Long Road" {
		t.Errorf("title = %q", work.Title)
	}
	if len(work.Chapters) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(work.Chapters))
	}

	first := work.Chapters[0]
	if first.Number != 1 || first.Title != "Departure" || first.Posted != "2024-01-02" ||
		first.URL != srv.URL+"/works/123/chapters/1001" {
		t.Errorf("unexpected first chapter %+v", first)
	}
	if got := work.Chapters[1].Title; got != "Into the Woods" {
		t.Errorf("second title = %q", got)
	}
	if last := work.Chapters[2]; last.Number != 3 || last.Title != "Epilogue" || last.Posted != "" {
		t.Errorf("unexpected last chapter %+v", last)
	}
}

func TestChapters_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewClient(srv.Client(), srv.URL).Chapters(context.Background(), "999")
	if !errors.Is(err, ErrWorkNotFound) {
		t.Fatalf("expected ErrWorkNotFound, got %v", err)
	}
}

func TestChapters_EmptyID(t *testing.T) {
	if _, err := NewClient(http.DefaultClient, "http://example.invalid").Chapters(context.Background(), " "); err == nil {
		t.Fatal("expected error for empty id")
	}
}
