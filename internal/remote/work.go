// Package remote reads the public chapter index of an existing work.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/niuk/ao3-uploader/internal/util"
)

var ErrWorkNotFound = errors.New("work not found (or restricted)")

type Chapter struct {
	Number int
	Title  string
	URL    string
	Posted string
}

type Work struct {
	ID       string
	Title    string
	Chapters []Chapter
}

type Client struct {
	http    *http.Client
	baseURL string
}

func NewClient(c *http.Client, baseURL string) *Client {
	return &Client{http: c, baseURL: strings.TrimRight(baseURL, "/")}
}

var numberedTitle = regexp.MustCompile(`^\s*(\d+)\.\s*(.*)$`)

// Chapters fetches the work's navigation page and returns its chapters in
// posting order.
func (c *Client) Chapters(ctx context.Context, workID string) (*Work, error) {
	if strings.TrimSpace(workID) == "" {
		return nil, errors.New("work id must not be empty")
	}

	target := fmt.Sprintf("%s/works/%s/navigate", c.baseURL, url.PathEscape(workID))
	doc, err := c.fetchDOM(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("work %s: %w", workID, err)
	}

	base, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	w := &Work{
		ID:    workID,
		Title: strings.TrimSpace(doc.Find("h2.heading a").First().Text()),
	}

	doc.Find("ol.chapter.index li").Each(func(i int, li *goquery.Selection) {
		a := li.Find("a").First()
		ch := Chapter{
			Number: i + 1,
			Title:  strings.Join(strings.Fields(a.Text()), " "),
			Posted: strings.Trim(strings.TrimSpace(li.Find("span.datetime").Text()), "()"),
		}

		if m := numberedTitle.FindStringSubmatch(ch.Title); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				ch.Number = n
			}
			ch.Title = m[2]
		}

		if href, ok := a.Attr("href"); ok {
			if u, err := base.Parse(href); err == nil {
				ch.URL = u.String()
			}
		}

		w.Chapters = append(w.Chapters, ch)
	})

	return w, nil
}

func (c *Client) fetchDOM(ctx context.Context, target string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := util.DoWithRetry(c.http, req, 3, 500*time.Millisecond)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrWorkNotFound
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}
