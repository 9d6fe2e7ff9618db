package chapters

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const headingSel = "h1, h2"

// Parse reads an HTML document and segments it into chapters.
func Parse(r io.Reader) ([]Chapter, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return Segment(doc)
}

// Segment splits doc on h1/h2 headings in document order. Each chapter's
// content is the markup of the heading's following siblings up to the next
// h1/h2, descending into a sibling that holds one. A document without
// headings becomes a single "Chapter 1" holding the whole body.
func Segment(doc *goquery.Document) ([]Chapter, error) {
	headings := doc.Find(headingSel)

	if headings.Length() == 0 {
		body := doc.Find("body").First()
		if body.Length() == 0 {
			body = doc.Selection
		}

		content, err := body.Html()
		if err != nil {
			return nil, fmt.Errorf("render body: %w", err)
		}

		return []Chapter{{Title: "Chapter 1", Content: content}}, nil
	}

	out := make([]Chapter, 0, headings.Length())
	var renderErr error

	headings.EachWithBreak(func(i int, h *goquery.Selection) bool {
		title := strings.TrimSpace(h.Text())
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}

		content, err := siblingContent(h.Get(0))
		if err != nil {
			renderErr = fmt.Errorf("render chapter %q: %w", title, err)
			return false
		}

		out = append(out, Chapter{Title: title, Content: content})
		return true
	})

	if renderErr != nil {
		return nil, renderErr
	}

	return out, nil
}

func siblingContent(heading *html.Node) (string, error) {
	parts, stopped, err := collectUntilHeading(heading.NextSibling, nil)

	// A heading nested in a container keeps its chapter open past the
	// container's end. An enclosing heading owns what follows it.
	for p := heading.Parent; err == nil && !stopped && !isRoot(p) && !isHeading(p); p = p.Parent {
		parts, stopped, err = collectUntilHeading(p.NextSibling, parts)
	}
	if err != nil {
		return "", err
	}

	return strings.Join(parts, "\n"), nil
}

// collectUntilHeading renders n and its following siblings until an h1/h2.
// A sibling holding a nested heading contributes its children up to that
// heading, then ends the chapter.
func collectUntilHeading(n *html.Node, parts []string) ([]string, bool, error) {
	for ; n != nil; n = n.NextSibling {
		switch n.Type {
		case html.ElementNode:
			if isHeading(n) {
				return parts, true, nil
			}
			if containsHeading(n) {
				return collectUntilHeading(n.FirstChild, parts)
			}
		case html.TextNode:
			if strings.TrimSpace(n.Data) == "" {
				continue
			}
		default:
			continue
		}

		var b strings.Builder
		if err := html.Render(&b, n); err != nil {
			return nil, false, err
		}
		parts = append(parts, b.String())
	}

	return parts, false, nil
}

func isRoot(n *html.Node) bool {
	return n == nil || n.Type == html.DocumentNode ||
		(n.Type == html.ElementNode && (n.Data == "body" || n.Data == "html"))
}

func isHeading(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "h1" || n.Data == "h2")
}

func containsHeading(n *html.Node) bool {
	return goquery.NewDocumentFromNode(n).Find(headingSel).Length() > 0
}
