package chapters

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/taylorskalyo/goreader/epub"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// SupportedExtensions lists the document formats LoadFile understands.
var SupportedExtensions = []string{".html", ".htm", ".xhtml", ".md", ".markdown", ".epub"}

// LoadFile opens a document export and segments it into chapters.
// Markdown is rendered to HTML first; EPUB spine documents are joined in
// reading order.
func LoadFile(path string) ([]Chapter, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".html", ".htm", ".xhtml":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = f.Close()
		}()

		return Parse(f)

	case ".md", ".markdown":
		return loadMarkdown(path)

	case ".epub":
		return loadEPUB(path)
	}

	return nil, fmt.Errorf("unsupported file extension: %q (want one of %s)", ext, strings.Join(SupportedExtensions, ", "))
}

func loadMarkdown(path string) ([]Chapter, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithRendererOptions(gmhtml.WithUnsafe()))

	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	return Parse(&buf)
}

func loadEPUB(path string) ([]Chapter, error) {
	rc, err := epub.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub")
	}

	var body strings.Builder
	body.WriteString("<html><body>")

	for _, ref := range rc.Rootfiles[0].Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}

		r, err := ref.Item.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", ref.Item.HREF, err)
		}

		doc, err := goquery.NewDocumentFromReader(r)
		_ = r.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", ref.Item.HREF, err)
		}

		inner, err := doc.Find("body").First().Html()
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", ref.Item.HREF, err)
		}

		body.WriteString(inner)
		body.WriteString("\n")
	}

	body.WriteString("</body></html>")

	return Parse(strings.NewReader(body.String()))
}
