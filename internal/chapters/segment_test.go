package chapters

import (
	"strings"
	"testing"
)

func parse(t *testing.T, doc string) []Chapter {
	t.Helper()
	chs, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return chs
}

func TestSegment_NoHeadings(t *testing.T) {
	chs := parse(t, `<html><body><p>First paragraph.</p><div>Second <em>block</em>.</div></body></html>`)

	if len(chs) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(chs))
	}
	if chs[0].Title != "Chapter 1" {
		t.Errorf("expected title %q, got %q", "Chapter 1", chs[0].Title)
	}
	want := `<p>First paragraph.</p><div>Second <em>block</em>.</div>`
	if chs[0].Content != want {
		t.Errorf("expected content %q, got %q", want, chs[0].Content)
	}
}

func TestSegment_HeadingsInDocumentOrder(t *testing.T) {
	chs := parse(t, `<body>
<h1>  Prologue </h1><p>p</p>
<h2>The
   Storm</h2><p>s</p>
<h3>Not a chapter</h3><p>still storm</p>
<h1>Epilogue</h1><p>e</p>
</body>`)

	want := []string{"Prologue", "The Storm", "Epilogue"}
	if len(chs) != len(want) {
		t.Fatalf("expected %d chapters, got %d", len(want), len(chs))
	}
	for i, w := range want {
		if chs[i].Title != w {
			t.Errorf("chapter[%d]: expected title %q, got %q", i, w, chs[i].Title)
		}
	}

	if !strings.Contains(chs[1].Content, "Not a chapter") || !strings.Contains(chs[1].Content, "still storm") {
		t.Errorf("expected h3 section inside chapter 2, got %q", chs[1].Content)
	}
}

func TestSegment_ContentStopsAtNextHeading(t *testing.T) {
	chs := parse(t, `<h1>A</h1><p>x</p><h2>B</h2><p>y</p>`)

	if len(chs) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chs))
	}
	if chs[0].Title != "A" || chs[1].Title != "B" {
		t.Fatalf("unexpected titles %q, %q", chs[0].Title, chs[1].Title)
	}
	if !strings.Contains(chs[0].Content, "x") || strings.Contains(chs[0].Content, "y") {
		t.Errorf("chapter A content %q should contain x and not y", chs[0].Content)
	}
	if !strings.Contains(chs[1].Content, "y") || strings.Contains(chs[1].Content, "x") {
		t.Errorf("chapter B content %q should contain y and not x", chs[1].Content)
	}
}

func TestSegment_EmptyChapter(t *testing.T) {
	chs := parse(t, `<h1>Part One</h1><h2>Chapter 1</h2><p>body</p>`)

	if len(chs) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chs))
	}
	if chs[0].Content != "" {
		t.Errorf("expected empty content, got %q", chs[0].Content)
	}
	if chs[1].Content != "<p>body</p>" {
		t.Errorf("expected %q, got %q", "<p>body</p>", chs[1].Content)
	}
}

func TestSegment_SiblingsJoinedWithNewline(t *testing.T) {
	chs := parse(t, `<h1>A</h1>
<p>one</p>
<!-- note -->
loose text
<p>two</p>`)

	want := "<p>one</p>\n\nloose text\n\n<p>two</p>"
	if chs[0].Content != want {
		t.Errorf("expected %q, got %q", want, chs[0].Content)
	}
}

func TestSegment_StopsAtContainerHoldingHeading(t *testing.T) {
	chs := parse(t, `<h1>A</h1><p>x</p><section><h2>B</h2><p>y</p></section>`)

	if len(chs) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chs))
	}
	if chs[0].Content != "<p>x</p>" {
		t.Errorf("expected chapter A content %q, got %q", "<p>x</p>", chs[0].Content)
	}
	if chs[1].Content != "<p>y</p>" {
		t.Errorf("expected chapter B content %q, got %q", "<p>y</p>", chs[1].Content)
	}
}

func TestSegment_KeepsTextBeforeNestedHeading(t *testing.T) {
	chs := parse(t, `<h1>A</h1><div><p>intro</p><h2>B</h2><p>y</p></div>`)

	if len(chs) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chs))
	}
	if chs[0].Content != "<p>intro</p>" {
		t.Errorf("expected chapter A content %q, got %q", "<p>intro</p>", chs[0].Content)
	}
	if chs[1].Content != "<p>y</p>" {
		t.Errorf("expected chapter B content %q, got %q", "<p>y</p>", chs[1].Content)
	}
}

func TestSegment_KeepsTextBeforeDeeplyNestedHeading(t *testing.T) {
	chs := parse(t, `<h1>A</h1><p>x</p><div><section><p>deep</p><h2>B</h2><p>y</p></section><p>after</p></div>`)

	if len(chs) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(chs))
	}
	if want := "<p>x</p>\n<p>deep</p>"; chs[0].Content != want {
		t.Errorf("expected chapter A content %q, got %q", want, chs[0].Content)
	}
	if want := "<p>y</p>\n<p>after</p>"; chs[1].Content != want {
		t.Errorf("expected chapter B content %q, got %q", want, chs[1].Content)
	}
}

func TestSegment_HeadingInsideHeadingDoesNotDuplicate(t *testing.T) {
	chs := parse(t, `<h1>A <span><h2>B</h2></span></h1><p>tail</p>`)

	n := 0
	for _, ch := range chs {
		n += strings.Count(ch.Content, "tail")
	}
	if n != 1 {
		t.Errorf("expected %q in exactly one chapter, got %d: %+v", "tail", n, chs)
	}
}

func TestSegment_TitleTrimsOnlyTheEnds(t *testing.T) {
	chs := parse(t, "<h1>  Chapter  \n Two  </h1><p>a</p>")

	if want := "Chapter  \n Two"; chs[0].Title != want {
		t.Errorf("expected title %q, got %q", want, chs[0].Title)
	}
}

func TestSegment_EmptyHeadingGetsPositionalTitle(t *testing.T) {
	chs := parse(t, `<h1>First</h1><p>a</p><h2>   </h2><p>b</p>`)

	if chs[1].Title != "Chapter 2" {
		t.Errorf("expected fallback title %q, got %q", "Chapter 2", chs[1].Title)
	}
}

func TestSegment_MalformedMarkup(t *testing.T) {
	chs := parse(t, `<h1>A<p>unclosed <b>bold<h2>B</h1>text</div></span><p>tail`)

	if len(chs) == 0 {
		t.Fatal("expected at least one chapter from malformed markup")
	}
	for i, ch := range chs {
		if ch.Title == "" {
			t.Errorf("chapter[%d] has empty title", i)
		}
	}
}
