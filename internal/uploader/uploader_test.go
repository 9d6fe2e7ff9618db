package uploader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/niuk/ao3-uploader/internal/chapters"
)

type fakeBrowser struct {
	calls    []string
	timeouts map[string]int
	source   string
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{timeouts: map[string]int{}}
}

func (f *fakeBrowser) Navigate(_ context.Context, url string) error {
	f.calls = append(f.calls, "navigate "+url)
	return nil
}

func (f *fakeBrowser) WaitReady(_ context.Context, sel string, _ time.Duration) error {
	f.calls = append(f.calls, "wait "+sel)
	if f.timeouts[sel] > 0 {
		f.timeouts[sel]--
		return fmt.Errorf("wait for %s: %w", sel, context.DeadlineExceeded)
	}
	return nil
}

func (f *fakeBrowser) Fill(_ context.Context, sel, value string) error {
	f.calls = append(f.calls, "fill "+sel+"="+value)
	return nil
}

func (f *fakeBrowser) Click(_ context.Context, sel string) error {
	f.calls = append(f.calls, "click "+sel)
	return nil
}

func (f *fakeBrowser) PageSource(context.Context) (string, error) {
	return f.source, nil
}

func (f *fakeBrowser) count(prefix string) int {
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

type recordLogger struct {
	lines []string
}

func (l *recordLogger) Infof(format string, args ...any) {
	l.lines = append(l.lines, "INFO "+fmt.Sprintf(format, args...))
}

func (l *recordLogger) Successf(format string, args ...any) {
	l.lines = append(l.lines, "OK "+fmt.Sprintf(format, args...))
}

func (l *recordLogger) Warnf(format string, args ...any) {
	l.lines = append(l.lines, "WARN "+fmt.Sprintf(format, args...))
}

func (l *recordLogger) contains(s string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

type harness struct {
	browser *fakeBrowser
	log     *recordLogger
	up      *Uploader
	pauses  []time.Duration
}

func newHarness(authenticated bool) *harness {
	h := &harness{browser: newFakeBrowser(), log: &recordLogger{}}
	h.up = New(h.browser, AO3(""), DefaultTimeouts(), h.log)
	h.up.sleep = func(_ context.Context, d time.Duration) error {
		h.pauses = append(h.pauses, d)
		return nil
	}
	if authenticated {
		h.up.phase = Authenticated
	}
	return h
}

func sampleChapters(n int) []chapters.Chapter {
	out := make([]chapters.Chapter, n)
	for i := range out {
		out[i] = chapters.Chapter{
			Title:   fmt.Sprintf("Chapter %c", 'A'+i),
			Content: fmt.Sprintf("<p>body %d</p>", i),
		}
	}
	return out
}

func TestUploadAll_StartIndexSkipsEarlierChapters(t *testing.T) {
	h := newHarness(true)

	var seen []Result
	h.up.OnResult(func(r Result) { seen = append(seen, r) })

	report, err := h.up.UploadAll(context.Background(), sampleChapters(4), Request{WorkID: "42", StartIndex: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []Outcome{Skipped, Skipped, Posted, Posted}
	if len(report.Results) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(report.Results))
	}
	for i, w := range want {
		if report.Results[i].Index != i || report.Results[i].Outcome != w {
			t.Errorf("result[%d]: expected index %d %s, got %+v", i, i, w, report.Results[i])
		}
	}
	if len(seen) != 4 {
		t.Errorf("expected OnResult for every chapter, got %d calls", len(seen))
	}

	if n := h.browser.count("navigate https://archiveofourown.org/works/42/chapters/new"); n != 2 {
		t.Errorf("expected 2 chapter form loads, got %d", n)
	}
	if h.browser.count("fill #chapter_title=Chapter A") != 0 || h.browser.count("fill #chapter_title=Chapter B") != 0 {
		t.Error("skipped chapters must not be filled")
	}

	var order []string
	for _, c := range h.browser.calls {
		if strings.HasPrefix(c, "fill #chapter_title=") {
			order = append(order, strings.TrimPrefix(c, "fill #chapter_title="))
		}
	}
	if strings.Join(order, ",") != "Chapter C,Chapter D" {
		t.Errorf("expected chapters C then D, got %v", order)
	}

	if !h.log.contains("Skipping chapter 1/4: Chapter A") || !h.log.contains("Skipping chapter 2/4: Chapter B") {
		t.Errorf("expected skip reports, got %v", h.log.lines)
	}

	if len(h.pauses) != 1 || h.pauses[0] != 3*time.Second {
		t.Errorf("expected one 3s pause between live submissions, got %v", h.pauses)
	}
	if h.up.Phase() != Done {
		t.Errorf("expected phase %s, got %s", Done, h.up.Phase())
	}
}

func TestUploadAll_DryRunFillsButNeverSubmits(t *testing.T) {
	h := newHarness(true)

	report, err := h.up.UploadAll(context.Background(), sampleChapters(3), Request{WorkID: "7", DryRun: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Count(DryRun) != 3 {
		t.Errorf("expected 3 dry-run results, got %+v", report.Results)
	}
	if n := h.browser.count("click "); n != 0 {
		t.Errorf("expected no clicks in dry run, got %d", n)
	}
	if n := h.browser.count("wait div.chapter"); n != 0 {
		t.Errorf("expected no confirmation waits in dry run, got %d", n)
	}
	if n := h.browser.count("fill #chapter_content="); n != 3 {
		t.Errorf("expected content filled for every chapter, got %d", n)
	}
	if len(h.pauses) != 0 {
		t.Errorf("expected no pauses in dry run, got %v", h.pauses)
	}
	if !h.log.contains("[DRY RUN] Would submit chapter: Chapter B") {
		t.Errorf("expected dry-run report, got %v", h.log.lines)
	}
}

func TestUploadAll_ConfirmTimeoutDoesNotStopRun(t *testing.T) {
	h := newHarness(true)
	h.browser.timeouts["div.chapter"] = 1

	report, err := h.up.UploadAll(context.Background(), sampleChapters(2), Request{WorkID: "42"})
	if err != nil {
		t.Fatalf("confirmation timeout must not abort: %v", err)
	}

	if report.Results[0].Outcome != Unconfirmed {
		t.Errorf("expected first chapter unconfirmed, got %s", report.Results[0].Outcome)
	}
	if report.Results[1].Outcome != Posted {
		t.Errorf("expected second chapter posted, got %s", report.Results[1].Outcome)
	}
	if !h.log.contains("Failed to confirm post for: Chapter A") {
		t.Errorf("expected confirmation warning, got %v", h.log.lines)
	}
	if h.browser.count("click input[name='commit'][value='Post']") != 2 {
		t.Errorf("expected both chapters submitted, calls: %v", h.browser.calls)
	}
}

func TestUploadAll_FormTimeoutAbortsRun(t *testing.T) {
	h := newHarness(true)
	h.browser.timeouts["#chapter_content"] = 1

	report, err := h.up.UploadAll(context.Background(), sampleChapters(3), Request{WorkID: "42"})
	if !errors.Is(err, ErrFormNotFound) {
		t.Fatalf("expected ErrFormNotFound, got %v", err)
	}
	if len(report.Results) != 0 {
		t.Errorf("expected no results, got %+v", report.Results)
	}
	if n := h.browser.count("navigate "); n != 1 {
		t.Errorf("expected the run to stop after the first form load, got %d navigations", n)
	}
	if h.up.Phase() != Aborted {
		t.Errorf("expected phase %s, got %s", Aborted, h.up.Phase())
	}
}

func TestUploadAll_RequiresAuthentication(t *testing.T) {
	h := newHarness(false)

	_, err := h.up.UploadAll(context.Background(), sampleChapters(1), Request{WorkID: "1"})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if len(h.browser.calls) != 0 {
		t.Errorf("expected no browser calls, got %v", h.browser.calls)
	}
}

func TestUploadAll_CancelledDuringPause(t *testing.T) {
	h := newHarness(true)
	h.up.sleep = func(ctx context.Context, _ time.Duration) error {
		return context.Canceled
	}

	report, err := h.up.UploadAll(context.Background(), sampleChapters(3), Request{WorkID: "1"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(report.Results) != 1 {
		t.Errorf("expected only the first chapter recorded, got %+v", report.Results)
	}
	if h.up.Phase() != Aborted {
		t.Errorf("expected phase %s, got %s", Aborted, h.up.Phase())
	}
}

func TestAuthenticate_Success(t *testing.T) {
	h := newHarness(false)

	if err := h.up.Authenticate(context.Background(), "alice", "s3cret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{
		"navigate https://archiveofourown.org/users/login",
		"wait #user_login",
		"fill #user_login=alice",
		"fill #user_password=s3cret",
		"click [name='commit']",
		"wait ul.user.navigation",
	}
	if strings.Join(h.browser.calls, "\n") != strings.Join(want, "\n") {
		t.Errorf("unexpected call sequence:\n%s", strings.Join(h.browser.calls, "\n"))
	}
	if len(h.pauses) != 1 || h.pauses[0] != 2*time.Second {
		t.Errorf("expected one settle delay, got %v", h.pauses)
	}
	if h.up.Phase() != Authenticated {
		t.Errorf("expected phase %s, got %s", Authenticated, h.up.Phase())
	}
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	h := newHarness(false)
	h.browser.timeouts["ul.user.navigation"] = 1
	h.browser.source = `<div class="flash error">The password or user name you entered doesn't match our records. Invalid Username or password</div>`

	err := h.up.Authenticate(context.Background(), "alice", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if h.up.Phase() != Aborted {
		t.Errorf("expected phase %s, got %s", Aborted, h.up.Phase())
	}
}

func TestAuthenticate_UnexpectedPage(t *testing.T) {
	h := newHarness(false)
	h.browser.timeouts["ul.user.navigation"] = 1
	h.browser.source = `<h1>Retry later</h1>`

	err := h.up.Authenticate(context.Background(), "alice", "s3cret")
	if !errors.Is(err, ErrUnexpectedPage) {
		t.Fatalf("expected ErrUnexpectedPage, got %v", err)
	}
}

func TestRun_InvalidRequestTouchesNothing(t *testing.T) {
	h := newHarness(false)

	_, err := h.up.Run(context.Background(), "alice", "s3cret", sampleChapters(2), Request{WorkID: " ", StartIndex: 0})
	if err == nil {
		t.Fatal("expected error for empty work id")
	}
	if len(h.browser.calls) != 0 {
		t.Errorf("expected no browser calls, got %v", h.browser.calls)
	}

	if err := (Request{WorkID: "1", StartIndex: -1}).Validate(); err == nil {
		t.Error("expected error for negative start index")
	}
}

func TestRun_LoginFailureSkipsChapters(t *testing.T) {
	h := newHarness(false)
	h.browser.timeouts["ul.user.navigation"] = 1

	_, err := h.up.Run(context.Background(), "alice", "s3cret", sampleChapters(2), Request{WorkID: "9"})
	if !errors.Is(err, ErrUnexpectedPage) {
		t.Fatalf("expected ErrUnexpectedPage, got %v", err)
	}
	if n := h.browser.count("navigate https://archiveofourown.org/works/"); n != 0 {
		t.Errorf("expected no chapter pages after failed login, got %d", n)
	}
}

func TestSite_URLs(t *testing.T) {
	s := AO3("https://test.archiveofourown.org/")

	if got := s.LoginURL(); got != "https://test.archiveofourown.org/users/login" {
		t.Errorf("unexpected login url %q", got)
	}
	if got := s.NewChapterURL("123 45"); got != "https://test.archiveofourown.org/works/123%2045/chapters/new" {
		t.Errorf("unexpected chapter url %q", got)
	}
}
