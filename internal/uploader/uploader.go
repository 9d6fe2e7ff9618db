package uploader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/niuk/ao3-uploader/internal/chapters"
)

var (
	ErrInvalidCredentials = errors.New("login failed: invalid credentials")
	ErrUnexpectedPage     = errors.New("login failed: unexpected page state")
	ErrFormNotFound       = errors.New("chapter form not found")
	ErrNotAuthenticated   = errors.New("not authenticated")
)

// Browser is the page surface the uploader drives. WaitReady must report an
// elapsed timeout as an error wrapping context.DeadlineExceeded.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	WaitReady(ctx context.Context, sel string, timeout time.Duration) error
	Fill(ctx context.Context, sel, value string) error
	Click(ctx context.Context, sel string) error
	PageSource(ctx context.Context) (string, error)
}

type Logger interface {
	Infof(format string, args ...any)
	Successf(format string, args ...any)
	Warnf(format string, args ...any)
}

type Phase string

const (
	Unauthenticated Phase = "unauthenticated"
	Authenticated   Phase = "authenticated"
	Done            Phase = "done"
	Aborted         Phase = "aborted"
)

type Outcome int

const (
	Skipped Outcome = iota
	DryRun
	Posted
	Unconfirmed
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case DryRun:
		return "dry-run"
	case Posted:
		return "posted"
	case Unconfirmed:
		return "unconfirmed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Request is constant for the duration of a run.
type Request struct {
	WorkID     string
	StartIndex int
	DryRun     bool
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.WorkID) == "" {
		return errors.New("work id is required")
	}
	if r.StartIndex < 0 {
		return fmt.Errorf("start index must be >= 0, got %d", r.StartIndex)
	}
	return nil
}

type Result struct {
	Index   int
	Title   string
	Outcome Outcome
}

type Report struct {
	Results []Result
}

func (r Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

type Uploader struct {
	browser  Browser
	site     Site
	timeouts Timeouts
	log      Logger

	phase    Phase
	onResult func(Result)
	sleep    func(ctx context.Context, d time.Duration) error
}

func New(b Browser, site Site, timeouts Timeouts, log Logger) *Uploader {
	return &Uploader{
		browser:  b,
		site:     site,
		timeouts: timeouts,
		log:      log,
		phase:    Unauthenticated,
		sleep:    sleepCtx,
	}
}

// OnResult registers fn to be called once per chapter, in run order.
func (u *Uploader) OnResult(fn func(Result)) {
	u.onResult = fn
}

func (u *Uploader) Phase() Phase {
	return u.phase
}

// Run authenticates and then uploads every chapter selected by req.
func (u *Uploader) Run(ctx context.Context, username, password string, chs []chapters.Chapter, req Request) (Report, error) {
	if err := req.Validate(); err != nil {
		return Report{}, err
	}
	if err := u.Authenticate(ctx, username, password); err != nil {
		return Report{}, err
	}
	return u.UploadAll(ctx, chs, req)
}

// Authenticate logs in once for the whole run. Both failure modes are
// fatal; there is no retry.
func (u *Uploader) Authenticate(ctx context.Context, username, password string) error {
	u.log.Infof("Navigating to login page...")

	if err := u.browser.Navigate(ctx, u.site.LoginURL()); err != nil {
		return u.abort(err)
	}
	if err := u.sleep(ctx, u.timeouts.Settle); err != nil {
		return u.abort(err)
	}
	if err := u.browser.WaitReady(ctx, u.site.UsernameField, u.timeouts.Login); err != nil {
		return u.abort(fmt.Errorf("login form: %w", err))
	}
	if err := u.browser.Fill(ctx, u.site.UsernameField, username); err != nil {
		return u.abort(err)
	}
	if err := u.browser.Fill(ctx, u.site.PasswordField, password); err != nil {
		return u.abort(err)
	}
	if err := u.browser.Click(ctx, u.site.LoginSubmit); err != nil {
		return u.abort(err)
	}

	err := u.browser.WaitReady(ctx, u.site.LoggedInMarker, u.timeouts.Login)
	if err == nil {
		u.phase = Authenticated
		u.log.Successf("Login successful!")
		return nil
	}
	if !timedOut(ctx, err) {
		return u.abort(fmt.Errorf("login: %w", err))
	}

	src, serr := u.browser.PageSource(ctx)
	if serr == nil && strings.Contains(src, u.site.InvalidLoginPhrase) {
		return u.abort(ErrInvalidCredentials)
	}
	return u.abort(ErrUnexpectedPage)
}

// OpenChapterForm loads the new-chapter page of a work. A missing form is
// fatal for the run.
func (u *Uploader) OpenChapterForm(ctx context.Context, workID string) error {
	target := u.site.NewChapterURL(workID)
	u.log.Infof("Navigating to add chapter: %s", target)

	if err := u.browser.Navigate(ctx, target); err != nil {
		return err
	}

	err := u.browser.WaitReady(ctx, u.site.ContentField, u.timeouts.Form)
	if err != nil && timedOut(ctx, err) {
		return fmt.Errorf("%w: %s did not appear on %s", ErrFormNotFound, u.site.ContentField, target)
	}
	return err
}

func (u *Uploader) FillChapter(ctx context.Context, ch chapters.Chapter) error {
	if err := u.browser.Fill(ctx, u.site.TitleField, ch.Title); err != nil {
		return err
	}
	return u.browser.Fill(ctx, u.site.ContentField, ch.Content)
}

// SubmitChapter posts the filled form. A missing confirmation marker is
// reported and returned as Unconfirmed with a nil error; the run goes on.
func (u *Uploader) SubmitChapter(ctx context.Context, title string, dryRun bool) (Outcome, error) {
	if dryRun {
		u.log.Infof("  [DRY RUN] Would submit chapter: %s", title)
		return DryRun, nil
	}

	if err := u.browser.Click(ctx, u.site.PostButton); err != nil {
		return Unconfirmed, err
	}

	err := u.browser.WaitReady(ctx, u.site.ConfirmMarker, u.timeouts.Confirm)
	switch {
	case err == nil:
		u.log.Successf("  ✓ Posted: %s", title)
		return Posted, nil
	case timedOut(ctx, err):
		u.log.Warnf("  ✗ Failed to confirm post for: %s", title)
		return Unconfirmed, nil
	}
	return Unconfirmed, err
}

// UploadAll walks chs in order. Indices below req.StartIndex are reported
// as skipped. Live submissions are spaced by the pause timeout; nothing
// waits after the last chapter or in dry runs.
func (u *Uploader) UploadAll(ctx context.Context, chs []chapters.Chapter, req Request) (Report, error) {
	var report Report

	if err := req.Validate(); err != nil {
		return report, err
	}
	if u.phase != Authenticated && u.phase != Done {
		return report, ErrNotAuthenticated
	}

	total := len(chs)
	for i, ch := range chs {
		if i < req.StartIndex {
			u.log.Infof("Skipping chapter %d/%d: %s", i+1, total, ch.Title)
			u.record(&report, Result{Index: i, Title: ch.Title, Outcome: Skipped})
			continue
		}

		u.log.Infof("Uploading chapter %d/%d: %s", i+1, total, ch.Title)

		outcome, err := u.uploadChapter(ctx, req.WorkID, ch, req.DryRun)
		if err != nil {
			return report, u.abort(fmt.Errorf("chapter %d/%d %q: %w", i+1, total, ch.Title, err))
		}
		u.record(&report, Result{Index: i, Title: ch.Title, Outcome: outcome})

		if !req.DryRun && i < total-1 {
			if err := u.sleep(ctx, u.timeouts.Pause); err != nil {
				return report, u.abort(err)
			}
		}
	}

	u.phase = Done
	return report, nil
}

func (u *Uploader) uploadChapter(ctx context.Context, workID string, ch chapters.Chapter, dryRun bool) (Outcome, error) {
	if err := u.OpenChapterForm(ctx, workID); err != nil {
		return Unconfirmed, err
	}
	if err := u.FillChapter(ctx, ch); err != nil {
		return Unconfirmed, err
	}
	return u.SubmitChapter(ctx, ch.Title, dryRun)
}

func (u *Uploader) record(report *Report, res Result) {
	report.Results = append(report.Results, res)
	if u.onResult != nil {
		u.onResult(res)
	}
}

func (u *Uploader) abort(err error) error {
	u.phase = Aborted
	return err
}

// timedOut separates an elapsed wait from a cancelled run.
func timedOut(ctx context.Context, err error) bool {
	return ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
