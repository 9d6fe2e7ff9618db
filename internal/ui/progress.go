package ui

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type MPBProgressManager struct {
	p *mpb.Progress
}

func NewProgressManager() *MPBProgressManager {
	p := mpb.New(
		mpb.WithWidth(40),
		mpb.WithOutput(os.Stdout),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	return &MPBProgressManager{p: p}
}

// Writer prints lines above the running bars.
func (pm *MPBProgressManager) Writer() io.Writer {
	return pm.p
}

func (pm *MPBProgressManager) Close() {
	pm.p.Wait()
}

// Register adds a bar counting chapters, annotated with the run's outcome
// counters.
func (pm *MPBProgressManager) Register(prefix string, total int, stats *Stats) *ProgressHandle {
	h := &ProgressHandle{prefix: prefix, stats: stats}
	h.initBar(pm.p, total)
	return h
}

type ProgressHandle struct {
	prefix string
	stats  *Stats
	bar    *mpb.Bar

	start   time.Time
	elapsed atomic.Int64

	final atomic.Bool
}

func (h *ProgressHandle) initBar(p *mpb.Progress, total int) {
	h.start = time.Now()

	h.bar = p.New(
		int64(total),
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(h.prefix+"  "),
			decor.CountersNoUnit("%d/%d", decor.WCSyncWidth),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return fmt.Sprintf(" | posted %d | unconfirmed %d | dry %d | skipped %d",
					h.stats.Posted.Load(), h.stats.Unconfirmed.Load(),
					h.stats.DryRun.Load(), h.stats.Skipped.Load())
			}),

			decor.Any(func(_ decor.Statistics) string {
				if h.final.Load() {
					return fmt.Sprintf(" | %ds", h.elapsed.Load())
				}

				return fmt.Sprintf(" | %ds", int(time.Since(h.start).Seconds()))
			}),
		),
	)
}

func (h *ProgressHandle) Advance() {
	if h.final.Load() {
		return
	}
	h.bar.Increment()
}

// MarkDone completes the bar at its current count.
func (h *ProgressHandle) MarkDone() {
	if h.final.Swap(true) {
		return
	}

	h.elapsed.Store(int64(time.Since(h.start).Seconds()))
	h.bar.SetTotal(-1, true)
}

// Abort stops the bar where it is, leaving it on screen.
func (h *ProgressHandle) Abort() {
	if h.final.Swap(true) {
		return
	}

	h.elapsed.Store(int64(time.Since(h.start).Seconds()))
	h.bar.Abort(false)
}
