package ui

import (
	"sync/atomic"

	"github.com/niuk/ao3-uploader/internal/uploader"
)

// Stats is read by the progress bar goroutine while the run updates it.
type Stats struct {
	Posted      atomic.Int64
	Unconfirmed atomic.Int64
	DryRun      atomic.Int64
	Skipped     atomic.Int64
}

func (s *Stats) Add(res uploader.Result) {
	switch res.Outcome {
	case uploader.Posted:
		s.Posted.Add(1)
	case uploader.Unconfirmed:
		s.Unconfirmed.Add(1)
	case uploader.DryRun:
		s.DryRun.Add(1)
	case uploader.Skipped:
		s.Skipped.Add(1)
	}
}
