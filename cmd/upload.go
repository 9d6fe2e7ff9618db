package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/niuk/ao3-uploader/internal/browser"
	"github.com/niuk/ao3-uploader/internal/chapters"
	"github.com/niuk/ao3-uploader/internal/config"
	"github.com/niuk/ao3-uploader/internal/ui"
	"github.com/niuk/ao3-uploader/internal/uploader"
	"github.com/niuk/ao3-uploader/internal/util"

	"github.com/spf13/cobra"
)

var (
	// target
	flagWorkID string
	flagStart  int

	// runtime
	flagDryRun       bool
	flagHeadless     bool
	flagListChapters bool
	flagConfirm      bool

	// site/auth
	flagEnvFile   string
	flagBaseURL   string
	flagUserAgent string
)

func init() {
	uploadCmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Post every chapter of a manuscript to an existing AO3 work. Uses the defaults from the selected config, overwritten by CLI flags",
		Args:  cobra.ExactArgs(1),
		RunE:  runUpload,
	}

	uploadCmd.Flags().StringVar(&flagWorkID, "work-id", "", "AO3 work ID to add chapters to")
	uploadCmd.Flags().IntVar(&flagStart, "start", 0, "zero-based index of the first chapter to upload")

	uploadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "fill the chapter forms but never submit them")
	uploadCmd.Flags().BoolVar(&flagHeadless, "headless", false, "run the browser without a window")
	uploadCmd.Flags().BoolVar(&flagListChapters, "list-chapters", false, "print the detected chapters and exit")
	uploadCmd.Flags().BoolVar(&flagConfirm, "confirm", false, "ask for confirmation before opening the browser")

	uploadCmd.Flags().StringVar(&flagEnvFile, "env-file", "", "path to the .env file holding AO3_USERNAME and AO3_PASSWORD")
	uploadCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "override the archive base URL")
	uploadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override the browser User-Agent")

	_ = uploadCmd.MarkFlagRequired("work-id")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		Headless:     flagHeadless,
		BaseURL:      flagBaseURL,
		EnvFile:      flagEnvFile,
		UserAgent:    flagUserAgent,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	logSvc.Debugf("Config file: %s", usedPath)

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("file not found: %s", path)
	}

	chs, err := chapters.LoadFile(path)
	if err != nil {
		return err
	}
	fmt.Printf("Found %s in %s\n", util.Plural(len(chs), "chapter"), filepath.Base(path))

	if flagListChapters {
		printChapterList(chs)
		return nil
	}

	req := uploader.Request{WorkID: flagWorkID, StartIndex: flagStart, DryRun: flagDryRun}
	if err := req.Validate(); err != nil {
		return err
	}

	creds, err := config.LoadCredentials(cfg.EnvFile)
	if err != nil {
		return err
	}

	if cfg.Debug {
		fmt.Println("Full config:")
		cfg.Print()
		fmt.Println()
	}

	if flagConfirm {
		if err := confirmUpload(len(chs), req); err != nil {
			return err
		}
	}

	ctx, stop := util.InterruptContext(cmd.Context())
	defer stop()

	sess, err := browser.Start(ctx, browser.Options{
		Headless:  cfg.Headless,
		UserAgent: cfg.UserAgent,
		Debugf:    logSvc.Debugf,
	})
	if err != nil {
		return err
	}
	defer releaseBrowser(ctx, sess, cfg)

	pm := ui.NewProgressManager()
	stats := &ui.Stats{}
	bar := pm.Register("Work "+req.WorkID, len(chs), stats)
	logSvc.SetOutput(pm.Writer())

	up := uploader.New(sess, uploader.AO3(cfg.BaseURL), cfg.Timeouts(), logSvc)
	up.OnResult(func(r uploader.Result) {
		stats.Add(r)
		bar.Advance()
	})

	report, runErr := up.Run(ctx, creds.Username, creds.Password, chs, req)
	if runErr != nil {
		bar.Abort()
	} else {
		bar.MarkDone()
	}
	pm.Close()
	logSvc.SetOutput(os.Stdout)

	printSummary(logSvc, report, len(chs), req)

	if runErr != nil && ctx.Err() != nil {
		return fmt.Errorf("interrupted: %w", runErr)
	}
	return runErr
}

func printChapterList(chs []chapters.Chapter) {
	for i, ch := range chs {
		fmt.Printf("%3d. %s (%s, %s)\n     %s\n",
			i, ch.Title, util.Human(int64(len(ch.Content))),
			util.Plural(util.Words(ch.Content), "word"), ch.Preview(60))
	}
}

func confirmUpload(total int, req uploader.Request) error {
	pending := max(0, total-req.StartIndex)
	mode := "Upload"
	if req.DryRun {
		mode = "Dry-run"
	}

	p := promptui.Prompt{
		Label:     fmt.Sprintf("%s %s to work %s", mode, util.Plural(pending, "chapter"), req.WorkID),
		IsConfirm: true,
	}
	if _, err := p.Run(); err != nil {
		return errors.New("upload cancelled")
	}

	return nil
}

// releaseBrowser closes the session. A visible browser is left open for
// inspection until the operator presses Enter when keep_open is set.
func releaseBrowser(ctx context.Context, sess *browser.Session, cfg *config.Config) {
	if !cfg.Headless && cfg.KeepOpen && ctx.Err() == nil {
		fmt.Print("\nPress Enter to close the browser...")
		_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
	}
	sess.Close()
}

func printSummary(logSvc *ui.Logger, report uploader.Report, total int, req uploader.Request) {
	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  Chapters in file: %d\n", total)

	if n := report.Count(uploader.Skipped); n > 0 {
		fmt.Printf("  Skipped (before --start %d): %d\n", req.StartIndex, n)
	}
	if req.DryRun {
		fmt.Printf("  Dry run, not submitted: %d\n", report.Count(uploader.DryRun))
		return
	}

	logSvc.Successf("  Posted: %d", report.Count(uploader.Posted))
	if n := report.Count(uploader.Unconfirmed); n > 0 {
		logSvc.Warnf("  Unconfirmed: %d (check the work page)", n)
		for _, r := range report.Results {
			if r.Outcome == uploader.Unconfirmed {
				logSvc.Warnf("    %d. %s", r.Index, r.Title)
			}
		}
	}
}
