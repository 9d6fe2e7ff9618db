package cmd

import (
	"fmt"
	"time"

	"github.com/niuk/ao3-uploader/internal/config"
	"github.com/niuk/ao3-uploader/internal/remote"
	"github.com/niuk/ao3-uploader/internal/ui"
	"github.com/niuk/ao3-uploader/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagCookie     string
	flagCookieFile string
)

func init() {
	workCmd := &cobra.Command{
		Use:   "work <work-id>",
		Short: "List the chapters already posted to a work, to pick a --start index",
		Args:  cobra.ExactArgs(1),
		RunE:  runWork,
	}

	workCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "override the archive base URL")
	workCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	workCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	workCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")

	rootCmd.AddCommand(workCmd)
}

func runWork(cmd *cobra.Command, args []string) error {
	cfg, _, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		BaseURL:      flagBaseURL,
		UserAgent:    flagUserAgent,
		Cookie:       flagCookie,
		CookieFile:   flagCookieFile,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     30 * time.Second,
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		Cookie:      cfg.Cookie,
		CookieFile:  cfg.CookieFile,
		DebugLogger: logSvc,
	})
	if err != nil {
		return err
	}

	work, err := remote.NewClient(client, cfg.BaseURL).Chapters(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	title := work.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Printf("%s: %s posted\n\n", title, util.Plural(len(work.Chapters), "chapter"))

	for _, ch := range work.Chapters {
		fmt.Printf("%3d. %s", ch.Number, ch.Title)
		if ch.Posted != "" {
			fmt.Printf("  [%s]", ch.Posted)
		}
		fmt.Println()
		logSvc.Debugf("     %s", ch.URL)
	}

	return nil
}
