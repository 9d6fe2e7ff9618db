package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/niuk/ao3-uploader/internal/chapters"
	"github.com/niuk/ao3-uploader/internal/ui"
	"github.com/niuk/ao3-uploader/internal/util"

	"github.com/spf13/cobra"
)

var (
	flagOutput string
	flagZip    bool
)

func init() {
	splitCmd := &cobra.Command{
		Use:   "split <file>",
		Short: "Write each detected chapter to its own HTML file for review before uploading",
		Args:  cobra.ExactArgs(1),
		RunE:  runSplit,
	}

	splitCmd.Flags().StringVar(&flagOutput, "output", "", "output folder (default: <file name>_chapters)")
	splitCmd.Flags().BoolVar(&flagZip, "zip", false, "pack the chapter files into a single zip archive")

	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	logSvc := ui.NewLogger(flagDebug)

	path := args[0]
	chs, err := chapters.LoadFile(path)
	if err != nil {
		return err
	}

	out := flagOutput
	if out == "" {
		base := filepath.Base(path)
		out = strings.TrimSuffix(base, filepath.Ext(base)) + "_chapters"
	}
	if err := os.MkdirAll(out, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}

	files := make([]string, 0, len(chs))
	for i, ch := range chs {
		target := filepath.Join(out, ch.FileName(i))
		if err := util.WriteHTMLDocument(target, ch.Title, ch.Content); err != nil {
			util.RemoveIfEmpty(out)
			return err
		}
		files = append(files, target)
		logSvc.Debugf("wrote %s (%s)", target, util.Human(int64(len(ch.Content))))
	}

	if !flagZip {
		logSvc.Successf("Wrote %s to %s", util.Plural(len(files), "chapter"), out)
		return nil
	}

	archive := strings.TrimRight(out, string(filepath.Separator)) + ".zip"
	if err := util.CreateZip(files, archive); err != nil {
		return err
	}
	for _, f := range files {
		_ = os.Remove(f)
	}
	util.RemoveIfEmpty(out)

	logSvc.Successf("Wrote %s to %s", util.Plural(len(files), "chapter"), archive)
	return nil
}
