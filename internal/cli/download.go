package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cperrin88/cavern/internal/logger"
	"github.com/cperrin88/cavern/pkg/task"
	"github.com/cperrin88/cavern/pkg/tasks"
)

// NewDownloadCmd creates the download command.
func NewDownloadCmd() *cobra.Command {
	var uploadID int64

	cmd := &cobra.Command{
		Use:   "download CAVE",
		Short: "Download the archive of a cave",
		Long: `Download the selected upload of a cave into the archives directory.

Missing preconditions are resolved automatically: the upload list is fetched
and an upload selected, and you are logged in with the configured API key if
needed. The download is then retried.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, args[0], uploadID)
		},
	}

	cmd.Flags().Int64Var(&uploadID, "upload", 0, "Pin the upload to download")

	return cmd
}

func runDownload(cmd *cobra.Command, caveID string, uploadID int64) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if uploadID != 0 {
		if err := unpinUpload(cmd, a, caveID, uploadID); err != nil {
			return err
		}
	}

	opts := task.Options{
		CaveID:   caveID,
		UploadID: uploadID,
		Logger:   logger.ForTask(string(tasks.Download)),
	}
	if !quiet() && !jsonOutput(cfg) {
		opts.OnProgress = newProgressPrinter(cmd.ErrOrStderr()).Report
	}

	res, err := a.driver.Drive(cmd.Context(), tasks.Download, opts)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	return printResult(cmd.OutOrStdout(), cfg.Settings.OutputFormat, res)
}

// unpinUpload clears a stored selection that differs from the pinned upload
// so the download goes through find-upload again.
func unpinUpload(cmd *cobra.Command, a *app, caveID string, uploadID int64) error {
	c, err := a.caves.Find(cmd.Context(), caveID)
	if err != nil {
		return err
	}
	if c.UploadID == uploadID {
		return nil
	}
	c.UploadID = 0
	return a.caves.Save(cmd.Context(), c)
}

func quiet() bool {
	return Quiet != nil && *Quiet
}

type resultView struct {
	Task        string            `json:"task"`
	Value       any               `json:"value"`
	RunID       string            `json:"run_id"`
	Transitions []task.Transition `json:"transitions"`
}

func printResult(w io.Writer, format string, res task.Result) error {
	if format == string(logger.FormatJSON) {
		transitions := res.Transitions
		if transitions == nil {
			transitions = []task.Transition{}
		}
		return printJSON(w, resultView{
			Task:        string(res.Task),
			Value:       res.Value,
			RunID:       res.RunID,
			Transitions: transitions,
		})
	}
	for _, tr := range res.Transitions {
		_, _ = fmt.Fprintf(w, "-> %s (%s)\n", tr.To, tr.Reason)
	}
	_, _ = fmt.Fprintf(w, "%s: %v\n", res.Task, res.Value)
	return nil
}
