package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cperrin88/cavern/internal/logger"
	"github.com/cperrin88/cavern/pkg/task"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	var uploadID int64

	cmd := &cobra.Command{
		Use:   "run TASK [CAVE]",
		Short: "Run a single task",
		Long: `Run one task through the engine, following its transitions once.

Unlike download, the task is not re-run after a transition completes;
the result names the task the run completed in.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			caveID := ""
			if len(args) > 1 {
				caveID = args[1]
			}
			return runTask(cmd, task.Name(args[0]), caveID, uploadID)
		},
	}

	cmd.Flags().Int64Var(&uploadID, "upload", 0, "Pin the upload to select")

	return cmd
}

func runTask(cmd *cobra.Command, name task.Name, caveID string, uploadID int64) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	opts := task.Options{
		CaveID:   caveID,
		UploadID: uploadID,
		Logger:   logger.ForTask(string(name)),
	}
	if !quiet() && !jsonOutput(cfg) {
		opts.OnProgress = newProgressPrinter(cmd.ErrOrStderr()).Report
	}

	res, err := a.engine.Run(cmd.Context(), name, opts)
	if err != nil {
		return fmt.Errorf("task %s failed: %w", name, err)
	}
	return printResult(cmd.OutOrStdout(), cfg.Settings.OutputFormat, res)
}

// NewTasksCmd creates the tasks command listing the registered tasks.
func NewTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List available tasks",
		Args:  cobra.NoArgs,
		RunE:  runTasks,
	}
}

type taskView struct {
	Name        string   `json:"name"`
	Targets     []string `json:"targets"`
	Description string   `json:"description"`
}

func runTasks(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	specs := a.engine.Registry().Specs()
	views := make([]taskView, 0, len(specs))
	for _, spec := range specs {
		targets := make([]string, 0, len(spec.Targets))
		for _, t := range spec.Targets {
			targets = append(targets, string(t))
		}
		views = append(views, taskView{Name: string(spec.Name), Targets: targets, Description: spec.Description})
	}

	if jsonOutput(cfg) {
		return printJSON(cmd.OutOrStdout(), views)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "TASK\tTARGETS\tDESCRIPTION")
	for _, v := range views {
		_, _ = fmt.Fprintf(tw, "%s\t%v\t%s\n", v.Name, v.Targets, v.Description)
	}
	return tw.Flush()
}
