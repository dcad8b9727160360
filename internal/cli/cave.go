package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cperrin88/cavern/internal/logger"
	"github.com/cperrin88/cavern/pkg/archive"
	"github.com/cperrin88/cavern/pkg/model"
)

// NewCaveCmd creates the cave command with subcommands.
func NewCaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cave",
		Short: "Manage caves",
		Long:  "Add, list, show, remove and inspect the content records cavern downloads for",
	}

	cmd.AddCommand(
		newCaveAddCmd(),
		newCaveListCmd(),
		newCaveShowCmd(),
		newCaveRemoveCmd(),
		newCaveInspectCmd(),
	)

	return cmd
}

func newCaveAddCmd() *cobra.Command {
	var (
		id       string
		title    string
		keyID    int64
		uploadID int64
	)

	cmd := &cobra.Command{
		Use:   "add GAME_ID",
		Short: "Add a cave for a game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var gameID int64
			if _, err := fmt.Sscan(args[0], &gameID); err != nil || gameID <= 0 {
				return fmt.Errorf("invalid game id %q", args[0])
			}
			c := &model.Cave{
				ID:       id,
				GameID:   gameID,
				Title:    title,
				UploadID: uploadID,
			}
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
			if keyID != 0 {
				c.Key = &model.DownloadKey{ID: keyID, GameID: gameID}
			}
			return runCaveAdd(cmd, c)
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Cave id (default: random UUID)")
	cmd.Flags().StringVar(&title, "title", "", "Display title")
	cmd.Flags().Int64Var(&keyID, "key", 0, "Download key id granting access to the game")
	cmd.Flags().Int64Var(&uploadID, "upload", 0, "Preselect an upload id")

	return cmd
}

func runCaveAdd(cmd *cobra.Command, c *model.Cave) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	caves, err := openCaves(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = caves.Close() }()

	if err := caves.Save(cmd.Context(), c); err != nil {
		return fmt.Errorf("failed to save cave: %w", err)
	}
	logger.Success("Cave added", logger.Fields{"cave_id": c.ID, "game_id": c.GameID})
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), c.ID)
	return nil
}

func newCaveListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List caves",
		Args:  cobra.NoArgs,
		RunE:  runCaveList,
	}
}

func runCaveList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	caves, err := openCaves(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = caves.Close() }()

	list, err := caves.List(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput(cfg) {
		if list == nil {
			list = []*model.Cave{}
		}
		return printJSON(cmd.OutOrStdout(), list)
	}
	if len(list) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No caves")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tGAME\tTITLE\tUPLOAD\tUPDATED")
	for _, c := range list {
		upload := "-"
		if u, ok := c.SelectedUpload(); ok {
			upload = u.Name()
		} else if c.UploadID != 0 {
			upload = fmt.Sprint(c.UploadID)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			c.ID, c.GameID, c.Title, upload, c.UpdatedAt.Format(time.DateTime))
	}
	return tw.Flush()
}

func newCaveShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show CAVE",
		Short: "Show a cave and its upload cache",
		Args:  cobra.ExactArgs(1),
		RunE:  runCaveShow,
	}
}

func runCaveShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	caves, err := openCaves(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = caves.Close() }()

	c, err := caves.Find(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if jsonOutput(cfg) {
		return printJSON(cmd.OutOrStdout(), c)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "ID:       %s\n", c.ID)
	_, _ = fmt.Fprintf(out, "Game:     %d\n", c.GameID)
	if c.Title != "" {
		_, _ = fmt.Fprintf(out, "Title:    %s\n", c.Title)
	}
	if c.Key != nil {
		_, _ = fmt.Fprintf(out, "Key:      %d\n", c.Key.ID)
	}
	_, _ = fmt.Fprintf(out, "Upload:   %d\n", c.UploadID)
	if u, ok := c.SelectedUpload(); ok {
		_, _ = fmt.Fprintf(out, "Archive:  %s\n", caves.ArchivePath(u))
	}

	if c.Uploads == nil {
		_, _ = fmt.Fprintln(out, "Uploads:  not fetched")
		return nil
	}
	_, _ = fmt.Fprintf(out, "Uploads:  %d cached\n", len(c.Uploads))

	ids := make([]int64, 0, len(c.Uploads))
	for id := range c.Uploads {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  \tID\tNAME\tVERSION\tPLATFORMS\tSIZE")
	for _, id := range ids {
		u := c.Uploads[id]
		if u == nil {
			continue
		}
		marker := " "
		if id == c.UploadID {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "  %s\t%d\t%s\t%s\t%s\t%s\n",
			marker, u.ID, u.Name(), u.Version, strings.Join(u.Platforms, ","), formatBytes(u.Size))
	}
	return tw.Flush()
}

func newCaveRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm CAVE",
		Aliases: []string{"remove"},
		Short:   "Remove a cave record",
		Long:    "Remove a cave record. Downloaded archives are left in place.",
		Args:    cobra.ExactArgs(1),
		RunE:    runCaveRemove,
	}
}

func runCaveRemove(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	caves, err := openCaves(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = caves.Close() }()

	if err := caves.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	logger.Success("Cave removed", logger.Fields{"cave_id": args[0]})
	return nil
}

func newCaveInspectCmd() *cobra.Command {
	var showEntries bool

	cmd := &cobra.Command{
		Use:   "inspect CAVE",
		Short: "Inspect the downloaded archive of a cave",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCaveInspect(cmd, args[0], showEntries)
		},
	}

	cmd.Flags().BoolVar(&showEntries, "entries", false, "List every archive entry")

	return cmd
}

func runCaveInspect(cmd *cobra.Command, caveID string, showEntries bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	caves, err := openCaves(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = caves.Close() }()

	c, err := caves.Find(cmd.Context(), caveID)
	if err != nil {
		return err
	}
	u, ok := c.SelectedUpload()
	if !ok {
		return fmt.Errorf("cave %s has no selected upload, run download first", caveID)
	}

	path := caves.ArchivePath(u)
	summary, err := archive.Inspect(cmd.Context(), path)
	if err != nil {
		return err
	}
	if jsonOutput(cfg) {
		if !showEntries {
			summary.Entries = nil
		}
		return printJSON(cmd.OutOrStdout(), summary)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Archive:  %s\n", path)
	_, _ = fmt.Fprintf(out, "Format:   %s\n", summary.Format)
	_, _ = fmt.Fprintf(out, "Contents: %d files, %d directories, %s\n", summary.Files, summary.Dirs, formatBytes(summary.Size))
	if !showEntries {
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, TabWidth, ' ', 0)
	for _, e := range summary.Entries {
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%s\n", e.Mode, formatBytes(e.Size), e.Path)
	}
	return tw.Flush()
}
