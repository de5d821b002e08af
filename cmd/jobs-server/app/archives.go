package app

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/maniaxatwork/jobs-server/internal/app/storage"
	"github.com/maniaxatwork/jobs-server/internal/config"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/service"
)

func newArchivesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archives",
		Short: "Inspect job archives",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List archives with their number of jobs",
		RunE:  runArchivesList,
	}
	addConfigFlag(list)
	cmd.AddCommand(list)

	return cmd
}

// withJobsService opens the configured storage for the duration of fn
func withJobsService(ctx context.Context, cfg *config.Config, fn func(service.JobsService) error) error {
	factory, err := storage.NewStorageFactory(ctx, cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to create storage factory: %w", err)
	}
	defer factory.Cleanup()

	svc, err := factory.CreateJobsService(ctx)
	if err != nil {
		return fmt.Errorf("failed to create jobs service: %w", err)
	}
	return fn(svc)
}

func runArchivesList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withJobsService(ctx, cfg, func(svc service.JobsService) error {
		archives, err := svc.ListArchives(ctx)
		if err != nil {
			return fmt.Errorf("failed to list archives: %w", err)
		}

		counts := make(map[int64]int, len(archives))
		for _, a := range archives {
			list, err := svc.ListJobs(ctx, a.ID)
			if err != nil {
				return fmt.Errorf("failed to list jobs of archive %d: %w", a.ID, err)
			}
			counts[a.ID] = len(list)
		}

		return renderArchives(cmd.OutOrStdout(), archives, counts)
	})
}

func renderArchives(w io.Writer, archives []*jobs.Archive, counts map[int64]int) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Title", "Jump to", "Protected", "Groups", "Jobs")

	for _, a := range archives {
		jumpTo := "-"
		if a.JumpTo > 0 {
			jumpTo = strconv.FormatInt(a.JumpTo, 10)
		}
		protected := "no"
		if a.Protected {
			protected = "yes"
		}
		groups := make([]string, len(a.Groups))
		for i, g := range a.Groups {
			groups[i] = strconv.FormatInt(g, 10)
		}

		if err := table.Append([]string{
			strconv.FormatInt(a.ID, 10),
			a.Title,
			jumpTo,
			protected,
			strings.Join(groups, ","),
			strconv.Itoa(counts[a.ID]),
		}); err != nil {
			return fmt.Errorf("failed to add table row: %w", err)
		}
	}

	return table.Render()
}
