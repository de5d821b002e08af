package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/search"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/urls"
)

func newSitemapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Build the sitemap once",
		Long: `Build the sitemap of all published jobs once.

The sitemap is written to --output, falling back to search.sitemapPath of the
configuration. With neither set, or with --output -, it is printed to stdout.`,
		RunE: runSitemap,
	}
	addConfigFlag(cmd)
	cmd.Flags().StringP("output", "o", "", "Sitemap file to write, - for stdout")
	cmd.Flags().Int64("root", -1, "Restrict the sitemap to the page tree below this page (default search.rootPage)")
	return cmd
}

func runSitemap(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	root, err := cmd.Flags().GetInt64("root")
	if err != nil {
		return fmt.Errorf("failed to get root flag: %w", err)
	}
	if cfg.Search != nil {
		if output == "" {
			output = cfg.Search.SitemapPath
		}
		if root < 0 {
			root = cfg.Search.RootPage
		}
	}
	root = max(root, 0)

	ctx := cmd.Context()
	return withJobsService(ctx, cfg, func(svc service.JobsService) error {
		settings := urls.Settings{BaseURL: cfg.Site.BaseURL, UseAutoItem: cfg.Site.UseAutoItem, Suffix: cfg.Site.URLSuffix}
		links, err := search.NewIndexer(svc, settings).SearchablePages(ctx, root, true)
		if err != nil {
			return fmt.Errorf("failed to collect sitemap URLs: %w", err)
		}

		if output == "" || output == "-" {
			return search.RenderSitemap(cmd.OutOrStdout(), links)
		}
		if err := search.WriteSitemap(ctx, output, links); err != nil {
			return err
		}
		logger.Infow("Sitemap written", "path", output, "urls", len(links))
		return nil
	})
}
