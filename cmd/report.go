package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"perpus/config"
	"perpus/domain"
	"perpus/report"
)

var reportKinds = []string{"dashboard", "summary", "monthly", "categories", "borrowings-by-category", "popular", "overdue", "recent"}

func newReportCommand(cfg func() config.Config) *cobra.Command {
	var (
		limit    int
		from, to string
	)
	cmd := &cobra.Command{
		Use:       "report <kind>",
		Short:     "Print a report as JSON",
		Long:      fmt.Sprintf("Print a report as JSON. Kinds: %v", reportKinds),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: reportKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cfg())
			if err != nil {
				return err
			}
			defer a.close()

			out, err := runReport(ctx, a, args[0], limit, from, to)
			if err != nil {
				return err
			}
			data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of rows for categories, popular and recent")
	cmd.Flags().StringVar(&from, "from", "", "first month for monthly, as 2024-01")
	cmd.Flags().StringVar(&to, "to", "", "last month for monthly, as 2024-06")
	return cmd
}

func runReport(ctx context.Context, a *app, kind string, limit int, from, to string) (interface{}, error) {
	orDefault := func(fallback int) int {
		if limit > 0 {
			return limit
		}
		return fallback
	}
	switch kind {
	case "dashboard":
		return a.reports.Dashboard(ctx)
	case "summary":
		return a.reports.Summary(ctx)
	case "monthly":
		end := a.clock.Today()
		if to != "" {
			t, err := time.Parse("2006-01", to)
			if err != nil {
				return nil, domain.Invalid("--to must look like 2024-01")
			}
			end = t
		}
		start := end.AddDate(0, -5, 1-end.Day())
		if from != "" {
			t, err := time.Parse("2006-01", from)
			if err != nil {
				return nil, domain.Invalid("--from must look like 2024-01")
			}
			start = t
		}
		return a.reports.Monthly(ctx, start, end)
	case "categories":
		return a.reports.Categories(ctx, orDefault(report.ReportCategoryLimit))
	case "borrowings-by-category":
		return a.reports.BorrowingsByCategory(ctx)
	case "popular":
		return a.reports.Popular(ctx, orDefault(report.ReportPopularLimit))
	case "overdue":
		return a.reports.Overdue(ctx)
	case "recent":
		return a.reports.Recent(ctx, orDefault(report.RecentLimit))
	default:
		return nil, fmt.Errorf("unknown report %q", kind)
	}
}
