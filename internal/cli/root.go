package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/artci/feedback-api/internal/analytics"
)

type AnalyticsService interface {
	Summary(ctx context.Context, f analytics.Filter) (analytics.Summary, error)
	Criteria(ctx context.Context, f analytics.Filter) ([]analytics.CriterionStat, error)
	TimeSeries(ctx context.Context, f analytics.Filter, days int) ([]analytics.TimeSeriesPoint, error)
	Heatmap(ctx context.Context, f analytics.Filter) ([]analytics.HeatmapCell, error)
	CriteriaOverTime(ctx context.Context, f analytics.Filter, days int) ([]analytics.CriterionDayPoint, error)
	Dashboard(ctx context.Context, f analytics.Filter, days int) (analytics.Dashboard, error)
}

// Context is bound into every command's Run.
type Context struct {
	Ctx       context.Context
	Analytics AnalyticsService
	Out       io.Writer
	Indent    bool
}

func (c *Context) print(v any) error {
	enc := json.NewEncoder(c.Out)
	if c.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// CLI is the feedbackctl command tree.
type CLI struct {
	Env    string `help:"Dotenv file to load before reading the environment." default:".env" type:"path"`
	Indent bool   `help:"Indent JSON output." short:"i"`

	Summary          SummaryCmd          `cmd:"" help:"Totals by type and provider plus the rating histogram."`
	Criteria         CriteriaCmd         `cmd:"" help:"Count, mean and histogram per criterion label."`
	TimeSeries       TimeSeriesCmd       `cmd:"" name:"time-series" help:"Daily record counts over the last N days."`
	Heatmap          HeatmapCmd          `cmd:"" help:"Record counts by weekday and hour."`
	CriteriaOverTime CriteriaOverTimeCmd `cmd:"" name:"criteria-over-time" help:"Daily mean rating per criterion."`
	Dashboard        DashboardCmd        `cmd:"" help:"Every view computed in one pass."`
}

// FilterFlags narrow the records a view is computed over.
type FilterFlags struct {
	StartDate string `name:"start-date" help:"First day included (YYYY-MM-DD)."`
	EndDate   string `name:"end-date" help:"Last day included (YYYY-MM-DD)."`
	Type      string `help:"Only this feedback type."`
	Provider  string `help:"Only this provider."`
}

func (f FilterFlags) filter() analytics.Filter {
	return analytics.Filter{
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
		Type:      f.Type,
		Provider:  f.Provider,
	}
}

type WindowFlags struct {
	Days int `help:"Window length in days." default:"30"`
}
