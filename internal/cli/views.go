package cli

type SummaryCmd struct {
	FilterFlags `embed:""`
}

func (c *SummaryCmd) Run(ctx *Context) error {
	out, err := ctx.Analytics.Summary(ctx.Ctx, c.filter())
	if err != nil {
		return err
	}
	return ctx.print(out)
}

type CriteriaCmd struct {
	FilterFlags `embed:""`
}

func (c *CriteriaCmd) Run(ctx *Context) error {
	out, err := ctx.Analytics.Criteria(ctx.Ctx, c.filter())
	if err != nil {
		return err
	}
	return ctx.print(out)
}

type TimeSeriesCmd struct {
	FilterFlags `embed:""`
	WindowFlags `embed:""`
}

func (c *TimeSeriesCmd) Run(ctx *Context) error {
	out, err := ctx.Analytics.TimeSeries(ctx.Ctx, c.filter(), c.Days)
	if err != nil {
		return err
	}
	return ctx.print(out)
}

type HeatmapCmd struct {
	FilterFlags `embed:""`
}

func (c *HeatmapCmd) Run(ctx *Context) error {
	out, err := ctx.Analytics.Heatmap(ctx.Ctx, c.filter())
	if err != nil {
		return err
	}
	return ctx.print(out)
}

type CriteriaOverTimeCmd struct {
	FilterFlags `embed:""`
	WindowFlags `embed:""`
}

func (c *CriteriaOverTimeCmd) Run(ctx *Context) error {
	out, err := ctx.Analytics.CriteriaOverTime(ctx.Ctx, c.filter(), c.Days)
	if err != nil {
		return err
	}
	return ctx.print(out)
}

type DashboardCmd struct {
	FilterFlags `embed:""`
	WindowFlags `embed:""`
}

func (c *DashboardCmd) Run(ctx *Context) error {
	out, err := ctx.Analytics.Dashboard(ctx.Ctx, c.filter(), c.Days)
	if err != nil {
		return err
	}
	return ctx.print(out)
}
