package plannerimpl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orgball2608/contentflow/internal/chat"
	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/feed"
	"github.com/orgball2608/contentflow/internal/metrics"
	"github.com/orgball2608/contentflow/internal/notifier"
	"github.com/orgball2608/contentflow/internal/planner"
	"github.com/orgball2608/contentflow/pkg/config"
	"github.com/orgball2608/contentflow/pkg/formatter"
	"github.com/orgball2608/contentflow/pkg/logger"
	"go.uber.org/fx"
)

// Unscheduled posts moved onto a day land at this hour.
const defaultHour = 9

type Opts struct {
	fx.In

	Store    feed.Store
	History  chat.History
	Notifier notifier.Notifier
	Metrics  *metrics.Metrics
	Logger   logger.Logger
	Config   *config.Config
}

type PlannerImpl struct {
	Store    feed.Store
	History  chat.History
	Notifier notifier.Notifier
	Metrics  *metrics.Metrics
	Logger   logger.Logger
	Config   *config.Config

	loc *time.Location
	now func() time.Time
}

var _ planner.Planner = (*PlannerImpl)(nil)

func New(opts Opts) *PlannerImpl {
	return &PlannerImpl{
		Store:    opts.Store,
		History:  opts.History,
		Notifier: opts.Notifier,
		Metrics:  opts.Metrics,
		Logger:   opts.Logger.WithComponent("planner"),
		Config:   opts.Config,
		loc:      opts.Config.Location(),
		now:      time.Now,
	}
}

var Module = fx.Module("planner",
	fx.Provide(
		fx.Annotate(New, fx.As(new(planner.Planner))),
	),
)

func (p *PlannerImpl) WeekGrid(ctx context.Context, weekStart time.Time) (planner.Week, error) {
	start := planner.WeekStart(weekStart.In(p.loc))

	posts, err := p.Store.List(ctx, feed.Filter{})
	if err != nil {
		return planner.Week{}, err
	}
	cadence, err := p.Store.Cadence(ctx)
	if err != nil {
		return planner.Week{}, err
	}

	inWeek := feed.InWeek(posts, start)

	week := planner.Week{
		Start: start,
		Label: formatter.FormatWeekRange(start),
		Rows:  make([]planner.Row, 0, len(domain.Platforms)),
	}
	for _, platform := range domain.Platforms {
		row := planner.Row{
			Platform:    platform,
			Label:       platform.Label(),
			Days:        make([]planner.Slot, 7),
			Unscheduled: []domain.Post{},
		}
		for i := range row.Days {
			day := start.AddDate(0, 0, i)
			scheduled := feed.ScheduledOn(posts, platform, day)
			planned := cadence.Active(platform, i)
			row.Days[i] = planner.Slot{
				Day:     day,
				Posts:   scheduled,
				Planned: planned,
				Open:    planned && len(scheduled) == 0,
			}
		}
		for _, post := range feed.FilterByPlatform(inWeek, platform) {
			if !post.IsScheduled() {
				row.Unscheduled = append(row.Unscheduled, post)
			}
		}
		week.Rows = append(week.Rows, row)
	}
	return week, nil
}

func (p *PlannerImpl) MoveToDay(ctx context.Context, id string, day time.Time) (domain.Post, error) {
	post, err := p.Store.Get(ctx, id)
	if err != nil {
		return domain.Post{}, err
	}

	day = day.In(p.loc)
	hour, minute, sec := defaultHour, 0, 0
	if post.IsScheduled() {
		hour, minute, sec = post.ScheduledTime(p.loc).Clock()
	}
	at := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, sec, 0, p.loc).UnixMilli()

	return p.Store.Reschedule(ctx, id, &at)
}

func (p *PlannerImpl) Agenda(ctx context.Context, day time.Time) (planner.Agenda, error) {
	day = day.In(p.loc)

	cadence, err := p.Store.Cadence(ctx)
	if err != nil {
		return planner.Agenda{}, err
	}

	agenda := planner.Agenda{Day: day, Items: []planner.AgendaItem{}}
	weekday := planner.Weekday(day)
	for _, platform := range domain.Platforms {
		posts, err := p.Store.ScheduledFor(ctx, platform, day)
		if err != nil {
			return planner.Agenda{}, err
		}
		for i := range posts {
			agenda.Items = append(agenda.Items, planner.AgendaItem{Platform: platform, Post: &posts[i]})
		}
		if len(posts) == 0 && cadence.Active(platform, weekday) {
			agenda.Items = append(agenda.Items, planner.AgendaItem{Platform: platform})
		}
	}
	return agenda, nil
}

func (p *PlannerImpl) SendAgenda(ctx context.Context, day time.Time) error {
	agenda, err := p.Agenda(ctx, day)
	if err != nil {
		return err
	}
	if len(agenda.Items) == 0 {
		p.Logger.Info("Nothing on the agenda", "day", agenda.Day.Format(time.DateOnly))
		return nil
	}

	title := "Agenda for " + formatter.FormatDate(agenda.Day.UnixMilli(), p.loc)
	return p.Notifier.Send(ctx, title, renderAgenda(agenda))
}

func renderAgenda(agenda planner.Agenda) string {
	lines := make([]string, 0, len(agenda.Items))
	for _, item := range agenda.Items {
		if item.Post == nil {
			lines = append(lines, fmt.Sprintf("%s: nothing scheduled, plan a post", item.Platform.Label()))
			continue
		}
		preview := formatter.Preview(item.Post.Title, item.Post.Body, 50, "Untitled")
		lines = append(lines, fmt.Sprintf("%s: %s (%s)", item.Platform.Label(), preview, item.Post.Status))
	}
	return strings.Join(lines, "\n")
}

func (p *PlannerImpl) CleanupHistories(ctx context.Context) (int, error) {
	ids, err := p.History.PostIDs(ctx)
	if err != nil {
		return 0, err
	}

	f, err := p.Store.Load(ctx)
	if err != nil {
		return 0, err
	}
	alive := make(map[string]bool, len(f.Items))
	for _, post := range f.Items {
		alive[post.ID] = true
	}

	removed := 0
	for _, id := range ids {
		if alive[id] {
			continue
		}
		if err := p.History.Clear(ctx, id); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
