package plannerimpl

import (
	"context"
	"testing"
	"time"

	"github.com/orgball2608/contentflow/internal/chat"
	"github.com/orgball2608/contentflow/internal/chat/chatimpl"
	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/feed/feedimpl"
	"github.com/orgball2608/contentflow/internal/metrics"
	mock_notifier "github.com/orgball2608/contentflow/internal/notifier/mocks"
	"github.com/orgball2608/contentflow/internal/repositories/kv"
	mock_kv "github.com/orgball2608/contentflow/internal/repositories/kv/mocks"
	"github.com/orgball2608/contentflow/pkg/config"
	"github.com/orgball2608/contentflow/pkg/errors"
	"github.com/orgball2608/contentflow/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

type fixture struct {
	planner  *PlannerImpl
	store    *feedimpl.StoreImpl
	history  *chatimpl.HistoryImpl
	notifier *mock_notifier.MockNotifier
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	storage := kv.NewMemory()
	log := logger.NewNop()
	store := feedimpl.New(feedimpl.Opts{Storage: storage, Logger: log})
	history := chatimpl.New(chatimpl.Opts{Storage: storage, Logger: log})
	n := mock_notifier.NewMockNotifier(gomock.NewController(t))
	m := metrics.New()

	cfg := &config.Config{}
	cfg.App.Timezone = "UTC"
	cfg.Planner.CleanupCron = "0 3 * * *"
	cfg.Planner.AgendaCron = "0 8 * * *"

	p := New(Opts{Store: store, History: history, Notifier: n, Metrics: m, Logger: log, Config: cfg})
	return fixture{planner: p, store: store, history: history, notifier: n, metrics: m}
}

func at(t time.Time) *int64 {
	v := t.UnixMilli()
	return &v
}

func TestWeekGrid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cadence := domain.DefaultCadence()
	cadence[domain.PlatformLinkedIn][0] = true // Monday
	cadence[domain.PlatformLinkedIn][2] = true // Wednesday
	_, err := f.store.SaveCadence(ctx, cadence)
	require.NoError(t, err)

	wed, err := f.store.Create(ctx, domain.NewPost{Platform: domain.PlatformLinkedIn, ScheduledFor: at(monday.AddDate(0, 0, 2).Add(10 * time.Hour))})
	require.NoError(t, err)
	loose, err := f.store.Create(ctx, domain.NewPost{Platform: domain.PlatformLinkedIn, CreatedAt: monday.Add(time.Hour).UnixMilli()})
	require.NoError(t, err)
	_, err = f.store.Create(ctx, domain.NewPost{Platform: domain.PlatformLinkedIn, CreatedAt: monday.AddDate(0, 0, -3).UnixMilli()})
	require.NoError(t, err)

	week, err := f.planner.WeekGrid(ctx, monday.AddDate(0, 0, 4))
	require.NoError(t, err)
	assert.True(t, monday.Equal(week.Start))
	assert.Equal(t, "Mar 10 - 16, 2025", week.Label)
	require.Len(t, week.Rows, len(domain.Platforms))

	row := week.Rows[0]
	assert.Equal(t, domain.PlatformLinkedIn, row.Platform)
	require.Len(t, row.Days, 7)

	assert.True(t, row.Days[0].Planned)
	assert.True(t, row.Days[0].Open)

	assert.True(t, row.Days[2].Planned)
	assert.False(t, row.Days[2].Open)
	require.Len(t, row.Days[2].Posts, 1)
	assert.Equal(t, wed.ID, row.Days[2].Posts[0].ID)

	assert.False(t, row.Days[1].Planned)
	assert.Empty(t, row.Days[1].Posts)

	require.Len(t, row.Unscheduled, 1)
	assert.Equal(t, loose.ID, row.Unscheduled[0].ID)
}

func TestMoveToDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	scheduled, err := f.store.Create(ctx, domain.NewPost{Platform: domain.PlatformTwitter, ScheduledFor: at(monday.Add(14*time.Hour + 30*time.Minute))})
	require.NoError(t, err)
	loose, err := f.store.Create(ctx, domain.NewPost{Platform: domain.PlatformTwitter})
	require.NoError(t, err)

	friday := monday.AddDate(0, 0, 4)

	moved, err := f.planner.MoveToDay(ctx, scheduled.ID, friday)
	require.NoError(t, err)
	assert.Equal(t, friday.Add(14*time.Hour+30*time.Minute).UnixMilli(), *moved.ScheduledFor)

	again, err := f.planner.MoveToDay(ctx, scheduled.ID, friday.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, moved, again)

	moved, err = f.planner.MoveToDay(ctx, loose.ID, friday)
	require.NoError(t, err)
	assert.Equal(t, friday.Add(defaultHour*time.Hour).UnixMilli(), *moved.ScheduledFor)

	_, err = f.planner.MoveToDay(ctx, "missing", friday)
	assert.Error(t, err)
}

func TestSendAgenda(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	cadence := domain.DefaultCadence()
	cadence[domain.PlatformTikTok][0] = true
	_, err := f.store.SaveCadence(ctx, cadence)
	require.NoError(t, err)

	_, err = f.store.Create(ctx, domain.NewPost{
		Platform:     domain.PlatformNewsletter,
		Title:        "Issue #12",
		Status:       domain.StatusReady,
		ScheduledFor: at(monday.Add(7 * time.Hour)),
	})
	require.NoError(t, err)

	f.notifier.EXPECT().Send(gomock.Any(), "Agenda for 10 March 2025",
		"Newsletter: Issue #12 (ready)\nTikTok: nothing scheduled, plan a post").Return(nil)

	require.NoError(t, f.planner.SendAgenda(ctx, monday.Add(12*time.Hour)))
}

func TestSendAgendaSkipsEmptyDays(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.planner.SendAgenda(context.Background(), monday))
}

func TestCleanupHistories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	kept, err := f.store.Create(ctx, domain.NewPost{})
	require.NoError(t, err)
	msg := []domain.ChatMessage{chat.NewMessage(domain.RoleUser, "hi", "", 1)}
	require.NoError(t, f.history.Save(ctx, kept.ID, msg))
	require.NoError(t, f.history.Save(ctx, "deleted", msg))

	removed, err := f.planner.CleanupHistories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	ids, err := f.history.PostIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{kept.ID}, ids)
}

func TestCleanupHistoriesKeepsAllOnFeedReadFailure(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	histories := kv.NewMemory()
	history := chatimpl.New(chatimpl.Opts{Storage: histories, Logger: log})
	msg := []domain.ChatMessage{chat.NewMessage(domain.RoleUser, "hi", "", 1)}
	require.NoError(t, history.Save(ctx, "p1", msg))
	require.NoError(t, history.Save(ctx, "p2", msg))

	storage := mock_kv.NewMockRepository(gomock.NewController(t))
	storage.EXPECT().Get(gomock.Any(), domain.FeedKey).Return("", errors.New("connection reset"))
	store := feedimpl.New(feedimpl.Opts{Storage: storage, Logger: log})

	p := New(Opts{Store: store, History: history, Metrics: metrics.New(), Logger: log, Config: &config.Config{}})
	removed, err := p.CleanupHistories(ctx)
	assert.ErrorContains(t, err, "connection reset")
	assert.Zero(t, removed)

	ids, err := history.PostIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids)
}

func TestRunJobRecordsResult(t *testing.T) {
	f := newFixture(t)

	f.planner.runJob(context.Background(), "history_cleanup", func(context.Context) error { return nil })
	f.planner.runJob(context.Background(), "daily_agenda", func(context.Context) error { return assert.AnError })

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.JobRuns.WithLabelValues("history_cleanup", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.JobRuns.WithLabelValues("daily_agenda", "error")))
}

func TestScheduleStopsWithContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, f.planner.Schedule(ctx))
}

func TestScheduleRejectsBadCron(t *testing.T) {
	f := newFixture(t)
	f.planner.Config.Planner.AgendaCron = "not a cron"

	assert.Error(t, f.planner.Schedule(context.Background()))
}
