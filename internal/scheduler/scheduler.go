package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"

	"SignalDesk/internal/collector"
	"SignalDesk/internal/dashboard"
	"SignalDesk/internal/logger"
	"SignalDesk/internal/model"
	"SignalDesk/internal/notifier"
)

// Scheduler manages all cron tasks and chat commands.
type Scheduler struct {
	Cron         *cron.Cron
	Service      *dashboard.Service
	Notifier     notifier.Notifier
	Ctx          context.Context
	MarketsLimit int

	mu   sync.Mutex
	last map[string]model.Direction // coin id -> last notified direction
}

// NewScheduler creates a new Scheduler. A nil notifier disables pushes.
func NewScheduler(ctx context.Context, svc *dashboard.Service, n notifier.Notifier) *Scheduler {
	return &Scheduler{
		Cron:         cron.New(cron.WithSeconds()),
		Service:      svc,
		Notifier:     n,
		Ctx:          ctx,
		MarketsLimit: 10,
		last:         make(map[string]model.Direction),
	}
}

// RegisterAll registers the watchlist refresh and the news digest.
func (s *Scheduler) RegisterAll(refreshCron, newsCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if newsCron != "" {
		if _, err := s.Cron.AddFunc(newsCron, s.newsTask); err != nil {
			return fmt.Errorf("register news task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info(s.Ctx, "scheduler started", "entries", len(s.Cron.Entries()))
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logger.Info(s.Ctx, "scheduler stopped")
}

// RunRefreshNow executes the refresh task immediately (for RUN_ON_START).
func (s *Scheduler) RunRefreshNow() {
	s.refreshTask()
}

func (s *Scheduler) refreshTask() {
	coins := s.Service.Prefs.Watchlist()
	logger.Info(s.Ctx, "running watchlist refresh", "coins", len(coins))

	for _, coin := range coins {
		if s.Ctx.Err() != nil {
			return
		}
		view, err := s.Service.Signal(s.Ctx, coin, "")
		if err != nil {
			logger.Error(s.Ctx, "refresh signal", "coin", coin, "error", err)
			continue
		}
		if view.Placeholder {
			logger.Warn(s.Ctx, "skipping placeholder data", "coin", coin)
			continue
		}
		from, changed := s.transition(view.Coin.ID, view.Signal.Direction)
		if !changed {
			continue
		}
		logger.Info(s.Ctx, "direction changed", "coin", view.Coin.ID, "from", from, "to", view.Signal.Direction)
		s.trySend(notifier.FormatDirectionChange(from, view))
	}
}

// transition records dir for coin and reports whether it should be
// announced. A first-seen NEUTRAL reading is recorded silently.
func (s *Scheduler) transition(coin string, dir model.Direction) (model.Direction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, seen := s.last[coin]
	s.last[coin] = dir
	if !seen {
		return "", dir != model.DirectionNeutral
	}
	return prev, prev != dir
}

func (s *Scheduler) newsTask() {
	items := s.Service.News(s.Ctx)
	if len(items) == 0 {
		logger.Info(s.Ctx, "news digest skipped, no items")
		return
	}
	s.trySend(notifier.FormatNews(items))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Group chats append the bot name: /signal@SignalDeskBot
	cmd, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch cmd {
	case "/signal":
		query := ""
		if len(args) > 0 {
			query = args[0]
		} else if wl := s.Service.Prefs.Watchlist(); len(wl) > 0 {
			query = wl[0]
		} else {
			return "Usage: /signal &lt;coin&gt; [tier]"
		}
		tier := ""
		if len(args) > 1 {
			tier = args[1]
		}
		view, err := s.Service.Signal(ctx, query, tier)
		if errors.Is(err, model.ErrUnknownTier) {
			return replyForError(tier, err)
		}
		if err != nil {
			return replyForError(query, err)
		}
		return notifier.FormatSignal(view)

	case "/tier":
		if len(args) == 0 {
			return fmt.Sprintf("Current tier: %s", s.Service.Prefs.Tier())
		}
		tier, err := model.ParseRiskTier(args[0])
		if err == nil {
			err = s.Service.Prefs.SetTier(tier)
		}
		if err != nil {
			return replyForError(args[0], err)
		}
		return fmt.Sprintf("✅ Risk tier set to %s", tier)

	case "/watch", "/unwatch":
		if len(args) == 0 {
			return fmt.Sprintf("Usage: %s &lt;coin&gt;", cmd)
		}
		id, err := s.Service.Collector.Resolve(ctx, args[0])
		if err != nil {
			return replyForError(args[0], err)
		}
		if cmd == "/watch" {
			added, err := s.Service.Prefs.Watch(id)
			if err != nil {
				return replyForError(id, err)
			}
			if !added {
				return fmt.Sprintf("%s is already on the watchlist", id)
			}
			return fmt.Sprintf("👀 Watching %s", id)
		}
		removed, err := s.Service.Prefs.Unwatch(id)
		if err != nil {
			return replyForError(id, err)
		}
		if !removed {
			return fmt.Sprintf("%s is not on the watchlist", id)
		}
		s.forget(id)
		return fmt.Sprintf("Stopped watching %s", id)

	case "/markets":
		return notifier.FormatMarkets(s.Service.Markets(ctx), s.MarketsLimit)
	case "/news":
		return notifier.FormatNews(s.Service.News(ctx))
	case "/prefs":
		return notifier.FormatPrefs(s.Service.Prefs.State())
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) forget(coin string) {
	s.mu.Lock()
	delete(s.last, coin)
	s.mu.Unlock()
}

func replyForError(subject string, err error) string {
	switch {
	case errors.Is(err, model.ErrUnknownTier):
		return fmt.Sprintf("❓ Unknown risk tier %q. Use LOW, MEDIUM, HIGH or EXTREME.", subject)
	case errors.Is(err, collector.ErrNotFound):
		return fmt.Sprintf("❓ Coin %q not found.", subject)
	default:
		return fmt.Sprintf("❌ Could not process %s: %v", subject, err)
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		logger.Debug(s.Ctx, "notifier disabled, dropping message")
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logger.Error(s.Ctx, "send notification", "error", err)
	}
}
