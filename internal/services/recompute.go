package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/awardpicks/internal/models"
	"github.com/abrezinsky/awardpicks/internal/scoring"
)

// RecomputeSummary reports what a bulk recompute wrote
type RecomputeSummary struct {
	Scopes     int       `json:"scopes"`
	Scored     int       `json:"scored"`
	Batches    int       `json:"batches"`
	Resumed    bool      `json:"resumed"`
	ResumedAt  string    `json:"resumed_at,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Duration   string    `json:"duration"`
}

// recomputeCursor marks the last user whose score was committed in a scope.
// Scopes are processed global first, then groups by id; users by id.
type recomputeCursor struct {
	Scope  string
	UserID string
}

func (c recomputeCursor) String() string {
	return c.Scope + "/" + c.UserID
}

func parseCursor(v string) (recomputeCursor, bool) {
	scope, user, ok := strings.Cut(v, "/")
	if !ok || scope == "" || user == "" {
		return recomputeCursor{}, false
	}
	return recomputeCursor{Scope: scope, UserID: user}, true
}

// IsRecomputing reports whether a recompute is in progress
func (s *ScoringService) IsRecomputing() bool {
	return s.running.Load()
}

// Recompute scores every user in the global scope and every group member in
// each group scope, writing the results in batches. After a failure the
// stored cursor lets a resumed run skip what was already written; rewriting
// a score is always safe, so a fresh run simply starts over.
func (s *ScoringService) Recompute(ctx context.Context, resume bool) (*RecomputeSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRecomputeRunning
	}
	defer s.running.Store(false)

	summary := &RecomputeSummary{StartedAt: time.Now()}

	var cursor recomputeCursor
	var haveCursor bool
	if resume {
		raw, err := s.settings.GetSetting(ctx, settingRecomputeCursor)
		if err != nil {
			return nil, err
		}
		cursor, haveCursor = parseCursor(raw)
		if haveCursor {
			summary.Resumed = true
			summary.ResumedAt = cursor.String()
		}
	}

	b, err := s.loadBallot(ctx)
	if err != nil {
		return nil, err
	}

	scopes, err := s.recomputeScopes(ctx)
	if err != nil {
		return nil, err
	}

	if haveCursor && !containsString(scopes, cursor.Scope) {
		// Group deleted since the failure; start over
		haveCursor = false
		summary.Resumed = false
		summary.ResumedAt = ""
	}

	s.log.Info("Recompute started", "scopes", len(scopes), "resume", summary.Resumed)

	skipping := haveCursor
	for _, scope := range scopes {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		after := ""
		if skipping {
			if scope != cursor.Scope {
				continue
			}
			after = cursor.UserID
			skipping = false
		}

		if err := s.recomputeScope(ctx, b, scope, after, summary); err != nil {
			s.log.Error("Recompute failed", "scope", scope, "scored", summary.Scored, "error", err)
			return summary, fmt.Errorf("recompute %s: %w", scope, err)
		}
		summary.Scopes++
	}

	if err := s.settings.SetSetting(ctx, settingRecomputeCursor, ""); err != nil {
		return summary, err
	}

	summary.FinishedAt = time.Now()
	summary.Duration = summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond).String()
	s.log.Info("Recompute finished", "scopes", summary.Scopes, "scored", summary.Scored, "batches", summary.Batches, "duration", summary.Duration)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastScoresUpdated(*summary)
	}
	return summary, nil
}

// recomputeScopes lists the global scope followed by every group id in order
func (s *ScoringService) recomputeScopes(ctx context.Context) ([]string, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	sort.Strings(ids)
	return append([]string{scoring.GlobalScope}, ids...), nil
}

// recomputeScope pages through the users of one scope after the given user id
func (s *ScoringService) recomputeScope(ctx context.Context, b *ballot, scope, after string, summary *RecomputeSummary) error {
	if scope == scoring.GlobalScope {
		for {
			ids, err := s.repo.ListUserIDsAfter(ctx, after, s.opts.BatchSize)
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				return nil
			}
			if err := s.recomputeBatch(ctx, b, scope, ids, summary); err != nil {
				return err
			}
			after = ids[len(ids)-1]
		}
	}

	members, err := s.repo.ListMembers(ctx, scope)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		if m.UserID > after {
			ids = append(ids, m.UserID)
		}
	}
	sort.Strings(ids)
	for start := 0; start < len(ids); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(ids))
		if err := s.recomputeBatch(ctx, b, scope, ids[start:end], summary); err != nil {
			return err
		}
	}
	return nil
}

// recomputeBatch loads each user's predictions concurrently, scores them and
// commits the batch, then advances the cursor past its last user
func (s *ScoringService) recomputeBatch(ctx context.Context, b *ballot, scope string, ids []string, summary *RecomputeSummary) error {
	members := make([]scoring.Member, len(ids))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			m := scoring.Member{UserID: id}
			rows, err := s.repo.GetPredictions(gCtx, id, scoring.GlobalScope)
			if err != nil {
				return err
			}
			m.Global = toPredictionSet(rows)
			if scope != scoring.GlobalScope {
				rows, err := s.repo.GetPredictions(gCtx, id, scope)
				if err != nil {
					return err
				}
				m.Group = toPredictionSet(rows)
			}
			members[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load predictions: %w", err)
	}

	results := b.engine.ScoreMembers(scope, members, b.winners, b.categories)
	now := time.Now()
	batch := make([]models.StoredScore, 0, len(ids))
	for _, id := range ids {
		res := results[id]
		breakdown, err := json.Marshal(res.Breakdown)
		if err != nil {
			return err
		}
		batch = append(batch, models.StoredScore{
			UserID:     id,
			Scope:      scope,
			Total:      res.Total,
			Breakdown:  string(breakdown),
			ComputedAt: now,
		})
	}

	if err := s.repo.UpsertScores(ctx, batch); err != nil {
		return fmt.Errorf("failed to write scores: %w", err)
	}
	summary.Batches++
	summary.Scored += len(batch)

	cursor := recomputeCursor{Scope: scope, UserID: ids[len(ids)-1]}
	if err := s.settings.SetSetting(ctx, settingRecomputeCursor, cursor.String()); err != nil {
		return err
	}
	s.log.Debug("Recompute batch committed", "scope", scope, "size", len(batch), "cursor", cursor.String())
	return nil
}

// StartScheduler runs Recompute every interval until the returned scheduler
// is shut down. A run still in progress when the next one is due is skipped.
func (s *ScoringService) StartScheduler(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := s.Recompute(context.Background(), true); err != nil {
				s.log.Warn("Scheduled recompute failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		sched.Shutdown()
		return nil, err
	}
	sched.Start()
	s.log.Info("Recompute scheduler started", "interval", interval.String())
	return sched, nil
}
