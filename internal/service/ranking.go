package service

import (
	"context"
	"encoding/json"
	"exam_portal_backend/internal/model"
	"exam_portal_backend/pkg/logger"
	"exam_portal_backend/pkg/monitoring"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RankingStore is what the recompute job needs from the attempt store.
type RankingStore interface {
	ListTerminalByTest(testID uint) ([]model.Attempt, error)
	UpdateRankPercentile(attemptID uint, rank, percentileBP int) error
}

// UserSource resolves display names for the cached leaderboard.
type UserSource interface {
	FindByID(id uint) (*model.User, error)
}

// RankingQueue is the fire-and-forget trigger the submit path uses.
type RankingQueue interface {
	Enqueue(testID uint)
}

// RankingService re-derives rank and percentile for every terminal attempt on
// a test. One job per submission; a full rewrite every run. Two racing runs
// converge because the ranking is a deterministic sort over persisted state.
type RankingService struct {
	store RankingStore
	users UserSource
	rdb   *redis.Client
	ttl   time.Duration

	jobs chan uint
	quit chan struct{}
	done chan struct{}
}

func NewRankingService(store RankingStore, users UserSource, rdb *redis.Client, queueSize int, cacheTTL time.Duration) *RankingService {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &RankingService{
		store: store,
		users: users,
		rdb:   rdb,
		ttl:   cacheTTL,
		jobs:  make(chan uint, queueSize),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Enqueue never blocks the submitting request. A full queue is logged and the
// job dropped; the next submission on the same test re-triggers the identical
// full recompute.
func (s *RankingService) Enqueue(testID uint) {
	select {
	case s.jobs <- testID:
	default:
		logger.Log.Warn("ranking queue full, dropping job", zap.Uint("testId", testID))
	}
}

func (s *RankingService) Run() {
	for {
		select {
		case <-s.quit:
			close(s.done)
			return
		case testID := <-s.jobs:
			if err := s.Recompute(testID); err != nil {
				monitoring.RankingRunCounter.WithLabelValues("error").Inc()
				logger.Log.Error("ranking recompute failed",
					zap.Uint("testId", testID), zap.Error(err))
				continue
			}
			monitoring.RankingRunCounter.WithLabelValues("ok").Inc()
		}
	}
}

func (s *RankingService) Stop() {
	close(s.quit)
	<-s.done
}

// RankAttempts orders terminal attempts by score descending, ties broken by
// faster completion, and assigns positional ranks and basis-point percentiles.
// A lone attempt sits at 10000 (100.00%).
func RankAttempts(attempts []model.Attempt) []model.Attempt {
	sort.SliceStable(attempts, func(i, j int) bool {
		si, sj := 0, 0
		if attempts[i].ScoreBP != nil {
			si = *attempts[i].ScoreBP
		}
		if attempts[j].ScoreBP != nil {
			sj = *attempts[j].ScoreBP
		}
		if si != sj {
			return si > sj
		}
		return attempts[i].TimeSpentSeconds < attempts[j].TimeSpentSeconds
	})

	total := len(attempts)
	for i := range attempts {
		rank := i + 1
		percentile := 10000
		if total > 1 {
			percentile = int(math.Round(float64(total-rank) / float64(total-1) * 10000))
		}
		attempts[i].Rank = &rank
		attempts[i].PercentileBP = &percentile
	}
	return attempts
}

// Recompute rewrites rank and percentile for every terminal attempt on the
// test, then refreshes the cached leaderboard. Isolated from the submission
// that queued it; independently retryable.
func (s *RankingService) Recompute(testID uint) error {
	attempts, err := s.store.ListTerminalByTest(testID)
	if err != nil {
		return fmt.Errorf("list terminal attempts: %w", err)
	}
	if len(attempts) == 0 {
		return nil
	}

	ranked := RankAttempts(attempts)
	for i := range ranked {
		if err := s.store.UpdateRankPercentile(ranked[i].ID, *ranked[i].Rank, *ranked[i].PercentileBP); err != nil {
			return fmt.Errorf("update rank for attempt %d: %w", ranked[i].ID, err)
		}
	}

	s.cacheLeaderboard(testID, ranked)
	return nil
}

// Leaderboard serves the ranking read path: cache first, recompute in memory
// on a miss without touching stored ranks.
func (s *RankingService) Leaderboard(testID uint) ([]model.LeaderboardEntry, error) {
	if s.rdb != nil {
		val, err := s.rdb.Get(context.Background(), leaderboardKey(testID)).Result()
		if err == nil {
			var entries []model.LeaderboardEntry
			if jsonErr := json.Unmarshal([]byte(val), &entries); jsonErr == nil {
				return entries, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("leaderboard cache read failed", zap.Error(err))
		}
	}

	attempts, err := s.store.ListTerminalByTest(testID)
	if err != nil {
		return nil, err
	}
	entries := s.buildEntries(RankAttempts(attempts))
	s.cacheEntries(testID, entries)
	return entries, nil
}

func (s *RankingService) buildEntries(ranked []model.Attempt) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(ranked))
	for i := range ranked {
		entry := model.LeaderboardEntry{
			AttemptID:        ranked[i].ID,
			UserID:           ranked[i].UserID,
			TimeSpentSeconds: ranked[i].TimeSpentSeconds,
			Rank:             *ranked[i].Rank,
			PercentileBP:     *ranked[i].PercentileBP,
		}
		if ranked[i].ScoreBP != nil {
			entry.ScoreBP = *ranked[i].ScoreBP
		}
		if s.users != nil {
			if u, err := s.users.FindByID(ranked[i].UserID); err == nil {
				entry.UserName = u.Name
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func (s *RankingService) cacheLeaderboard(testID uint, ranked []model.Attempt) {
	s.cacheEntries(testID, s.buildEntries(ranked))
}

func (s *RankingService) cacheEntries(testID uint, entries []model.LeaderboardEntry) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.rdb.Set(context.Background(), leaderboardKey(testID), payload, s.ttl).Err(); err != nil {
		logger.Log.Warn("leaderboard cache write failed", zap.Error(err))
	}
}

func leaderboardKey(testID uint) string {
	return fmt.Sprintf("exam:leaderboard:%d", testID)
}
