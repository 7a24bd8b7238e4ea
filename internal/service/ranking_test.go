package service

import (
	"exam_portal_backend/internal/model"
	"testing"
)

func terminalAttempt(id uint, scoreBP, timeSpent int) model.Attempt {
	return model.Attempt{
		BaseModel:        model.BaseModel{ID: id},
		Status:           model.AttemptSubmitted,
		ScoreBP:          &scoreBP,
		TimeSpentSeconds: timeSpent,
	}
}

func TestRankAttempts(t *testing.T) {
	attempts := []model.Attempt{
		terminalAttempt(1, 800, 1200),
		terminalAttempt(2, 1000, 900),
		terminalAttempt(3, 500, 600),
		terminalAttempt(4, 800, 700),
	}

	ranked := RankAttempts(attempts)

	wantOrder := []uint{2, 4, 1, 3}
	wantPercentile := []int{10000, 6667, 3333, 0}
	for i := range ranked {
		if ranked[i].ID != wantOrder[i] {
			t.Fatalf("position %d: got attempt %d, want %d", i, ranked[i].ID, wantOrder[i])
		}
		if *ranked[i].Rank != i+1 {
			t.Errorf("attempt %d: rank = %d, want %d", ranked[i].ID, *ranked[i].Rank, i+1)
		}
		if *ranked[i].PercentileBP != wantPercentile[i] {
			t.Errorf("attempt %d: percentile = %d, want %d", ranked[i].ID, *ranked[i].PercentileBP, wantPercentile[i])
		}
	}
}

func TestRankAttemptsTieBreaksOnTime(t *testing.T) {
	attempts := []model.Attempt{
		terminalAttempt(1, 800, 1800),
		terminalAttempt(2, 800, 600),
	}

	ranked := RankAttempts(attempts)

	if ranked[0].ID != 2 {
		t.Errorf("faster attempt should rank first, got attempt %d", ranked[0].ID)
	}
	if *ranked[0].PercentileBP != 10000 || *ranked[1].PercentileBP != 0 {
		t.Errorf("two-attempt percentiles = %d, %d; want 10000, 0",
			*ranked[0].PercentileBP, *ranked[1].PercentileBP)
	}
}

func TestRankAttemptsSingle(t *testing.T) {
	ranked := RankAttempts([]model.Attempt{terminalAttempt(7, 300, 100)})

	if *ranked[0].Rank != 1 {
		t.Errorf("rank = %d, want 1", *ranked[0].Rank)
	}
	if *ranked[0].PercentileBP != 10000 {
		t.Errorf("lone attempt percentile = %d, want 10000", *ranked[0].PercentileBP)
	}
}

func TestRankAttemptsNilScoreSortsLast(t *testing.T) {
	noScore := model.Attempt{BaseModel: model.BaseModel{ID: 9}, Status: model.AttemptAutoSubmitted}
	attempts := []model.Attempt{noScore, terminalAttempt(1, 100, 50)}

	ranked := RankAttempts(attempts)

	if ranked[1].ID != 9 {
		t.Errorf("scoreless attempt should rank last, got order %d, %d", ranked[0].ID, ranked[1].ID)
	}
}
