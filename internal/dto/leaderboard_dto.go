package dto

import "github.com/fitchallenge/challenge-backend/internal/leaderboard"

type LeaderboardResponse struct {
	Sort    leaderboard.Metric  `json:"sort"`
	Entries []leaderboard.Entry `json:"entries"`
}

type UnitLeaderboardResponse struct {
	Sort       leaderboard.Metric      `json:"sort"`
	Category   string                  `json:"category"`
	MinMembers int                     `json:"min_members"`
	Units      []leaderboard.UnitEntry `json:"units"`
}
