package matches

import (
	"fmt"
	"strconv"
	"strings"
)

const MaxSets = 5

type SetScore struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// Score is a completed match as a list of sets.
type Score struct {
	Sets []SetScore `json:"sets"`
}

// SetsToWin is the number of sets that decides a match.
const SetsToWin = MaxSets/2 + 1

// ParseScore parses comma-separated sets like "11-7,8-11,11-9".
// Every set must have a winner, there may be at most MaxSets sets, no set
// may follow the one that decides the match, and one team must win more
// sets than the other.
func ParseScore(value string) (Score, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Score{}, fmt.Errorf("score is required")
	}

	parts := strings.Split(value, ",")
	if len(parts) > MaxSets {
		return Score{}, fmt.Errorf("a match has at most %d sets, got %d", MaxSets, len(parts))
	}

	var score Score
	var won1, won2 int
	for i, part := range parts {
		if won1 == SetsToWin || won2 == SetsToWin {
			return Score{}, fmt.Errorf("set %d: match was already decided after %d sets", i+1, i)
		}
		left, right, ok := strings.Cut(strings.TrimSpace(part), "-")
		if !ok {
			return Score{}, fmt.Errorf("set %d: invalid format %q, expected a-b", i+1, part)
		}
		team1, err1 := parsePoints(left)
		team2, err2 := parsePoints(right)
		if err1 != nil || err2 != nil {
			return Score{}, fmt.Errorf("set %d: invalid points %q", i+1, part)
		}
		if team1 == team2 {
			return Score{}, fmt.Errorf("set %d: sets cannot be tied (%d-%d)", i+1, team1, team2)
		}
		if team1 > team2 {
			won1++
		} else {
			won2++
		}
		score.Sets = append(score.Sets, SetScore{Team1: team1, Team2: team2})
	}

	if score.Winner() == 0 {
		return Score{}, fmt.Errorf("score %q has no winner: both teams won the same number of sets", value)
	}
	return score, nil
}

// parsePoints accepts only unsigned decimal digits.
func parsePoints(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("points are required")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid points %q", raw)
		}
	}
	return strconv.Atoi(raw)
}

// SetsWon returns the number of sets won by each team.
func (s Score) SetsWon() (team1, team2 int) {
	for _, set := range s.Sets {
		if set.Team1 > set.Team2 {
			team1++
		} else {
			team2++
		}
	}
	return team1, team2
}

// Points returns the total points scored by each team.
func (s Score) Points() (team1, team2 int) {
	for _, set := range s.Sets {
		team1 += set.Team1
		team2 += set.Team2
	}
	return team1, team2
}

// Winner returns 1 or 2, or 0 when the sets are level.
func (s Score) Winner() int {
	team1, team2 := s.SetsWon()
	switch {
	case team1 > team2:
		return 1
	case team2 > team1:
		return 2
	default:
		return 0
	}
}

func (s Score) String() string {
	parts := make([]string, 0, len(s.Sets))
	for _, set := range s.Sets {
		parts = append(parts, fmt.Sprintf("%d-%d", set.Team1, set.Team2))
	}
	return strings.Join(parts, ",")
}

// ValidateTeams checks that both teams have one or two players, the same
// number each, and that no player appears twice.
func ValidateTeams(team1, team2 []int64) error {
	if len(team1) < 1 || len(team1) > 2 || len(team2) < 1 || len(team2) > 2 {
		return fmt.Errorf("each team must have one or two players")
	}
	if len(team1) != len(team2) {
		return fmt.Errorf("teams must have the same number of players")
	}
	seen := make(map[int64]struct{}, 4)
	for _, id := range append(append([]int64{}, team1...), team2...) {
		if id <= 0 {
			return fmt.Errorf("player ids must be positive")
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("player %d appears more than once", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
