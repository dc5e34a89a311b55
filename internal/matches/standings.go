package matches

import (
	"context"
	"errors"
	"fmt"
	"sort"

	dbgen "github.com/codr1/Courtside/internal/db/generated"
)

type Player struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// Result is one recorded match with its players split by team.
type Result struct {
	ID          int64
	Score       string
	WinningTeam int
	Team1       []Player
	Team2       []Player
}

type PlayerStanding struct {
	UserID            int64  `json:"user_id"`
	Name              string `json:"name"`
	MatchesPlayed     int    `json:"matches_played"`
	Wins              int    `json:"wins"`
	Losses            int    `json:"losses"`
	SetsFor           int    `json:"sets_for"`
	SetsAgainst       int    `json:"sets_against"`
	PointsFor         int    `json:"points_for"`
	PointsAgainst     int    `json:"points_against"`
	PointDifferential int    `json:"point_differential"`
}

type playerStats struct {
	PlayerStanding
	headToHeadWins      map[int64]int
	headToHeadPointDiff map[int64]int
}

type StandingsQueries interface {
	ListAllMatchResults(ctx context.Context, clubID int64) ([]dbgen.MatchResult, error)
	ListMatchResultPlayers(ctx context.Context, clubID int64) ([]dbgen.ListMatchResultPlayersRow, error)
}

// LoadResults reads every match recorded at a club, oldest first.
func LoadResults(ctx context.Context, q StandingsQueries, clubID int64) ([]Result, error) {
	if q == nil {
		return nil, errors.New("queries are required")
	}
	if clubID <= 0 {
		return nil, errors.New("club ID is required")
	}

	rows, err := q.ListAllMatchResults(ctx, clubID)
	if err != nil {
		return nil, err
	}
	playerRows, err := q.ListMatchResultPlayers(ctx, clubID)
	if err != nil {
		return nil, err
	}

	byMatch := make(map[int64]*Result, len(rows))
	results := make([]Result, len(rows))
	for i, row := range rows {
		results[i] = Result{ID: row.ID, Score: row.Score, WinningTeam: int(row.WinningTeam)}
		byMatch[row.ID] = &results[i]
	}
	for _, row := range playerRows {
		result, ok := byMatch[row.MatchID]
		if !ok {
			continue
		}
		player := Player{UserID: row.UserID, Name: row.FirstName + " " + row.LastName}
		switch row.Team {
		case 1:
			result.Team1 = append(result.Team1, player)
		case 2:
			result.Team2 = append(result.Team2, player)
		default:
			return nil, fmt.Errorf("match %d has player %d on unknown team %d", row.MatchID, row.UserID, row.Team)
		}
	}
	return results, nil
}

// CalculateClubStandings loads a club's results and ranks its players.
func CalculateClubStandings(ctx context.Context, q StandingsQueries, clubID int64) ([]PlayerStanding, error) {
	results, err := LoadResults(ctx, q, clubID)
	if err != nil {
		return nil, err
	}
	return CalculateStandings(results)
}

// CalculateStandings ranks players by wins. Ties are broken by head-to-head
// wins within the tied group, then point differential, then head-to-head
// point differential, then name.
func CalculateStandings(results []Result) ([]PlayerStanding, error) {
	players := make(map[int64]*playerStats)
	entryFor := func(p Player) *playerStats {
		entry, ok := players[p.UserID]
		if !ok {
			entry = &playerStats{
				PlayerStanding:      PlayerStanding{UserID: p.UserID, Name: p.Name},
				headToHeadWins:      make(map[int64]int),
				headToHeadPointDiff: make(map[int64]int),
			}
			players[p.UserID] = entry
		}
		return entry
	}

	for _, result := range results {
		score, err := ParseScore(result.Score)
		if err != nil {
			return nil, fmt.Errorf("match %d: %w", result.ID, err)
		}
		if len(result.Team1) == 0 || len(result.Team2) == 0 {
			return nil, fmt.Errorf("match %d is missing players", result.ID)
		}
		if score.Winner() != result.WinningTeam {
			return nil, fmt.Errorf("match %d winning team %d does not match score %s", result.ID, result.WinningTeam, score)
		}

		sets1, sets2 := score.SetsWon()
		points1, points2 := score.Points()
		applySide(entryFor, result.Team1, result.Team2, result.WinningTeam == 1, sets1, sets2, points1, points2)
		applySide(entryFor, result.Team2, result.Team1, result.WinningTeam == 2, sets2, sets1, points2, points1)
	}

	ordered := make([]*playerStats, 0, len(players))
	for _, player := range players {
		ordered = append(ordered, player)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Wins != ordered[j].Wins {
			return ordered[i].Wins > ordered[j].Wins
		}
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name < ordered[j].Name
		}
		return ordered[i].UserID < ordered[j].UserID
	})

	sortStandingsByTiebreakers(ordered)

	standings := make([]PlayerStanding, 0, len(ordered))
	for _, player := range ordered {
		standings = append(standings, player.PlayerStanding)
	}
	return standings, nil
}

func applySide(entryFor func(Player) *playerStats, side, opponents []Player, won bool, setsFor, setsAgainst, pointsFor, pointsAgainst int) {
	for _, p := range side {
		entry := entryFor(p)
		entry.MatchesPlayed++
		entry.SetsFor += setsFor
		entry.SetsAgainst += setsAgainst
		entry.PointsFor += pointsFor
		entry.PointsAgainst += pointsAgainst
		entry.PointDifferential = entry.PointsFor - entry.PointsAgainst
		if won {
			entry.Wins++
		} else {
			entry.Losses++
		}
		for _, opponent := range opponents {
			if won {
				entry.headToHeadWins[opponent.UserID]++
			}
			entry.headToHeadPointDiff[opponent.UserID] += pointsFor - pointsAgainst
		}
	}
}

func sortStandingsByTiebreakers(ordered []*playerStats) {
	if len(ordered) < 2 {
		return
	}

	start := 0
	for start < len(ordered) {
		end := start + 1
		for end < len(ordered) && ordered[end].Wins == ordered[start].Wins {
			end++
		}

		if end-start > 1 {
			group := ordered[start:end]
			groupSet := make(map[int64]struct{}, len(group))
			for _, player := range group {
				groupSet[player.UserID] = struct{}{}
			}

			sort.SliceStable(group, func(i, j int) bool {
				winsI := headToHeadWins(group[i], groupSet)
				winsJ := headToHeadWins(group[j], groupSet)
				if winsI != winsJ {
					return winsI > winsJ
				}
				if group[i].PointDifferential != group[j].PointDifferential {
					return group[i].PointDifferential > group[j].PointDifferential
				}
				diffI := headToHeadPointDiff(group[i], groupSet)
				diffJ := headToHeadPointDiff(group[j], groupSet)
				if diffI != diffJ {
					return diffI > diffJ
				}
				if group[i].Name != group[j].Name {
					return group[i].Name < group[j].Name
				}
				return group[i].UserID < group[j].UserID
			})
		}

		start = end
	}
}

func headToHeadWins(player *playerStats, group map[int64]struct{}) int {
	total := 0
	for opponentID, wins := range player.headToHeadWins {
		if _, ok := group[opponentID]; ok {
			total += wins
		}
	}
	return total
}

func headToHeadPointDiff(player *playerStats, group map[int64]struct{}) int {
	total := 0
	for opponentID, diff := range player.headToHeadPointDiff {
		if _, ok := group[opponentID]; ok {
			total += diff
		}
	}
	return total
}
