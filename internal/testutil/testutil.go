// Package testutil provides an in-memory database and fixture builders for store, service
// and handler tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/trentd187/matchplay-league/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a fresh in-memory SQLite database with every table migrated.
// The pool is pinned to one connection; each new connection would otherwise get its own
// empty database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// Fixtures inserts rows with sensible defaults and fails the test on any error.
type Fixtures struct {
	t     *testing.T
	db    *gorm.DB
	teams int
}

// NewFixtures returns a builder bound to db.
func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) create(v any) {
	f.t.Helper()
	require.NoError(f.t, f.db.Create(v).Error)
}

// User creates a user with the given display name and the plain "user" role.
func (f *Fixtures) User(name string) *models.User {
	f.t.Helper()
	sub := "sub_" + uuid.NewString()
	u := &models.User{
		Subject:     &sub,
		DisplayName: name,
		Email:       uuid.NewString() + "@example.com",
		Role:        models.UserRoleUser,
	}
	f.create(u)
	return u
}

// League creates a league owned by creator. The creator is not added as a member; use Member.
func (f *Fixtures) League(creator *models.User, net bool) *models.League {
	f.t.Helper()
	l := &models.League{
		Name:               "Tuesday Twilight",
		HandicapPercentage: 1,
		MinimumScores:      1,
		ScoreWindow:        20,
		NetMatchPlay:       net,
		CreatedBy:          creator.ID,
	}
	f.create(l)
	return l
}

// Member adds a user to a league.
func (f *Fixtures) Member(league *models.League, user *models.User, role models.MemberRole) *models.LeagueMember {
	f.t.Helper()
	m := &models.LeagueMember{LeagueID: league.ID, UserID: user.ID, Role: role}
	f.create(m)
	return m
}

// Tee creates a course with one tee and holeCount holes. Every hole is a par 4 and the
// stroke index equals the hole number.
func (f *Fixtures) Tee(rating float64, slope, holeCount int) *models.Tee {
	f.t.Helper()
	course := &models.Course{Name: "Pine Valley Muni"}
	f.create(course)

	tee := &models.Tee{
		CourseID:     course.ID,
		Name:         "White",
		CourseRating: rating,
		SlopeRating:  slope,
		Par:          4 * holeCount,
	}
	f.create(tee)
	for n := 1; n <= holeCount; n++ {
		f.create(&models.Hole{TeeID: tee.ID, HoleNumber: n, Par: 4, StrokeIndex: n})
	}
	require.NoError(f.t, f.db.Preload("Holes").First(tee, "id = ?", tee.ID).Error)
	return tee
}

// Season creates an active season in the league.
func (f *Fixtures) Season(league *models.League) *models.Season {
	f.t.Helper()
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	s := &models.Season{
		LeagueID:  league.ID,
		Name:      "Summer",
		Status:    models.SeasonStatusActive,
		StartDate: &start,
		EndDate:   &end,
	}
	f.create(s)
	return s
}

// Team creates a team in the season with the given members.
// Teams get increasing creation times so their seat order is the order they were built in.
func (f *Fixtures) Team(season *models.Season, name string, members ...*models.User) *models.Team {
	f.t.Helper()
	f.teams++
	team := &models.Team{SeasonID: season.ID, Name: name}
	team.CreatedAt = time.Date(2026, 4, 1, 0, 0, f.teams, 0, time.UTC)
	f.create(team)
	for _, u := range members {
		tm := models.TeamMember{TeamID: team.ID, UserID: u.ID}
		f.create(&tm)
		team.Members = append(team.Members, tm)
	}
	return team
}

// Round creates a round on the season calendar.
func (f *Fixtures) Round(season *models.Season, tee *models.Tee, date time.Time, status models.RoundStatus, holeCount int) *models.Round {
	f.t.Helper()
	r := &models.Round{
		SeasonID:      season.ID,
		CourseID:      tee.CourseID,
		TeeID:         tee.ID,
		ScheduledDate: date,
		Status:        status,
		HoleCount:     holeCount,
	}
	f.create(r)
	return r
}

// Match creates a team match on the round with a player card for every member of both teams.
// The returned players are in team A, team B order.
func (f *Fixtures) Match(round *models.Round, teamA, teamB *models.Team) (*models.Match, []*models.MatchPlayer) {
	f.t.Helper()
	// Copies, so later updates through the match never write into the caller's teams
	aID, bID := teamA.ID, teamB.ID
	m := &models.Match{RoundID: round.ID, TeamAID: &aID, TeamBID: &bID}
	f.create(m)

	var players []*models.MatchPlayer
	for _, team := range []*models.Team{teamA, teamB} {
		for _, tm := range team.Members {
			teamID := team.ID
			p := &models.MatchPlayer{MatchID: m.ID, UserID: tm.UserID, TeamID: &teamID}
			f.create(p)
			players = append(players, p)
		}
	}
	return m, players
}

// Scores records gross scores for a player starting at hole 1.
func (f *Fixtures) Scores(player *models.MatchPlayer, gross ...int) {
	f.t.Helper()
	for i, g := range gross {
		f.create(&models.HoleScore{
			MatchPlayerID: player.ID,
			HoleNumber:    i + 1,
			GrossScore:    g,
			EnteredBy:     player.UserID,
		})
	}
}

// Repeat returns n copies of v, for filling a card.
func Repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}
