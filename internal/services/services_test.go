package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trentd187/matchplay-league/internal/matchplay"
	"github.com/trentd187/matchplay-league/internal/metrics"
	"github.com/trentd187/matchplay-league/internal/models"
	"github.com/trentd187/matchplay-league/internal/store"
	"github.com/trentd187/matchplay-league/internal/testutil"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *gorm.DB, *testutil.Fixtures) {
	t.Helper()
	db := testutil.NewDB(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(store.New(db), log, metrics.NewNoop(),
		WithHandicapWorkers(2),
		WithClock(func() time.Time { return fixedNow }),
	)
	return svc, db, testutil.NewFixtures(t, db)
}

func day(d int) time.Time {
	return time.Date(2026, 6, d, 18, 0, 0, 0, time.UTC)
}

// league builds a league with four members on two teams, sharing one 9-hole tee rated 35.0/113.
type league struct {
	league                  *models.League
	season                  *models.Season
	tee                     *models.Tee
	teamA, teamB            *models.Team
	alice, bob, carol, dave *models.User
	aliceM, carolM          *models.LeagueMember
}

func newLeague(f *testutil.Fixtures, net bool) league {
	l := league{}
	l.alice, l.bob, l.carol, l.dave = f.User("Alice"), f.User("Bob"), f.User("Carol"), f.User("Dave")
	l.league = f.League(l.alice, net)
	l.aliceM = f.Member(l.league, l.alice, models.MemberRoleOrganizer)
	f.Member(l.league, l.bob, models.MemberRolePlayer)
	l.carolM = f.Member(l.league, l.carol, models.MemberRolePlayer)
	f.Member(l.league, l.dave, models.MemberRolePlayer)
	l.season = f.Season(l.league)
	l.tee = f.Tee(35.0, 113, 9)
	l.teamA = f.Team(l.season, "Aces", l.alice, l.bob)
	l.teamB = f.Team(l.season, "Birdies", l.carol, l.dave)
	return l
}

func TestCreateLeague(t *testing.T) {
	svc, _, f := newTestService(t)
	ctx := context.Background()
	owner := f.User("Owner")

	_, err := svc.CreateLeague(ctx, CreateLeagueInput{Name: "   ", CreatedBy: owner.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CreateLeague(ctx, CreateLeagueInput{Name: "Bad", HandicapPercentage: 1.5, CreatedBy: owner.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	league, err := svc.CreateLeague(ctx, CreateLeagueInput{Name: " Thursday Scramble ", CreatedBy: owner.ID})
	require.NoError(t, err)
	assert.Equal(t, "Thursday Scramble", league.Name)
	assert.Equal(t, 1.0, league.HandicapPercentage)
	assert.Equal(t, 3, league.MinimumScores)
	assert.Equal(t, 20, league.ScoreWindow)

	summaries, err := svc.ListLeagues(ctx, owner.ID, false)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.EqualValues(t, 1, summaries[0].MemberCount)
}

func TestIsLeagueOrganizer(t *testing.T) {
	svc, _, f := newTestService(t)
	ctx := context.Background()
	l := newLeague(f, false)
	stranger := f.User("Stranger")

	tests := []struct {
		name string
		user uuid.UUID
		role models.UserRole
		want bool
	}{
		{"organizer", l.alice.ID, models.UserRoleUser, true},
		{"player", l.bob.ID, models.UserRoleUser, false},
		{"non-member", stranger.ID, models.UserRoleUser, false},
		{"global admin", stranger.ID, models.UserRoleAdmin, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.IsLeagueOrganizer(ctx, l.league.ID, tt.user, tt.role)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	leagueID, err := svc.SeasonLeague(ctx, l.season.ID)
	require.NoError(t, err)
	assert.Equal(t, l.league.ID, leagueID)
}

func TestRecalculateHandicaps(t *testing.T) {
	svc, _, f := newTestService(t)
	ctx := context.Background()
	l := newLeague(f, false)

	r1 := f.Round(l.season, l.tee, day(2), models.RoundStatusCompleted, 9)
	_, p1 := f.Match(r1, l.teamA, l.teamB)
	f.Scores(p1[0], testutil.Repeat(5, 9)...) // Alice 45: differential 10.0
	f.Scores(p1[2], testutil.Repeat(5, 8)...) // Carol stopped after 8 holes: not counted

	r2 := f.Round(l.season, l.tee, day(9), models.RoundStatusCompleted, 9)
	_, p2 := f.Match(r2, l.teamA, l.teamB)
	f.Scores(p2[0], 5, 5, 5, 5, 5, 4, 4, 4, 4) // Alice 41: differential 6.0
	f.Scores(p2[2], testutil.Repeat(5, 9)...)  // Carol 45: differential 10.0

	results, err := svc.RecalculateHandicaps(ctx, l.league.ID)
	require.NoError(t, err)
	require.Len(t, results, 4)

	byName := map[string]HandicapResult{}
	for _, r := range results {
		byName[r.DisplayName] = r
	}

	// Two differentials: the best one counts
	require.NotNil(t, byName["Alice"].Index)
	assert.InDelta(t, 6.0, *byName["Alice"].Index, 1e-9)
	assert.Equal(t, 2, byName["Alice"].Rounds)
	require.NotNil(t, byName["Alice"].UpdatedAt)
	assert.Equal(t, fixedNow, *byName["Alice"].UpdatedAt)

	require.NotNil(t, byName["Carol"].Index)
	assert.InDelta(t, 10.0, *byName["Carol"].Index, 1e-9)
	assert.Equal(t, 1, byName["Carol"].Rounds)

	assert.Nil(t, byName["Bob"].Index)
	assert.Nil(t, byName["Dave"].Index)

	stored, err := svc.Handicaps(ctx, l.league.ID)
	require.NoError(t, err)
	require.Len(t, stored, 4)
	assert.Equal(t, "Alice", stored[0].DisplayName)
	require.NotNil(t, stored[0].Index)
	assert.InDelta(t, 6.0, *stored[0].Index, 1e-9)
}

func TestRecalculateHandicapsRespectsMinimum(t *testing.T) {
	svc, db, f := newTestService(t)
	ctx := context.Background()
	l := newLeague(f, false)
	require.NoError(t, db.Model(l.league).Update("minimum_scores", 3).Error)

	r1 := f.Round(l.season, l.tee, day(2), models.RoundStatusCompleted, 9)
	_, p1 := f.Match(r1, l.teamA, l.teamB)
	f.Scores(p1[0], testutil.Repeat(5, 9)...)

	results, err := svc.RecalculateHandicaps(ctx, l.league.ID)
	require.NoError(t, err)
	for _, r := range results {
		assert.Nil(t, r.Index, r.DisplayName)
	}
}

func TestRecalculateHandicapsUnknownLeague(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.RecalculateHandicaps(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Handicaps(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatchStatusGrossAndNet(t *testing.T) {
	for _, net := range []bool{false, true} {
		svc, db, f := newTestService(t)
		ctx := context.Background()
		l := newLeague(f, net)

		// Carol plays off 4.0; everyone else is scratch or has no index
		require.NoError(t, db.Model(l.aliceM).Update("handicap_index", 0.0).Error)
		require.NoError(t, db.Model(l.carolM).Update("handicap_index", 4.0).Error)

		round := f.Round(l.season, l.tee, day(2), models.RoundStatusActive, 9)
		m, p := f.Match(round, l.teamA, l.teamB)
		f.Scores(p[0], 4, 4) // Alice
		f.Scores(p[1], 5, 5) // Bob
		f.Scores(p[2], 5, 5) // Carol, a stroke on SI 1 and 2 when net
		f.Scores(p[3], 6, 6) // Dave

		status, err := svc.MatchStatus(ctx, m.ID)
		require.NoError(t, err)
		assert.Equal(t, net, status.Net)
		assert.Equal(t, 2, status.HolesPlayed)
		assert.Equal(t, 9, status.HoleCount)
		assert.Equal(t, "team:"+l.teamA.ID.String(), status.SideA)
		if net {
			assert.Equal(t, matchplay.LabelAllSquare, status.Label)
			assert.Equal(t, matchplay.LeaderAllSquare, status.Leader)
		} else {
			assert.Equal(t, "2 UP", status.Label)
			assert.Equal(t, matchplay.LeaderA, status.Leader)
		}
	}
}

func TestMatchStatusInvalidFormat(t *testing.T) {
	svc, _, f := newTestService(t)
	l := newLeague(f, false)
	round := f.Round(l.season, l.tee, day(2), models.RoundStatusActive, 9)
	empty := f.Team(l.season, "Empty")

	m, _ := f.Match(round, l.teamA, empty)
	status, err := svc.MatchStatus(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, matchplay.LabelInvalidFormat, status.Label)
}

func TestRecordScore(t *testing.T) {
	svc, _, f := newTestService(t)
	ctx := context.Background()
	l := newLeague(f, false)
	round := f.Round(l.season, l.tee, day(2), models.RoundStatusActive, 9)
	m, _ := f.Match(round, l.teamA, l.teamB)

	status, err := svc.RecordScore(ctx, m.ID, ScoreInput{UserID: l.alice.ID, HoleNumber: 1, GrossScore: 4, EnteredBy: l.alice.ID})
	require.NoError(t, err)
	assert.Equal(t, matchplay.LabelNotStarted, status.Label)
	assert.Equal(t, 0, status.HolesPlayed)

	status, err = svc.RecordScore(ctx, m.ID, ScoreInput{UserID: l.carol.ID, HoleNumber: 1, GrossScore: 5, EnteredBy: l.alice.ID})
	require.NoError(t, err)
	assert.Equal(t, "1 UP", status.Label)
	assert.Equal(t, 1, status.HolesPlayed)

	// Correcting a score replaces it
	status, err = svc.RecordScore(ctx, m.ID, ScoreInput{UserID: l.carol.ID, HoleNumber: 1, GrossScore: 4, EnteredBy: l.carol.ID})
	require.NoError(t, err)
	assert.Equal(t, matchplay.LabelAllSquare, status.Label)

	_, err = svc.RecordScore(ctx, m.ID, ScoreInput{UserID: l.alice.ID, HoleNumber: 10, GrossScore: 4})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.RecordScore(ctx, m.ID, ScoreInput{UserID: l.alice.ID, HoleNumber: 2, GrossScore: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.RecordScore(ctx, m.ID, ScoreInput{UserID: uuid.New(), HoleNumber: 2, GrossScore: 4})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.RecordScore(ctx, uuid.New(), ScoreInput{UserID: l.alice.ID, HoleNumber: 2, GrossScore: 4})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatchesScoredCountsSubmissionsOnly(t *testing.T) {
	db := testutil.NewDB(t)
	m := metrics.New(prometheus.NewRegistry())
	svc := New(store.New(db), slog.New(slog.NewTextHandler(io.Discard, nil)), m)
	f := testutil.NewFixtures(t, db)
	ctx := context.Background()
	l := newLeague(f, false)
	round := f.Round(l.season, l.tee, day(2), models.RoundStatusActive, 9)
	match, _ := f.Match(round, l.teamA, l.teamB)

	// Viewing a match is not scoring it
	for i := 0; i < 3; i++ {
		_, err := svc.MatchStatus(ctx, match.ID)
		require.NoError(t, err)
	}
	assert.Zero(t, promtest.CollectAndCount(m.MatchesScored))

	_, err := svc.RecordScore(ctx, match.ID, ScoreInput{UserID: l.alice.ID, HoleNumber: 1, GrossScore: 4, EnteredBy: l.alice.ID})
	require.NoError(t, err)
	_, err = svc.RecordScore(ctx, match.ID, ScoreInput{UserID: l.carol.ID, HoleNumber: 1, GrossScore: 5, EnteredBy: l.carol.ID})
	require.NoError(t, err)
	_, err = svc.MatchStatus(ctx, match.ID)
	require.NoError(t, err)

	assert.Equal(t, 1.0, promtest.ToFloat64(m.MatchesScored.WithLabelValues("not_started")))
	assert.Equal(t, 1.0, promtest.ToFloat64(m.MatchesScored.WithLabelValues("a")))
	assert.Equal(t, 2.0, promtest.ToFloat64(m.ScoresRecorded))
}

func TestStandings(t *testing.T) {
	svc, _, f := newTestService(t)
	ctx := context.Background()
	l := newLeague(f, false)
	erin, frank := f.User("Erin"), f.User("Frank")
	teamC := f.Team(l.season, "Condors", erin, frank)

	// Aces beat Birdies
	r1 := f.Round(l.season, l.tee, day(2), models.RoundStatusCompleted, 9)
	_, p := f.Match(r1, l.teamA, l.teamB)
	f.Scores(p[0], 3, 4, 4)
	f.Scores(p[2], 4, 4, 4)

	// Aces and Condors never post a score: a tie
	r2 := f.Round(l.season, l.tee, day(9), models.RoundStatusCompleted, 9)
	f.Match(r2, l.teamA, teamC)

	// Birdies beat Condors in a round that is still open: not counted
	r3 := f.Round(l.season, l.tee, day(16), models.RoundStatusActive, 9)
	_, p3 := f.Match(r3, l.teamB, teamC)
	f.Scores(p3[0], 3)
	f.Scores(p3[2], 5)

	table, err := svc.Standings(ctx, l.season.ID)
	require.NoError(t, err)
	require.Len(t, table, 3)

	assert.Equal(t, 1, table[0].Rank)
	assert.Equal(t, "Aces", table[0].TeamName)
	assert.Equal(t, 1, table[0].Wins)
	assert.Equal(t, 1, table[0].Ties)
	assert.Equal(t, 1.5, table[0].Points)

	assert.Equal(t, "Condors", table[1].TeamName)
	assert.Equal(t, 0.5, table[1].Points)

	assert.Equal(t, "Birdies", table[2].TeamName)
	assert.Equal(t, 1, table[2].Losses)
	assert.Equal(t, 0.0, table[2].Points)

	_, err = svc.Standings(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGenerateSchedule(t *testing.T) {
	svc, db, f := newTestService(t)
	ctx := context.Background()
	l := newLeague(f, false)
	f.Team(l.season, "Condors", f.User("Erin"))
	f.Team(l.season, "Dormies", f.User("Frank"))

	for d := 1; d <= 4; d++ {
		f.Round(l.season, l.tee, day(d*7), models.RoundStatusScheduled, 9)
	}

	res, err := svc.GenerateSchedule(ctx, l.season.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Teams)
	assert.Equal(t, 3, res.Weeks)
	assert.Equal(t, 4, res.RoundsFilled)
	assert.Equal(t, 8, res.MatchesCreated)

	// Running again is a no-op
	res, err = svc.GenerateSchedule(ctx, l.season.ID)
	require.NoError(t, err)
	assert.Zero(t, res.MatchesCreated)

	// A new round gets filled on the next run
	f.Round(l.season, l.tee, day(29), models.RoundStatusScheduled, 9)
	res, err = svc.GenerateSchedule(ctx, l.season.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.RoundsFilled)
	assert.Equal(t, 2, res.MatchesCreated)

	var matches int64
	require.NoError(t, db.Model(&models.Match{}).Count(&matches).Error)
	assert.EqualValues(t, 10, matches)
}

func TestGenerateScheduleWithOneTeamIsNoop(t *testing.T) {
	svc, _, f := newTestService(t)
	owner := f.User("Owner")
	season := f.Season(f.League(owner, false))
	f.Team(season, "Lonely", owner)

	// A league with one team so far has nothing to schedule yet
	f.Round(season, f.Tee(35.0, 113, 9), day(2), models.RoundStatusScheduled, 9)
	res, err := svc.GenerateSchedule(context.Background(), season.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Teams)
	assert.Zero(t, res.Weeks)
	assert.Zero(t, res.RoundsFilled)
	assert.Zero(t, res.MatchesCreated)

	_, err = svc.GenerateSchedule(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
