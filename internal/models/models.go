// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
// The struct field tags (the backtick strings like `gorm:"..."`) tell GORM how to handle
// each field: its column type, constraints, default values, and relationships.
//
// The data model represents a match-play league:
//   - Users join Leagues; each LeagueMember carries the member's latest handicap index
//   - A League runs Seasons; each Season has Teams and a calendar of Rounds
//   - Each Round holds Matches between two sides, and MatchPlayers record hole-by-hole scores
//   - Courses have Tees (rating + slope) and each Tee has Holes (par + stroke index)
//
// Nothing in this package computes anything. Handicaps, match status and standings are derived
// by the engine packages (handicap, matchplay, schedule) from rows loaded by the store.
package models

import (
	"time"

	// uuid provides universally unique identifiers for primary keys.
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- Enums ---
// Go doesn't have a built-in enum keyword, so we simulate them using a named string type
// plus constants. The values are what ends up in the database columns.

// UserRole represents a user's global permission level across the entire platform.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"   // Full access: manage users, leagues, everything
	UserRoleManager UserRole = "manager" // Can create leagues
	UserRoleUser    UserRole = "user"    // Regular player
)

// MemberRole controls what a user can do within a specific league.
type MemberRole string

const (
	MemberRoleOrganizer MemberRole = "organizer" // Can recalculate handicaps and generate schedules
	MemberRolePlayer    MemberRole = "player"    // Participant only
)

// SeasonStatus tracks the lifecycle of a season.
type SeasonStatus string

const (
	SeasonStatusUpcoming  SeasonStatus = "upcoming"
	SeasonStatusActive    SeasonStatus = "active"
	SeasonStatusCompleted SeasonStatus = "completed"
)

// RoundStatus tracks the lifecycle of a single round on the season calendar.
// Only "completed" rounds count toward handicaps and standings.
type RoundStatus string

const (
	RoundStatusScheduled RoundStatus = "scheduled" // On the calendar but not started
	RoundStatusActive    RoundStatus = "active"    // Being played; matches show live status
	RoundStatusCompleted RoundStatus = "completed" // Scores are final
)

// --- Models ---

// Model is embedded in every table with a UUID primary key.
// IDs are generated in Go (BeforeCreate) rather than by a database default, so the same
// models work against Postgres in production and SQLite in tests.
type Model struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate is a GORM hook that runs before every INSERT.
func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// User represents a registered person in the system.
// Users are created automatically the first time an authenticated user hits the API.
type User struct {
	Model
	Subject     *string  `gorm:"uniqueIndex"`          // JWT "sub" claim from the identity provider
	DisplayName string   `gorm:"not null"`             // Name shown in standings and scorecards
	Email       string   `gorm:"uniqueIndex;not null"` // Unique email
	Phone       *string  // Optional; used by the substitute-finder outside this service
	Role        UserRole `gorm:"type:user_role;not null;default:'user'"`
}

// League is the top-level container: a group of members that plays seasons of match play.
// The handicap settings live here because every season of the league shares them.
type League struct {
	Model
	Name               string `gorm:"not null"`
	Description        *string
	HandicapPercentage float64        `gorm:"not null;default:1"`  // Share of the index players receive (0.9 = 90% league)
	MinimumScores      int            `gorm:"not null;default:3"`  // Don't publish a handicap until a member has this many rounds
	ScoreWindow        int            `gorm:"not null;default:20"` // How many recent rounds feed the index
	NetMatchPlay       bool           `gorm:"not null;default:false"`
	CreatedBy          uuid.UUID      `gorm:"type:uuid;not null"`
	Creator            User           `gorm:"foreignKey:CreatedBy"`
	Members            []LeagueMember `gorm:"foreignKey:LeagueID"`
	Seasons            []Season       `gorm:"foreignKey:LeagueID"`
}

// LeagueMember links a User to a League and holds the member's current handicap.
// HandicapIndex is nil until the member has played League.MinimumScores rounds.
// The column is decimal(4,1): the engine hands back a plain float and the column
// decides how it is stored.
type LeagueMember struct {
	Model
	LeagueID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_league_user"`
	League            League     `gorm:"foreignKey:LeagueID"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_league_user"`
	User              User       `gorm:"foreignKey:UserID"`
	Role              MemberRole `gorm:"type:member_role;not null;default:'player'"`
	HandicapIndex     *float64   `gorm:"type:decimal(4,1)"`
	HandicapUpdatedAt *time.Time
}

// Season is one run of the league's schedule.
type Season struct {
	Model
	LeagueID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	League    League       `gorm:"foreignKey:LeagueID"`
	Name      string       `gorm:"not null"`
	Status    SeasonStatus `gorm:"type:season_status;not null;default:'upcoming'"`
	StartDate *time.Time
	EndDate   *time.Time
	Teams     []Team  `gorm:"foreignKey:SeasonID"`
	Rounds    []Round `gorm:"foreignKey:SeasonID"`
}

// Team is a two-person (usually) team that plays the whole season together.
// Teams are ordered by creation time when the schedule is generated.
type Team struct {
	Model
	SeasonID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Season   Season       `gorm:"foreignKey:SeasonID"`
	Name     string       `gorm:"not null"`
	Members  []TeamMember `gorm:"foreignKey:TeamID"`
}

// TeamMember places a user on a team.
type TeamMember struct {
	TeamID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Team   Team      `gorm:"foreignKey:TeamID"`
	User   User      `gorm:"foreignKey:UserID"`
}

// Course represents a golf course where rounds are played.
type Course struct {
	Model
	Name  string `gorm:"not null"`
	City  string `gorm:"not null;default:''"`
	State string `gorm:"not null;default:''"`
	Tees  []Tee  `gorm:"foreignKey:CourseID"`
}

// Tee represents one set of tee boxes on a course (e.g., "Blue", "White").
// CourseRating and SlopeRating are what turn a gross score into a handicap differential.
type Tee struct {
	Model
	CourseID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Course       Course    `gorm:"foreignKey:CourseID"`
	Name         string    `gorm:"not null"`
	CourseRating float64   `gorm:"type:decimal(4,1);not null"` // Expected score for a scratch golfer (e.g. 72.4)
	SlopeRating  int       `gorm:"not null"`                   // 55–155; 113 is average difficulty
	Par          int       `gorm:"not null"`
	Holes        []Hole    `gorm:"foreignKey:TeeID"`
}

// Hole stores per-hole details for a specific set of tees.
type Hole struct {
	Model
	TeeID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tee_hole"`
	Tee         Tee       `gorm:"foreignKey:TeeID"`
	HoleNumber  int       `gorm:"not null;uniqueIndex:idx_tee_hole"`
	Par         int       `gorm:"not null"`
	StrokeIndex int       `gorm:"not null"` // 1 = hardest hole, gets the first handicap stroke
}

// Round is one dated round of a season's calendar, played at one course.
type Round struct {
	Model
	SeasonID      uuid.UUID   `gorm:"type:uuid;not null;index"`
	Season        Season      `gorm:"foreignKey:SeasonID"`
	CourseID      uuid.UUID   `gorm:"type:uuid;not null"`
	Course        Course      `gorm:"foreignKey:CourseID"`
	TeeID         uuid.UUID   `gorm:"type:uuid;not null"` // Default tee; players can override on MatchPlayer
	Tee           Tee         `gorm:"foreignKey:TeeID"`
	ScheduledDate time.Time   `gorm:"not null"`
	Status        RoundStatus `gorm:"type:round_status;not null;default:'scheduled'"`
	HoleCount     int         `gorm:"not null;default:18"` // Nine-hole leagues use tees rated for nine holes
	Matches       []Match     `gorm:"foreignKey:RoundID"`
}

// Match is one pairing on a round: team A against team B.
// Team IDs are nil for ad-hoc matches between individuals.
type Match struct {
	Model
	RoundID uuid.UUID     `gorm:"type:uuid;not null;index"`
	Round   Round         `gorm:"foreignKey:RoundID"`
	TeamAID *uuid.UUID    `gorm:"type:uuid"`
	TeamA   *Team         `gorm:"foreignKey:TeamAID"`
	TeamBID *uuid.UUID    `gorm:"type:uuid"`
	TeamB   *Team         `gorm:"foreignKey:TeamBID"`
	Players []MatchPlayer `gorm:"foreignKey:MatchID"`
}

// MatchPlayer is one player's card in a match.
// TeamID is nil when the player has no team for the round; they then play as their own side.
// OverrideScore lets an organizer record an adjusted gross for handicap purposes.
type MatchPlayer struct {
	Model
	MatchID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_match_user"`
	Match         Match      `gorm:"foreignKey:MatchID"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_match_user"`
	User          User       `gorm:"foreignKey:UserID"`
	TeamID        *uuid.UUID `gorm:"type:uuid"`
	TeeID         *uuid.UUID `gorm:"type:uuid"` // nil = round's default tee
	Tee           *Tee       `gorm:"foreignKey:TeeID"`
	OverrideScore *int
	Scores        []HoleScore `gorm:"foreignKey:MatchPlayerID"`
}

// HoleScore records the strokes a player took on a single hole.
// The unique index makes re-submitting a hole an update rather than a second row.
type HoleScore struct {
	Model
	MatchPlayerID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_player_hole"`
	MatchPlayer   MatchPlayer `gorm:"foreignKey:MatchPlayerID"`
	HoleNumber    int         `gorm:"not null;uniqueIndex:idx_player_hole"`
	GrossScore    int         `gorm:"not null"`
	EnteredBy     uuid.UUID   `gorm:"type:uuid;not null"` // Which user typed the score in
}

// All lists every model, in dependency order, for AutoMigrate in tests and tooling.
func All() []any {
	return []any{
		&User{}, &League{}, &LeagueMember{}, &Season{}, &Team{}, &TeamMember{},
		&Course{}, &Tee{}, &Hole{}, &Round{}, &Match{}, &MatchPlayer{}, &HoleScore{},
	}
}
