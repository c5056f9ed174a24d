// leaguectl runs the league's batch jobs from the command line: schema migrations,
// handicap recalculation, schedule generation, standings, and an offline pairings preview.
package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/trentd187/matchplay-league/internal/config"
	"github.com/trentd187/matchplay-league/internal/database"
	"github.com/trentd187/matchplay-league/internal/logger"
	"github.com/trentd187/matchplay-league/internal/metrics"
	"github.com/trentd187/matchplay-league/internal/schedule"
	"github.com/trentd187/matchplay-league/internal/services"
	"github.com/trentd187/matchplay-league/internal/store"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "leaguectl:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "leaguectl",
		Usage:  "match-play league maintenance",
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply pending database migrations",
				Action: func(c *cli.Context) error {
					cfg := config.Load()
					if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "migrations applied")
					return nil
				},
			},
			{
				Name:  "handicaps",
				Usage: "handicap index maintenance",
				Subcommands: []*cli.Command{
					{
						Name:   "recalc",
						Usage:  "recalculate every member's index in a league",
						Flags:  []cli.Flag{&cli.StringFlag{Name: "league", Required: true, Usage: "league ID"}},
						Action: withService(recalcHandicaps),
					},
				},
			},
			{
				Name:  "schedule",
				Usage: "season schedule",
				Subcommands: []*cli.Command{
					{
						Name:   "generate",
						Usage:  "fill the season's empty rounds with round-robin matches",
						Flags:  []cli.Flag{&cli.StringFlag{Name: "season", Required: true, Usage: "season ID"}},
						Action: withService(generateSchedule),
					},
				},
			},
			{
				Name:   "standings",
				Usage:  "print a season's standings",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "season", Required: true, Usage: "season ID"}},
				Action: withService(printStandings),
			},
			{
				Name:  "pairings",
				Usage: "preview the round-robin weeks for a list of teams (no database)",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "team", Aliases: []string{"t"}, Required: true, Usage: "team name, in seat order; repeat for each team"},
				},
				Action: printPairings,
			},
		},
	}
}

// withService connects to the database configured in the environment and hands the
// command a ready Service.
func withService(fn func(c *cli.Context, svc *services.Service) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg := config.Load()
		log := logger.NewWithWriter(c.App.ErrWriter, cfg.LogLevel, cfg.Env)
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}

		db, err := database.Connect(cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		svc := services.New(store.New(db), log, metrics.NewNoop(), services.WithHandicapWorkers(cfg.HandicapWorkers))
		return fn(c, svc)
	}
}

func idFlag(c *cli.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.String(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("--%s: %w", name, err)
	}
	return id, nil
}

func recalcHandicaps(c *cli.Context, svc *services.Service) error {
	leagueID, err := idFlag(c, "league")
	if err != nil {
		return err
	}
	results, err := svc.RecalculateHandicaps(c.Context, leagueID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PLAYER\tROUNDS\tINDEX")
	for _, r := range results {
		index := "-"
		if r.Index != nil {
			index = fmt.Sprintf("%.1f", *r.Index)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", r.DisplayName, r.Rounds, index)
	}
	return w.Flush()
}

func generateSchedule(c *cli.Context, svc *services.Service) error {
	seasonID, err := idFlag(c, "season")
	if err != nil {
		return err
	}
	res, err := svc.GenerateSchedule(c.Context, seasonID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d teams, %d-week rotation: filled %d rounds with %d matches\n",
		res.Teams, res.Weeks, res.RoundsFilled, res.MatchesCreated)
	return nil
}

func printStandings(c *cli.Context, svc *services.Service) error {
	seasonID, err := idFlag(c, "season")
	if err != nil {
		return err
	}
	table, err := svc.Standings(c.Context, seasonID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTEAM\tW\tL\tT\tPTS")
	for _, e := range table {
		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%.1f\n", e.Rank, e.TeamName, e.Wins, e.Losses, e.Ties, e.Points)
	}
	return w.Flush()
}

func printPairings(c *cli.Context) error {
	// Fewer than two teams prints nothing: there is no one to pair yet
	weeks := schedule.GeneratePairings(c.StringSlice("team"))
	for i, week := range weeks {
		fmt.Fprintf(c.App.Writer, "Week %d\n", i+1)
		for _, p := range week {
			fmt.Fprintf(c.App.Writer, "  %s v %s\n", p.TeamA, p.TeamB)
		}
	}
	return nil
}
