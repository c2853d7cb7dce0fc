package services

import (
	"math"
	"sync"
	"testing"
	"time"

	"afl-api/packages/core/models"
	"afl-api/packages/core/testutil"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db         *gorm.DB
	clock      *fakeClock
	ledger     *LedgerService
	settlement *SettlementService
	players    *PlayerService
	teams      *TeamService
	games      *GameService
	stats      *StatsService
	expiry     *ExpiryService
	feed       *LiveFeed
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	logger := zerolog.Nop()
	clock := &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)}

	ledger := NewLedgerService(db, logger)
	ledger.now = clock.Now
	settlement := NewSettlementService(db, ledger, logger)
	players := NewPlayerService(db, ledger, "img/pin.png", logger)
	players.now = clock.Now
	teams := NewTeamService(db, ledger, logger)
	teams.now = clock.Now
	feed := NewLiveFeed()
	games := NewGameService(db, ledger, settlement, teams, feed, models.DefaultGameRules(), logger)
	games.now = clock.Now
	stats := NewStatsService(db)
	stats.now = clock.Now

	return &testEnv{
		db:         db,
		clock:      clock,
		ledger:     ledger,
		settlement: settlement,
		players:    players,
		teams:      teams,
		games:      games,
		stats:      stats,
		expiry:     NewExpiryService(db, games, logger),
		feed:       feed,
	}
}

func (e *testEnv) player(t *testing.T, name string) *models.Player {
	t.Helper()
	player, err := e.players.CreatePlayer(models.CreatePlayerRequest{Name: name})
	if err != nil {
		t.Fatalf("create player %s: %v", name, err)
	}
	return player
}

func (e *testEnv) team(t *testing.T, defense, attack *models.Player) *models.Team {
	t.Helper()
	team, err := e.teams.CreateTeam(models.CreateTeamRequest{
		DefensePlayerID: defense.ID,
		AttackPlayerID:  attack.ID,
	})
	if err != nil {
		t.Fatalf("create team: %v", err)
	}
	return team
}

// play opens a game between left and right and records the final score,
// returning the game after it ended.
func (e *testEnv) play(t *testing.T, left, right *models.Team, leftScore, rightScore int) *models.Game {
	t.Helper()
	game, err := e.games.CreateOrUpdateGame(models.CreateGameRequest{
		LeftTeamID:  left.ID,
		RightTeamID: right.ID,
		LeftScore:   &leftScore,
		RightScore:  &rightScore,
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if !game.Ended {
		game, err = e.games.EndGame(game.Timestamp)
		if err != nil {
			t.Fatalf("end game: %v", err)
		}
	}
	e.clock.Advance(time.Minute)
	return game
}

func (e *testEnv) current(t *testing.T, subject models.Subject) *models.Stats {
	t.Helper()
	stats, err := e.ledger.CurrentStats(subject)
	if err != nil {
		t.Fatalf("current stats of %s: %v", subject, err)
	}
	return stats
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-4
}
