package eligibility

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gaffer/go/internal/models"
)

// fakeRepo keeps suspensions in memory keyed by (player, competition).
type fakeRepo struct {
	rows map[uuid.UUID]map[uuid.UUID]models.Suspension // player -> competition -> row
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[uuid.UUID]map[uuid.UUID]models.Suspension)}
}

func (r *fakeRepo) GetSuspension(_ context.Context, playerID, competitionID uuid.UUID) (*models.Suspension, error) {
	if s, ok := r.rows[playerID][competitionID]; ok {
		copied := s
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeRepo) SuspensionsForPlayers(_ context.Context, competitionID uuid.UUID, playerIDs []uuid.UUID) ([]models.Suspension, error) {
	var out []models.Suspension
	for _, id := range playerIDs {
		if s, ok := r.rows[id][competitionID]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) ActiveSuspensionsForClubs(_ context.Context, competitionID uuid.UUID, _ []uuid.UUID) ([]models.Suspension, error) {
	// The fake rosters every known player at the queried clubs.
	var out []models.Suspension
	for _, comps := range r.rows {
		if s, ok := comps[competitionID]; ok && s.Banned() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpsertSuspensions(_ context.Context, suspensions []models.Suspension) error {
	for _, s := range suspensions {
		if r.rows[s.PlayerID] == nil {
			r.rows[s.PlayerID] = make(map[uuid.UUID]models.Suspension)
		}
		r.rows[s.PlayerID][s.CompetitionID] = s
	}
	return nil
}

func leagueComp() *models.Competition {
	return &models.Competition{
		ID:          uuid.New(),
		Name:        "Super Lig",
		HandlerType: models.HandlerTypeLeague,
	}
}

func cupComp() *models.Competition {
	return &models.Competition{
		ID:          uuid.New(),
		Name:        "Turkish Cup",
		HandlerType: models.HandlerTypeKnockoutCup,
	}
}

func newTestEngine(repo Repository) *Engine {
	return NewEngine(repo, DefaultRuleTable(), clockwork.NewFakeClock())
}

func TestYellowCardThreshold(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	e := newTestEngine(repo)
	comp := leagueComp()
	player := uuid.New()

	// League threshold is 5; cards 1-4 carry no ban.
	for i := 1; i <= 4; i++ {
		s, err := e.ProcessYellowCard(ctx, player, comp)
		if err != nil {
			t.Fatalf("yellow %d: %v", i, err)
		}
		if s.MatchesRemaining != 0 {
			t.Fatalf("ban after %d yellows", i)
		}
	}

	s, err := e.ProcessYellowCard(ctx, player, comp)
	if err != nil {
		t.Fatalf("fifth yellow: %v", err)
	}
	if s.MatchesRemaining != 1 {
		t.Errorf("fifth yellow: matches remaining = %d, want 1", s.MatchesRemaining)
	}
	if s.YellowCards != 5 {
		t.Errorf("yellow count = %d, want 5", s.YellowCards)
	}
}

func TestCupThresholdIsStricter(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	e := newTestEngine(repo)
	comp := cupComp()
	player := uuid.New()

	for i := 0; i < 3; i++ {
		if _, err := e.ProcessYellowCard(ctx, player, comp); err != nil {
			t.Fatal(err)
		}
	}
	s, _ := repo.GetSuspension(ctx, player, comp.ID)
	if s.MatchesRemaining != 1 {
		t.Errorf("cup: third yellow should ban, matches remaining = %d", s.MatchesRemaining)
	}
}

func TestRedCardBansImmediately(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	e := newTestEngine(repo)
	comp := leagueComp()
	player := uuid.New()

	s, err := e.ProcessRedCard(ctx, player, comp)
	if err != nil {
		t.Fatal(err)
	}
	if s.MatchesRemaining != 1 {
		t.Errorf("red card: matches remaining = %d, want 1", s.MatchesRemaining)
	}
	if s.YellowCards != 0 {
		t.Errorf("red card should not touch the yellow counter, got %d", s.YellowCards)
	}
}

func TestSuspensionsAreCompetitionScoped(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	e := newTestEngine(repo)
	league, cup := leagueComp(), cupComp()
	player := uuid.New()

	if _, err := e.ProcessRedCard(ctx, player, league); err != nil {
		t.Fatal(err)
	}

	ok, err := e.IsEligible(ctx, player, league.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("player should be banned in the league")
	}

	ok, err = e.IsEligible(ctx, player, cup.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Error("league ban must not leak into the cup")
	}
}

// The batch path must land on exactly the same state as feeding the same
// events through the single-card API one at a time, regardless of order.
func TestBatchMatchesSequential(t *testing.T) {
	ctx := context.Background()
	playerA, playerB := uuid.New(), uuid.New()

	events := []models.MatchEvent{
		{PlayerID: playerA, Type: models.MatchEventYellowCard},
		{PlayerID: playerB, Type: models.MatchEventRedCard},
		{PlayerID: playerA, Type: models.MatchEventYellowCard},
		{PlayerID: playerA, Type: models.MatchEventGoal}, // ignored
		{PlayerID: playerB, Type: models.MatchEventYellowCard},
	}

	seqRepo := newFakeRepo()
	seqEngine := newTestEngine(seqRepo)
	seqComp := leagueComp()

	batchRepo := newFakeRepo()
	batchEngine := newTestEngine(batchRepo)

	// Pre-load both players with 4 yellows so the batch crosses the
	// threshold mid-way.
	for i := 0; i < 4; i++ {
		if _, err := seqEngine.ProcessYellowCard(ctx, playerA, seqComp); err != nil {
			t.Fatal(err)
		}
		if _, err := seqEngine.ProcessYellowCard(ctx, playerB, seqComp); err != nil {
			t.Fatal(err)
		}
	}
	for _, ev := range events {
		var err error
		switch ev.Type {
		case models.MatchEventYellowCard:
			_, err = seqEngine.ProcessYellowCard(ctx, ev.PlayerID, seqComp)
		case models.MatchEventRedCard:
			_, err = seqEngine.ProcessRedCard(ctx, ev.PlayerID, seqComp)
		}
		if err != nil {
			t.Fatal(err)
		}
	}

	batchComp := &models.Competition{ID: seqComp.ID, HandlerType: models.HandlerTypeLeague}
	for i := 0; i < 4; i++ {
		if _, err := batchEngine.ProcessYellowCard(ctx, playerA, batchComp); err != nil {
			t.Fatal(err)
		}
		if _, err := batchEngine.ProcessYellowCard(ctx, playerB, batchComp); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := batchEngine.BatchProcessCards(ctx, events, batchComp); err != nil {
		t.Fatal(err)
	}

	for _, player := range []uuid.UUID{playerA, playerB} {
		seq, _ := seqRepo.GetSuspension(ctx, player, seqComp.ID)
		batch, _ := batchRepo.GetSuspension(ctx, player, seqComp.ID)
		if seq.YellowCards != batch.YellowCards {
			t.Errorf("player yellows: sequential %d, batch %d", seq.YellowCards, batch.YellowCards)
		}
		if seq.MatchesRemaining != batch.MatchesRemaining {
			t.Errorf("player bans: sequential %d, batch %d", seq.MatchesRemaining, batch.MatchesRemaining)
		}
	}
}

func TestServeSuspensions(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	e := newTestEngine(repo)
	comp := leagueComp()
	banned, lineupPlayer := uuid.New(), uuid.New()

	if _, err := e.ProcessRedCard(ctx, banned, comp); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ProcessRedCard(ctx, lineupPlayer, comp); err != nil {
		t.Fatal(err)
	}

	match := &models.Match{
		ID:            uuid.New(),
		CompetitionID: comp.ID,
		HomeClubID:    uuid.New(),
		AwayClubID:    uuid.New(),
		Finalized:     false,
	}

	// An unfinalized match serves nothing.
	served, err := e.ServeSuspensions(ctx, match)
	if err != nil {
		t.Fatal(err)
	}
	if served != nil {
		t.Fatalf("unfinalized match served %d suspensions", len(served))
	}

	// Finalized: the sat-out player serves; the one who somehow played
	// does not.
	match.Finalized = true
	match.HomeLineup = []uuid.UUID{lineupPlayer}
	served, err = e.ServeSuspensions(ctx, match)
	if err != nil {
		t.Fatal(err)
	}
	if len(served) != 1 || served[0].PlayerID != banned {
		t.Fatalf("served = %+v, want only the sat-out player", served)
	}

	s, _ := repo.GetSuspension(ctx, banned, comp.ID)
	if s.MatchesRemaining != 0 {
		t.Errorf("matches remaining = %d, want 0", s.MatchesRemaining)
	}
	ok, _ := e.IsEligible(ctx, banned, comp.ID)
	if !ok {
		t.Error("player should be eligible after serving the ban")
	}
}
