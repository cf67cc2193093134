package season

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gaffer/go/internal/models"
)

func newArchiveProcessor(repo *fakeRepo, seed int64) *ArchiveProcessor {
	return NewArchiveProcessor(repo, clockwork.NewFakeClock(), rand.New(rand.NewSource(seed)))
}

func TestArchiveSnapshotsSeason(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	worldID := uuid.New()

	league := repo.addCompetition("Super Lig", "TR", models.HandlerTypeLeague, false, 2026)
	uel := repo.addCompetition("Europa", "", models.HandlerTypeKnockoutCup, true, 2026)

	champion := repo.addClub("Champion", "TR", 80, false)
	runnerUp := repo.addClub("Runner Up", "TR", 70, false)
	repo.standings[league.ID] = []models.Standing{
		{CompetitionID: league.ID, ClubID: runnerUp.ID, Position: 2, Points: 70},
		{CompetitionID: league.ID, ClubID: champion.ID, Position: 1, Points: 84},
	}

	winner := repo.addClub("Euro Winner", "DE", 90, false)
	winnerID := winner.ID
	repo.finals[uel.ID] = &winnerID

	scorer := repo.addPlayer(&champion.ID, models.PositionForward, 27, 80)
	repo.topScorer = scorer
	repo.topGoals = 31

	run := newRun(worldID, 2026, uuid.New())
	if err := newArchiveProcessor(repo, 1).Process(ctx, run); err != nil {
		t.Fatal(err)
	}

	archive := repo.archives[2026]
	if archive == nil {
		t.Fatal("no archive saved")
	}
	if archive.Awards.ChampionClubID == nil || *archive.Awards.ChampionClubID != champion.ID {
		t.Error("champion should be the position-1 club of the domestic league")
	}
	if archive.Awards.TopScorerID == nil || *archive.Awards.TopScorerID != scorer.ID || archive.Awards.TopScorerGoals != 31 {
		t.Error("top scorer award missing or wrong")
	}
	if archive.Awards.UELWinnerClubID == nil || *archive.Awards.UELWinnerClubID != winner.ID {
		t.Error("UEL winner award missing or wrong")
	}
	if len(archive.Standings) != 2 {
		t.Errorf("archived standings = %d, want 2", len(archive.Standings))
	}
	if archive.Standings[0].Position != 1 {
		t.Error("archived standings should be sorted by position")
	}

	if got, ok := run.Context.UELWinner(); !ok || got != winner.ID {
		t.Error("winner should be published to the transition context")
	}
	if _, ok := run.Context.ArchiveID(); !ok {
		t.Error("archive id should be published to the transition context")
	}
}

func TestArchiveSkipsExistingSnapshotButStillPublishesWinner(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	worldID := uuid.New()

	uel := repo.addCompetition("Europa", "", models.HandlerTypeKnockoutCup, true, 2026)
	winner := repo.addClub("Euro Winner", "DE", 90, false)
	winnerID := winner.ID
	repo.finals[uel.ID] = &winnerID

	existing := &models.SeasonArchive{ID: uuid.New(), WorldID: worldID, Season: 2026}
	repo.archives[2026] = existing

	run := newRun(worldID, 2026, uuid.New())
	if err := newArchiveProcessor(repo, 1).Process(ctx, run); err != nil {
		t.Fatal(err)
	}

	if repo.archives[2026].ID != existing.ID {
		t.Error("an existing archive must not be overwritten")
	}
	if got, ok := run.Context.UELWinner(); !ok || got != winner.ID {
		t.Error("a retried rollover still needs the winner in the context")
	}
	if _, ok := run.Context.ArchiveID(); ok {
		t.Error("no new archive id should be published on a skip")
	}
}

func TestArchiveFallsBackToRandomEntrant(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	worldID := uuid.New()

	uel := repo.addCompetition("Europa", "", models.HandlerTypeKnockoutCup, true, 2026)
	a := repo.addClub("A", "TR", 50, false)
	b := repo.addClub("B", "TR", 50, false)
	repo.entries[uel.ID] = []uuid.UUID{a.ID, b.ID}

	run := newRun(worldID, 2026, uuid.New())
	if err := newArchiveProcessor(repo, 1).Process(ctx, run); err != nil {
		t.Fatal(err)
	}

	got, ok := run.Context.UELWinner()
	if !ok {
		t.Fatal("a winner should be picked from the entrants")
	}
	if got != a.ID && got != b.ID {
		t.Errorf("winner %v is not an entrant", got)
	}
}
