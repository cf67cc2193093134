package season

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/retirement"
)

func TestRetirementAnnouncements(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	engine := retirement.NewEngineWithSource(rand.New(rand.NewSource(1)))
	proc := NewRetirementAnnouncementProcessor(repo, engine)
	worldID := uuid.New()

	club := repo.addClub("Club", "TR", 50, false)
	certain := repo.addPlayer(&club.ID, models.PositionForward, 41, 60)
	youngster := repo.addPlayer(&club.ID, models.PositionMidfielder, 20, 70)

	alreadySeason := 2027
	already := repo.addPlayer(&club.ID, models.PositionDefender, 41, 60)
	already.RetiringAtSeason = &alreadySeason

	run := newRun(worldID, 2026, uuid.New())
	if err := proc.Process(ctx, run); err != nil {
		t.Fatal(err)
	}

	p := repo.players[certain.ID]
	if p.RetiringAtSeason == nil || *p.RetiringAtSeason != 2027 {
		t.Error("a player past the ceiling should announce for the new season")
	}
	if repo.players[youngster.ID].RetiringAtSeason != nil {
		t.Error("a 20-year-old must never announce retirement")
	}
	if got := *repo.players[already.ID].RetiringAtSeason; got != alreadySeason {
		t.Errorf("an already-flagged player was re-flagged to %d", got)
	}

	announced := run.Context.RetirementAnnouncements()
	if len(announced) != 1 || announced[0] != certain.ID {
		t.Errorf("announcements = %v, want only the certain retiree", announced)
	}
}
