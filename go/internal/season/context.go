package season

import (
	"errors"

	"github.com/google/uuid"
	"github.com/mcdev12/gaffer/go/internal/models"
)

// ErrContextFieldSet guards the write-once discipline of the transition
// context: a second write to the same field is an ordering bug.
var ErrContextFieldSet = errors.New("transition context field already set")

// RetiredPlayer records one retirement resolved by the pipeline.
type RetiredPlayer struct {
	PlayerID      uuid.UUID  `json:"player_id"`
	ClubID        uuid.UUID  `json:"club_id"`
	WasUserClub   bool       `json:"was_user_club"`
	ReplacementID *uuid.UUID `json:"replacement_id,omitempty"`
}

// ReplenishedPlayer records one generated squad filler.
type ReplenishedPlayer struct {
	ClubID   uuid.UUID       `json:"club_id"`
	PlayerID uuid.UUID       `json:"player_id"`
	Position models.Position `json:"position"`
}

// TransitionContext threads intermediate results between pipeline stages.
// Fields are strongly typed and write-once; later processors (or the
// pipeline's caller) read what earlier processors computed. A fresh context
// is created per rollover and discarded afterwards.
type TransitionContext struct {
	uelWinner     *uuid.UUID
	retired       []RetiredPlayer
	retiredSet    bool
	replenished   []ReplenishedPlayer
	replenishSet  bool
	archivedID    *uuid.UUID
	announcements []uuid.UUID
	announceSet   bool
}

// NewTransitionContext creates an empty context for one rollover.
func NewTransitionContext() *TransitionContext {
	return &TransitionContext{}
}

// SetUELWinner publishes the secondary-continental-competition winner.
func (c *TransitionContext) SetUELWinner(clubID uuid.UUID) error {
	if c.uelWinner != nil {
		return ErrContextFieldSet
	}
	c.uelWinner = &clubID
	return nil
}

// UELWinner reads the secondary-continental-competition winner.
func (c *TransitionContext) UELWinner() (uuid.UUID, bool) {
	if c.uelWinner == nil {
		return uuid.Nil, false
	}
	return *c.uelWinner, true
}

// SetRetiredPlayers publishes the retirement log.
func (c *TransitionContext) SetRetiredPlayers(list []RetiredPlayer) error {
	if c.retiredSet {
		return ErrContextFieldSet
	}
	c.retired = list
	c.retiredSet = true
	return nil
}

// RetiredPlayers reads the retirement log.
func (c *TransitionContext) RetiredPlayers() []RetiredPlayer {
	return c.retired
}

// SetSquadReplenishment publishes the generated-player log.
func (c *TransitionContext) SetSquadReplenishment(list []ReplenishedPlayer) error {
	if c.replenishSet {
		return ErrContextFieldSet
	}
	c.replenished = list
	c.replenishSet = true
	return nil
}

// SquadReplenishment reads the generated-player log.
func (c *TransitionContext) SquadReplenishment() []ReplenishedPlayer {
	return c.replenished
}

// SetArchiveID publishes the created season archive.
func (c *TransitionContext) SetArchiveID(id uuid.UUID) error {
	if c.archivedID != nil {
		return ErrContextFieldSet
	}
	c.archivedID = &id
	return nil
}

// ArchiveID reads the created season archive id.
func (c *TransitionContext) ArchiveID() (uuid.UUID, bool) {
	if c.archivedID == nil {
		return uuid.Nil, false
	}
	return *c.archivedID, true
}

// SetRetirementAnnouncements publishes next season's announced retirements.
func (c *TransitionContext) SetRetirementAnnouncements(playerIDs []uuid.UUID) error {
	if c.announceSet {
		return ErrContextFieldSet
	}
	c.announcements = playerIDs
	c.announceSet = true
	return nil
}

// RetirementAnnouncements reads next season's announced retirements.
func (c *TransitionContext) RetirementAnnouncements() []uuid.UUID {
	return c.announcements
}
