package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NewsType classifies a user-facing summary event
type NewsType string

const (
	NewsFreeAgentSigning NewsType = "free_agent_signing"
	NewsAITransfer       NewsType = "ai_transfer"
	NewsForeignTransfer  NewsType = "foreign_transfer"
	NewsOfferReceived    NewsType = "offer_received"
	NewsSuspension       NewsType = "suspension"
	NewsRetirement       NewsType = "retirement"
	NewsReplenishment    NewsType = "replenishment"
	NewsLoanReturn       NewsType = "loan_return"
	NewsSeasonRollover   NewsType = "season_rollover"
)

// News is one structured summary emitted for user-facing display. The core
// treats the sink as fire-and-forget: publish failures are logged, never
// propagated.
type News struct {
	ID        uuid.UUID       `json:"id"`
	WorldID   uuid.UUID       `json:"world_id"`
	Type      NewsType        `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// Publisher is the notification collaborator interface.
type Publisher interface {
	Publish(ctx context.Context, news News)
}
