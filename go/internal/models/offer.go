package models

import (
	"time"

	"github.com/google/uuid"
)

// OfferType classifies how a transfer offer originated
type OfferType string

const (
	OfferTypeListed      OfferType = "LISTED"
	OfferTypeUnsolicited OfferType = "UNSOLICITED"
	OfferTypeUserBid     OfferType = "USER_BID"
	OfferTypePreContract OfferType = "PRE_CONTRACT"
	OfferTypeLoanIn      OfferType = "LOAN_IN"
	OfferTypeLoanOut     OfferType = "LOAN_OUT"
)

// OfferStatus tracks an offer through its lifecycle
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "PENDING"
	OfferStatusAgreed    OfferStatus = "AGREED"
	OfferStatusRejected  OfferStatus = "REJECTED"
	OfferStatusExpired   OfferStatus = "EXPIRED"
	OfferStatusCompleted OfferStatus = "COMPLETED"
)

// OfferDirection is relative to the club that owns the player
type OfferDirection string

const (
	OfferDirectionIncoming OfferDirection = "INCOMING"
	OfferDirectionOutgoing OfferDirection = "OUTGOING"
)

// TransferOffer represents one bid for one player.
type TransferOffer struct {
	ID        uuid.UUID      `json:"id"`
	PlayerID  uuid.UUID      `json:"player_id"`
	ClubID    uuid.UUID      `json:"club_id"` // the bidding club
	Type      OfferType      `json:"type"`
	Fee       int64          `json:"fee"` // cents; zero for pre-contracts
	Status    OfferStatus    `json:"status"`
	Direction OfferDirection `json:"direction"`
	ExpiresAt time.Time      `json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
}

// Open reports whether the offer still commits budget (pending or agreed).
func (o *TransferOffer) Open() bool {
	return o.Status == OfferStatusPending || o.Status == OfferStatusAgreed
}
