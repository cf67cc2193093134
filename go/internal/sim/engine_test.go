package sim

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gaffer/go/internal/condition"
	"github.com/mcdev12/gaffer/go/internal/eligibility"
	"github.com/mcdev12/gaffer/go/internal/models"
	"github.com/mcdev12/gaffer/go/internal/notify"
	"github.com/mcdev12/gaffer/go/internal/season"
	"github.com/mcdev12/gaffer/go/internal/transfermarket"
)

// fakeStore backs every repository interface the facade's engines consume,
// the way the postgres store does in production.
type fakeStore struct {
	world       *models.World
	clubs       map[uuid.UUID]*models.Club
	players     map[uuid.UUID]*models.Player
	comps       map[uuid.UUID]*models.Competition
	matches     []models.Match
	offers      map[uuid.UUID]*models.TransferOffer
	contracts   map[uuid.UUID]*models.Contract
	loans       map[uuid.UUID]*models.Loan
	suspensions map[uuid.UUID]map[uuid.UUID]models.Suspension

	restDays        int
	conditionWrites int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clubs:       make(map[uuid.UUID]*models.Club),
		players:     make(map[uuid.UUID]*models.Player),
		comps:       make(map[uuid.UUID]*models.Competition),
		offers:      make(map[uuid.UUID]*models.TransferOffer),
		contracts:   make(map[uuid.UUID]*models.Contract),
		loans:       make(map[uuid.UUID]*models.Loan),
		suspensions: make(map[uuid.UUID]map[uuid.UUID]models.Suspension),
		restDays:    4,
	}
}

func (s *fakeStore) addClub(name string, user bool) *models.Club {
	c := &models.Club{ID: uuid.New(), Name: name, UserControlled: user}
	s.clubs[c.ID] = c
	return c
}

func (s *fakeStore) addPlayer(clubID uuid.UUID, pos models.Position) *models.Player {
	p := &models.Player{
		ID: uuid.New(), ClubID: &clubID, Position: pos,
		Age: 25, Technical: 70, Physical: 70, Fitness: 85, Morale: 70,
	}
	s.players[p.ID] = p
	return p
}

// sim.Repository

func (s *fakeStore) GetWorld(context.Context, uuid.UUID) (*models.World, error) {
	copied := *s.world
	return &copied, nil
}

func (s *fakeStore) AdvanceMatchday(context.Context, uuid.UUID) error {
	s.world.Matchday++
	return nil
}

func (s *fakeStore) AdvanceSeason(_ context.Context, _ uuid.UUID, newSeason int) error {
	if s.world.CurrentSeason < newSeason {
		s.world.CurrentSeason = newSeason
		s.world.Matchday = 0
	}
	return nil
}

func (s *fakeStore) SetTransferWindowOpen(_ context.Context, _ uuid.UUID, open bool) error {
	s.world.TransferWindowOpen = open
	return nil
}

func (s *fakeStore) FinalizedMatchesForMatchday(_ context.Context, _ uuid.UUID, matchday int) ([]models.Match, error) {
	var out []models.Match
	for _, m := range s.matches {
		if m.Matchday == matchday && m.Finalized {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *fakeStore) MatchdayRestDays(context.Context, uuid.UUID, int) (int, error) {
	return s.restDays, nil
}

func (s *fakeStore) GetCompetition(_ context.Context, competitionID uuid.UUID) (*models.Competition, error) {
	c, ok := s.comps[competitionID]
	if !ok {
		return nil, errors.New("competition not found")
	}
	copied := *c
	return &copied, nil
}

func (s *fakeStore) PrimaryContinentalCompetition(_ context.Context, _ uuid.UUID, seasonYear int) (*models.Competition, error) {
	for _, c := range s.comps {
		if c.Continental && c.HandlerType == models.HandlerTypeSwiss && c.Season == seasonYear {
			copied := *c
			return &copied, nil
		}
	}
	return nil, errors.New("no primary continental competition")
}

func (s *fakeStore) PlayersByClub(_ context.Context, clubID uuid.UUID) ([]models.Player, error) {
	var out []models.Player
	for _, p := range s.players {
		if p.ClubID != nil && *p.ClubID == clubID {
			out = append(out, *p)
		}
	}
	return out, nil
}

// transfermarket.Repository

func (s *fakeStore) ClubsByWorld(context.Context, uuid.UUID) ([]models.Club, error) {
	var out []models.Club
	for _, c := range s.clubs {
		out = append(out, *c)
	}
	return out, nil
}

func (s *fakeStore) UserClub(context.Context, uuid.UUID) (*models.Club, error) {
	for _, c := range s.clubs {
		if c.UserControlled {
			copied := *c
			return &copied, nil
		}
	}
	return nil, errors.New("no user club")
}

func (s *fakeStore) FreeAgents(context.Context, uuid.UUID) ([]models.Player, error) {
	var out []models.Player
	for _, p := range s.players {
		if p.ClubID == nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeStore) SquadValues(context.Context, uuid.UUID) (map[uuid.UUID]int64, error) {
	values := make(map[uuid.UUID]int64)
	for _, p := range s.players {
		if p.ClubID != nil {
			values[*p.ClubID] += p.MarketValue
		}
	}
	return values, nil
}

func (s *fakeStore) OpenOffersForPlayer(_ context.Context, playerID uuid.UUID) ([]models.TransferOffer, error) {
	var out []models.TransferOffer
	for _, o := range s.offers {
		if o.PlayerID == playerID && o.Open() {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeStore) OpenOffersByClub(_ context.Context, clubID uuid.UUID) ([]models.TransferOffer, error) {
	var out []models.TransferOffer
	for _, o := range s.offers {
		if o.ClubID == clubID && o.Open() {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeStore) AgreedOffers(context.Context, uuid.UUID) ([]models.TransferOffer, error) {
	var out []models.TransferOffer
	for _, o := range s.offers {
		if o.Status == models.OfferStatusAgreed {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateOffer(_ context.Context, offer *models.TransferOffer) error {
	copied := *offer
	s.offers[offer.ID] = &copied
	return nil
}

func (s *fakeStore) UpdateOfferStatus(_ context.Context, offerID uuid.UUID, status models.OfferStatus) error {
	o, ok := s.offers[offerID]
	if !ok {
		return errors.New("offer not found")
	}
	o.Status = status
	return nil
}

func (s *fakeStore) ExpirePendingOffers(_ context.Context, _ uuid.UUID, cutoff time.Time) (int, error) {
	expired := 0
	for _, o := range s.offers {
		if o.Status == models.OfferStatusPending && o.ExpiresAt.Before(cutoff) {
			o.Status = models.OfferStatusExpired
			expired++
		}
	}
	return expired, nil
}

func (s *fakeStore) ContractForPlayer(_ context.Context, playerID uuid.UUID) (*models.Contract, error) {
	c, ok := s.contracts[playerID]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (s *fakeStore) ExecuteTransfer(_ context.Context, exec transfermarket.Execution) error {
	p, ok := s.players[exec.PlayerID]
	if !ok {
		return errors.New("player not found")
	}
	if exec.ToClubID == nil {
		delete(s.players, exec.PlayerID)
	} else {
		toID := *exec.ToClubID
		p.ClubID = &toID
	}
	if exec.OfferID != nil {
		s.offers[*exec.OfferID].Status = models.OfferStatusCompleted
	}
	return nil
}

func (s *fakeStore) SignFreeAgent(_ context.Context, playerID, clubID uuid.UUID, contract *models.Contract) error {
	p, ok := s.players[playerID]
	if !ok || p.ClubID != nil {
		return errors.New("not a free agent")
	}
	p.ClubID = &clubID
	copied := *contract
	s.contracts[playerID] = &copied
	return nil
}

func (s *fakeStore) ActiveLoansDue(_ context.Context, _ uuid.UUID, cutoff time.Time) ([]models.Loan, error) {
	var out []models.Loan
	for _, l := range s.loans {
		if l.Status == models.LoanStatusActive && !l.ReturnAt.After(cutoff) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *fakeStore) CompleteLoan(_ context.Context, loanID uuid.UUID) error {
	l, ok := s.loans[loanID]
	if !ok {
		return errors.New("loan not found")
	}
	l.Status = models.LoanStatusCompleted
	return nil
}

func (s *fakeStore) CreateLoan(_ context.Context, loan *models.Loan) error {
	copied := *loan
	s.loans[loan.ID] = &copied
	return nil
}

func (s *fakeStore) GetPlayer(_ context.Context, playerID uuid.UUID) (*models.Player, error) {
	p, ok := s.players[playerID]
	if !ok {
		return nil, errors.New("player not found")
	}
	copied := *p
	return &copied, nil
}

func (s *fakeStore) GetClub(_ context.Context, clubID uuid.UUID) (*models.Club, error) {
	c, ok := s.clubs[clubID]
	if !ok {
		return nil, errors.New("club not found")
	}
	copied := *c
	return &copied, nil
}

// condition.Repository

func (s *fakeStore) UpdateConditions(_ context.Context, updates []condition.Update) error {
	for _, u := range updates {
		if p, ok := s.players[u.PlayerID]; ok {
			p.Fitness = u.Fitness
			p.Morale = u.Morale
		}
	}
	s.conditionWrites += len(updates)
	return nil
}

// eligibility.Repository

func (s *fakeStore) GetSuspension(_ context.Context, playerID, competitionID uuid.UUID) (*models.Suspension, error) {
	if susp, ok := s.suspensions[playerID][competitionID]; ok {
		copied := susp
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) SuspensionsForPlayers(_ context.Context, competitionID uuid.UUID, playerIDs []uuid.UUID) ([]models.Suspension, error) {
	var out []models.Suspension
	for _, id := range playerIDs {
		if susp, ok := s.suspensions[id][competitionID]; ok {
			out = append(out, susp)
		}
	}
	return out, nil
}

func (s *fakeStore) ActiveSuspensionsForClubs(_ context.Context, competitionID uuid.UUID, _ []uuid.UUID) ([]models.Suspension, error) {
	var out []models.Suspension
	for _, comps := range s.suspensions {
		if susp, ok := comps[competitionID]; ok && susp.Banned() {
			out = append(out, susp)
		}
	}
	return out, nil
}

func (s *fakeStore) UpsertSuspensions(_ context.Context, suspensions []models.Suspension) error {
	for _, susp := range suspensions {
		if s.suspensions[susp.PlayerID] == nil {
			s.suspensions[susp.PlayerID] = make(map[uuid.UUID]models.Suspension)
		}
		s.suspensions[susp.PlayerID][susp.CompetitionID] = susp
	}
	return nil
}

type captureNotifier struct {
	news []notify.News
}

func (n *captureNotifier) Publish(_ context.Context, item notify.News) {
	n.news = append(n.news, item)
}

func (n *captureNotifier) count(t notify.NewsType) int {
	c := 0
	for _, item := range n.news {
		if item.Type == t {
			c++
		}
	}
	return c
}

func newTestEngine(store *fakeStore, notifier notify.Publisher, pipeline *season.Pipeline) *Engine {
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.August, 1, 12, 0, 0, 0, time.UTC))
	cfg := transfermarket.DefaultConfig()
	cfg.ListedOfferChance = 0
	cfg.UnsolicitedChance = 0
	cfg.PreContractChance = 0
	market := transfermarket.NewEngineWithSource(store, cfg, clock, notifier, rand.New(rand.NewSource(1)))
	cond := condition.NewEngineWithSource(store, rand.New(rand.NewSource(1)))
	elig := eligibility.NewEngine(store, eligibility.DefaultRuleTable(), clock)
	return NewEngine(store, market, cond, elig, pipeline, notifier, clock)
}

func TestAdvanceMatchday(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	notifier := &captureNotifier{}
	e := newTestEngine(store, notifier, season.NewPipeline())

	worldID := uuid.New()
	store.world = &models.World{ID: worldID, CurrentSeason: 2026, Matchday: 3}

	user := store.addClub("User FC", true)
	opponent := store.addClub("Rival RK", false)

	starter := store.addPlayer(user.ID, models.PositionMidfielder)
	carded := store.addPlayer(opponent.ID, models.PositionDefender)

	league := &models.Competition{
		ID: uuid.New(), WorldID: worldID, Name: "Super Lig",
		HandlerType: models.HandlerTypeLeague, Season: 2026,
	}
	store.comps[league.ID] = league

	store.matches = []models.Match{{
		ID:            uuid.New(),
		CompetitionID: league.ID,
		HomeClubID:    user.ID,
		AwayClubID:    opponent.ID,
		HomeScore:     2,
		AwayScore:     0,
		Matchday:      3,
		Finalized:     true,
		HomeLineup:    []uuid.UUID{starter.ID},
		AwayLineup:    []uuid.UUID{carded.ID},
		Events: []models.MatchEvent{
			{PlayerID: carded.ID, ClubID: opponent.ID, Type: models.MatchEventRedCard},
		},
	}}

	if err := e.AdvanceMatchday(ctx, worldID); err != nil {
		t.Fatal(err)
	}

	if store.world.Matchday != 4 {
		t.Errorf("matchday = %d, want 4", store.world.Matchday)
	}
	if store.conditionWrites == 0 {
		t.Error("the condition batch should have written updates")
	}

	susp, _ := store.GetSuspension(ctx, carded.ID, league.ID)
	if susp == nil || susp.MatchesRemaining != 1 {
		t.Errorf("red card suspension = %+v, want a 1-match ban", susp)
	}
	if notifier.count(notify.NewsSuspension) != 1 {
		t.Errorf("suspension news = %d, want 1", notifier.count(notify.NewsSuspension))
	}
}

func TestCloseTransferWindow(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	e := newTestEngine(store, notify.NopPublisher{}, season.NewPipeline())

	worldID := uuid.New()
	store.world = &models.World{ID: worldID, CurrentSeason: 2026, TransferWindowOpen: true}

	if err := e.CloseTransferWindow(ctx, worldID, transfermarket.WindowSummer); err != nil {
		t.Fatal(err)
	}

	if store.world.TransferWindowOpen {
		t.Error("the window should be marked shut")
	}
}

// stubReplenisher stands in for the squad replenishment stage and records
// one generated filler in the transition context.
type stubReplenisher struct {
	entry season.ReplenishedPlayer
}

func (stubReplenisher) Name() string  { return "replenish" }
func (stubReplenisher) Priority() int { return 1 }
func (s stubReplenisher) Process(_ context.Context, run *season.Run) error {
	return run.Context.SetSquadReplenishment([]season.ReplenishedPlayer{s.entry})
}

func TestRolloverSeason(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	notifier := &captureNotifier{}
	filler := stubReplenisher{entry: season.ReplenishedPlayer{
		ClubID:   uuid.New(),
		PlayerID: uuid.New(),
		Position: models.PositionForward,
	}}
	e := newTestEngine(store, notifier, season.NewPipeline(filler))

	worldID := uuid.New()
	store.world = &models.World{ID: worldID, CurrentSeason: 2026, Matchday: 38}

	ucl := &models.Competition{
		ID: uuid.New(), WorldID: worldID, Name: "Champions",
		HandlerType: models.HandlerTypeSwiss, Continental: true, Season: 2027,
	}
	store.comps[ucl.ID] = ucl

	tc, err := e.RolloverSeason(ctx, worldID)
	if err != nil {
		t.Fatal(err)
	}
	if tc == nil {
		t.Fatal("rollover should return the transition context")
	}

	if store.world.CurrentSeason != 2027 {
		t.Errorf("season = %d, want 2027", store.world.CurrentSeason)
	}
	if store.world.Matchday != 0 {
		t.Errorf("matchday = %d, want a reset to 0", store.world.Matchday)
	}
	if notifier.count(notify.NewsSeasonRollover) != 1 {
		t.Errorf("rollover news = %d, want 1", notifier.count(notify.NewsSeasonRollover))
	}
	if notifier.count(notify.NewsReplenishment) != 1 {
		t.Errorf("replenishment news = %d, want 1", notifier.count(notify.NewsReplenishment))
	}
	if got := tc.SquadReplenishment(); len(got) != 1 || got[0].PlayerID != filler.entry.PlayerID {
		t.Errorf("replenishment log = %v, want the generated filler", got)
	}
}
