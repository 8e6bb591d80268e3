package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/jaminalder/voronoi-territory/internal/domain"
)

// Errors exposed by the service layer.
var (
	ErrNotFound = errors.New("game not found")
)

// GameState is a copy of one session as seen by callers.
type GameState struct {
	ID      string
	Rules   domain.Rules
	Game    domain.Snapshot
	Created time.Time
	Updated time.Time
}

type session struct {
	id      string
	game    *domain.Game
	created time.Time
	updated time.Time
}

func (s *session) state() GameState {
	return GameState{
		ID:      s.id,
		Rules:   s.game.Rules(),
		Game:    s.game.Snapshot(),
		Created: s.created,
		Updated: s.updated,
	}
}

type subscriber struct {
	ch        chan GameState
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service owns every running game. Commands on all games are serialised by
// one mutex, so each placement and its recomputation finish before the next
// command starts.
type Service struct {
	mu     sync.Mutex
	rules  domain.Rules
	games  map[string]*session
	subs   map[string]map[*subscriber]struct{}
	clock  quartz.Clock
	logger *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c quartz.Clock) Option { return func(s *Service) { s.clock = c } }

// WithLogger sets the logger. The default discards debug output.
func WithLogger(l *log.Logger) Option { return func(s *Service) { s.logger = l } }

// NewService creates a service whose games all follow rules.
func NewService(rules domain.Rules, opts ...Option) *Service {
	s := &Service{
		rules:  rules,
		games:  make(map[string]*session),
		subs:   make(map[string]map[*subscriber]struct{}),
		clock:  quartz.NewReal(),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the rules new games are created with.
func (s *Service) Rules() domain.Rules { return s.rules }

// CreateGame creates and registers a new game.
func (s *Service) CreateGame() (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	now := s.clock.Now()
	gs := &session{id: id, game: domain.New(s.rules), created: now, updated: now}
	s.games[id] = gs
	s.logger.Info("created game", "game", id)
	st := gs.state()
	return &st, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	st := gs.state()
	return &st, true
}

// Place applies a placement for the side to move and broadcasts the result.
// A rejected placement returns the domain error together with the
// unchanged state.
func (s *Service) Place(id string, x, y float64) (*GameState, error) {
	return s.apply(id, func(g *domain.Game) error {
		mover := g.Turn()
		if err := g.Place(x, y); err != nil {
			s.logger.Debug("rejected placement", "game", id, "player", mover, "x", x, "y", y, "err", err)
			return err
		}
		s.logger.Debug("placed site", "game", id, "player", mover, "x", x, "y", y, "remaining", g.MovesRemaining())
		if w, over := g.Winner(); over {
			s.logger.Info("game ended", "game", id, "winner", w)
		}
		return nil
	})
}

// Reset returns the game to its empty state and broadcasts it.
func (s *Service) Reset(id string) (*GameState, error) {
	return s.apply(id, func(g *domain.Game) error {
		g.Reset()
		s.logger.Info("reset game", "game", id)
		return nil
	})
}

// Delete drops a game and closes its subscribers.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return ErrNotFound
	}
	delete(s.games, id)
	for sub := range s.subs[id] {
		sub.close()
	}
	delete(s.subs, id)
	return nil
}

func (s *Service) apply(id string, cmd func(*domain.Game) error) (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := cmd(gs.game); err != nil {
		st := gs.state()
		return &st, err
	}
	gs.updated = s.clock.Now()
	st := gs.state()
	s.broadcastLocked(id, st)
	return &st, nil
}

// broadcastLocked fans st out without blocking. Subscribers whose buffer is
// still full are closed and removed; closing only ever happens under s.mu
// so no send can race it.
func (s *Service) broadcastLocked(id string, st GameState) {
	dropped := 0
	for sub := range s.subs[id] {
		select {
		case sub.ch <- st:
		default:
			sub.close()
			delete(s.subs[id], sub)
			dropped++
		}
	}
	if dropped > 0 {
		s.logger.Warn("dropped slow subscribers", "game", id, "count", dropped)
	}
}

// Subscribe registers a subscriber for a game. The channel receives a copy
// of the state after every accepted command and is closed when ctx ends,
// the game is deleted or the subscriber falls behind.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan GameState, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan GameState, 1)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			sub.close()
			s.mu.Unlock()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}
