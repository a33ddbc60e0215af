package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
)

type WizardState string

const (
	WizardAwaitingMlbbID       WizardState = "awaiting_mlbb_id"
	WizardAwaitingMlbbUsername WizardState = "awaiting_mlbb_username"
	WizardAwaitingMaxRank      WizardState = "awaiting_max_rank"
	WizardAwaitingWinRate      WizardState = "awaiting_win_rate"
	WizardAwaitingAvailability WizardState = "awaiting_availability"
	WizardAwaitingRoles        WizardState = "awaiting_roles"
	WizardComplete             WizardState = "complete"
	WizardTimedOut             WizardState = "timed_out"
	WizardCancelled            WizardState = "cancelled"
)

type WizardOutcome string

const (
	WizardOutcomeAdvance   WizardOutcome = "advance"
	WizardOutcomeComplete  WizardOutcome = "complete"
	WizardOutcomeAwait     WizardOutcome = "await"
	WizardOutcomeTimedOut  WizardOutcome = "timed_out"
	WizardOutcomeCancelled WizardOutcome = "cancelled"
	WizardOutcomeFailed    WizardOutcome = "failed"
)

var wizardPrompts = map[WizardState]string{
	WizardAwaitingMlbbID:       "Please enter your MLBB ID (Server ID):",
	WizardAwaitingMlbbUsername: "Great! Now enter your MLBB Username:",
	WizardAwaitingMaxRank:      "What's your maximum achieved rank? (e.g., Mythical Glory, Mythic, Legend, etc.)",
	WizardAwaitingWinRate:      "What's your overall win rate? (just the number, e.g., 65)",
	WizardAwaitingAvailability: "When are you usually available to play? (e.g., Weekdays 8PM-11PM GMT+8)",
	WizardAwaitingRoles:        rolesPrompt,
}

const rolesPrompt = "Last step! What roles do you play? Enter them in this format:\n" +
	"role1: hero1, hero2, hero3\nrole2: hero1, hero2\n\nValid roles: gold, exp, mid, jungle, roam"

var wizardNext = map[WizardState]WizardState{
	WizardAwaitingMlbbID:       WizardAwaitingMlbbUsername,
	WizardAwaitingMlbbUsername: WizardAwaitingMaxRank,
	WizardAwaitingMaxRank:      WizardAwaitingWinRate,
	WizardAwaitingWinRate:      WizardAwaitingAvailability,
	WizardAwaitingAvailability: WizardAwaitingRoles,
	WizardAwaitingRoles:        WizardComplete,
}

// WizardPrompt returns the question asked while in state.
func WizardPrompt(state WizardState) string {
	return wizardPrompts[state]
}

type WizardConfig struct {
	StepTimeout  time.Duration
	RolesTimeout time.Duration
}

type StartWizardInput struct {
	UserID    string
	Username  string
	ChannelID string
}

// WizardReply describes what happened to one message.
type WizardReply struct {
	Outcome WizardOutcome
	State   WizardState
	Prompt  string
	Player  player.Player
	Err     error

	// Existing is set on start when the user already has a profile.
	Existing bool
}

// ExpiredWizard identifies a session discarded by ExpireSessions.
type ExpiredWizard struct {
	UserID    string
	ChannelID string
	State     WizardState
}

// WizardProfileStore is the part of the registry the wizard needs.
type WizardProfileStore interface {
	FindPlayerByID(ctx context.Context, id string) (player.Player, error)
	SaveWizardProfile(ctx context.Context, profile WizardProfile) (player.Player, error)
}

type wizardKey struct {
	userID    string
	channelID string
}

type wizardSession struct {
	state    WizardState
	deadline time.Time
	profile  WizardProfile
}

// WizardService runs the guided profile setup as explicit sessions keyed by
// user and channel. Nothing is persisted until the last step is answered.
type WizardService struct {
	store  WizardProfileStore
	cfg    WizardConfig
	logger *logging.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[wizardKey]*wizardSession
}

func NewWizardService(store WizardProfileStore, cfg WizardConfig, logger *logging.Logger) *WizardService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.StepTimeout <= 0 {
		cfg.StepTimeout = 60 * time.Second
	}
	if cfg.RolesTimeout <= 0 {
		cfg.RolesTimeout = 120 * time.Second
	}

	return &WizardService{
		store:    store,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[wizardKey]*wizardSession),
	}
}

// Start opens a session, replacing any session for the same user and channel.
func (s *WizardService) Start(ctx context.Context, input StartWizardInput) (WizardReply, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WizardService.Start")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.ChannelID = strings.TrimSpace(input.ChannelID)
	if input.UserID == "" || input.ChannelID == "" {
		return WizardReply{}, fmt.Errorf("%w: user id and channel id are required", ErrInvalidInput)
	}

	_, err := s.store.FindPlayerByID(ctx, input.UserID)
	existing := err == nil

	session := &wizardSession{
		state:    WizardAwaitingMlbbID,
		deadline: s.now().Add(s.timeoutFor(WizardAwaitingMlbbID)),
		profile: WizardProfile{
			PlayerID: input.UserID,
			Username: input.Username,
		},
	}

	s.mu.Lock()
	s.sessions[wizardKey{userID: input.UserID, channelID: input.ChannelID}] = session
	s.mu.Unlock()

	s.logger.DebugContext(ctx, "wizard started", "user_id", input.UserID, "channel_id", input.ChannelID, "existing", existing)
	return WizardReply{
		Outcome:  WizardOutcomeAdvance,
		State:    session.state,
		Prompt:   WizardPrompt(session.state),
		Existing: existing,
	}, nil
}

// Active reports whether the user has an open session in the channel.
func (s *WizardService) Active(userID, channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[wizardKey{userID: userID, channelID: channelID}]
	return ok
}

// OnMessage feeds one message into the user's session. Messages without a
// session return WizardOutcomeAwait and are left for normal handling.
func (s *WizardService) OnMessage(ctx context.Context, userID, channelID, text string) WizardReply {
	ctx, span := startUsecaseSpan(ctx, "usecase.WizardService.OnMessage")
	defer span.End()

	key := wizardKey{userID: userID, channelID: channelID}
	now := s.now()

	s.mu.Lock()
	session, ok := s.sessions[key]
	if !ok {
		s.mu.Unlock()
		return WizardReply{Outcome: WizardOutcomeAwait}
	}
	if now.After(session.deadline) {
		delete(s.sessions, key)
		s.mu.Unlock()
		s.logger.InfoContext(ctx, "wizard timed out", "user_id", userID, "state", session.state)
		return WizardReply{
			Outcome: WizardOutcomeTimedOut,
			State:   WizardTimedOut,
			Err:     fmt.Errorf("%w: setup step %s", ErrTimedOut, session.state),
		}
	}

	capture(&session.profile, session.state, text)
	session.state = wizardNext[session.state]
	if session.state != WizardComplete {
		session.deadline = now.Add(s.timeoutFor(session.state))
		reply := WizardReply{Outcome: WizardOutcomeAdvance, State: session.state, Prompt: WizardPrompt(session.state)}
		s.mu.Unlock()
		return reply
	}
	delete(s.sessions, key)
	profile := session.profile
	s.mu.Unlock()

	saved, err := s.store.SaveWizardProfile(ctx, profile)
	if err != nil {
		s.logger.ErrorContext(ctx, "wizard save failed", "user_id", userID, "error", err)
		return WizardReply{Outcome: WizardOutcomeFailed, State: WizardComplete, Err: err}
	}
	return WizardReply{Outcome: WizardOutcomeComplete, State: WizardComplete, Player: saved}
}

// Cancel discards the session and reports whether one existed.
func (s *WizardService) Cancel(userID, channelID string) bool {
	key := wizardKey{userID: userID, channelID: channelID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[key]; !ok {
		return false
	}
	delete(s.sessions, key)
	return true
}

// ExpireSessions removes every session whose deadline passed before now.
func (s *WizardService) ExpireSessions(now time.Time) []ExpiredWizard {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []ExpiredWizard
	for key, session := range s.sessions {
		if now.After(session.deadline) {
			out = append(out, ExpiredWizard{UserID: key.userID, ChannelID: key.channelID, State: session.state})
			delete(s.sessions, key)
		}
	}
	return out
}

func (s *WizardService) timeoutFor(state WizardState) time.Duration {
	if state == WizardAwaitingRoles {
		return s.cfg.RolesTimeout
	}
	return s.cfg.StepTimeout
}

func capture(profile *WizardProfile, state WizardState, text string) {
	switch state {
	case WizardAwaitingMlbbID:
		profile.MlbbID = text
	case WizardAwaitingMlbbUsername:
		profile.MlbbUsername = text
	case WizardAwaitingMaxRank:
		profile.MaxRank = text
	case WizardAwaitingWinRate:
		profile.WinRate = player.NormalizeWinRate(text)
	case WizardAwaitingAvailability:
		profile.Availability = text
	case WizardAwaitingRoles:
		profile.PreferredPositions = ParseRoleLines(text)
	}
}

// ParseRoleLines reads "role: heroes" lines. Lines without a colon or with
// an unknown role are skipped.
func ParseRoleLines(text string) map[player.PreferredRole]string {
	out := make(map[player.PreferredRole]string)
	for _, line := range strings.Split(text, "\n") {
		left, heroes, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		role, valid := player.ParsePreferredRole(left)
		if !valid {
			continue
		}
		out[role] = strings.TrimSpace(heroes)
	}
	return out
}
