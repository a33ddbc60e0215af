package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/squad"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
)

// Field names accepted by the field-update operations.
const (
	FieldMlbbID       = "mlbb_id"
	FieldMlbbUsername = "mlbb_username"
	FieldSquadTitle   = "role"
	FieldSquad        = "squad"
	FieldMaxRank      = "max_rank"
	FieldWinRate      = "win_rate"
	FieldAvailability = "availability"
)

// MemberFields are the fields moderators may change on any player.
var MemberFields = []string{FieldMlbbID, FieldMlbbUsername, FieldSquadTitle, FieldSquad}

// ProfileFields are the fields a player may change on their own profile.
var ProfileFields = []string{FieldMlbbID, FieldMlbbUsername, FieldMaxRank, FieldWinRate, FieldAvailability}

type CreateSquadInput struct {
	Name        string
	Description string
	CreatedBy   string
}

// UpsertSquadMemberInput assigns a player to a squad. MlbbID and MlbbUsername
// are optional for players that already exist.
type UpsertSquadMemberInput struct {
	SquadName    string
	PlayerID     string
	Username     string
	MlbbID       *string
	MlbbUsername *string
	SquadTitle   string
}

type RegisterPlayerInput struct {
	ID           string
	Username     string
	MlbbID       string
	MlbbUsername string
}

// WizardProfile is the data captured by a completed registration wizard.
type WizardProfile struct {
	PlayerID           string
	Username           string
	MlbbID             string
	MlbbUsername       string
	MaxRank            string
	WinRate            string
	Availability       string
	PreferredPositions map[player.PreferredRole]string
}

type DeleteSquadResult struct {
	Squad           squad.Squad
	ReleasedPlayers int
}

// JoinRequest is what moderators need to approve a join.
type JoinRequest struct {
	Player player.Player
	Squad  squad.Squad
}

// RegistryService owns every read and write over the squad and player
// collections. Each call loads fresh snapshots and mutations save the whole
// collection back. Writes are serialized through writeMu.
type RegistryService struct {
	squadRepo  squad.Repository
	playerRepo player.Repository
	validate   *validator.Validate
	logger     *logging.Logger
	now        func() time.Time

	writeMu sync.Mutex
}

func NewRegistryService(squadRepo squad.Repository, playerRepo player.Repository, logger *logging.Logger) *RegistryService {
	if logger == nil {
		logger = logging.Default()
	}

	return &RegistryService{
		squadRepo:  squadRepo,
		playerRepo: playerRepo,
		validate:   validator.New(),
		logger:     logger,
		now:        time.Now,
	}
}

// validateSquad applies the same field limits the postgres provider enforces,
// so every provider rejects oversized names and descriptions alike.
func (s *RegistryService) validateSquad(ctx context.Context, item squad.Squad) error {
	if err := s.validate.StructCtx(ctx, item); err != nil {
		return fmt.Errorf("%w: squad=%s: %v", ErrInvalidInput, item.Name, err)
	}
	return nil
}

func (s *RegistryService) FindSquadByName(ctx context.Context, name string) (squad.Squad, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.FindSquadByName")
	defer span.End()

	squads := s.squadRepo.LoadSquads(ctx)
	idx := squad.IndexByName(squads, name)
	if idx < 0 {
		return squad.Squad{}, fmt.Errorf("%w: squad=%s", ErrNotFound, name)
	}
	return squads[idx], nil
}

func (s *RegistryService) FindPlayerByID(ctx context.Context, id string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.FindPlayerByID")
	defer span.End()

	players := s.playerRepo.LoadPlayers(ctx)
	idx := player.IndexByID(players, id)
	if idx < 0 {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrNotFound, id)
	}
	return players[idx], nil
}

func (s *RegistryService) FindPlayerByUsername(ctx context.Context, username string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.FindPlayerByUsername")
	defer span.End()

	for _, item := range s.playerRepo.LoadPlayers(ctx) {
		if strings.EqualFold(item.Username, username) {
			return item, nil
		}
	}
	return player.Player{}, fmt.Errorf("%w: username=%s", ErrNotFound, username)
}

func (s *RegistryService) FindPlayerByMlbbID(ctx context.Context, mlbbID string) (player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.FindPlayerByMlbbID")
	defer span.End()

	for _, item := range s.playerRepo.LoadPlayers(ctx) {
		if item.MlbbID == mlbbID {
			return item, nil
		}
	}
	return player.Player{}, fmt.Errorf("%w: mlbb_id=%s", ErrNotFound, mlbbID)
}

// SquadMembers returns the squad's players in collection order. A missing
// squad is ErrNotFound, an existing squad without members is an empty slice.
func (s *RegistryService) SquadMembers(ctx context.Context, squadName string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.SquadMembers")
	defer span.End()

	squads := s.squadRepo.LoadSquads(ctx)
	idx := squad.IndexByName(squads, squadName)
	if idx < 0 {
		return nil, fmt.Errorf("%w: squad=%s", ErrNotFound, squadName)
	}

	return membersOf(s.playerRepo.LoadPlayers(ctx), squads[idx].Name), nil
}

// IsFreeAgent is false for unknown players.
func (s *RegistryService) IsFreeAgent(ctx context.Context, id string) bool {
	players := s.playerRepo.LoadPlayers(ctx)
	idx := player.IndexByID(players, id)
	if idx < 0 {
		return false
	}
	return players[idx].IsFreeAgent()
}

func (s *RegistryService) FreeAgents(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.FreeAgents")
	defer span.End()

	out := make([]player.Player, 0)
	for _, item := range s.playerRepo.LoadPlayers(ctx) {
		if item.IsFreeAgent() {
			out = append(out, item)
		}
	}
	return out, nil
}

// SearchPlayers matches a case-insensitive substring of the platform or MLBB
// username, or the exact MLBB id.
func (s *RegistryService) SearchPlayers(ctx context.Context, term string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.SearchPlayers")
	defer span.End()

	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", ErrInvalidInput)
	}
	needle := strings.ToLower(term)

	out := make([]player.Player, 0)
	for _, item := range s.playerRepo.LoadPlayers(ctx) {
		switch {
		case strings.Contains(strings.ToLower(item.Username), needle),
			strings.Contains(strings.ToLower(item.MlbbUsername), needle),
			item.MlbbID == term:
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *RegistryService) PlayersByPreferredRole(ctx context.Context, rawRole string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.PlayersByPreferredRole")
	defer span.End()

	role, ok := player.ParsePreferredRole(rawRole)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, rawRole)
	}

	out := make([]player.Player, 0)
	for _, item := range s.playerRepo.LoadPlayers(ctx) {
		if item.HasPreferredRole(role) {
			out = append(out, item)
		}
	}
	return out, nil
}

// ListSquads returns every squad with its member count.
func (s *RegistryService) ListSquads(ctx context.Context) ([]squad.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.ListSquads")
	defer span.End()

	squads := s.squadRepo.LoadSquads(ctx)
	players := s.playerRepo.LoadPlayers(ctx)

	out := make([]squad.Summary, 0, len(squads))
	for _, item := range squads {
		out = append(out, squad.Summary{
			Squad:       item,
			MemberCount: len(membersOf(players, item.Name)),
		})
	}
	return out, nil
}

func (s *RegistryService) CreateSquad(ctx context.Context, input CreateSquadInput) (created squad.Squad, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.CreateSquad")
	defer func() { endUsecaseSpan(span, err) }()

	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if input.Name == "" {
		return squad.Squad{}, fmt.Errorf("%w: squad name is required", ErrInvalidInput)
	}
	if input.Description == "" {
		input.Description = squad.DefaultDescription
	}

	created = squad.Squad{
		Name:        input.Name,
		Description: input.Description,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   s.now().UTC(),
	}
	if err := created.Validate(); err != nil {
		return squad.Squad{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.validateSquad(ctx, created); err != nil {
		return squad.Squad{}, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	squads := s.squadRepo.LoadSquads(ctx)
	if squad.IndexByName(squads, input.Name) >= 0 {
		return squad.Squad{}, fmt.Errorf("%w: squad=%s", ErrDuplicateName, input.Name)
	}

	if err := s.saveSquads(ctx, append(squads, created)); err != nil {
		return squad.Squad{}, err
	}

	s.logger.InfoContext(ctx, "squad created", "squad", created.Name, "created_by", created.CreatedBy)
	return created, nil
}

func (s *RegistryService) UpdateSquadDescription(ctx context.Context, name, description string) (updated squad.Squad, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.UpdateSquadDescription")
	defer func() { endUsecaseSpan(span, err) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	squads := s.squadRepo.LoadSquads(ctx)
	idx := squad.IndexByName(squads, name)
	if idx < 0 {
		return squad.Squad{}, fmt.Errorf("%w: squad=%s", ErrNotFound, name)
	}

	candidate := squads[idx]
	candidate.Description = description
	if err := s.validateSquad(ctx, candidate); err != nil {
		return squad.Squad{}, err
	}

	squads[idx] = candidate
	if err := s.saveSquads(ctx, squads); err != nil {
		return squad.Squad{}, err
	}
	return squads[idx], nil
}

// DeleteSquad removes the squad and releases every member to free agency.
// Squads are saved before players.
func (s *RegistryService) DeleteSquad(ctx context.Context, name string) (result DeleteSquadResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.DeleteSquad")
	defer func() { endUsecaseSpan(span, err) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	squads := s.squadRepo.LoadSquads(ctx)
	idx := squad.IndexByName(squads, name)
	if idx < 0 {
		return DeleteSquadResult{}, fmt.Errorf("%w: squad=%s", ErrNotFound, name)
	}
	removed := squads[idx]
	remaining := append(squads[:idx:idx], squads[idx+1:]...)

	players := s.playerRepo.LoadPlayers(ctx)
	released := 0
	for i := range players {
		if players[i].InSquad(name) {
			players[i].LeaveSquad()
			released++
		}
	}

	if err := s.saveSquads(ctx, remaining); err != nil {
		return DeleteSquadResult{}, err
	}
	if err := s.savePlayers(ctx, players); err != nil {
		return DeleteSquadResult{}, err
	}

	s.logger.InfoContext(ctx, "squad deleted", "squad", removed.Name, "released_players", released)
	return DeleteSquadResult{Squad: removed, ReleasedPlayers: released}, nil
}

// UpsertSquadMember assigns a player to a squad, creating the player when
// both MLBB fields are supplied. Profile defaults apply only on creation.
func (s *RegistryService) UpsertSquadMember(ctx context.Context, input UpsertSquadMemberInput) (member player.Player, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.UpsertSquadMember")
	defer func() { endUsecaseSpan(span, err) }()

	input.PlayerID = strings.TrimSpace(input.PlayerID)
	if input.PlayerID == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	title := strings.TrimSpace(input.SquadTitle)
	if title == "" {
		title = player.DefaultSquadTitle
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	squads := s.squadRepo.LoadSquads(ctx)
	squadIdx := squad.IndexByName(squads, input.SquadName)
	if squadIdx < 0 {
		return player.Player{}, fmt.Errorf("%w: squad=%s", ErrNotFound, input.SquadName)
	}
	squadName := squads[squadIdx].Name

	players := s.playerRepo.LoadPlayers(ctx)
	idx := player.IndexByID(players, input.PlayerID)
	if idx >= 0 {
		member = players[idx]
		if input.MlbbID != nil {
			member.MlbbID = *input.MlbbID
		}
		if input.MlbbUsername != nil {
			member.MlbbUsername = *input.MlbbUsername
		}
		member.Squad = squadName
		member.SquadTitle = title
		players[idx] = member
	} else {
		if input.MlbbID == nil || input.MlbbUsername == nil {
			return player.Player{}, fmt.Errorf("%w: player=%s needs mlbb id and username", ErrIncompleteRegistration, input.PlayerID)
		}
		member = player.New(input.PlayerID, input.Username, *input.MlbbID, *input.MlbbUsername)
		member.Squad = squadName
		member.SquadTitle = title
		players = append(players, member)
	}

	if err := s.savePlayers(ctx, players); err != nil {
		return player.Player{}, err
	}

	s.logger.InfoContext(ctx, "squad member upserted", "squad", squadName, "player_id", member.ID, "created", idx < 0)
	return member, nil
}

func (s *RegistryService) RemoveMember(ctx context.Context, squadName, playerID string) (member player.Player, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.RemoveMember")
	defer func() { endUsecaseSpan(span, err) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if squad.IndexByName(s.squadRepo.LoadSquads(ctx), squadName) < 0 {
		return player.Player{}, fmt.Errorf("%w: squad=%s", ErrNotFound, squadName)
	}

	players := s.playerRepo.LoadPlayers(ctx)
	idx := player.IndexByID(players, playerID)
	if idx < 0 {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	if !players[idx].InSquad(squadName) {
		return player.Player{}, fmt.Errorf("%w: player=%s squad=%s", ErrNotInSquad, playerID, squadName)
	}

	players[idx].LeaveSquad()
	if err := s.savePlayers(ctx, players); err != nil {
		return player.Player{}, err
	}
	return players[idx], nil
}

// UpdateMemberField sets one of MemberFields. Setting squad to "none" clears
// the squad assignment and title.
func (s *RegistryService) UpdateMemberField(ctx context.Context, playerID, field, value string) (member player.Player, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.UpdateMemberField")
	defer func() { endUsecaseSpan(span, err) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	players := s.playerRepo.LoadPlayers(ctx)
	idx := player.IndexByID(players, playerID)
	if idx < 0 {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}

	field = strings.ToLower(strings.TrimSpace(field))
	member = players[idx]
	switch field {
	case FieldMlbbID:
		member.MlbbID = value
	case FieldMlbbUsername:
		member.MlbbUsername = value
	case FieldSquadTitle:
		member.SquadTitle = value
	case FieldSquad:
		if strings.EqualFold(strings.TrimSpace(value), player.ClearSquadValue) {
			member.LeaveSquad()
			break
		}
		squads := s.squadRepo.LoadSquads(ctx)
		squadIdx := squad.IndexByName(squads, value)
		if squadIdx < 0 {
			return player.Player{}, fmt.Errorf("%w: squad=%s", ErrNotFound, value)
		}
		member.Squad = squads[squadIdx].Name
	default:
		return player.Player{}, fmt.Errorf("%w: %s", ErrInvalidField, field)
	}

	players[idx] = member
	if err := s.savePlayers(ctx, players); err != nil {
		return player.Player{}, err
	}
	return member, nil
}

// RegisterPlayer stores a minimal record. Profile defaults are filled in by
// the store on load.
func (s *RegistryService) RegisterPlayer(ctx context.Context, input RegisterPlayerInput) (registered player.Player, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.RegisterPlayer")
	defer func() { endUsecaseSpan(span, err) }()

	input.ID = strings.TrimSpace(input.ID)
	if input.ID == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	players := s.playerRepo.LoadPlayers(ctx)
	if player.IndexByID(players, input.ID) >= 0 {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrAlreadyRegistered, input.ID)
	}

	registered = player.Player{
		ID:           input.ID,
		Username:     input.Username,
		MlbbID:       input.MlbbID,
		MlbbUsername: input.MlbbUsername,
	}
	if err := s.savePlayers(ctx, append(players, registered)); err != nil {
		return player.Player{}, err
	}

	s.logger.InfoContext(ctx, "player registered", "player_id", registered.ID)
	return registered, nil
}

// UpdateProfileField sets one of ProfileFields on the player's own profile.
func (s *RegistryService) UpdateProfileField(ctx context.Context, playerID, field, value string) (player.Player, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	return s.updateOwnProfile(ctx, "usecase.RegistryService.UpdateProfileField", playerID, func(p *player.Player) error {
		switch field {
		case FieldMlbbID:
			p.MlbbID = value
		case FieldMlbbUsername:
			p.MlbbUsername = value
		case FieldMaxRank:
			p.MaxRank = value
		case FieldWinRate:
			p.WinRate = player.NormalizeWinRate(value)
		case FieldAvailability:
			p.Availability = value
		default:
			return fmt.Errorf("%w: %s", ErrInvalidField, field)
		}
		return nil
	})
}

func (s *RegistryService) SetRank(ctx context.Context, playerID, rank string) (player.Player, error) {
	return s.updateOwnProfile(ctx, "usecase.RegistryService.SetRank", playerID, func(p *player.Player) error {
		p.MaxRank = rank
		return nil
	})
}

func (s *RegistryService) SetWinRate(ctx context.Context, playerID, winRate string) (player.Player, error) {
	return s.updateOwnProfile(ctx, "usecase.RegistryService.SetWinRate", playerID, func(p *player.Player) error {
		p.WinRate = player.NormalizeWinRate(winRate)
		return nil
	})
}

func (s *RegistryService) SetAvailability(ctx context.Context, playerID, availability string) (player.Player, error) {
	return s.updateOwnProfile(ctx, "usecase.RegistryService.SetAvailability", playerID, func(p *player.Player) error {
		p.Availability = availability
		return nil
	})
}

func (s *RegistryService) AddPreferredRole(ctx context.Context, playerID, rawRole, heroes string) (player.Player, error) {
	return s.updateOwnProfile(ctx, "usecase.RegistryService.AddPreferredRole", playerID, func(p *player.Player) error {
		role, ok := player.ParsePreferredRole(rawRole)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidRole, rawRole)
		}
		if p.PreferredPositions == nil {
			p.PreferredPositions = make(map[player.PreferredRole]string)
		}
		p.PreferredPositions[role] = heroes
		return nil
	})
}

func (s *RegistryService) RemovePreferredRole(ctx context.Context, playerID, rawRole string) (player.Player, error) {
	return s.updateOwnProfile(ctx, "usecase.RegistryService.RemovePreferredRole", playerID, func(p *player.Player) error {
		role, ok := player.ParsePreferredRole(rawRole)
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidRole, rawRole)
		}
		if !p.HasPreferredRole(role) {
			return fmt.Errorf("%w: %s", ErrRoleNotSet, role)
		}
		delete(p.PreferredPositions, role)
		return nil
	})
}

// RequestJoinSquad validates a join request without changing anything.
// Approval happens through UpsertSquadMember.
func (s *RegistryService) RequestJoinSquad(ctx context.Context, playerID, squadName string) (JoinRequest, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.RequestJoinSquad")
	defer span.End()

	players := s.playerRepo.LoadPlayers(ctx)
	idx := player.IndexByID(players, playerID)
	if idx < 0 {
		return JoinRequest{}, fmt.Errorf("%w: player=%s", ErrNotRegistered, playerID)
	}
	requester := players[idx]
	if !requester.IsFreeAgent() {
		return JoinRequest{}, fmt.Errorf("%w: squad=%s", ErrAlreadyInSquad, requester.Squad)
	}

	squads := s.squadRepo.LoadSquads(ctx)
	squadIdx := squad.IndexByName(squads, squadName)
	if squadIdx < 0 {
		return JoinRequest{}, fmt.Errorf("%w: squad=%s", ErrNotFound, squadName)
	}

	return JoinRequest{Player: requester, Squad: squads[squadIdx]}, nil
}

// LeaveSquad clears the caller's squad and returns the squad name they left.
func (s *RegistryService) LeaveSquad(ctx context.Context, playerID string) (left string, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.LeaveSquad")
	defer func() { endUsecaseSpan(span, err) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	players := s.playerRepo.LoadPlayers(ctx)
	idx := player.IndexByID(players, playerID)
	if idx < 0 {
		return "", fmt.Errorf("%w: player=%s", ErrNotRegistered, playerID)
	}
	if players[idx].IsFreeAgent() {
		return "", fmt.Errorf("%w: player=%s", ErrNotInSquad, playerID)
	}

	left = players[idx].Squad
	players[idx].LeaveSquad()
	if err := s.savePlayers(ctx, players); err != nil {
		return "", err
	}
	return left, nil
}

// SaveWizardProfile merges a completed wizard onto the player's record.
// Captured fields replace the stored ones. Squad and squad title carry over.
func (s *RegistryService) SaveWizardProfile(ctx context.Context, profile WizardProfile) (saved player.Player, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistryService.SaveWizardProfile")
	defer func() { endUsecaseSpan(span, err) }()

	if strings.TrimSpace(profile.PlayerID) == "" {
		return player.Player{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	players := s.playerRepo.LoadPlayers(ctx)
	idx := player.IndexByID(players, profile.PlayerID)

	saved = player.Player{
		ID:                 profile.PlayerID,
		Username:           profile.Username,
		MlbbID:             profile.MlbbID,
		MlbbUsername:       profile.MlbbUsername,
		MaxRank:            profile.MaxRank,
		WinRate:            profile.WinRate,
		Availability:       profile.Availability,
		PreferredPositions: make(map[player.PreferredRole]string, len(profile.PreferredPositions)),
	}
	for role, heroes := range profile.PreferredPositions {
		saved.PreferredPositions[role] = heroes
	}
	if idx >= 0 {
		saved.Squad = players[idx].Squad
		saved.SquadTitle = players[idx].SquadTitle
		players[idx] = saved
	} else {
		players = append(players, saved)
	}

	if err := s.savePlayers(ctx, players); err != nil {
		return player.Player{}, err
	}

	s.logger.InfoContext(ctx, "wizard profile saved", "player_id", saved.ID, "existing", idx >= 0)
	return saved, nil
}

func (s *RegistryService) updateOwnProfile(ctx context.Context, spanName, playerID string, apply func(p *player.Player) error) (updated player.Player, err error) {
	ctx, span := startUsecaseSpan(ctx, spanName)
	defer func() { endUsecaseSpan(span, err) }()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	players := s.playerRepo.LoadPlayers(ctx)
	idx := player.IndexByID(players, playerID)
	if idx < 0 {
		return player.Player{}, fmt.Errorf("%w: player=%s", ErrNotRegistered, playerID)
	}

	updated = players[idx].Clone()
	if err := apply(&updated); err != nil {
		return player.Player{}, err
	}

	players[idx] = updated
	if err := s.savePlayers(ctx, players); err != nil {
		return player.Player{}, err
	}
	return updated, nil
}

func (s *RegistryService) saveSquads(ctx context.Context, squads []squad.Squad) error {
	if err := s.squadRepo.SaveSquads(ctx, squads); err != nil {
		s.logger.ErrorContext(ctx, "save squads failed", "error", err)
		return fmt.Errorf("%w: save squads: %v", ErrPersistenceFailure, err)
	}
	return nil
}

func (s *RegistryService) savePlayers(ctx context.Context, players []player.Player) error {
	if err := s.playerRepo.SavePlayers(ctx, players); err != nil {
		s.logger.ErrorContext(ctx, "save players failed", "error", err)
		return fmt.Errorf("%w: save players: %v", ErrPersistenceFailure, err)
	}
	return nil
}

func membersOf(players []player.Player, squadName string) []player.Player {
	out := make([]player.Player, 0)
	for _, item := range players {
		if item.InSquad(squadName) {
			out = append(out, item)
		}
	}
	return out
}
