package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/squad"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/usecase"
)

// Handler exposes a read-only view of the registry.
type Handler struct {
	registry  *usecase.RegistryService
	logger    *logging.Logger
	validator *validator.Validate
	tracer    trace.Tracer
}

func NewHandler(registry *usecase.RegistryService, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		registry:  registry,
		logger:    logger.Named("http.handler"),
		validator: validator.New(),
		tracer:    defaultTracer(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListSquads(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "ListSquads")
	defer span.End()

	summaries, err := h.registry.ListSquads(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list squads failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]squadSummaryDTO, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, squadSummaryDTO{
			squadDTO:    squadToDTO(summary.Squad),
			MemberCount: summary.MemberCount,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "GetSquad")
	defer span.End()

	name := strings.TrimSpace(r.PathValue("name"))
	found, err := h.registry.FindSquadByName(ctx, name)
	if err != nil {
		h.logger.WarnContext(ctx, "get squad failed", "squad", name, "error", err)
		writeError(ctx, w, err)
		return
	}

	members, err := h.registry.SquadMembers(ctx, found.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "list squad members failed", "squad", found.Name, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, squadDetailDTO{
		squadDTO: squadToDTO(found),
		Members:  playersToDTO(members),
	})
}

func (h *Handler) ListFreeAgents(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "ListFreeAgents")
	defer span.End()

	agents, err := h.registry.FreeAgents(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list free agents failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, playersToDTO(agents))
}

func (h *Handler) SearchPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "SearchPlayers")
	defer span.End()

	query := searchPlayersQuery{Term: strings.TrimSpace(r.URL.Query().Get("q"))}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	found, err := h.registry.SearchPlayers(ctx, query.Term)
	if err != nil {
		h.logger.WarnContext(ctx, "search players failed", "term", query.Term, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, playersToDTO(found))
}

func (h *Handler) ListPlayersByRole(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "ListPlayersByRole")
	defer span.End()

	query := playersByRoleQuery{Role: strings.ToLower(strings.TrimSpace(r.PathValue("role")))}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	found, err := h.registry.PlayersByPreferredRole(ctx, query.Role)
	if err != nil {
		h.logger.WarnContext(ctx, "list players by role failed", "role", query.Role, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, playersToDTO(found))
}

func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.startSpan(r, "GetPlayer")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	found, err := h.registry.FindPlayerByID(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, playerToDTO(found))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type searchPlayersQuery struct {
	Term string `validate:"required,max=100"`
}

type playersByRoleQuery struct {
	Role string `validate:"required,oneof=gold exp mid jungle roam"`
}

type squadDTO struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type squadSummaryDTO struct {
	squadDTO
	MemberCount int `json:"memberCount"`
}

type squadDetailDTO struct {
	squadDTO
	Members []playerDTO `json:"members"`
}

type playerDTO struct {
	ID                 string            `json:"id"`
	Username           string            `json:"username"`
	MlbbID             string            `json:"mlbbId"`
	MlbbUsername       string            `json:"mlbbUsername"`
	Squad              *string           `json:"squad"`
	SquadTitle         string            `json:"squadTitle,omitempty"`
	MaxRank            string            `json:"maxRank"`
	WinRate            string            `json:"winRate"`
	Availability       string            `json:"availability"`
	PreferredPositions map[string]string `json:"preferredPositions"`
}

func squadToDTO(s squad.Squad) squadDTO {
	return squadDTO{
		Name:        s.Name,
		Description: s.Description,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
	}
}

func playerToDTO(p player.Player) playerDTO {
	out := playerDTO{
		ID:                 p.ID,
		Username:           p.Username,
		MlbbID:             p.MlbbID,
		MlbbUsername:       p.MlbbUsername,
		MaxRank:            p.MaxRank,
		WinRate:            p.WinRate,
		Availability:       p.Availability,
		PreferredPositions: make(map[string]string, len(p.PreferredPositions)),
	}
	if !p.IsFreeAgent() {
		squadName := p.Squad
		out.Squad = &squadName
		out.SquadTitle = p.DisplaySquadTitle()
	}
	for role, heroes := range p.PreferredPositions {
		out.PreferredPositions[string(role)] = heroes
	}
	return out
}

func playersToDTO(players []player.Player) []playerDTO {
	out := make([]playerDTO, 0, len(players))
	for _, p := range players {
		out = append(out, playerToDTO(p))
	}
	return out
}
