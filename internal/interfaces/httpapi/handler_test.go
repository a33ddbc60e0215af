package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/squad"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/usecase"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := memory.NewStore()
	store.Seed(
		[]squad.Squad{
			{Name: "Night Owls", Description: "late grinders", CreatedBy: "mod", CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
			{Name: "Empty", Description: "nobody yet", CreatedBy: "mod", CreatedAt: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)},
		},
		[]player.Player{
			{ID: "1", Username: "rin", MlbbID: "111", MlbbUsername: "RinBlade", Squad: "Night Owls", SquadTitle: "Captain",
				PreferredPositions: map[player.PreferredRole]string{player.RoleMid: "Kagura"}},
			{ID: "2", Username: "kai", MlbbID: "222", MlbbUsername: "KaiRoam"},
		},
	)

	registry := usecase.NewRegistryService(store, store, logging.NewNop())
	return NewRouter(NewHandler(registry, logging.NewNop()), logging.NewNop(), []string{"*"})
}

type envelope struct {
	APIVersion string `json:"apiVersion"`
	Data       any    `json:"data"`
	Error      *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
	} `json:"error"`
}

func doGet(t *testing.T, router http.Handler, target string) (int, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))

	var body envelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal %s response: %v body=%s", target, err, rec.Body.String())
	}
	return rec.Code, body
}

func TestHandler_Healthz(t *testing.T) {
	t.Parallel()

	code, body := doGet(t, newTestRouter(t), "/healthz")
	if code != http.StatusOK || body.Error != nil {
		t.Fatalf("unexpected healthz response: code=%d body=%+v", code, body)
	}
}

func TestHandler_ListSquads(t *testing.T) {
	t.Parallel()

	code, body := doGet(t, newTestRouter(t), "/v1/squads")
	if code != http.StatusOK {
		t.Fatalf("unexpected status: %d", code)
	}
	items, ok := body.Data.([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("unexpected squads payload: %+v", body.Data)
	}
	first := items[0].(map[string]any)
	if first["name"] != "Night Owls" || first["memberCount"] != float64(1) {
		t.Fatalf("unexpected first squad: %+v", first)
	}
}

func TestHandler_GetSquadIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	code, body := doGet(t, newTestRouter(t), "/v1/squads/night%20owls")
	if code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%+v", code, body)
	}
	detail := body.Data.(map[string]any)
	members := detail["members"].([]any)
	if detail["name"] != "Night Owls" || len(members) != 1 {
		t.Fatalf("unexpected squad detail: %+v", detail)
	}
	if members[0].(map[string]any)["squadTitle"] != "Captain" {
		t.Fatalf("unexpected member: %+v", members[0])
	}

	code, body = doGet(t, newTestRouter(t), "/v1/squads/ghost")
	if code != http.StatusNotFound || body.Error == nil || body.Error.Status != "NOT_FOUND" {
		t.Fatalf("expected not found, got code=%d body=%+v", code, body)
	}
}

func TestHandler_FreeAgentsAndPlayer(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	code, body := doGet(t, router, "/v1/players/free-agents")
	agents, _ := body.Data.([]any)
	if code != http.StatusOK || len(agents) != 1 {
		t.Fatalf("unexpected free agents: code=%d body=%+v", code, body)
	}
	agent := agents[0].(map[string]any)
	if agent["id"] != "2" || agent["squad"] != nil || agent["maxRank"] != player.DefaultMaxRank {
		t.Fatalf("unexpected free agent: %+v", agent)
	}

	code, body = doGet(t, router, "/v1/players/1")
	if code != http.StatusOK {
		t.Fatalf("unexpected status: %d", code)
	}
	got := body.Data.(map[string]any)
	if got["squad"] != "Night Owls" {
		t.Fatalf("unexpected player: %+v", got)
	}
	if roles := got["preferredPositions"].(map[string]any); roles["mid"] != "Kagura" {
		t.Fatalf("unexpected preferred positions: %+v", roles)
	}
}

func TestHandler_SearchPlayers(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	code, body := doGet(t, router, "/v1/players/search?q=roam")
	results, _ := body.Data.([]any)
	if code != http.StatusOK || len(results) != 1 {
		t.Fatalf("unexpected search result: code=%d body=%+v", code, body)
	}

	code, body = doGet(t, router, "/v1/players/search?q=%20")
	if code != http.StatusBadRequest || body.Error == nil || body.Error.Status != "INVALID_ARGUMENT" {
		t.Fatalf("expected validation error, got code=%d body=%+v", code, body)
	}
}

func TestHandler_ListPlayersByRole(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)

	code, body := doGet(t, router, "/v1/players/roles/MID")
	results, _ := body.Data.([]any)
	if code != http.StatusOK || len(results) != 1 {
		t.Fatalf("unexpected role result: code=%d body=%+v", code, body)
	}

	code, _ = doGet(t, router, "/v1/players/roles/tank")
	if code != http.StatusBadRequest {
		t.Fatalf("expected bad request for unknown role, got %d", code)
	}
}
