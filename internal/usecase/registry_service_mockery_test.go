package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/squad"
	playermock "github.com/riskibarqy/mlbb-squad-tracker/internal/mocks/domain/player"
	squadmock "github.com/riskibarqy/mlbb-squad-tracker/internal/mocks/domain/squad"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func TestRegistryService_DeleteSquad_SavesSquadsThenPlayersUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	squadRepo := squadmock.NewRepository(t)
	playerRepo := playermock.NewRepository(t)
	svc := NewRegistryService(squadRepo, playerRepo, logging.NewNop())

	var order []string
	squadRepo.
		On("LoadSquads", mock.Anything).
		Return([]squad.Squad{{Name: "Alpha"}, {Name: "Beta"}}).
		Once()
	playerRepo.
		On("LoadPlayers", mock.Anything).
		Return([]player.Player{{ID: "p1", Squad: "alpha", SquadTitle: "Captain"}}).
		Once()
	squadRepo.
		On("SaveSquads", mock.Anything, mock.MatchedBy(func(v []squad.Squad) bool {
			return len(v) == 1 && v[0].Name == "Beta"
		})).
		Run(func(mock.Arguments) { order = append(order, "squads") }).
		Return(nil).
		Once()
	playerRepo.
		On("SavePlayers", mock.Anything, mock.MatchedBy(func(v []player.Player) bool {
			return len(v) == 1 && v[0].Squad == "" && v[0].SquadTitle == ""
		})).
		Run(func(mock.Arguments) { order = append(order, "players") }).
		Return(nil).
		Once()

	if _, err := svc.DeleteSquad(ctx, "ALPHA"); err != nil {
		t.Fatalf("delete squad: %v", err)
	}
	if len(order) != 2 || order[0] != "squads" || order[1] != "players" {
		t.Fatalf("unexpected save order: %v", order)
	}
}

func TestRegistryService_CreateSquad_SaveFailureUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	squadRepo := squadmock.NewRepository(t)
	playerRepo := playermock.NewRepository(t)
	svc := NewRegistryService(squadRepo, playerRepo, logging.NewNop())

	squadRepo.
		On("LoadSquads", mock.Anything).
		Return([]squad.Squad{}).
		Once()
	squadRepo.
		On("SaveSquads", mock.Anything, mock.Anything).
		Return(errors.New("disk full")).
		Once()

	_, err := svc.CreateSquad(ctx, CreateSquadInput{Name: "Alpha", CreatedBy: "1"})
	if !errors.Is(err, ErrPersistenceFailure) {
		t.Fatalf("expected ErrPersistenceFailure, got %v", err)
	}
}

func TestRegistryService_UpdateMemberField_InvalidFieldNeverSavesUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	squadRepo := squadmock.NewRepository(t)
	playerRepo := playermock.NewRepository(t)
	svc := NewRegistryService(squadRepo, playerRepo, logging.NewNop())

	playerRepo.
		On("LoadPlayers", mock.MatchedBy(func(v context.Context) bool { return v == ctx })).
		Return([]player.Player{{ID: "p1"}}).
		Once()

	if _, err := svc.UpdateMemberField(ctx, "p1", "banana", "x"); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}
	playerRepo.AssertNotCalled(t, "SavePlayers", mock.Anything, mock.Anything)
}
