package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/hero"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/squad"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/usecase"
)

type staticAuthorizer map[string]bool

func (a staticAuthorizer) HasElevatedPermission(_ context.Context, _ string, userID string) bool {
	return a[userID]
}

type staticDirectory []string

func (d staticDirectory) Moderators(_ context.Context, _ string, limit int) []string {
	if len(d) > limit {
		return d[:limit]
	}
	return d
}

type staticHeroes struct{}

func (staticHeroes) RandomHero(context.Context) (hero.Hero, error) {
	return hero.Hero{Name: "Layla", Image: "https://img/layla.png"}, nil
}

type dispatcherFixture struct {
	dispatcher *Dispatcher
	registry   *usecase.RegistryService
	store      *memory.Store
}

func newDispatcherFixture(t *testing.T) dispatcherFixture {
	t.Helper()

	store := memory.NewStore()
	registry := usecase.NewRegistryService(store, store, logging.NewNop())
	wizard := usecase.NewWizardService(registry, usecase.WizardConfig{}, logging.NewNop())
	dispatcher := NewDispatcher(
		DispatcherConfig{},
		registry,
		wizard,
		staticHeroes{},
		staticAuthorizer{"mod": true},
		staticDirectory{"m1", "m2", "m3", "m4"},
		logging.NewNop(),
	)
	return dispatcherFixture{dispatcher: dispatcher, registry: registry, store: store}
}

func (f dispatcherFixture) send(t *testing.T, author, content string) []Response {
	t.Helper()
	return f.dispatcher.Handle(t.Context(), Message{
		GuildID:    "g1",
		ChannelID:  "c1",
		AuthorID:   author,
		AuthorName: author + "-name",
		Content:    content,
		Mentions:   map[string]User{"200": {ID: "200", Username: "newbie"}},
	})
}

func onlyText(t *testing.T, responses []Response) string {
	t.Helper()
	if len(responses) != 1 {
		t.Fatalf("expected one response, got %d: %+v", len(responses), responses)
	}
	if responses[0].Embed != nil {
		return responses[0].Embed.Title + "\n" + responses[0].Embed.Description
	}
	return responses[0].Content
}

func TestDispatcher_IgnoresNonCommands(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	if got := f.send(t, "u1", "hello there"); got != nil {
		t.Fatalf("expected no responses, got %+v", got)
	}
	if got := f.send(t, "u1", "nb!does_not_exist"); got != nil {
		t.Fatalf("expected unknown command to be ignored, got %+v", got)
	}
}

func TestDispatcher_AdminCommandsRequirePermission(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	out := onlyText(t, f.send(t, "u1", `nb!squad_create Alpha`))
	if !strings.Contains(out, "permission") {
		t.Fatalf("expected permission message, got %q", out)
	}
	if _, err := f.registry.FindSquadByName(t.Context(), "Alpha"); !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("denied command must not create squad, got %v", err)
	}
}

func TestDispatcher_SquadLifecycle(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)

	out := onlyText(t, f.send(t, "mod", `nb!squad_create "Night Owls" late night grinders`))
	if !strings.Contains(out, "Squad Created: Night Owls") || !strings.Contains(out, "late night grinders") {
		t.Fatalf("unexpected create output: %q", out)
	}

	out = onlyText(t, f.send(t, "mod", `nb!squad_create "NIGHT OWLS"`))
	if out != "❌ Squad with name 'NIGHT OWLS' already exists!" {
		t.Fatalf("unexpected duplicate output: %q", out)
	}

	out = onlyText(t, f.send(t, "mod", `nb!add_member "night owls" <@200>`))
	if !strings.Contains(out, "not registered yet") {
		t.Fatalf("expected incomplete registration message, got %q", out)
	}

	resp := f.send(t, "mod", `nb!add_member "night owls" <@200> 9999 Newbie Captain`)
	if len(resp) != 1 || resp[0].Embed == nil || resp[0].Embed.Title != "Member Added to Night Owls" {
		t.Fatalf("unexpected add member response: %+v", resp)
	}
	if got := resp[0].Embed.Fields[2].Value; got != "Captain" {
		t.Fatalf("unexpected squad title field: %q", got)
	}

	resp = f.send(t, "u1", "nb!squad_info night owls")
	if len(resp) != 1 || !strings.Contains(resp[0].Embed.Fields[0].Value, "Newbie (ID: 9999) - Captain") {
		t.Fatalf("unexpected squad info: %+v", resp)
	}

	out = onlyText(t, f.send(t, "mod", `nb!squad_delete Night Owls`))
	if !strings.Contains(out, "has been deleted") {
		t.Fatalf("unexpected delete output: %q", out)
	}
	member, err := f.registry.FindPlayerByID(t.Context(), "200")
	if err != nil || !member.IsFreeAgent() {
		t.Fatalf("expected member released, got=%+v err=%v", member, err)
	}
}

func TestDispatcher_LargeSquadStaysWithinFieldLimits(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	alpha := squad.Squad{Name: "Alpha", Description: strings.Repeat("d", 1024), CreatedBy: "mod", CreatedAt: time.Now()}
	var members []player.Player
	for i := 0; i < 30; i++ {
		p := player.New(fmt.Sprintf("p%02d", i), "user", fmt.Sprintf("%09d", i), strings.Repeat("x", 40)+fmt.Sprint(i))
		p.Squad = "Alpha"
		p.SquadTitle = "Member"
		members = append(members, p)
	}
	f.store.Seed([]squad.Squad{alpha}, members)

	resp := f.send(t, "u1", "nb!squad_info Alpha")
	if len(resp) != 1 || resp[0].Embed == nil {
		t.Fatalf("unexpected squad info: %+v", resp)
	}
	fields := resp[0].Embed.Fields
	if len(fields) < 2 || fields[0].Name != "Members (30)" || fields[1].Name != "Members (30) (cont.)" {
		t.Fatalf("expected roster split across fields, got %d fields", len(fields))
	}
	roster := ""
	for _, field := range fields {
		if n := utf8.RuneCountInString(field.Value); n > 1024 {
			t.Fatalf("field %q has %d characters", field.Name, n)
		}
		roster += field.Value + "\n"
	}
	for _, member := range members {
		if !strings.Contains(roster, "<@"+member.ID+">") {
			t.Fatalf("member %s missing from roster", member.ID)
		}
	}

	resp = f.send(t, "u1", "nb!squads")
	if len(resp) != 1 || resp[0].Embed == nil || len(resp[0].Embed.Fields) != 1 {
		t.Fatalf("unexpected squads list: %+v", resp)
	}
	value := resp[0].Embed.Fields[0].Value
	if utf8.RuneCountInString(value) > 1024 || !strings.HasSuffix(value, "Members: 30") {
		t.Fatalf("expected description cut before the member count, got %d characters", utf8.RuneCountInString(value))
	}
}

func TestDispatcher_UpdateMemberMessages(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	f.store.Seed(nil, []player.Player{{ID: "200", MlbbID: "1"}})

	out := onlyText(t, f.send(t, "mod", "nb!update_member <@200> banana x"))
	if out != "❌ Invalid field! Valid fields are: mlbb_id, mlbb_username, role, squad" {
		t.Fatalf("unexpected invalid field output: %q", out)
	}
	out = onlyText(t, f.send(t, "mod", "nb!update_member <@200> squad Ghost"))
	if out != "❌ Squad 'Ghost' not found!" {
		t.Fatalf("unexpected missing squad output: %q", out)
	}
	out = onlyText(t, f.send(t, "mod", "nb!update_member <@300> mlbb_id 5"))
	if !strings.Contains(out, "is not registered as a player") {
		t.Fatalf("unexpected unregistered output: %q", out)
	}
}

func TestDispatcher_WizardConsumesMessagesUntilCancel(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)

	out := onlyText(t, f.send(t, "u1", "nb!setup"))
	if !strings.Contains(out, "MLBB ID") {
		t.Fatalf("expected first prompt, got %q", out)
	}

	out = onlyText(t, f.send(t, "u1", "12345"))
	if !strings.Contains(out, "MLBB Username") {
		t.Fatalf("expected second prompt, got %q", out)
	}

	out = onlyText(t, f.send(t, "u1", "nb!profile"))
	if !strings.Contains(out, "maximum achieved rank") {
		t.Fatalf("wizard must consume commands as answers, got %q", out)
	}

	if got := f.send(t, "u2", "hello"); got != nil {
		t.Fatalf("other users must not be captured, got %+v", got)
	}

	out = onlyText(t, f.send(t, "u1", "nb!cancel"))
	if !strings.Contains(out, "cancelled") {
		t.Fatalf("expected cancel confirmation, got %q", out)
	}
	if _, err := f.registry.FindPlayerByID(t.Context(), "u1"); !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("cancelled wizard must not persist, got %v", err)
	}

	out = onlyText(t, f.send(t, "u1", "nb!cancel"))
	if out != "There is no profile setup in progress." {
		t.Fatalf("unexpected second cancel output: %q", out)
	}
}

func TestDispatcher_WizardCompletes(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	f.send(t, "u1", "nb!setup")
	for _, answer := range []string{"123", "Rin", "Mythic", "60", "Nights"} {
		f.send(t, "u1", answer)
	}

	out := onlyText(t, f.send(t, "u1", "gold: Layla\nroam: Tigreal"))
	if !strings.Contains(out, "Profile Setup Complete") {
		t.Fatalf("expected completion, got %q", out)
	}

	resp := f.send(t, "u1", "nb!profile")
	if len(resp) != 1 || resp[0].Embed == nil || resp[0].Embed.Title != "Player Profile: Rin" {
		t.Fatalf("unexpected profile: %+v", resp)
	}
}

func TestDispatcher_WizardReceivesUntrimmedAnswers(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	f.send(t, "u1", "nb!setup")
	for _, answer := range []string{" 123", "Rin ", "Mythic", "65%", "  Nights, after 9pm  ", "gold: Layla"} {
		f.send(t, "u1", answer)
	}

	saved, err := f.registry.FindPlayerByID(t.Context(), "u1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if saved.MlbbID != " 123" || saved.MlbbUsername != "Rin " || saved.Availability != "  Nights, after 9pm  " {
		t.Fatalf("expected answers stored as typed: %+v", saved)
	}
	if saved.WinRate != "65%" {
		t.Fatalf("expected a single percent suffix, got %q", saved.WinRate)
	}
}

func TestDispatcher_SelfServiceCommands(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)

	out := onlyText(t, f.send(t, "u1", "nb!set_rank Mythic"))
	if !strings.Contains(out, "not registered") {
		t.Fatalf("expected not registered, got %q", out)
	}

	f.send(t, "u1", "nb!register 555 Rin Blade")
	if got, _ := f.registry.FindPlayerByID(t.Context(), "u1"); got.MlbbUsername != "Rin Blade" {
		t.Fatalf("unexpected registered player: %+v", got)
	}

	out = onlyText(t, f.send(t, "u1", "nb!register 555 Rin"))
	if !strings.Contains(out, "already registered") {
		t.Fatalf("expected already registered, got %q", out)
	}

	out = onlyText(t, f.send(t, "u1", "nb!set_winrate 65"))
	if out != "✅ Updated your win rate to '65%'." {
		t.Fatalf("unexpected win rate output: %q", out)
	}

	out = onlyText(t, f.send(t, "u1", "nb!remove_role gold"))
	if out != "❌ You don't have any preferred roles set!" {
		t.Fatalf("unexpected remove role output: %q", out)
	}
	f.send(t, "u1", "nb!add_role MID Kagura, Lunox")
	out = onlyText(t, f.send(t, "u1", "nb!remove_role gold"))
	if out != "❌ You don't have 'gold' in your preferred roles!" {
		t.Fatalf("unexpected remove role output: %q", out)
	}

	resp := f.send(t, "u2", "nb!search_role mid")
	if len(resp) != 1 || resp[0].Embed == nil || len(resp[0].Embed.Fields) != 1 {
		t.Fatalf("unexpected search role response: %+v", resp)
	}

	out = onlyText(t, f.send(t, "u1", "nb!profile_update banana 1"))
	if !strings.Contains(out, "mlbb_id, mlbb_username, max_rank, win_rate, availability") {
		t.Fatalf("unexpected profile update output: %q", out)
	}
}

func TestDispatcher_JoinSquadMentionsModerators(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	f.send(t, "mod", "nb!squad_create Alpha")
	f.send(t, "u1", "nb!register 1 Rin")

	resp := f.send(t, "u1", "nb!join_squad alpha")
	if len(resp) != 2 {
		t.Fatalf("expected request and confirmation, got %+v", resp)
	}
	if resp[0].Content != "<@m1> <@m2> <@m3>" {
		t.Fatalf("expected three moderator mentions, got %q", resp[0].Content)
	}
	if !strings.Contains(resp[0].Embed.Footer, `add_member "Alpha" <@u1>`) {
		t.Fatalf("unexpected footer: %q", resp[0].Embed.Footer)
	}
	if !f.registry.IsFreeAgent(t.Context(), "u1") {
		t.Fatalf("join request must not change membership")
	}

	out := onlyText(t, f.send(t, "u1", "nb!leave_squad"))
	if out != "❌ You are not in any squad!" {
		t.Fatalf("unexpected leave output: %q", out)
	}
}

func TestDispatcher_MissingArgumentsShowUsage(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	out := onlyText(t, f.send(t, "u1", "nb!register"))
	if out != "❌ Missing arguments! Usage: `nb!register <mlbb_id> <mlbb_username>`" {
		t.Fatalf("unexpected usage output: %q", out)
	}
}

func TestDispatcher_WithUsageFillsWrappedUsage(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	err := f.dispatcher.withUsage(fmt.Errorf("parse args: %w", usageError{}), command{usage: "add_role <role> <heroes>"})

	out, known := errorMessage(err)
	if !known || out != "❌ Missing arguments! Usage: `nb!add_role <role> <heroes>`" {
		t.Fatalf("unexpected usage output: %q (known=%v)", out, known)
	}

	other := errors.New("boom")
	if got := f.dispatcher.withUsage(other, command{usage: "x"}); got != other {
		t.Fatalf("expected non-usage errors to pass through, got %v", got)
	}
}

func TestErrorMessage_EveryKindIsDistinct(t *testing.T) {
	t.Parallel()

	seen := map[string]error{}
	for _, entry := range kindMessages {
		msg, ok := errorMessage(errors.Join(errors.New("context"), entry.kind))
		if !ok {
			t.Fatalf("kind %v not recognized", entry.kind)
		}
		if prev, dup := seen[msg]; dup {
			t.Fatalf("kinds %v and %v share message %q", prev, entry.kind, msg)
		}
		seen[msg] = entry.kind
	}

	msg, ok := errorMessage(errors.New("boom"))
	if ok || msg != genericFailure {
		t.Fatalf("expected generic fallback, got=%q ok=%v", msg, ok)
	}
}

func TestDispatcher_RandomHero(t *testing.T) {
	t.Parallel()

	f := newDispatcherFixture(t)
	resp := f.send(t, "u1", "nb!random_hero")
	if len(resp) != 1 || resp[0].Embed == nil || resp[0].Embed.Image != "https://img/layla.png" {
		t.Fatalf("unexpected hero response: %+v", resp)
	}
}
