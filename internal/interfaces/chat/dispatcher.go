package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/hero"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/squad"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/platform/logging"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
)

const DefaultPrefix = "nb!"

// Registry is the registry surface the dispatcher drives.
type Registry interface {
	FindSquadByName(ctx context.Context, name string) (squad.Squad, error)
	FindPlayerByID(ctx context.Context, id string) (player.Player, error)
	SquadMembers(ctx context.Context, squadName string) ([]player.Player, error)
	FreeAgents(ctx context.Context) ([]player.Player, error)
	SearchPlayers(ctx context.Context, term string) ([]player.Player, error)
	PlayersByPreferredRole(ctx context.Context, role string) ([]player.Player, error)
	ListSquads(ctx context.Context) ([]squad.Summary, error)

	CreateSquad(ctx context.Context, input usecase.CreateSquadInput) (squad.Squad, error)
	UpdateSquadDescription(ctx context.Context, name, description string) (squad.Squad, error)
	DeleteSquad(ctx context.Context, name string) (usecase.DeleteSquadResult, error)
	UpsertSquadMember(ctx context.Context, input usecase.UpsertSquadMemberInput) (player.Player, error)
	RemoveMember(ctx context.Context, squadName, playerID string) (player.Player, error)
	UpdateMemberField(ctx context.Context, playerID, field, value string) (player.Player, error)

	RegisterPlayer(ctx context.Context, input usecase.RegisterPlayerInput) (player.Player, error)
	UpdateProfileField(ctx context.Context, playerID, field, value string) (player.Player, error)
	SetRank(ctx context.Context, playerID, rank string) (player.Player, error)
	SetWinRate(ctx context.Context, playerID, winRate string) (player.Player, error)
	SetAvailability(ctx context.Context, playerID, availability string) (player.Player, error)
	AddPreferredRole(ctx context.Context, playerID, role, heroes string) (player.Player, error)
	RemovePreferredRole(ctx context.Context, playerID, role string) (player.Player, error)
	RequestJoinSquad(ctx context.Context, playerID, squadName string) (usecase.JoinRequest, error)
	LeaveSquad(ctx context.Context, playerID string) (string, error)
}

// Wizard is the registration wizard surface.
type Wizard interface {
	Start(ctx context.Context, input usecase.StartWizardInput) (usecase.WizardReply, error)
	OnMessage(ctx context.Context, userID, channelID, text string) usecase.WizardReply
	Active(userID, channelID string) bool
	Cancel(userID, channelID string) bool
}

type HeroPicker interface {
	RandomHero(ctx context.Context) (hero.Hero, error)
}

// Authorizer decides who may run moderator commands.
type Authorizer interface {
	HasElevatedPermission(ctx context.Context, guildID, userID string) bool
}

// Directory resolves guild members. It is optional.
type Directory interface {
	Moderators(ctx context.Context, guildID string, limit int) []string
}

type DispatcherConfig struct {
	Prefix string
}

type command struct {
	admin bool
	usage string
	run   func(ctx context.Context, msg Message, a *args) ([]Response, error)
}

// Dispatcher routes prefixed chat commands to the registry and wizard and
// renders the results.
type Dispatcher struct {
	prefix    string
	registry  Registry
	wizard    Wizard
	heroes    HeroPicker
	auth      Authorizer
	directory Directory
	logger    *logging.Logger

	commands map[string]command
}

func NewDispatcher(
	cfg DispatcherConfig,
	registry Registry,
	wizard Wizard,
	heroes HeroPicker,
	auth Authorizer,
	directory Directory,
	logger *logging.Logger,
) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.Prefix) == "" {
		cfg.Prefix = DefaultPrefix
	}

	d := &Dispatcher{
		prefix:    cfg.Prefix,
		registry:  registry,
		wizard:    wizard,
		heroes:    heroes,
		auth:      auth,
		directory: directory,
		logger:    logger.Named("chat"),
	}
	d.commands = d.routes()
	return d
}

func (d *Dispatcher) Prefix() string {
	return d.prefix
}

func (d *Dispatcher) routes() map[string]command {
	return map[string]command{
		"help_mlbb": {usage: "help_mlbb", run: d.help},

		"squad_create":  {admin: true, usage: `squad_create "<name>" [description]`, run: d.squadCreate},
		"squad_update":  {admin: true, usage: `squad_update "<name>" <description>`, run: d.squadUpdate},
		"squad_delete":  {admin: true, usage: `squad_delete "<name>"`, run: d.squadDelete},
		"add_member":    {admin: true, usage: `add_member "<squad>" @member [mlbb_id] [mlbb_username] [role]`, run: d.addMember},
		"remove_member": {admin: true, usage: `remove_member "<squad>" @member`, run: d.removeMember},
		"update_member": {admin: true, usage: "update_member @member <field> <value>", run: d.updateMember},

		"setup":            {usage: "setup", run: d.setup},
		"cancel":           {usage: "cancel", run: d.cancel},
		"register":         {usage: "register <mlbb_id> <mlbb_username>", run: d.register},
		"profile":          {usage: "profile [@member]", run: d.profile},
		"profile_update":   {usage: "profile_update <field> <value>", run: d.profileUpdate},
		"set_rank":         {usage: "set_rank <rank>", run: d.setRank},
		"set_winrate":      {usage: "set_winrate <win_rate>", run: d.setWinRate},
		"set_availability": {usage: "set_availability <availability>", run: d.setAvailability},
		"add_role":         {usage: "add_role <role> <heroes>", run: d.addRole},
		"remove_role":      {usage: "remove_role <role>", run: d.removeRole},
		"join_squad":       {usage: "join_squad <squad>", run: d.joinSquad},
		"leave_squad":      {usage: "leave_squad", run: d.leaveSquad},

		"squads":        {usage: "squads", run: d.squads},
		"squad_info":    {usage: "squad_info <squad>", run: d.squadInfo},
		"free_agents":   {usage: "free_agents", run: d.freeAgents},
		"search_player": {usage: "search_player <term>", run: d.searchPlayer},
		"search_role":   {usage: "search_role <role>", run: d.searchRole},
		"random_hero":   {usage: "random_hero", run: d.randomHero},
	}
}

// Handle processes one message and returns what to send back. Messages that
// are neither commands nor wizard answers produce no responses.
func (d *Dispatcher) Handle(ctx context.Context, msg Message) []Response {
	ctx, span := startSpan(ctx, "chat.Dispatcher.Handle")
	defer span.End()

	content := strings.TrimSpace(msg.Content)
	name, rawArgs, isCommand := d.splitCommand(content)

	if d.wizard != nil && d.wizard.Active(msg.AuthorID, msg.ChannelID) && !(isCommand && name == "cancel") {
		span.SetAttributes(attribute.String("chat.route", "wizard"))
		return d.wizardReply(d.wizard.OnMessage(ctx, msg.AuthorID, msg.ChannelID, msg.Content))
	}
	if !isCommand {
		return nil
	}

	span.SetAttributes(attribute.String("chat.command", name))
	cmd, ok := d.commands[name]
	if !ok {
		return nil
	}

	if cmd.admin && (d.auth == nil || !d.auth.HasElevatedPermission(ctx, msg.GuildID, msg.AuthorID)) {
		d.logger.InfoContext(ctx, "command denied", "command", name, "user_id", msg.AuthorID, "guild_id", msg.GuildID)
		return []Response{text("❌ You don't have permission to use this command!")}
	}

	responses, err := cmd.run(ctx, msg, newArgs(rawArgs))
	if err != nil {
		out, known := errorMessage(d.withUsage(err, cmd))
		if !known {
			d.logger.ErrorContext(ctx, "command failed", "command", name, "user_id", msg.AuthorID, "error", err)
		} else {
			d.logger.DebugContext(ctx, "command rejected", "command", name, "user_id", msg.AuthorID, "error", err)
		}
		return []Response{text(out)}
	}
	return responses
}

func (d *Dispatcher) withUsage(err error, cmd command) error {
	var u usageError
	if errors.As(err, &u) && u.usage == "" {
		return usageError{usage: d.prefix + cmd.usage}
	}
	return err
}

func (d *Dispatcher) splitCommand(content string) (name, rest string, ok bool) {
	if !strings.HasPrefix(content, d.prefix) {
		return "", "", false
	}
	body := strings.TrimPrefix(content, d.prefix)
	name, rest, _ = strings.Cut(body, " ")
	if nl := strings.IndexByte(name, '\n'); nl >= 0 {
		rest = name[nl:] + " " + rest
		name = name[:nl]
	}
	return strings.ToLower(strings.TrimSpace(name)), rest, name != ""
}

// missingArgs signals a usage error filled in by Handle.
func missingArgs() error {
	return usageError{}
}
