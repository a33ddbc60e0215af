package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/usecase"
)

// joinRequestMentions caps how many moderators a join request pings.
const joinRequestMentions = 3

func (d *Dispatcher) setup(ctx context.Context, msg Message, _ *args) ([]Response, error) {
	if d.wizard == nil {
		return nil, usecase.ErrDependencyUnavailable
	}

	reply, err := d.wizard.Start(ctx, usecase.StartWizardInput{
		UserID:    msg.AuthorID,
		Username:  msg.AuthorName,
		ChannelID: msg.ChannelID,
	})
	if err != nil {
		return nil, err
	}

	intro := "Let's set up your profile! I'll guide you through each step."
	if reply.Existing {
		intro = "You're already registered! Let's update your profile information."
	}
	return []Response{embed(Embed{
		Title:       "🎮 MLBB Profile Setup",
		Description: intro + "\n\n" + reply.Prompt,
		Color:       ColorBlue,
		Footer:      "Type " + d.prefix + "cancel to stop the setup",
	})}, nil
}

func (d *Dispatcher) cancel(_ context.Context, msg Message, _ *args) ([]Response, error) {
	if d.wizard == nil || !d.wizard.Cancel(msg.AuthorID, msg.ChannelID) {
		return []Response{text("There is no profile setup in progress.")}, nil
	}
	return []Response{wizardStatus("❌ Setup cancelled. Use `"+d.prefix+"setup` to start again.", ColorRed)}, nil
}

func (d *Dispatcher) wizardReply(reply usecase.WizardReply) []Response {
	switch reply.Outcome {
	case usecase.WizardOutcomeAdvance:
		return []Response{wizardStatus(reply.Prompt, ColorBlue)}
	case usecase.WizardOutcomeComplete:
		return []Response{embed(Embed{
			Title:       "✅ Profile Setup Complete!",
			Description: "Your profile has been successfully created! Use `" + d.prefix + "profile` to view it.",
			Color:       ColorGreen,
		})}
	case usecase.WizardOutcomeTimedOut:
		return []Response{wizardStatus("❌ Setup timed out. Please try again using `"+d.prefix+"setup`", ColorRed)}
	case usecase.WizardOutcomeCancelled:
		return []Response{wizardStatus("❌ Setup cancelled.", ColorRed)}
	case usecase.WizardOutcomeFailed:
		return []Response{wizardStatus("❌ An error occurred while saving your profile.", ColorRed)}
	default:
		return nil
	}
}

// TimeoutNotice renders the message sent when a session expires unanswered.
func (d *Dispatcher) TimeoutNotice(userID string) Response {
	return Response{
		Content: mention(userID),
		Embed: &Embed{
			Title:       "🎮 MLBB Profile Setup",
			Description: "❌ Setup timed out. Please try again using `" + d.prefix + "setup`",
			Color:       ColorRed,
		},
	}
}

func wizardStatus(description string, color int) Response {
	return embed(Embed{Title: "🎮 MLBB Profile Setup", Description: description, Color: color})
}

func (d *Dispatcher) register(ctx context.Context, msg Message, a *args) ([]Response, error) {
	mlbbID, ok := a.Next()
	mlbbUsername := a.Rest()
	if !ok || mlbbUsername == "" {
		return nil, missingArgs()
	}

	registered, err := d.registry.RegisterPlayer(ctx, usecase.RegisterPlayerInput{
		ID:           msg.AuthorID,
		Username:     msg.AuthorName,
		MlbbID:       mlbbID,
		MlbbUsername: mlbbUsername,
	})
	if err != nil {
		return nil, err
	}

	e := Embed{
		Title:       "Player Registered",
		Description: mention(msg.AuthorID) + " has been registered as a player!",
		Color:       ColorGreen,
	}
	e.AddField("MLBB Username", registered.MlbbUsername, true)
	e.AddField("MLBB ID", registered.MlbbID, true)
	e.AddField("Status", "Free Agent", false)
	return []Response{embed(e)}, nil
}

func (d *Dispatcher) profile(ctx context.Context, msg Message, a *args) ([]Response, error) {
	targetID := msg.AuthorID
	targetName := msg.AuthorName
	if token, ok := a.Next(); ok {
		id, valid := parseMention(token)
		if !valid {
			return nil, noticef(usecase.ErrInvalidInput, "❌ '%s' is not a member mention!", token)
		}
		targetID = id
		targetName = displayName(msg.Mentions[id].Username, id)
	}

	found, err := d.registry.FindPlayerByID(ctx, targetID)
	if err != nil {
		return nil, noticef(err, "❌ %s is not registered as a player!", targetName)
	}
	return []Response{embed(profileEmbed(found))}, nil
}

func profileEmbed(p player.Player) Embed {
	e := Embed{Title: "Player Profile: " + p.MlbbUsername, Color: ColorBlue}
	if !p.IsFreeAgent() {
		e.Color = ColorGreen
	}

	e.AddField("Discord", mention(p.ID), true)
	e.AddField("MLBB ID", p.MlbbID, true)
	e.AddField("MLBB Username", p.MlbbUsername, true)
	if p.IsFreeAgent() {
		e.AddField("Status", "**Free Agent**\n*Not in any squad*", false)
	} else {
		e.AddField("🏆 Squad Information", fmt.Sprintf("**Squad**: %s\n**Position**: %s", p.Squad, p.DisplaySquadTitle()), false)
	}
	e.AddField("Max Rank Achieved", p.MaxRank, true)
	e.AddField("Win Rate", p.WinRate, true)
	e.AddField("Availability", p.Availability, false)
	if roles := preferredRolesText(p); roles != "" {
		e.AddField("Preferred Roles & Heroes", roles, false)
	}
	return e
}

func preferredRolesText(p player.Player) string {
	if len(p.PreferredPositions) == 0 {
		return ""
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for _, role := range player.PreferredRoles {
		heroes, ok := p.PreferredPositions[role]
		if !ok {
			continue
		}
		fmt.Fprintf(buf, "**%s**: %s\n", strings.ToUpper(string(role)), heroes)
	}
	return buf.String()
}

func (d *Dispatcher) profileUpdate(ctx context.Context, msg Message, a *args) ([]Response, error) {
	field, ok := a.Next()
	value := a.Rest()
	if !ok || value == "" {
		return nil, missingArgs()
	}

	updated, err := d.registry.UpdateProfileField(ctx, msg.AuthorID, field, value)
	if errors.Is(err, usecase.ErrInvalidField) {
		return nil, noticef(err, "❌ Invalid field! Valid fields are: %s", fieldList(usecase.ProfileFields))
	}
	if err != nil {
		return nil, err
	}

	field = strings.ToLower(field)
	if field == usecase.FieldWinRate {
		value = updated.WinRate
	}
	return []Response{text(fmt.Sprintf("✅ Updated your %s to '%s'.", field, value))}, nil
}

func (d *Dispatcher) setRank(ctx context.Context, msg Message, a *args) ([]Response, error) {
	rank := a.Rest()
	if rank == "" {
		return nil, missingArgs()
	}
	if _, err := d.registry.SetRank(ctx, msg.AuthorID, rank); err != nil {
		return nil, err
	}
	return []Response{text(fmt.Sprintf("✅ Updated your maximum rank to '%s'.", rank))}, nil
}

func (d *Dispatcher) setWinRate(ctx context.Context, msg Message, a *args) ([]Response, error) {
	winRate, ok := a.Next()
	if !ok {
		return nil, missingArgs()
	}
	updated, err := d.registry.SetWinRate(ctx, msg.AuthorID, winRate)
	if err != nil {
		return nil, err
	}
	return []Response{text(fmt.Sprintf("✅ Updated your win rate to '%s'.", updated.WinRate))}, nil
}

func (d *Dispatcher) setAvailability(ctx context.Context, msg Message, a *args) ([]Response, error) {
	availability := a.Rest()
	if availability == "" {
		return nil, missingArgs()
	}
	if _, err := d.registry.SetAvailability(ctx, msg.AuthorID, availability); err != nil {
		return nil, err
	}
	return []Response{text(fmt.Sprintf("✅ Updated your availability to '%s'.", availability))}, nil
}

func (d *Dispatcher) addRole(ctx context.Context, msg Message, a *args) ([]Response, error) {
	role, ok := a.Next()
	heroes := a.Rest()
	if !ok || heroes == "" {
		return nil, missingArgs()
	}
	if _, err := d.registry.AddPreferredRole(ctx, msg.AuthorID, role, heroes); err != nil {
		return nil, err
	}
	return []Response{text(fmt.Sprintf("✅ Added '%s' to your preferred roles with heroes: %s", role, heroes))}, nil
}

func (d *Dispatcher) removeRole(ctx context.Context, msg Message, a *args) ([]Response, error) {
	role, ok := a.Next()
	if !ok {
		return nil, missingArgs()
	}

	_, err := d.registry.RemovePreferredRole(ctx, msg.AuthorID, role)
	if errors.Is(err, usecase.ErrRoleNotSet) {
		if current, lookupErr := d.registry.FindPlayerByID(ctx, msg.AuthorID); lookupErr == nil && len(current.PreferredPositions) == 0 {
			return nil, noticef(err, "❌ You don't have any preferred roles set!")
		}
		return nil, noticef(err, "❌ You don't have '%s' in your preferred roles!", role)
	}
	if err != nil {
		return nil, err
	}
	return []Response{text(fmt.Sprintf("✅ Removed '%s' from your preferred roles.", role))}, nil
}

func (d *Dispatcher) joinSquad(ctx context.Context, msg Message, a *args) ([]Response, error) {
	squadName := a.Rest()
	if squadName == "" {
		return nil, missingArgs()
	}

	req, err := d.registry.RequestJoinSquad(ctx, msg.AuthorID, squadName)
	switch {
	case errors.Is(err, usecase.ErrAlreadyInSquad):
		current, _ := d.registry.FindPlayerByID(ctx, msg.AuthorID)
		return nil, noticef(err, "❌ You are already a member of the '%s' squad! Leave it first with `%sleave_squad`.", current.Squad, d.prefix)
	case errors.Is(err, usecase.ErrNotFound):
		return nil, noticef(err, "❌ Squad '%s' not found!", squadName)
	case err != nil:
		return nil, err
	}

	var moderators []string
	if d.directory != nil {
		moderators = d.directory.Moderators(ctx, msg.GuildID, joinRequestMentions)
	}
	mentions := make([]string, 0, len(moderators))
	for _, id := range moderators {
		mentions = append(mentions, mention(id))
	}

	e := Embed{
		Title:       "Squad Join Request",
		Description: fmt.Sprintf("%s wants to join '%s'", mention(msg.AuthorID), req.Squad.Name),
		Color:       ColorGold,
		Footer:      fmt.Sprintf("Admins/Mods: Use %sadd_member \"%s\" %s to approve", d.prefix, req.Squad.Name, mention(msg.AuthorID)),
	}
	e.AddField("MLBB Username", req.Player.MlbbUsername, true)
	e.AddField("MLBB ID", req.Player.MlbbID, true)
	e.AddField("Max Rank", req.Player.MaxRank, true)
	e.AddField("Win Rate", req.Player.WinRate, true)
	if roles := preferredRolesText(req.Player); roles != "" {
		e.AddField("Preferred Roles & Heroes", roles, false)
	}

	return []Response{
		{Content: strings.Join(mentions, " "), Embed: &e},
		text(fmt.Sprintf("✅ Your request to join '%s' has been submitted! An admin or moderator will review it.", req.Squad.Name)),
	}, nil
}

func (d *Dispatcher) leaveSquad(ctx context.Context, msg Message, _ *args) ([]Response, error) {
	left, err := d.registry.LeaveSquad(ctx, msg.AuthorID)
	if errors.Is(err, usecase.ErrNotInSquad) {
		return nil, noticef(err, "❌ You are not in any squad!")
	}
	if err != nil {
		return nil, err
	}

	return []Response{embed(Embed{
		Title:       "Squad Left",
		Description: fmt.Sprintf("%s has left '%s'", mention(msg.AuthorID), left),
		Color:       ColorOrange,
	})}, nil
}

func (d *Dispatcher) freeAgents(ctx context.Context, _ Message, _ *args) ([]Response, error) {
	agents, err := d.registry.FreeAgents(ctx)
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return []Response{text("There are no free agents at the moment!")}, nil
	}

	e := Embed{
		Title:       "MLBB Free Agents",
		Description: fmt.Sprintf("There are %d players without squads:", len(agents)),
		Color:       ColorBlue,
	}
	addPlayerFields(&e, agents, func(p player.Player) string {
		return fmt.Sprintf("Discord: %s\nID: %s", mention(p.ID), p.MlbbID)
	})
	return []Response{embed(e)}, nil
}

func (d *Dispatcher) searchPlayer(ctx context.Context, _ Message, a *args) ([]Response, error) {
	term := a.Rest()
	if term == "" {
		return nil, missingArgs()
	}

	found, err := d.registry.SearchPlayers(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return []Response{text(fmt.Sprintf("❌ No players found matching '%s'!", term))}, nil
	}

	e := Embed{
		Title:       "Search Results for: " + term,
		Description: fmt.Sprintf("Found %d players:", len(found)),
		Color:       ColorBlue,
	}
	addPlayerFields(&e, found, func(p player.Player) string {
		return fmt.Sprintf("Discord: %s\nID: %s\nSquad: %s", mention(p.ID), p.MlbbID, squadStatus(p))
	})
	return []Response{embed(e)}, nil
}

func (d *Dispatcher) searchRole(ctx context.Context, _ Message, a *args) ([]Response, error) {
	role, ok := a.Next()
	if !ok {
		return nil, missingArgs()
	}

	found, err := d.registry.PlayersByPreferredRole(ctx, role)
	if err != nil {
		return nil, err
	}
	parsed, _ := player.ParsePreferredRole(role)
	if len(found) == 0 {
		return []Response{text(fmt.Sprintf("❌ No players found with the '%s' role!", parsed))}, nil
	}

	e := Embed{
		Title:       "Players with " + strings.ToUpper(string(parsed)) + " role",
		Description: fmt.Sprintf("Found %d players:", len(found)),
		Color:       ColorPurple,
	}
	addPlayerFields(&e, found, func(p player.Player) string {
		return fmt.Sprintf("Discord: %s\nHeroes: %s\nSquad: %s", mention(p.ID), p.PreferredPositions[parsed], squadStatus(p))
	})
	return []Response{embed(e)}, nil
}

func (d *Dispatcher) randomHero(ctx context.Context, _ Message, _ *args) ([]Response, error) {
	if d.heroes == nil {
		return nil, usecase.ErrDependencyUnavailable
	}
	picked, err := d.heroes.RandomHero(ctx)
	if err != nil {
		return nil, err
	}

	return []Response{embed(Embed{
		Title:       "🎲 Random Hero",
		Description: "You should play **" + picked.Name + "**!",
		Color:       ColorPurple,
		Image:       picked.Image,
	})}, nil
}

// addPlayerFields adds one field per player and notes any overflow in the
// footer.
func addPlayerFields(e *Embed, players []player.Player, value func(player.Player) string) {
	for i, p := range players {
		name := p.MlbbUsername
		if name == "" {
			name = displayName(p.Username, p.ID)
		}
		if !e.AddField(name, value(p), true) {
			e.Footer = fmt.Sprintf("...and %d more", len(players)-i)
			return
		}
	}
}

func (d *Dispatcher) help(_ context.Context, _ Message, _ *args) ([]Response, error) {
	groups := []struct {
		title    string
		commands []string
	}{
		{title: "Squad Management (Admin/Mod)", commands: []string{"squad_create", "squad_update", "squad_delete", "add_member", "remove_member", "update_member"}},
		{title: "Player Commands", commands: []string{"setup", "cancel", "register", "profile", "profile_update", "set_rank", "set_winrate", "set_availability", "add_role", "remove_role", "join_squad", "leave_squad"}},
		{title: "Search & Fun", commands: []string{"squads", "squad_info", "free_agents", "search_player", "search_role", "random_hero"}},
	}

	e := Embed{
		Title:       "MLBB Squad Tracker Help",
		Description: "Command prefix: `" + d.prefix + "`",
		Color:       ColorBlue,
		Footer:      "Valid roles: gold, exp, mid, jungle, roam",
	}
	for _, group := range groups {
		buf := bytebufferpool.Get()
		for _, name := range group.commands {
			buf.WriteString("`" + d.prefix + d.commands[name].usage + "`\n")
		}
		e.AddField(group.title, buf.String(), false)
		bytebufferpool.Put(buf)
	}
	return []Response{embed(e)}, nil
}
