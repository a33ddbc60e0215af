package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/domain/player"
	"github.com/riskibarqy/mlbb-squad-tracker/internal/usecase"
)

func (d *Dispatcher) squadCreate(ctx context.Context, msg Message, a *args) ([]Response, error) {
	name, ok := a.Next()
	if !ok {
		return nil, missingArgs()
	}

	created, err := d.registry.CreateSquad(ctx, usecase.CreateSquadInput{
		Name:        name,
		Description: a.Rest(),
		CreatedBy:   msg.AuthorID,
	})
	if errors.Is(err, usecase.ErrDuplicateName) {
		return nil, noticef(err, "❌ Squad with name '%s' already exists!", name)
	}
	if err != nil {
		return nil, err
	}

	return []Response{embed(Embed{
		Title:       "Squad Created: " + created.Name,
		Description: created.Description,
		Color:       ColorGreen,
		Footer:      "Created by " + msg.AuthorName,
	})}, nil
}

func (d *Dispatcher) squadUpdate(ctx context.Context, msg Message, a *args) ([]Response, error) {
	name, ok := a.Next()
	description := a.Rest()
	if !ok || description == "" {
		return nil, missingArgs()
	}

	updated, err := d.registry.UpdateSquadDescription(ctx, name, description)
	if errors.Is(err, usecase.ErrNotFound) {
		return nil, noticef(err, "❌ Squad '%s' not found!", name)
	}
	if err != nil {
		return nil, err
	}

	return []Response{embed(Embed{
		Title:       "Squad Updated: " + updated.Name,
		Description: updated.Description,
		Color:       ColorBlue,
		Footer:      "Updated by " + msg.AuthorName,
	})}, nil
}

func (d *Dispatcher) squadDelete(ctx context.Context, _ Message, a *args) ([]Response, error) {
	name := a.Rest()
	if name == "" {
		return nil, missingArgs()
	}

	result, err := d.registry.DeleteSquad(ctx, name)
	if errors.Is(err, usecase.ErrNotFound) {
		return nil, noticef(err, "❌ Squad '%s' not found!", name)
	}
	if err != nil {
		return nil, err
	}

	return []Response{text(fmt.Sprintf(
		"✅ Squad '%s' has been deleted and all members are now free agents.", result.Squad.Name,
	))}, nil
}

func (d *Dispatcher) addMember(ctx context.Context, msg Message, a *args) ([]Response, error) {
	squadName, ok := a.Next()
	if !ok {
		return nil, missingArgs()
	}
	token, ok := a.Next()
	if !ok {
		return nil, missingArgs()
	}
	memberID, ok := parseMention(token)
	if !ok {
		return nil, noticef(usecase.ErrInvalidInput, "❌ '%s' is not a member mention!", token)
	}
	memberName := msg.Mentions[memberID].Username

	input := usecase.UpsertSquadMemberInput{
		SquadName: squadName,
		PlayerID:  memberID,
		Username:  memberName,
	}
	if v, ok := a.Next(); ok {
		input.MlbbID = &v
	}
	if v, ok := a.Next(); ok {
		input.MlbbUsername = &v
	}
	input.SquadTitle = a.Rest()

	member, err := d.registry.UpsertSquadMember(ctx, input)
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return nil, noticef(err, "❌ Squad '%s' not found!", squadName)
	case errors.Is(err, usecase.ErrIncompleteRegistration):
		return nil, noticef(err, "❌ %s is not registered yet! Please provide both MLBB ID and username.", displayName(memberName, memberID))
	case err != nil:
		return nil, err
	}

	e := Embed{
		Title:       "Member Added to " + member.Squad,
		Description: mention(memberID) + " has been added to the squad!",
		Color:       ColorGreen,
	}
	e.AddField("MLBB Username", member.MlbbUsername, true)
	e.AddField("MLBB ID", member.MlbbID, true)
	e.AddField("Role", member.DisplaySquadTitle(), true)
	return []Response{embed(e)}, nil
}

func (d *Dispatcher) removeMember(ctx context.Context, msg Message, a *args) ([]Response, error) {
	squadName, ok := a.Next()
	if !ok {
		return nil, missingArgs()
	}
	token, ok := a.Next()
	if !ok {
		return nil, missingArgs()
	}
	memberID, ok := parseMention(token)
	if !ok {
		return nil, noticef(usecase.ErrInvalidInput, "❌ '%s' is not a member mention!", token)
	}
	who := displayName(msg.Mentions[memberID].Username, memberID)

	if _, err := d.registry.FindSquadByName(ctx, squadName); err != nil {
		return nil, noticef(err, "❌ Squad '%s' not found!", squadName)
	}
	_, err := d.registry.RemoveMember(ctx, squadName, memberID)
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		return nil, noticef(err, "❌ %s is not registered as a player!", who)
	case errors.Is(err, usecase.ErrNotInSquad):
		return nil, noticef(err, "❌ %s is not a member of squad '%s'!", who, squadName)
	case err != nil:
		return nil, err
	}

	return []Response{text(fmt.Sprintf(
		"✅ %s has been removed from squad '%s' and is now a free agent.", mention(memberID), squadName,
	))}, nil
}

func (d *Dispatcher) updateMember(ctx context.Context, msg Message, a *args) ([]Response, error) {
	token, ok := a.Next()
	if !ok {
		return nil, missingArgs()
	}
	memberID, ok := parseMention(token)
	if !ok {
		return nil, noticef(usecase.ErrInvalidInput, "❌ '%s' is not a member mention!", token)
	}
	field, ok := a.Next()
	value := a.Rest()
	if !ok || value == "" {
		return nil, missingArgs()
	}
	who := displayName(msg.Mentions[memberID].Username, memberID)

	_, err := d.registry.UpdateMemberField(ctx, memberID, field, value)
	switch {
	case errors.Is(err, usecase.ErrInvalidField):
		return nil, noticef(err, "❌ Invalid field! Valid fields are: %s", fieldList(usecase.MemberFields))
	case errors.Is(err, usecase.ErrNotFound):
		if _, lookupErr := d.registry.FindPlayerByID(ctx, memberID); lookupErr != nil {
			return nil, noticef(err, "❌ %s is not registered as a player!", who)
		}
		return nil, noticef(err, "❌ Squad '%s' not found!", value)
	case err != nil:
		return nil, err
	}

	return []Response{text(fmt.Sprintf("✅ Updated %s for %s to '%s'.", field, mention(memberID), value))}, nil
}

func (d *Dispatcher) squads(ctx context.Context, _ Message, _ *args) ([]Response, error) {
	summaries, err := d.registry.ListSquads(ctx)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return []Response{text("No squads have been created yet!")}, nil
	}

	e := Embed{
		Title:       "MLBB Squads List",
		Description: fmt.Sprintf("There are %d squads registered:", len(summaries)),
		Color:       ColorBlue,
		Footer:      "Use " + d.prefix + "squad_info <name> to see squad details",
	}
	for _, summary := range summaries {
		count := fmt.Sprintf("\nMembers: %d", summary.MemberCount)
		value := truncate(summary.Squad.Description, maxFieldValueLen-len(count)) + count
		if !e.AddField(summary.Squad.Name, value, false) {
			break
		}
	}
	return []Response{embed(e)}, nil
}

func (d *Dispatcher) squadInfo(ctx context.Context, _ Message, a *args) ([]Response, error) {
	name := a.Rest()
	if name == "" {
		return nil, missingArgs()
	}

	found, err := d.registry.FindSquadByName(ctx, name)
	if err != nil {
		return nil, noticef(err, "❌ Squad '%s' not found!", name)
	}
	members, err := d.registry.SquadMembers(ctx, found.Name)
	if err != nil {
		return nil, err
	}

	e := Embed{
		Title:       "Squad: " + found.Name,
		Description: found.Description,
		Color:       ColorBlue,
		Footer:      "Created by " + mention(found.CreatedBy),
	}
	if len(members) == 0 {
		e.AddField("Members", "No members yet", false)
		return []Response{embed(e)}, nil
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	lines := make([]string, 0, len(members))
	for _, member := range members {
		buf.Reset()
		fmt.Fprintf(buf, "• %s - %s (ID: %s) - %s", mention(member.ID), member.MlbbUsername, member.MlbbID, member.DisplaySquadTitle())
		lines = append(lines, buf.String())
	}
	if shown := e.AddLines(fmt.Sprintf("Members (%d)", len(members)), lines); shown < len(lines) {
		e.Footer += fmt.Sprintf(" | ...and %d more", len(lines)-shown)
	}
	return []Response{embed(e)}, nil
}

func displayName(username, id string) string {
	if username != "" {
		return username
	}
	return mention(id)
}

func squadStatus(p player.Player) string {
	if p.IsFreeAgent() {
		return "Free Agent"
	}
	return p.Squad
}
