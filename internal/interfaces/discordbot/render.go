package discordbot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/interfaces/chat"
)

// toMessage strips the gateway event down to what the dispatcher reads.
func toMessage(m *discordgo.Message) chat.Message {
	msg := chat.Message{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Mentions:  make(map[string]chat.User, len(m.Mentions)),
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
		if m.Member != nil && m.Member.Nick != "" {
			msg.AuthorName = m.Member.Nick
		}
	}
	for _, u := range m.Mentions {
		if u == nil {
			continue
		}
		msg.Mentions[u.ID] = chat.User{ID: u.ID, Username: u.Username}
	}
	return msg
}

func toMessageSend(resp chat.Response) *discordgo.MessageSend {
	send := &discordgo.MessageSend{
		Content: resp.Content,
		// Mentions in bot output are rendered but only explicit users ping.
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		},
	}
	if resp.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{toEmbed(*resp.Embed)}
	}
	return send
}

func toEmbed(e chat.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if len(e.Fields) > 0 {
		out.Fields = make([]*discordgo.MessageEmbedField, 0, len(e.Fields))
		for _, f := range e.Fields {
			out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline,
			})
		}
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	if e.Thumbnail != "" {
		out.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.Thumbnail}
	}
	if e.Image != "" {
		out.Image = &discordgo.MessageEmbedImage{URL: e.Image}
	}
	return out
}
