package chat

import (
	"strings"
	"unicode/utf8"
)

// Message is one incoming chat message, already stripped of platform types.
type Message struct {
	GuildID    string
	ChannelID  string
	AuthorID   string
	AuthorName string
	Content    string
	// Mentions holds the users mentioned in Content, keyed by id.
	Mentions map[string]User
}

type User struct {
	ID       string
	Username string
}

// Embed colors.
const (
	ColorBlue   = 0x3498db
	ColorGreen  = 0x2ecc71
	ColorRed    = 0xe74c3c
	ColorGold   = 0xf1c40f
	ColorOrange = 0xe67e22
	ColorPurple = 0x9b59b6
)

// Platform limits on embeds. Lengths count characters, not bytes.
const (
	maxEmbedFields     = 25
	maxFieldNameLength = 256
	maxFieldValueLen   = 1024
	maxEmbedLength     = 6000
)

const ellipsis = "…"

// Response is one outgoing message. Content and Embed may both be set.
type Response struct {
	Content string
	Embed   *Embed
}

type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []Field
	Footer      string
	Thumbnail   string
	Image       string
}

type Field struct {
	Name   string
	Value  string
	Inline bool
}

func text(content string) Response {
	return Response{Content: content}
}

func embed(e Embed) Response {
	return Response{Embed: &e}
}

// AddField appends a field unless the embed is full. Oversized names and
// values are cut with an ellipsis.
func (e *Embed) AddField(name, value string, inline bool) bool {
	if len(e.Fields) >= maxEmbedFields {
		return false
	}
	if value == "" {
		value = "-"
	}
	name = truncate(name, maxFieldNameLength)
	value = truncate(value, maxFieldValueLen)
	if e.length()+utf8.RuneCountInString(name)+utf8.RuneCountInString(value) > maxEmbedLength {
		return false
	}
	e.Fields = append(e.Fields, Field{Name: name, Value: value, Inline: inline})
	return true
}

// AddLines packs lines into as few fields as fit the value limit. Fields
// after the first are titled "<name> (cont.)". It returns how many lines
// made it into the embed.
func (e *Embed) AddLines(name string, lines []string) int {
	var (
		chunk   strings.Builder
		written int
		pending int
		title   = name
	)
	flush := func() bool {
		if pending == 0 {
			return true
		}
		if !e.AddField(title, chunk.String(), false) {
			return false
		}
		written += pending
		pending = 0
		chunk.Reset()
		title = name + " (cont.)"
		return true
	}

	for _, line := range lines {
		line = truncate(line, maxFieldValueLen)
		size := utf8.RuneCountInString(line)
		if pending > 0 && utf8.RuneCountInString(chunk.String())+1+size > maxFieldValueLen {
			if !flush() {
				return written
			}
		}
		if pending > 0 {
			chunk.WriteByte('\n')
		}
		chunk.WriteString(line)
		pending++
	}
	flush()
	return written
}

func (e *Embed) length() int {
	n := utf8.RuneCountInString(e.Title) + utf8.RuneCountInString(e.Description) + utf8.RuneCountInString(e.Footer)
	for _, f := range e.Fields {
		n += utf8.RuneCountInString(f.Name) + utf8.RuneCountInString(f.Value)
	}
	return n
}

// truncate cuts s to at most limit characters, ending in an ellipsis when cut.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + ellipsis
}
