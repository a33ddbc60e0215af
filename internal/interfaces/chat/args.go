package chat

import (
	"strings"
	"unicode"
)

// args walks a command's argument string. Tokens are split on whitespace and
// a token may be wrapped in double quotes to include spaces.
type args struct {
	rest string
}

func newArgs(raw string) *args {
	return &args{rest: strings.TrimSpace(raw)}
}

// Next consumes one token.
func (a *args) Next() (string, bool) {
	a.rest = strings.TrimLeftFunc(a.rest, unicode.IsSpace)
	if a.rest == "" {
		return "", false
	}

	if a.rest[0] == '"' {
		if end := strings.IndexByte(a.rest[1:], '"'); end >= 0 {
			token := a.rest[1 : end+1]
			a.rest = a.rest[end+2:]
			return token, true
		}
	}

	end := strings.IndexFunc(a.rest, unicode.IsSpace)
	if end < 0 {
		token := a.rest
		a.rest = ""
		return token, true
	}
	token := a.rest[:end]
	a.rest = a.rest[end:]
	return token, true
}

// Rest consumes everything left, trimmed. A fully quoted tail is unquoted.
func (a *args) Rest() string {
	rest := strings.TrimSpace(a.rest)
	a.rest = ""
	if len(rest) >= 2 && rest[0] == '"' && rest[len(rest)-1] == '"' && strings.Count(rest, `"`) == 2 {
		return rest[1 : len(rest)-1]
	}
	return rest
}

// Empty reports whether no tokens remain.
func (a *args) Empty() bool {
	return strings.TrimSpace(a.rest) == ""
}

// parseMention extracts a user id from <@id>, <@!id> or a bare numeric id.
func parseMention(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(token, "<@") && strings.HasSuffix(token, ">") {
		token = strings.TrimPrefix(token[2:len(token)-1], "!")
	}
	if token == "" {
		return "", false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return token, true
}

func mention(userID string) string {
	return "<@" + userID + ">"
}
