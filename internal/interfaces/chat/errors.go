package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/mlbb-squad-tracker/internal/usecase"
)

const genericFailure = "❌ Something went wrong while handling that command. Please try again later."

// notice is an error whose message is already written for the user.
type notice struct {
	msg string
	err error
}

func (n *notice) Error() string { return n.msg }

func (n *notice) Unwrap() error { return n.err }

func noticef(err error, format string, args ...any) error {
	return &notice{msg: fmt.Sprintf(format, args...), err: err}
}

// usageError is returned when a command is missing arguments.
type usageError struct {
	usage string
}

func (u usageError) Error() string { return "usage: " + u.usage }

var kindMessages = []struct {
	kind error
	msg  string
}{
	{usecase.ErrNotFound, "❌ Not found! Check the name or member and try again."},
	{usecase.ErrDuplicateName, "❌ A squad with that name already exists!"},
	{usecase.ErrAlreadyRegistered, "❌ You are already registered! Use `nb!profile_update` to change your information."},
	{usecase.ErrNotRegistered, "❌ You are not registered! Use `nb!register <mlbb_id> <mlbb_username>` first."},
	{usecase.ErrInvalidField, "❌ Invalid field!"},
	{usecase.ErrInvalidRole, "❌ Invalid role! Valid roles are: gold, exp, mid, jungle, roam"},
	{usecase.ErrRoleNotSet, "❌ That role is not in your preferred roles!"},
	{usecase.ErrNotInSquad, "❌ That player is not in the squad!"},
	{usecase.ErrAlreadyInSquad, "❌ You are already in a squad! Leave it first with `nb!leave_squad`."},
	{usecase.ErrIncompleteRegistration, "❌ That member is not registered yet! Please provide both MLBB ID and username."},
	{usecase.ErrPersistenceFailure, "❌ Failed to save changes due to an error!"},
	{usecase.ErrTimedOut, "❌ Setup timed out. Please try again using `nb!setup`"},
	{usecase.ErrInvalidInput, "❌ Invalid input! Use `nb!help_mlbb` to see how to use this command."},
	{usecase.ErrUnauthorized, "❌ You don't have permission to use this command!"},
	{usecase.ErrDependencyUnavailable, "❌ That feature is unavailable right now. Please try again later."},
}

// errorMessage maps err to user-facing text. ok is false for unknown errors.
func errorMessage(err error) (string, bool) {
	var n *notice
	if errors.As(err, &n) {
		return n.msg, true
	}
	var u usageError
	if errors.As(err, &u) {
		return "❌ Missing arguments! Usage: `" + u.usage + "`", true
	}
	for _, entry := range kindMessages {
		if errors.Is(err, entry.kind) {
			return entry.msg, true
		}
	}
	return genericFailure, false
}

func fieldList(fields []string) string {
	return strings.Join(fields, ", ")
}
