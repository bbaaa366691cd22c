package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/tackernao0522/demochat-client/internal/client/guard"
	"github.com/tackernao0522/demochat-client/internal/client/services"
)

// getStatus renders the prompt status: the signed-in user and, in the chat
// room, the channel state.
func (a *App) getStatus(ctx context.Context) string {
	s := ""
	if u := a.authService.Current(ctx); u != nil && a.isLoggedIn(ctx) {
		s = u.Email
		if s == "" {
			s = u.Name
		}
	}
	if a.inChat() {
		if s != "" {
			s += " "
		}
		s += a.chat.Status().String()
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root lands on the entry view, which forwards an authenticated user to the
// chat room, then runs the REPL.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to demochat (type 'help' for commands)")
	_ = a.navigate(ctx, guard.Entry)

	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader)
}

// navigate moves to the route the guard resolves `to` into. Entering the
// chat room starts the channel; leaving it closes the channel.
func (a *App) navigate(ctx context.Context, to guard.Route) error {
	target, redirected := a.guard.Resolve(ctx, to)
	if redirected {
		a.log.Debug(ctx, "navigation redirected", "from", to.Path, "to", target.Path)
	}

	if a.inChat() && target.Path != guard.Chatroom.Path {
		if err := a.chat.Leave(); err != nil {
			a.log.Warn(ctx, "leaving chat room", "error", err)
		}
	}
	if target.Path == guard.Chatroom.Path && !a.inChat() {
		err := a.chat.Enter(ctx)
		if errors.Is(err, services.ErrNotAuthenticated) {
			a.route = guard.Entry
			a.println("Your session has expired, please log in again.")
			return err
		}
		a.route = target
		a.println("Entered the chat room.")
		if err != nil {
			a.println(userMessage(err, "Could not load messages."))
			return err
		}
		a.printMessages()
		return nil
	}
	a.route = target
	return nil
}
