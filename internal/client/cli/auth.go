package cli

import (
	"context"
	"errors"
	"os"

	"github.com/tackernao0522/demochat-client/internal/client/client"
	"github.com/tackernao0522/demochat-client/internal/client/guard"
	"github.com/tackernao0522/demochat-client/internal/client/services"
	"github.com/tackernao0522/demochat-client/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func userMessage(err error, fallback string) string {
	return client.UserMessage(err, fallback)
}

// Signup prompts for name, email and password, creates the account and
// signs in. On success it moves to the chat room.
func (a *App) Signup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.authService.Signup(ctx, email, string(password), name); err != nil {
		a.log.Debug(ctx, "signup failed", "error", err)
		a.println(userMessage(err, "Sign up failed."))
		return err
	}

	a.println("Signed up successfully!")
	return a.navigate(ctx, guard.Chatroom)
}

// Login prompts for credentials and signs in. On success it moves to the
// chat room.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.authService.Login(ctx, email, string(password)); err != nil {
		a.log.Debug(ctx, "login failed", "error", err)
		a.println(userMessage(err, "Login failed."))
		return err
	}

	a.println("Logged in successfully!")
	return a.navigate(ctx, guard.Chatroom)
}

// Logout signs out and returns to the entry view. The local session is
// cleared even when the server call fails.
func (a *App) Logout(ctx context.Context) error {
	err := a.authService.Logout(ctx)
	if err != nil {
		a.println(userMessage(err, "Could not reach the server; signed out locally."))
	} else {
		a.println("Logged out.")
	}
	_ = a.navigate(ctx, guard.Entry)
	return err
}

// WhoAmI validates the session with the server and prints the user.
func (a *App) WhoAmI(ctx context.Context) error {
	u, err := a.authService.Validate(ctx)
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		a.println("Not logged in.")
		if a.inChat() {
			_ = a.navigate(ctx, guard.Entry)
		}
		return err
	case err != nil:
		a.println(userMessage(err, "Could not validate the session."))
		return err
	case u == nil:
		a.println("Logged in.")
		return nil
	}
	a.printf("Logged in as %s <%s> (id %d)\n", u.Name, u.Email, u.ID)
	return nil
}
