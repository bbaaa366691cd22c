package cli

import (
	"context"
	"errors"
	"strconv"

	"github.com/tackernao0522/demochat-client/internal/client/chat"
	"github.com/tackernao0522/demochat-client/internal/client/guard"
	"github.com/tackernao0522/demochat-client/internal/client/services"
)

const timeLayout = "01/02 15:04"

// Chat navigates to the chat room through the guard.
func (a *App) Chat(ctx context.Context) error {
	if a.inChat() {
		a.printMessages()
		return nil
	}
	err := a.navigate(ctx, guard.Chatroom)
	if !a.inChat() && err == nil {
		a.println("Please log in first.")
	}
	return err
}

// Messages reloads the list from the server and prints it.
func (a *App) Messages(ctx context.Context) error {
	if !a.requireChat() {
		return nil
	}
	if err := a.chat.FetchMessages(ctx); err != nil {
		if !errors.Is(err, services.ErrStaleResponse) {
			a.println(userMessage(err, "Could not load messages."))
		}
		return err
	}
	a.printMessages()
	return nil
}

func (a *App) Send(ctx context.Context, text string) error {
	if !a.requireChat() {
		return nil
	}
	if err := a.chat.Send(ctx, text); err != nil {
		a.println("Could not send:", err)
		return err
	}
	if st := a.chat.Status(); st.Pending > 0 {
		a.printf("Queued (%d pending), will send when reconnected.\n", st.Pending)
	}
	return nil
}

func (a *App) Status(ctx context.Context) error {
	if !a.requireChat() {
		return nil
	}
	st := a.chat.Status()
	a.printf("channel: %s, retries: %d, pending: %d\n", st, st.RetryCount, st.Pending)
	if st.Offline {
		a.println("Connection lost. Type 'reconnect' to try again.")
	}
	return nil
}

func (a *App) Reconnect(ctx context.Context) error {
	if !a.requireChat() {
		return nil
	}
	if err := a.chat.Reconnect(ctx); err != nil {
		a.println("Reconnect failed, retrying in the background.")
		return err
	}
	return nil
}

// Leave closes the channel and shows the entry view. It skips the guard,
// which would forward a signed-in user straight back to the room.
func (a *App) Leave(ctx context.Context) error {
	if !a.requireChat() {
		return nil
	}
	if err := a.chat.Leave(); err != nil {
		return err
	}
	a.route = guard.Entry
	a.println("Left the chat room.")
	return nil
}

func (a *App) requireChat() bool {
	if !a.inChat() {
		a.println("Not in the chat room. Type 'chat' to enter.")
		return false
	}
	return true
}

func (a *App) printMessages() {
	msgs := a.chat.Messages()
	if len(msgs) == 0 {
		a.println("(no messages yet)")
		return
	}
	for _, m := range msgs {
		a.println(formatMessage(m))
	}
}

// onMessage shows a message as it arrives on the channel. The channel is
// only open while the user is in the chat room.
func (a *App) onMessage(m chat.Message, replaced bool) {
	line := formatMessage(m)
	if replaced {
		line = "(updated) " + line
	}
	a.println(line)
}

func formatMessage(m chat.Message) string {
	who := m.Name
	if who == "" {
		who = m.Email
	}
	if m.SentByCurrentUser {
		who += " (you)"
	}
	stamp := ""
	if !m.CreatedAt.IsZero() {
		stamp = m.CreatedAt.Local().Format(timeLayout) + " "
	}
	likes := ""
	if n := len(m.Likes); n > 0 {
		likes = " ♥" + strconv.Itoa(n)
	}
	return stamp + who + ": " + m.Content + likes
}
