package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	inChat() bool
	Signup(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Chat(ctx context.Context) error
	Messages(ctx context.Context) error
	Send(ctx context.Context, text string) error
	Status(ctx context.Context) error
	Reconnect(ctx context.Context) error
	Leave(ctx context.Context) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF or when the user types "exit" or "quit".
//
// Commands:
//
//	Entry view:
//	  - help            show available commands
//	  - signup          create an account
//	  - login           authenticate
//	  - chat            go to the chat room (requires login)
//	  - exit | quit     leave the program
//
//	Chat room:
//	  - messages        reload and print the message list
//	  - send <text>     post a message; queued while the channel is down
//	  - status          show channel state, retries and queued messages
//	  - reconnect       reconnect by hand, also after going offline
//	  - leave           back to the entry view
//	  - whoami          validate the session with the server
//	  - logout          sign out
//
// Handler errors are reported by the handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("chat %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			switch {
			case a.inChat():
				printlnFn("Available commands: messages, send <text>, status, reconnect, leave, whoami, logout, exit")
			case a.isLoggedIn(ctx):
				printlnFn("Available commands: chat, whoami, logout, exit")
			default:
				printlnFn("Available commands: signup, login, chat, exit")
			}

		case "signup":
			_ = a.Signup(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "chat":
			_ = a.Chat(ctx)

		case "messages", "m":
			_ = a.Messages(ctx)

		case "send", "s":
			text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), cmd))
			if text == "" {
				printlnFn("Usage: send <text>")
				continue
			}
			_ = a.Send(ctx, text)

		case "status":
			_ = a.Status(ctx)

		case "reconnect":
			_ = a.Reconnect(ctx)

		case "leave":
			_ = a.Leave(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
