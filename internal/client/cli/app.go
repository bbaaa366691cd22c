package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tackernao0522/demochat-client/internal/client/chat"
	"github.com/tackernao0522/demochat-client/internal/client/client"
	"github.com/tackernao0522/demochat-client/internal/client/config"
	"github.com/tackernao0522/demochat-client/internal/client/guard"
	"github.com/tackernao0522/demochat-client/internal/client/realtime"
	"github.com/tackernao0522/demochat-client/internal/client/repositories/localstore"
	"github.com/tackernao0522/demochat-client/internal/client/services"
	"github.com/tackernao0522/demochat-client/internal/client/session"
	"github.com/tackernao0522/demochat-client/internal/cryptox"
	"github.com/tackernao0522/demochat-client/internal/filex"
	"github.com/tackernao0522/demochat-client/internal/logging"
)

// chatRoom is the subset of services.ChatService the CLI drives.
type chatRoom interface {
	Enter(ctx context.Context) error
	FetchMessages(ctx context.Context) error
	Send(ctx context.Context, content string) error
	Messages() []chat.Message
	Status() realtime.Status
	Reconnect(ctx context.Context) error
	Leave() error
}

type App struct {
	config      *config.Config
	log         logging.Logger
	authService services.AuthService
	chat        chatRoom
	guard       *guard.Guard
	route       guard.Route
	reader      *bufio.Reader
	outMu       sync.Mutex
	out         io.Writer
	closers     []func() error
}

// NewApp wires the client from cfg. The caller must Close the app.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	if log == nil {
		log = logging.Nop()
	}
	a := &App{config: cfg, log: log, reader: bufio.NewReader(os.Stdin), out: os.Stdout, route: guard.Entry}

	storage, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	cipher, err := cryptox.New(cfg.Encryption, cfg.EncryptionKey, log)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("encryption setup error: %w", err)
	}
	opts := []session.Option{session.WithLogger(log.With("module", "session"))}
	if cipher != nil {
		opts = append(opts, session.WithCipher(cipher))
	}
	store := session.NewStore(storage, opts...)

	api := client.NewRESTClient(cfg.APIURL, store, log.With("module", "api"), cfg.RequestTimeout)
	cable := realtime.NewCable(cfg.CableURL, store, realtime.CableOptions{
		Channel: cfg.Channel,
		Logger:  log.With("module", "cable"),
	})
	policy := realtime.NewPolicy(cfg.ReconnectMaxAttempts, cfg.ReconnectBaseDelay, cfg.ReconnectMaxDelay)

	a.authService = services.NewAuthService(api, store, log)
	a.chat = services.NewChatService(api, store, cable, policy,
		services.WithChatLogger(log),
		services.WithMessageListener(a.onMessage))
	a.guard = guard.New(store, guard.WithLogger(log))
	return a, nil
}

func (a *App) openStorage(ctx context.Context) (session.Storage, error) {
	switch a.config.Storage {
	case config.StorageMemory:
		return session.NewMemoryStorage(), nil
	default:
		if err := filex.EnsureParentDir(a.config.StoragePath); err != nil {
			return nil, fmt.Errorf("error preparing local storage: %w", err)
		}
		repo, err := localstore.Open(ctx, a.config.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("error opening local storage: %w", err)
		}
		a.closers = append(a.closers, repo.Close)
		return session.NewRepositoryStorage(repo), nil
	}
}

// Run starts the REPL on stdin and blocks until exit.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close leaves the chat room and releases local storage.
func (a *App) Close() error {
	var errs []error
	if a.chat != nil {
		errs = append(errs, a.chat.Leave())
	}
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.authService.IsAuthenticated(ctx)
}

func (a *App) inChat() bool {
	return a.route.Path == guard.Chatroom.Path
}

// printf and println may be called from the channel goroutine too.
func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}
