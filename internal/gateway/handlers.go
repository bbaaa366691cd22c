package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/tackernao0522/demochat-client/internal/client/chat"
	"github.com/tackernao0522/demochat-client/internal/client/client"
	"github.com/tackernao0522/demochat-client/internal/client/guard"
	"github.com/tackernao0522/demochat-client/internal/client/services"
	"github.com/tackernao0522/demochat-client/internal/client/session"
	"github.com/tackernao0522/demochat-client/internal/common"
)

// User-facing messages of the web front end.
const (
	msgLoginMissing    = "メールアドレスとパスワードを入力してください。"
	msgLoginFailed     = "ログイン中にエラーが発生しました。"
	msgSignupMissing   = "名前、メールアドレス、パスワードを入力してください。"
	msgSignupMismatch  = "パスワードと確認用パスワードが一致しません。"
	msgSignupFailed    = "アカウントを登録できませんでした。"
	msgMessagesFailed  = "メッセージの取得に失敗しました。"
	msgLogoutRemoteErr = "ログアウト処理中にエラーが発生しました。"
)

type entryPage struct {
	Title  string
	Error  string
	Notice string
	Email  string
	Name   string
}

type chatroomPage struct {
	Title    string
	Error    string
	User     *session.User
	Messages []chat.Message
	CableURL string
	Channel  string
}

func (s *Server) handleEntry(w http.ResponseWriter, r *http.Request) {
	page := entryPage{Title: "demochat"}
	if r.URL.Query().Get("logout") == "failed" {
		page.Error = msgLogoutRemoteErr
	}
	s.render(w, r, http.StatusOK, "entry", page)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	page := entryPage{Title: "demochat", Email: email}

	if email == "" || password == "" {
		page.Error = msgLoginMissing
		s.render(w, r, http.StatusUnprocessableEntity, "entry", page)
		return
	}

	store := storeFrom(r)
	auth := services.NewAuthService(s.apiClient(store), store, s.log)
	if _, err := auth.Login(ctx, email, password); err != nil {
		s.log.Info(ctx, "login failed", "error", err)
		page.Error = client.UserMessage(err, msgLoginFailed)
		s.render(w, r, statusFor(err), "entry", page)
		return
	}
	http.Redirect(w, r, guard.Chatroom.Path, http.StatusSeeOther)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := strings.TrimSpace(r.PostFormValue("name"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	confirmation := r.PostFormValue("password_confirmation")
	page := entryPage{Title: "demochat", Email: email, Name: name}

	switch {
	case name == "" || email == "" || password == "":
		page.Error = msgSignupMissing
	case password != confirmation:
		page.Error = msgSignupMismatch
	}
	if page.Error != "" {
		s.render(w, r, http.StatusUnprocessableEntity, "entry", page)
		return
	}

	store := storeFrom(r)
	auth := services.NewAuthService(s.apiClient(store), store, s.log)
	if _, err := auth.Signup(ctx, email, password, name); err != nil {
		s.log.Info(ctx, "signup failed", "error", err)
		page.Error = msgSignupFailed
		s.render(w, r, statusFor(err), "entry", page)
		return
	}
	http.Redirect(w, r, guard.Chatroom.Path, http.StatusSeeOther)
}

// handleLogout clears the cookies even when the API call fails, then lands
// on the entry route.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	store := storeFrom(r)
	auth := services.NewAuthService(s.apiClient(store), store, s.log)

	target := guard.Entry.Path
	if err := auth.Logout(r.Context()); err != nil {
		s.log.Warn(r.Context(), "remote sign-out failed", "error", err)
		target += "?logout=failed"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (s *Server) handleChatroom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := storeFrom(r)
	if store.DropIfExpired(ctx) {
		http.Redirect(w, r, guard.Entry.Path, http.StatusSeeOther)
		return
	}

	page := chatroomPage{
		Title:    "chatroom | demochat",
		User:     store.User(ctx),
		CableURL: s.cfg.CableURL,
		Channel:  s.cfg.Channel,
	}

	epoch := store.Epoch()
	msgs, err := s.apiClient(store).Messages(ctx)
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		store.Clear(ctx)
		http.Redirect(w, r, guard.Entry.Path, http.StatusSeeOther)
		return
	case err != nil:
		s.log.Warn(ctx, "fetch messages failed", "error", err)
		page.Error = client.UserMessage(err, msgMessagesFailed)
	case store.Epoch() == epoch:
		list := chat.NewList()
		var uid int64
		if page.User != nil {
			uid = page.User.ID
		}
		list.Replace(msgs, uid)
		page.Messages = list.Messages()
	}
	s.render(w, r, http.StatusOK, "chatroom", page)
}

type sessionView struct {
	ClientStorage bool            `json:"client_storage"`
	Authenticated bool            `json:"authenticated"`
	TokenExpired  bool            `json:"token_expired"`
	UID           string          `json:"uid,omitempty"`
	Expiry        string          `json:"expiry,omitempty"`
	User          json.RawMessage `json:"user,omitempty"`
	Fields        map[string]bool `json:"fields"`
	Problems      []string        `json:"problems,omitempty"`
}

// handleSession reports what a reader with only the Cookie header sees.
// Such a reader has no client storage, so it never counts as authenticated.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	store := session.NewHeaderStore(r.Header.Get("Cookie"), s.storeOptions()...)
	sess := store.Load(ctx)

	view := sessionView{
		ClientStorage: store.Available(),
		Authenticated: store.IsAuthenticated(ctx),
		TokenExpired:  store.IsTokenExpired(ctx),
		UID:           sess.Credential.UID,
		Expiry:        sess.Credential.Expiry,
		User:          sess.User.Raw(),
		Fields:        make(map[string]bool, len(common.SessionKeys)),
	}
	for _, k := range common.SessionKeys {
		view.Fields[k] = store.ReadField(ctx, k).Present
	}
	for _, p := range sess.Problems {
		view.Problems = append(view.Problems, p.Error())
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		s.log.Error(ctx, "encode session view", "error", err)
	}
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error(r.Context(), "render failed", "page", name, "error", err)
	}
}

func statusFor(err error) int {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Status
	case errors.Is(err, client.ErrUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
