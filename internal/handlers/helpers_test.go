package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pliu/courier/internal/auth"
	"github.com/pliu/courier/internal/blob"
	"github.com/pliu/courier/internal/bots"
	"github.com/pliu/courier/internal/chat"
	"github.com/pliu/courier/internal/middleware"
	"github.com/pliu/courier/internal/models"
	"github.com/pliu/courier/internal/store/sqlstore"
)

type env struct {
	store *sqlstore.SQLStore
	auth  *AuthHandler
	chat  *ChatHandler
	bot   *BotHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()

	st, err := sqlstore.New("sqlite3", ":memory:")
	require.NoError(t, err)

	blobs, err := blob.NewStore(t.TempDir(), "/media")
	require.NoError(t, err)

	logger := zap.NewNop().Sugar()
	service := chat.NewService(logger, st, blobs, bots.NewEngine(logger, st))

	return &env{
		store: st,
		auth:  &AuthHandler{Store: st},
		chat:  &ChatHandler{Service: service},
		bot:   &BotHandler{Registry: bots.NewRegistry(logger, st)},
	}
}

func (e *env) user(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "hash"}
	require.NoError(t, e.store.CreateUser(user))
	return user
}

// authedRequest builds a request carrying a valid signed session cookie.
func authedRequest(method, url string, body io.Reader, userID int) *http.Request {
	req := httptest.NewRequest(method, url, body)
	req.AddCookie(&http.Cookie{
		Name:  middleware.SessionCookie,
		Value: auth.SignCookie(strconv.Itoa(userID)),
	})
	return req
}

// serve runs the handler behind the auth middleware, the way main mounts it.
func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	middleware.Auth(h).ServeHTTP(rr, req)
	return rr
}
