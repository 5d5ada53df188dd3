package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamsync/internal/logging"
	"github.com/dmitrijs2005/dreamsync/internal/models"
	"github.com/dmitrijs2005/dreamsync/internal/server/auth"
	"github.com/dmitrijs2005/dreamsync/internal/server/notify"
	"github.com/dmitrijs2005/dreamsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dreamsync/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secret"

type testEnv struct {
	srv    *httptest.Server
	dreams *services.DreamService
	users  *services.UserService
	rm     *repomanager.MemoryRepositoryManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rm := repomanager.NewMemoryRepositoryManager()
	hub := notify.NewHub()
	logger := logging.Nop()
	env := &testEnv{
		rm:     rm,
		dreams: services.NewDreamService(rm, hub, logger),
		users:  services.NewUserService(rm, hub, nil, 10, logger),
	}
	env.srv = httptest.NewServer(NewServer("", logger, env.dreams, env.users, testSecret).Handler())
	t.Cleanup(func() {
		env.srv.Close()
		_ = hub.Close()
	})
	return env
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(testSecret), time.Minute)
	require.NoError(t, err)
	return tok
}

func (e *testEnv) get(t *testing.T, path, tok string) (int, Response) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	require.NoError(t, err)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func (e *testEnv) seedDream(t *testing.T, owner, id string, public bool) *models.DreamDocument {
	t.Helper()
	d, err := e.dreams.Upsert(context.Background(), owner, &models.DreamDocument{
		DreamID: id,
		Title:   "title " + id,
		Date:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Public:  public,
	})
	require.NoError(t, err)
	return d
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	code, body := env.get(t, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body.Message)
}

func TestAPI_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	code, body := env.get(t, "/api/v1/users/u1", "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "missing token", body.Message)

	code, _ = env.get(t, "/api/v1/users/u1", "garbage")
	assert.Equal(t, http.StatusUnauthorized, code)

	expired, err := auth.GenerateToken("u1", []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	code, body = env.get(t, "/api/v1/users/u1", expired)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "token expired", body.Message)
}

func TestAPI_GetUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.rm.Repositories().Users.Save(context.Background(), models.NewUserProfile("u1", "alice", "a@example.com"))
	require.NoError(t, err)

	code, body := env.get(t, "/api/v1/users/u1", token(t, "u2"))
	require.Equal(t, http.StatusOK, code)
	data := body.Data.(map[string]interface{})
	assert.Equal(t, "alice", data["username"])

	code, _ = env.get(t, "/api/v1/users/missing", token(t, "u2"))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAPI_QueryDreams_HidesPrivateFromOthers(t *testing.T) {
	env := newTestEnv(t)
	env.seedDream(t, "u1", "d1", true)
	env.seedDream(t, "u1", "d2", false)

	code, body := env.get(t, "/api/v1/users/u1/dreams", token(t, "u1"))
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body.Data, 2)

	code, body = env.get(t, "/api/v1/users/u1/dreams", token(t, "u2"))
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body.Data, 1)

	code, _ = env.get(t, "/api/v1/users/u1/dreams?limit=-1", token(t, "u1"))
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAPI_GetDream(t *testing.T) {
	env := newTestEnv(t)
	private := env.seedDream(t, "u1", "d1", false)

	code, _ := env.get(t, "/api/v1/dreams/u1/"+private.DocID, token(t, "u1"))
	assert.Equal(t, http.StatusOK, code)

	code, _ = env.get(t, "/api/v1/dreams/u1/"+private.DocID, token(t, "u2"))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestWebSocket_WatchDream(t *testing.T) {
	env := newTestEnv(t)
	d := env.seedDream(t, "u1", "d1", false)

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws/dreams/u1/" + d.DocID + "?token=" + token(t, "u1")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first Response
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "title d1", first.Data.(map[string]interface{})["name"])

	_, err = env.dreams.Upsert(context.Background(), "u1", &models.DreamDocument{
		DreamID: "d1",
		Title:   "changed",
		Date:    d.Date,
	})
	require.NoError(t, err)

	var next Response
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, "changed", next.Data.(map[string]interface{})["name"])
}

func TestWebSocket_WatchMissingUserSendsError(t *testing.T) {
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws/users/nobody?token=" + token(t, "u1")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg Response
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, http.StatusNotFound, msg.Code)
}

func TestWebSocket_RejectsWithoutToken(t *testing.T) {
	env := newTestEnv(t)

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws/users/u1"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
