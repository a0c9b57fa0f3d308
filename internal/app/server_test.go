package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princekumar9234/DarkBot/internal/auth"
	"github.com/princekumar9234/DarkBot/internal/config"
	"github.com/princekumar9234/DarkBot/internal/core/database"
	"github.com/princekumar9234/DarkBot/internal/core/llm"
	"github.com/princekumar9234/DarkBot/internal/services"
)

type scriptedProvider struct {
	name  string
	reply string
	err   error
}

func (p *scriptedProvider) Name() string { return p.name }

func (p *scriptedProvider) Generate(context.Context, *llm.Request) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.reply, nil
}

type testEnv struct {
	router *chi.Mux
	store  *database.MemoryStore
	gemini *scriptedProvider
	openAI *scriptedProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := database.NewMemoryStore()
	gemini := &scriptedProvider{name: llm.ProviderGemini, reply: "gemini says hi"}
	openAI := &scriptedProvider{name: llm.ProviderOpenAI, reply: "openai says hi"}
	registry := llm.NewRegistry(gemini, openAI)

	cfg := &config.Config{Port: "0", Env: "test", WebDir: t.TempDir()}
	tokens := auth.NewTokenManager([]byte("test-secret"), time.Hour)
	router := NewRouter(cfg, tokens,
		services.NewChatService(store, registry),
		services.NewUserService(store))

	return &testEnv{router: router, store: store, gemini: gemini, openAI: openAI}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	}
	return rec, decoded
}

func (e *testEnv) signup(t *testing.T, email string) string {
	t.Helper()
	rec, body := e.do(t, "POST", "/auth/signup", "", map[string]string{
		"name":            "Tester",
		"email":           email,
		"password":        "secret1",
		"confirmPassword": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestSignupLoginLogout(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec, body := env.do(t, "POST", "/auth/signup", "", map[string]string{
		"name":            "Prince",
		"email":           "prince@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])

	// Session cookie delivered alongside the JSON token.
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "prince@example.com", user["email"])
	assert.NotContains(t, rec.Body.String(), "secret1")
	assert.NotContains(t, rec.Body.String(), "password_hash")

	// Duplicate email is a 400 and creates no new record.
	rec, body = env.do(t, "POST", "/auth/signup", "", map[string]string{
		"name":            "Imposter",
		"email":           "prince@example.com",
		"password":        "secret1",
		"confirmPassword": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])

	rec, _ = env.do(t, "POST", "/auth/login", "", map[string]string{
		"email":    "prince@example.com",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, "POST", "/auth/login", "", map[string]string{
		"email":    "prince@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.do(t, "POST", "/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	cookies = rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestChatEndpointsRequireAuth(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{"POST", "/chat/send"},
		{"GET", "/chat/history"},
		{"GET", "/user/profile"},
		{"DELETE", "/user/account"},
	} {
		rec, _ := env.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestSendMessageFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.signup(t, "chat@example.com")

	rec, body := env.do(t, "POST", "/chat/send", token, map[string]string{
		"message": "hello there",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "hello there", body["title"])
	assert.Equal(t, "gemini says hi", body["response"])
	assert.Equal(t, "gemini", body["provider"])
	chatID, _ := body["chatId"].(string)
	require.NotEmpty(t, chatID)

	// Continue the same thread with an explicit provider.
	rec, body = env.do(t, "POST", "/chat/send", token, map[string]string{
		"message":    "and again",
		"chatId":     chatID,
		"aiProvider": "openai",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "openai says hi", body["response"])
	assert.Equal(t, "openai", body["provider"])
	assert.Equal(t, "hello there", body["title"], "title is computed once")

	rec, body = env.do(t, "GET", "/chat/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chats, _ := body["chats"].([]interface{})
	require.Len(t, chats, 1)
	summary := chats[0].(map[string]interface{})
	assert.Equal(t, "hello there", summary["title"])
	assert.NotContains(t, summary, "messages")

	rec, body = env.do(t, "GET", "/chat/"+chatID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chat := body["chat"].(map[string]interface{})
	messages := chat["messages"].([]interface{})
	assert.Len(t, messages, 4)

	rec, _ = env.do(t, "DELETE", "/chat/"+chatID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = env.do(t, "GET", "/chat/"+chatID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSendEmptyMessageRejected(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.signup(t, "empty@example.com")

	rec, _ := env.do(t, "POST", "/chat/send", token, map[string]string{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProviderFailureStaysHTTP200(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.gemini.err = errors.New("upstream exploded")
	token := env.signup(t, "fail@example.com")

	rec, body := env.do(t, "POST", "/chat/send", token, map[string]string{"message": "boom"})
	require.Equal(t, http.StatusOK, rec.Code)

	response, _ := body["response"].(string)
	assert.True(t, strings.HasPrefix(response, "⚠️ AI Error: "), "got %q", response)

	// Both turns persisted despite the failure.
	chatID, _ := body["chatId"].(string)
	rec, body = env.do(t, "GET", "/chat/"+chatID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	chat := body["chat"].(map[string]interface{})
	assert.Len(t, chat["messages"].([]interface{}), 2)
}

func TestChatIsolationBetweenUsers(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	tokenA := env.signup(t, "alice@example.com")
	tokenB := env.signup(t, "bob@example.com")

	_, body := env.do(t, "POST", "/chat/send", tokenA, map[string]string{"message": "alice's secret"})
	chatID, _ := body["chatId"].(string)
	require.NotEmpty(t, chatID)

	// Bob's token never reveals Alice's chat: not-found, not the data.
	rec, _ := env.do(t, "GET", "/chat/"+chatID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = env.do(t, "DELETE", "/chat/"+chatID, tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec, _ = env.do(t, "POST", "/chat/send", tokenB, map[string]string{
		"message": "hijack",
		"chatId":  chatID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, body = env.do(t, "GET", "/chat/history", tokenB, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["chats"])
}

func TestSendMultipartWithAttachment(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.signup(t, "files@example.com")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("message", "what does the memo say"))
	fw, err := mw.CreateFormFile("files", "memo.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("the deadline moved to Friday"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/chat/send", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	chatID, _ := body["chatId"].(string)

	// The stored turn keeps the original text, not the extracted document.
	rec2, chatBody := env.do(t, "GET", "/chat/"+chatID, token, nil)
	require.Equal(t, http.StatusOK, rec2.Code)
	chat := chatBody["chat"].(map[string]interface{})
	first := chat["messages"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "what does the memo say", first["content"])
}

func TestUserProfileAndPreferences(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.signup(t, "profile@example.com")

	rec, body := env.do(t, "GET", "/user/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "profile@example.com", user["email"])

	rec, body = env.do(t, "PUT", "/user/profile", token, map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)
	user = body["user"].(map[string]interface{})
	assert.Equal(t, "Renamed", user["name"])

	rec, body = env.do(t, "PUT", "/user/preferences", token, map[string]string{"aiProvider": "openai"})
	require.Equal(t, http.StatusOK, rec.Code)
	user = body["user"].(map[string]interface{})
	prefs := user["preferences"].(map[string]interface{})
	assert.Equal(t, "openai", prefs["aiProvider"])

	// The preference now drives provider selection.
	rec, body = env.do(t, "POST", "/chat/send", token, map[string]string{"message": "hi"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "openai", body["provider"])
}

func TestDuplicateEmailOnProfileUpdate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.signup(t, "taken@example.com")
	token := env.signup(t, "mover@example.com")

	rec, _ := env.do(t, "PUT", "/user/profile", token, map[string]string{"email": "taken@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.signup(t, "pw@example.com")

	rec, _ := env.do(t, "PUT", "/user/password", token, map[string]string{
		"currentPassword": "nope",
		"newPassword":     "newsecret",
		"confirmPassword": "newsecret",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = env.do(t, "PUT", "/user/password", token, map[string]string{
		"currentPassword": "secret1",
		"newPassword":     "newsecret",
		"confirmPassword": "newsecret",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = env.do(t, "POST", "/auth/login", "", map[string]string{
		"email":    "pw@example.com",
		"password": "newsecret",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteAccountCascades(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	token := env.signup(t, "gone@example.com")

	_, body := env.do(t, "POST", "/chat/send", token, map[string]string{"message": "to be deleted"})
	chatID, _ := body["chatId"].(string)
	require.NotEmpty(t, chatID)

	rec, _ := env.do(t, "DELETE", "/user/account", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Negative(t, cookies[0].MaxAge)

	// The chat id resolves for no one anymore.
	rec, _ = env.do(t, "GET", "/chat/"+chatID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPageGatePolicies(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	// Soft-redirect policy for the chat page.
	req := httptest.NewRequest("GET", "/chat", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// Bearer tokens do not unlock pages; only the cookie counts there.
	token := env.signup(t, "pages@example.com")
	req = httptest.NewRequest("GET", "/chat", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)

	// With the cookie the page is served.
	req = httptest.NewRequest("GET", "/chat", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.NotEqual(t, http.StatusFound, rec.Code)
}
