package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"anonchat-service/internal/mocks"
	"anonchat-service/internal/models"
	"anonchat-service/internal/repositories"
)

func setupChatRouter(handler *ChatHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	r.POST("/chats", handler.HandleAction)
	r.GET("/chats", handler.ListChats)
	return r
}

func TestCreateUserSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewChatHandler(userRepo, new(mocks.ChatRepositoryMock), nil)
	router := setupChatRouter(handler)

	anonIDPattern := regexp.MustCompile(`^\d{4}$`)
	avatarPattern := regexp.MustCompile(`^A[1-9]$`)

	userRepo.On("CreateUser", mock.Anything,
		mock.MatchedBy(func(s string) bool { return anonIDPattern.MatchString(s) }),
		mock.Anything,
		mock.MatchedBy(func(s string) bool { return avatarPattern.MatchString(s) }),
	).Return(models.User{ID: 1, AnonymousID: "1234", DisplayName: "Анонимный пользователь #1234", AvatarCode: "A3"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"action":"create_user"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "1234", resp["anonymous_id"])
	assert.Equal(t, "A3", resp["avatar_code"])
	userRepo.AssertExpectations(t)
}

func TestCreateChatSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(new(mocks.UserRepositoryMock), chatRepo, nil)
	router := setupChatRouter(handler)

	codePattern := regexp.MustCompile(`^[A-Za-z0-9]{10}$`)
	chatRepo.On("CreateChat", mock.Anything,
		mock.MatchedBy(func(s string) bool { return codePattern.MatchString(s) }),
		1,
	).Return(models.Chat{ID: 5, ChatCode: "ABCD123456"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"action":"create_chat","user_id":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ABCD123456", resp["chat_code"])
	chatRepo.AssertExpectations(t)
}

func TestCreateChatMissingUserID(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(new(mocks.UserRepositoryMock), chatRepo, nil)
	router := setupChatRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"action":"create_chat"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	chatRepo.AssertNotCalled(t, "CreateChat", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateChatRetriesOnCodeCollision(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(new(mocks.UserRepositoryMock), chatRepo, nil)
	router := setupChatRouter(handler)

	chatRepo.On("CreateChat", mock.Anything, mock.Anything, 1).
		Return(models.Chat{}, &pq.Error{Code: "23505"}).Once()
	chatRepo.On("CreateChat", mock.Anything, mock.Anything, 1).
		Return(models.Chat{ID: 6, ChatCode: "zzzzzzzzzz"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"action":"create_chat","user_id":1}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	chatRepo.AssertExpectations(t)
}

func TestJoinChatSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(new(mocks.UserRepositoryMock), chatRepo, nil)
	router := setupChatRouter(handler)

	chatRepo.On("GetChatByCode", mock.Anything, "ABCD123456").Return(models.Chat{ID: 5, ChatCode: "ABCD123456"}, nil).Once()
	chatRepo.On("AddParticipant", mock.Anything, 5, 2).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"action":"join_chat","user_id":2,"chat_code":"ABCD123456"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, float64(5), resp["chat_id"])
	chatRepo.AssertExpectations(t)
}

func TestJoinChatNotFound(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(new(mocks.UserRepositoryMock), chatRepo, nil)
	router := setupChatRouter(handler)

	chatRepo.On("GetChatByCode", mock.Anything, "nosuchcode").Return(models.Chat{}, repositories.ErrChatNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"action":"join_chat","user_id":2,"chat_code":"nosuchcode"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	chatRepo.AssertNotCalled(t, "AddParticipant", mock.Anything, mock.Anything, mock.Anything)
}

func TestJoinChatMissingFields(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(new(mocks.UserRepositoryMock), chatRepo, nil)
	router := setupChatRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"action":"join_chat","user_id":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	chatRepo.AssertNotCalled(t, "GetChatByCode", mock.Anything, mock.Anything)
}

func TestUnknownAction(t *testing.T) {
	handler := NewChatHandler(new(mocks.UserRepositoryMock), new(mocks.ChatRepositoryMock), nil)
	router := setupChatRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/chats", bytes.NewBufferString(`{"action":"drop_tables"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListChatsMissingUserID(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(new(mocks.UserRepositoryMock), chatRepo, nil)
	router := setupChatRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	chatRepo.AssertNotCalled(t, "ListChatOverviews", mock.Anything, mock.Anything)
}

func TestListChatsShaping(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(new(mocks.UserRepositoryMock), chatRepo, nil)
	router := setupChatRouter(handler)

	lastSeen := time.Now().Add(-time.Minute)
	msgAt := time.Now().Add(-2 * time.Minute)
	overviews := []models.ChatOverview{
		{
			ChatID:          5,
			ChatCode:        "ABCD123456",
			CreatedAt:       time.Now().Add(-time.Hour),
			PartnerID:       sql.NullInt64{Int64: 2, Valid: true},
			PartnerName:     sql.NullString{String: "Анонимный пользователь #7777", Valid: true},
			PartnerAvatar:   sql.NullString{String: "A7", Valid: true},
			PartnerLastSeen: sql.NullTime{Time: lastSeen, Valid: true},
			LastMessage:     sql.NullString{String: "hi", Valid: true},
			LastMessageAt:   sql.NullTime{Time: msgAt, Valid: true},
			Unread:          1,
		},
		{
			ChatID:    6,
			ChatCode:  "zzzzzzzzzz",
			CreatedAt: time.Now().Add(-time.Hour),
		},
	}
	chatRepo.On("ListChatOverviews", mock.Anything, 1).Return(overviews, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats?user_id=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)

	assert.Equal(t, "Анонимный пользователь #7777", resp[0]["name"])
	assert.Equal(t, "A7", resp[0]["avatar"])
	assert.Equal(t, "hi", resp[0]["lastMessage"])
	assert.Equal(t, float64(1), resp[0]["unread"])
	assert.Equal(t, true, resp[0]["online"])

	assert.Equal(t, "Новый чат", resp[1]["name"])
	assert.Equal(t, "A1", resp[1]["avatar"])
	assert.Equal(t, "Нет сообщений", resp[1]["lastMessage"])
	assert.Equal(t, float64(0), resp[1]["unread"])
	assert.Equal(t, false, resp[1]["online"])
	chatRepo.AssertExpectations(t)
}

func TestListChatsStalePartnerOffline(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(new(mocks.UserRepositoryMock), chatRepo, nil)
	router := setupChatRouter(handler)

	overviews := []models.ChatOverview{
		{
			ChatID:          5,
			ChatCode:        "ABCD123456",
			CreatedAt:       time.Now().Add(-time.Hour),
			PartnerLastSeen: sql.NullTime{Time: time.Now().Add(-10 * time.Minute), Valid: true},
		},
	}
	chatRepo.On("ListChatOverviews", mock.Anything, 1).Return(overviews, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats?user_id=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, false, resp[0]["online"])
}

func TestListChatsRepoError(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	handler := NewChatHandler(new(mocks.UserRepositoryMock), chatRepo, nil)
	router := setupChatRouter(handler)

	chatRepo.On("ListChatOverviews", mock.Anything, 1).Return(([]models.ChatOverview)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/chats?user_id=1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, assert.AnError.Error(), resp["error"])
}

func TestMethodNotAllowed(t *testing.T) {
	handler := NewChatHandler(new(mocks.UserRepositoryMock), new(mocks.ChatRepositoryMock), nil)
	router := setupChatRouter(handler)

	req := httptest.NewRequest(http.MethodDelete, "/chats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
