package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetpoll/internal/delivery/http/helpers"
	"meetpoll/internal/domain"
)

type fakeTokenIssuer struct {
	token    string
	issueErr error

	lastUserID string
}

func (f *fakeTokenIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	f.lastUserID = userID
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return f.token, nil
}

func exchangeRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/token", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAuthController_ExchangeToken(t *testing.T) {
	knownUser := func(token string) *domain.User {
		return &domain.User{
			ID:           "user-1",
			Name:         "Ann Chu",
			Email:        "ann@example.com",
			YammerUserID: "y-1",
			AccessToken:  token,
		}
	}

	tests := []struct {
		name       string
		body       string
		dir        *fakeDirectory
		users      *fakeUserRepo
		wantStatus int
		wantCode   string
	}{
		{
			name:       "issues session token",
			body:       `{"yammer_user_id":"y-1","access_token":"tok-1"}`,
			dir:        &fakeDirectory{findByAuthResult: knownUser("tok-1")},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unverifiable credentials",
			body:       `{"yammer_user_id":"y-1","access_token":"tok-1"}`,
			dir:        &fakeDirectory{findByAuthErr: errors.New("yammer api: status 401")},
			wantStatus: http.StatusUnauthorized,
			wantCode:   helpers.ErrCodeUnauthorized,
		},
		{
			name:       "missing access token",
			body:       `{"yammer_user_id":"y-1"}`,
			dir:        &fakeDirectory{},
			wantStatus: http.StatusBadRequest,
			wantCode:   helpers.ErrCodeBadRequest,
		},
		{
			name:       "credential store failure",
			body:       `{"yammer_user_id":"y-1","access_token":"fresh-token"}`,
			dir:        &fakeDirectory{findByAuthResult: knownUser("old-token")},
			users:      &fakeUserRepo{updateErr: errors.New("connection reset")},
			wantStatus: http.StatusInternalServerError,
			wantCode:   helpers.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := tt.users
			if users == nil {
				users = &fakeUserRepo{}
			}
			issuer := &fakeTokenIssuer{token: "session-jwt"}
			c := NewAuthController(testLogger, tt.dir, users, issuer)
			rec := httptest.NewRecorder()

			c.ExchangeToken(rec, exchangeRequest(tt.body))

			require.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeEnvelope(t, rec)
			if tt.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				return
			}
			require.Nil(t, resp.Error)
			assert.Equal(t, "user-1", issuer.lastUserID)
		})
	}
}

func TestAuthController_ExchangeToken_RefreshesRotatedToken(t *testing.T) {
	user := &domain.User{
		ID:           "user-1",
		Email:        "ann@example.com",
		YammerUserID: "y-1",
		AccessToken:  "old-token",
	}
	dir := &fakeDirectory{findByAuthResult: user}
	users := &fakeUserRepo{}
	c := NewAuthController(testLogger, dir, users, &fakeTokenIssuer{token: "session-jwt"})
	rec := httptest.NewRecorder()

	c.ExchangeToken(rec, exchangeRequest(`{"yammer_user_id":"y-1","access_token":"fresh-token","staging":true}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, users.updated, "rotated token must be persisted")
	assert.Equal(t, "user-1", users.updated.ID)
	assert.Equal(t, "fresh-token", users.updated.AccessToken)
	assert.True(t, users.updated.YammerStaging)
}

func TestAuthController_ExchangeToken_UnchangedTokenSkipsWrite(t *testing.T) {
	dir := &fakeDirectory{findByAuthResult: &domain.User{
		ID:           "user-1",
		YammerUserID: "y-1",
		AccessToken:  "tok-1",
	}}
	users := &fakeUserRepo{}
	c := NewAuthController(testLogger, dir, users, &fakeTokenIssuer{token: "session-jwt"})
	rec := httptest.NewRecorder()

	c.ExchangeToken(rec, exchangeRequest(`{"yammer_user_id":"y-1","access_token":"tok-1"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, users.updated, "matching credentials need no write")
}
