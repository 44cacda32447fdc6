package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"meetpoll/internal/delivery/http/helpers"
	"meetpoll/internal/domain"
)

const sessionTokenTTL = 24 * time.Hour

type AuthController struct {
	Logger    *slog.Logger
	Directory domain.Directory
	UserRepo  domain.UserRepository
	Issuer    domain.TokenIssuer
}

func NewAuthController(logger *slog.Logger, directory domain.Directory, userRepo domain.UserRepository, issuer domain.TokenIssuer) *AuthController {
	return &AuthController{
		Logger:    logger,
		Directory: directory,
		UserRepo:  userRepo,
		Issuer:    issuer,
	}
}

// ExchangeTokenRequest is the request body for POST /auth/token.
type ExchangeTokenRequest struct {
	YammerUserID string `json:"yammer_user_id"`
	AccessToken  string `json:"access_token"`
	Staging      bool   `json:"staging,omitempty"`
}

// Validate implements helpers.Validator.
func (r *ExchangeTokenRequest) Validate() []string {
	var errs []string
	if r.YammerUserID == "" {
		errs = append(errs, "yammer_user_id is required")
	}
	if r.AccessToken == "" {
		errs = append(errs, "access_token is required")
	}
	return errs
}

// ExchangeToken godoc
// @Summary Exchange a network access token for a session token
// @Description Verifies the token by resolving the user against the external network, creating the local user record on first sight, and returns a signed bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body controllers.ExchangeTokenRequest true "Network credentials"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /auth/token [post]
func (c *AuthController) ExchangeToken(w http.ResponseWriter, r *http.Request) {
	var req ExchangeTokenRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	creds := domain.Credentials{AccessToken: req.AccessToken, Staging: req.Staging}
	user, err := c.Directory.FindOrCreateUserByAuth(r.Context(), creds, req.YammerUserID)
	if err != nil {
		c.Logger.WarnContext(r.Context(), "token exchange failed", "yammer_user_id", req.YammerUserID, "err", err)
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "could not verify network credentials")
		return
	}

	// Tokens rotate; a returning user's stored token is replaced with the one
	// just verified so later message and activity dispatches keep working.
	if user.AccessToken != req.AccessToken || user.YammerStaging != req.Staging {
		user.AccessToken = req.AccessToken
		user.YammerStaging = req.Staging
		if err := c.UserRepo.Update(r.Context(), user); err != nil {
			c.Logger.ErrorContext(r.Context(), "store network credentials", "user_id", user.ID, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "could not store network credentials")
			return
		}
	}

	token, err := c.Issuer.Issue(user.ID, user.Email, sessionTokenTTL)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "issue session token", "user_id", user.ID, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "could not issue session token")
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}
