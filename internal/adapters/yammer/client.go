package yammer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"meetpoll/internal/domain"
)

// Default API endpoints. The staging flag on a user's credentials selects
// which one their calls go through.
const (
	DefaultEndpoint        = "https://www.yammer.com"
	DefaultStagingEndpoint = "https://www.staging.yammer.com"
)

// Client talks to the Yammer REST API and implements domain.Directory and
// domain.Messenger. Find-or-create operations check the local store first and
// only hit the network for unseen identities.
type Client struct {
	httpClient      *http.Client
	userRepo        domain.UserRepository
	groupRepo       domain.GroupRepository
	endpoint        string
	stagingEndpoint string
}

// NewClient returns a Client. A nil httpClient falls back to
// http.DefaultClient; empty endpoints fall back to the Yammer defaults.
func NewClient(httpClient *http.Client, userRepo domain.UserRepository, groupRepo domain.GroupRepository, endpoint, stagingEndpoint string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if stagingEndpoint == "" {
		stagingEndpoint = DefaultStagingEndpoint
	}
	return &Client{
		httpClient:      httpClient,
		userRepo:        userRepo,
		groupRepo:       groupRepo,
		endpoint:        endpoint,
		stagingEndpoint: stagingEndpoint,
	}
}

func (c *Client) baseURL(staging bool) string {
	if staging {
		return c.stagingEndpoint
	}
	return c.endpoint
}

// userPayload is the subset of the Yammer user resource the client consumes.
type userPayload struct {
	ID         json.Number `json:"id"`
	FullName   string      `json:"full_name"`
	MugshotURL string      `json:"mugshot_url"`
	NetworkID  json.Number `json:"network_id"`
	Contact    struct {
		EmailAddresses []struct {
			Address string `json:"address"`
		} `json:"email_addresses"`
	} `json:"contact"`
}

func (p *userPayload) email() string {
	if len(p.Contact.EmailAddresses) == 0 {
		return ""
	}
	return p.Contact.EmailAddresses[0].Address
}

func (c *Client) FindOrCreateUserByAuth(ctx context.Context, creds domain.Credentials, yammerUserID string) (*domain.User, error) {
	user, err := c.userRepo.GetByYammerUserID(ctx, yammerUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user by yammer id: %w", err)
	}

	var payload userPayload
	path := fmt.Sprintf("/api/v1/users/%s.json", url.PathEscape(yammerUserID))
	if err := c.get(ctx, creds, path, nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch yammer user %s: %w", yammerUserID, err)
	}

	now := time.Now()
	user = &domain.User{
		Name:            payload.FullName,
		Email:           payload.email(),
		Image:           payload.MugshotURL,
		YammerUserID:    yammerUserID,
		YammerNetworkID: payload.NetworkID.String(),
		YammerStaging:   creds.Staging,
		AccessToken:     creds.AccessToken,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := c.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (c *Client) FindOrCreateGroup(ctx context.Context, yammerGroupID, name string) (*domain.Group, error) {
	group, err := c.groupRepo.GetByYammerGroupID(ctx, yammerGroupID)
	if err == nil {
		return group, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get group by yammer id: %w", err)
	}

	group = &domain.Group{
		Name:          name,
		YammerGroupID: yammerGroupID,
		CreatedAt:     time.Now(),
	}
	if err := c.groupRepo.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return group, nil
}

func (c *Client) FindUserByEmail(ctx context.Context, creds domain.Credentials, email string) (*domain.User, error) {
	var payloads []userPayload
	query := url.Values{"email": {email}}
	if err := c.get(ctx, creds, "/api/v1/users/by_email.json", query, &payloads); err != nil {
		return nil, fmt.Errorf("fetch yammer user by email: %w", err)
	}
	if len(payloads) == 0 {
		return nil, domain.ErrUserNotFound
	}
	p := payloads[0]
	return &domain.User{
		Name:            p.FullName,
		Email:           p.email(),
		Image:           p.MugshotURL,
		YammerUserID:    p.ID.String(),
		YammerNetworkID: p.NetworkID.String(),
		YammerStaging:   creds.Staging,
	}, nil
}

func (c *Client) SendPrivateMessage(ctx context.Context, sender, recipient *domain.User, text string) error {
	creds := domain.Credentials{AccessToken: sender.AccessToken, Staging: sender.YammerStaging}
	body := map[string]any{
		"body":         text,
		"direct_to_id": recipient.YammerUserID,
	}
	if err := c.post(ctx, creds, "/api/v1/messages.json", body); err != nil {
		return fmt.Errorf("send private message: %w", err)
	}
	return nil
}

func (c *Client) PostActivity(ctx context.Context, actor *domain.User, action string, event *domain.Event) error {
	creds := domain.Credentials{AccessToken: actor.AccessToken, Staging: actor.YammerStaging}
	body := map[string]any{
		"activity": map[string]any{
			"actor":  map[string]string{"name": actor.Name, "email": actor.Email},
			"action": action,
			"object": map[string]string{
				"url":   fmt.Sprintf("events/%s", event.UUID),
				"title": event.Name,
			},
		},
	}
	if err := c.post(ctx, creds, "/api/v1/activity.json", body); err != nil {
		return fmt.Errorf("post activity: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, creds domain.Credentials, path string, query url.Values, dest any) error {
	u := c.baseURL(creds.Staging) + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("yammer api unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yammer api returned status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode yammer response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, creds domain.Credentials, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL(creds.Staging)+path, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("yammer api unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("yammer api returned status: %d", resp.StatusCode)
	}
	return nil
}
