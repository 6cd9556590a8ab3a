package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"calendar-service/core/cache"
	"calendar-service/core/constants"
	"calendar-service/core/logger"

	"github.com/go-resty/resty/v2"
)

// Client is the part of the chat platform REST API this service uses.
type Client interface {
	IsChannelMember(ctx context.Context, channelID, userID string) (bool, error)
	CreatePost(ctx context.Context, channelID, message string) error
	// DirectChannel returns the direct (two users) or group (three to
	// eight users) channel shared by userIDs, creating it if needed.
	DirectChannel(ctx context.Context, userIDs []string) (string, error)
}

type Config struct {
	BaseURL   string
	BotToken  string
	BotUserID string
	Timeout   time.Duration
	MemberTTL time.Duration
}

var (
	ErrNotConfigured  = errors.New("platform: base url not configured")
	ErrEmptyChannelID = errors.New("platform: channel response has no id")
)

type restClient struct {
	http      *resty.Client
	botUserID string
	cache     cache.Cache
	memberTTL time.Duration
}

type channel struct {
	ID string `json:"id"`
}

type post struct {
	ChannelID string `json:"channel_id"`
	Message   string `json:"message"`
	UserID    string `json:"user_id,omitempty"`
}

type apiError struct {
	ID         string `json:"id"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// NewClient builds a REST client for the platform at cfg.BaseURL.
// Membership answers are cached in c when it is not nil.
func NewClient(cfg Config, c cache.Cache) Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	h := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.BotToken).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond).
		SetHeader("Accept", "application/json").
		ForceContentType("application/json").
		SetError(&apiError{})
	return &restClient{
		http:      h,
		botUserID: cfg.BotUserID,
		cache:     c,
		memberTTL: cfg.MemberTTL,
	}
}

func (c *restClient) IsChannelMember(ctx context.Context, channelID, userID string) (bool, error) {
	if channelID == "" || userID == "" {
		return false, nil
	}
	if c.http.BaseURL == "" {
		return false, ErrNotConfigured
	}

	key := constants.RedisKeyChannelMember + channelID + ":" + userID
	if c.cache != nil {
		var member bool
		if err := c.cache.GetJSON(ctx, key, &member); err == nil {
			return member, nil
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"channel": channelID, "user": userID}).
		Get("/api/v4/channels/{channel}/members/{user}")
	if err != nil {
		logger.Error("PlatformClient:IsChannelMember", err, "channel_id", channelID)
		return false, err
	}

	var member bool
	switch {
	case resp.StatusCode() == http.StatusOK:
		member = true
	case resp.StatusCode() == http.StatusNotFound || resp.StatusCode() == http.StatusForbidden:
		member = false
	default:
		return false, responseError("IsChannelMember", resp)
	}

	if c.cache != nil && c.memberTTL > 0 {
		_ = c.cache.SetJSON(ctx, key, member, c.memberTTL)
	}
	return member, nil
}

func (c *restClient) CreatePost(ctx context.Context, channelID, message string) error {
	if c.http.BaseURL == "" {
		return ErrNotConfigured
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(post{ChannelID: channelID, Message: message, UserID: c.botUserID}).
		Post("/api/v4/posts")
	if err != nil {
		logger.Error("PlatformClient:CreatePost", err, "channel_id", channelID)
		return err
	}
	if resp.IsError() {
		return responseError("CreatePost", resp)
	}
	return nil
}

func (c *restClient) DirectChannel(ctx context.Context, userIDs []string) (string, error) {
	if c.http.BaseURL == "" {
		return "", ErrNotConfigured
	}
	members := uniqueSorted(userIDs)

	path := "/api/v4/channels/group"
	switch {
	case len(members) == 0:
		return "", errors.New("platform: no users for direct channel")
	case len(members) == 1:
		members = []string{c.botUserID, members[0]}
		path = "/api/v4/channels/direct"
	case len(members) == 2:
		path = "/api/v4/channels/direct"
	}

	var ch channel
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(members).
		SetResult(&ch).
		Post(path)
	if err != nil {
		logger.Error("PlatformClient:DirectChannel", err, "users", len(members))
		return "", err
	}
	if resp.IsError() {
		return "", responseError("DirectChannel", resp)
	}
	if ch.ID == "" {
		return "", ErrEmptyChannelID
	}
	return ch.ID, nil
}

func responseError(op string, resp *resty.Response) error {
	if ae, ok := resp.Error().(*apiError); ok && ae != nil && ae.Message != "" {
		return fmt.Errorf("platform %s: %d %s", op, resp.StatusCode(), ae.Message)
	}
	return fmt.Errorf("platform %s: unexpected status %d", op, resp.StatusCode())
}

func uniqueSorted(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
