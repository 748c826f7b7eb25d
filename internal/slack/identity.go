package slack

import (
	"context"
	"net/url"
)

// UserName resolves a user ID to a display name. Preference order follows
// the Slack profile: display name, then real name, then account name.
func (c *Client) UserName(ctx context.Context, userID string) (string, error) {
	params := url.Values{}
	params.Set("user", userID)

	var resp userInfoResponse
	if err := c.Call(ctx, "users.info", params, &resp); err != nil {
		return "", err
	}

	switch {
	case resp.User.Profile.DisplayName != "":
		return resp.User.Profile.DisplayName, nil
	case resp.User.RealName != "":
		return resp.User.RealName, nil
	case resp.User.Name != "":
		return resp.User.Name, nil
	default:
		return userID, nil
	}
}

// ChannelName resolves a channel ID to its name.
func (c *Client) ChannelName(ctx context.Context, channelID string) (string, error) {
	params := url.Values{}
	params.Set("channel", channelID)

	var resp conversationInfoResponse
	if err := c.Call(ctx, "conversations.info", params, &resp); err != nil {
		return "", err
	}
	if resp.Channel.Name == "" {
		return channelID, nil
	}
	return resp.Channel.Name, nil
}

// Identity describes the authenticated Slack user.
type Identity struct {
	User      string `json:"user"`
	UserID    string `json:"user_id"`
	Team      string `json:"team"`
	Workspace string `json:"workspace,omitempty"`
}

// AuthTest validates the token and returns the authenticated identity.
func (c *Client) AuthTest(ctx context.Context) (*Identity, error) {
	var resp authTestResponse
	if err := c.Call(ctx, "auth.test", nil, &resp); err != nil {
		return nil, err
	}
	return &Identity{
		User:      resp.User,
		UserID:    resp.UserID,
		Team:      resp.Team,
		Workspace: resp.URL,
	}, nil
}

// staticToken is a TokenSource for a token that is not stored yet.
type staticToken string

func (t staticToken) Token() (string, error) { return string(t), nil }

// AuthTestWithToken validates an explicit token, for login before the token
// has been saved anywhere.
func (c *Client) AuthTestWithToken(ctx context.Context, token string) (*Identity, error) {
	probe := *c
	probe.tokens = staticToken(token)
	return probe.AuthTest(ctx)
}
