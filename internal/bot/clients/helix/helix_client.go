package helix

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	domainerrors "github.com/Matthew11K/TwitchBot/internal/domain/errors"
)

const defaultBaseURL = "https://api.twitch.tv/helix"

// Client проверяет, идёт ли сейчас трансляция канала.
type Client struct {
	client   *resty.Client
	baseURL  string
	clientID string
	token    string
	channel  string
}

func NewClient(client *resty.Client, baseURL, clientID, token, channel string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		client:   client,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		clientID: clientID,
		token:    strings.TrimPrefix(token, "oauth:"),
		channel:  strings.ToLower(strings.TrimPrefix(channel, "#")),
	}
}

type streamsResponse struct {
	Data []struct {
		UserLogin string `json:"user_login"`
		Type      string `json:"type"`
	} `json:"data"`
}

func (c *Client) IsLive(ctx context.Context) (bool, error) {
	var response streamsResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Client-Id", c.clientID).
		SetAuthToken(c.token).
		SetQueryParam("user_login", c.channel).
		SetResult(&response).
		Get(c.baseURL + "/streams")
	if err != nil {
		return false, fmt.Errorf("ошибка запроса статуса трансляции: %w", err)
	}

	if !resp.IsSuccess() {
		return false, &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	for _, stream := range response.Data {
		if stream.Type == "live" {
			return true, nil
		}
	}

	return false, nil
}
