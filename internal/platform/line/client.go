// Package line wraps the LINE Messaging API SDK behind the small surface the
// bot actually uses: webhook parsing, reply, push, and identity lookups.
package line

import (
	"fmt"
	"net/http"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// BotInfo identifies the bot account itself. It is resolved once at startup
// and injected into the command router for mention detection.
type BotInfo struct {
	UserID      string
	BasicID     string
	DisplayName string
}

// Client talks to the LINE platform for one channel.
type Client struct {
	api    *messaging_api.MessagingApiAPI
	secret string
}

// New creates a Client for the given channel credentials.
func New(channelToken, channelSecret string) (*Client, error) {
	api, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("create messaging api client: %w", err)
	}
	return &Client{api: api, secret: channelSecret}, nil
}

// ParseCallback verifies the webhook signature and decodes the callback body.
// A signature mismatch surfaces as webhook.ErrInvalidSignature.
func (c *Client) ParseCallback(r *http.Request) (*webhook.CallbackRequest, error) {
	return webhook.ParseRequest(c.secret, r)
}

// Reply answers a webhook event through its one-shot reply token.
func (c *Client) Reply(replyToken string, messages []messaging_api.MessageInterface) error {
	_, err := c.api.ReplyMessage(&messaging_api.ReplyMessageRequest{
		ReplyToken: replyToken,
		Messages:   messages,
	})
	if err != nil {
		return fmt.Errorf("reply message: %w", err)
	}
	return nil
}

// Push sends messages outside the synchronous reply window. Used for the
// cron report endpoints and for the slow AI-analysis follow-up.
func (c *Client) Push(to string, messages []messaging_api.MessageInterface) error {
	_, err := c.api.PushMessage(&messaging_api.PushMessageRequest{
		To:       to,
		Messages: messages,
	}, "")
	if err != nil {
		return fmt.Errorf("push message: %w", err)
	}
	return nil
}

// BotInfo resolves the bot's own identity via the platform self-lookup call.
func (c *Client) BotInfo() (*BotInfo, error) {
	res, err := c.api.GetBotInfo()
	if err != nil {
		return nil, fmt.Errorf("get bot info: %w", err)
	}
	return &BotInfo{
		UserID:      res.UserId,
		BasicID:     res.BasicId,
		DisplayName: res.DisplayName,
	}, nil
}

// MemberDisplayName resolves the display name of the message sender. kind is
// the webhook source type ("user", "group" or "room"); chatID is the group or
// room identifier when applicable.
func (c *Client) MemberDisplayName(kind, chatID, userID string) (string, error) {
	switch kind {
	case "group":
		p, err := c.api.GetGroupMemberProfile(chatID, userID)
		if err != nil {
			return "", err
		}
		return p.DisplayName, nil
	case "room":
		p, err := c.api.GetRoomMemberProfile(chatID, userID)
		if err != nil {
			return "", err
		}
		return p.DisplayName, nil
	default:
		p, err := c.api.GetProfile(userID)
		if err != nil {
			return "", err
		}
		return p.DisplayName, nil
	}
}
