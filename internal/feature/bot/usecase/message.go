package usecase

import (
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"

	"finance_linebot/internal/feature/bot/domain/entity"
	"finance_linebot/internal/platform/line"
)

// FromWebhookEvent normalizes a webhook message event into an InboundMessage.
// The second return is false for events the dialogue core does not handle
// (non-text messages, joins, unfollows).
func FromWebhookEvent(ev webhook.EventInterface, bot *line.BotInfo) (entity.InboundMessage, bool) {
	msgEvent, ok := ev.(webhook.MessageEvent)
	if !ok {
		return entity.InboundMessage{}, false
	}
	text, ok := msgEvent.Message.(webhook.TextMessageContent)
	if !ok {
		return entity.InboundMessage{}, false
	}

	m := entity.InboundMessage{
		Text:       text.Text,
		ReplyToken: msgEvent.ReplyToken,
	}

	switch src := msgEvent.Source.(type) {
	case webhook.GroupSource:
		m.Kind = entity.ConversationGroup
		m.ChatID = src.GroupId
		m.UserID = src.UserId
	case webhook.RoomSource:
		m.Kind = entity.ConversationRoom
		m.ChatID = src.RoomId
		m.UserID = src.UserId
	case webhook.UserSource:
		m.Kind = entity.ConversationDirect
		m.ChatID = src.UserId
		m.UserID = src.UserId
	default:
		return entity.InboundMessage{}, false
	}

	if bot != nil && text.Mention != nil {
		for _, mentionee := range text.Mention.Mentionees {
			if u, ok := mentionee.(webhook.UserMentionee); ok && u.UserId == bot.UserID {
				m.MentionsBot = true
				break
			}
		}
	}
	return m, true
}
