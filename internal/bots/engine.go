package bots

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/pliu/courier/internal/models"
	"github.com/pliu/courier/internal/store"
)

// Engine evaluates bot triggers against delivered messages and synthesizes
// replies. Candidates: the recipient itself for a direct message to a bot
// account, or every bot attached to the recipient group. Channels never
// trigger bots, and neither do synthesized replies, so bots cannot cascade
// into each other.
type Engine struct {
	logger *zap.SugaredLogger
	store  store.Store
}

func NewEngine(logger *zap.SugaredLogger, st store.Store) *Engine {
	return &Engine{logger: logger, store: st}
}

// OnMessageDelivered runs trigger evaluation for one just-persisted
// message. Each candidate bot evaluates independently: its scripts are
// scanned in creation order and the first trigger found anywhere in the
// text (case-insensitive substring) produces that bot's single reply.
func (e *Engine) OnMessageDelivered(msg *models.Message) {
	if msg.Text == "" {
		return
	}

	candidates, err := e.candidates(msg)
	if err != nil {
		e.logger.Errorf("resolving bot candidates for message %d: %v", msg.ID, err)
		return
	}

	text := strings.ToLower(msg.Text)
	for _, bot := range candidates {
		scripts, err := e.store.GetScripts(bot.ID)
		if err != nil {
			e.logger.Errorf("loading scripts for bot %d: %v", bot.ID, err)
			continue
		}
		for _, script := range scripts {
			if !strings.Contains(text, strings.ToLower(script.Trigger)) {
				continue
			}

			reply := &models.Message{
				SenderID:       bot.UserID,
				SenderUsername: bot.Username,
				Text:           script.Response,
			}
			if msg.RecipientUserID != 0 {
				// Direct message: reply back to the sender.
				reply.RecipientUserID = msg.SenderID
			} else {
				reply.RecipientConversationID = msg.RecipientConversationID
			}

			if err := e.store.SaveMessage(reply); err != nil {
				e.logger.Errorf("saving reply from bot %d: %v", bot.ID, err)
			} else {
				e.logger.Debugf("Bot %q replied to message %d with script %d", bot.Username, msg.ID, script.ID)
			}
			// First match wins for this bot.
			break
		}
	}
}

// candidates picks the bots eligible to answer the message. Only a
// recipient that is a bot account triggers direct-message evaluation; bots
// as senders never wake other bots.
func (e *Engine) candidates(msg *models.Message) ([]models.Bot, error) {
	if msg.RecipientUserID != 0 {
		bot, err := e.store.GetBotByUserID(msg.RecipientUserID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []models.Bot{*bot}, nil
	}
	if msg.RecipientConversationID != 0 {
		return e.store.GetConversationBots(msg.RecipientConversationID)
	}
	return nil, nil
}
