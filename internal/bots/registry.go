package bots

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/pliu/courier/internal/chat"
	"github.com/pliu/courier/internal/models"
	"github.com/pliu/courier/internal/store"
)

// Registry owns the bot lifecycle: creating bot accounts and managing their
// trigger/response scripts. Script operations are scoped to the bot's owner.
type Registry struct {
	logger *zap.SugaredLogger
	store  store.Store
}

func NewRegistry(logger *zap.SugaredLogger, st store.Store) *Registry {
	return &Registry{logger: logger, store: st}
}

// CreateBot registers a bot account for the owner. The username must end
// with "bot". The backing user identity gets a random credential nobody can
// log in with; the API token is returned here once and never again.
func (r *Registry) CreateBot(ownerID int, username string) (*models.Bot, error) {
	if username == "" {
		return nil, fmt.Errorf("bot username is required: %w", chat.ErrBadRequest)
	}
	if !strings.HasSuffix(strings.ToLower(username), "bot") {
		return nil, fmt.Errorf(`bot username must end with "bot": %w`, chat.ErrBadRequest)
	}

	password, err := bcrypt.GenerateFromPassword(randomBytes(16), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{Username: username, Password: string(password)}
	if err := r.store.CreateUser(user); err != nil {
		return nil, wrapStoreErr(err, "bot username")
	}

	token := hex.EncodeToString(randomBytes(32))
	botID, err := r.store.CreateBot(ownerID, user.ID, token)
	if err != nil {
		return nil, wrapStoreErr(err, "bot")
	}

	r.logger.Debugf("Created bot %q (id: %d) for user %d", username, botID, ownerID)
	return &models.Bot{
		ID:       int(botID),
		OwnerID:  ownerID,
		UserID:   user.ID,
		Username: user.Username,
		Token:    token,
	}, nil
}

// ListBots returns the bots the owner has registered.
func (r *Registry) ListBots(ownerID int) ([]models.Bot, error) {
	return r.store.GetBotsByOwner(ownerID)
}

// ownedBot resolves a bot id for the actor; a bot owned by someone else
// reads as not found, never leaking its existence.
func (r *Registry) ownedBot(actorID, botID int) (*models.Bot, error) {
	bot, err := r.store.GetBotByID(botID)
	if err != nil {
		return nil, wrapStoreErr(err, "bot")
	}
	if bot.OwnerID != actorID {
		return nil, fmt.Errorf("bot %d: %w", botID, chat.ErrNotFound)
	}
	return bot, nil
}

func (r *Registry) AddScript(actorID, botID int, trigger, response string) (*models.BotScript, error) {
	if trigger == "" || response == "" {
		return nil, fmt.Errorf("trigger and response are required: %w", chat.ErrBadRequest)
	}

	bot, err := r.ownedBot(actorID, botID)
	if err != nil {
		return nil, err
	}

	id, err := r.store.AddScript(bot.ID, trigger, response)
	if err != nil {
		return nil, err
	}
	return &models.BotScript{ID: int(id), BotID: bot.ID, Trigger: trigger, Response: response}, nil
}

func (r *Registry) ListScripts(actorID, botID int) ([]models.BotScript, error) {
	bot, err := r.ownedBot(actorID, botID)
	if err != nil {
		return nil, err
	}
	return r.store.GetScripts(bot.ID)
}

func (r *Registry) DeleteScript(actorID, scriptID int) error {
	script, err := r.store.GetScript(scriptID)
	if err != nil {
		return wrapStoreErr(err, "script")
	}
	if _, err := r.ownedBot(actorID, script.BotID); err != nil {
		return err
	}
	return r.store.DeleteScript(script.ID)
}

func wrapStoreErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%s: %w", what, chat.ErrNotFound)
	case errors.Is(err, store.ErrDuplicate):
		return fmt.Errorf("%s: %w", what, chat.ErrConflict)
	}
	return err
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failures are unrecoverable
		panic(err)
	}
	return b
}
