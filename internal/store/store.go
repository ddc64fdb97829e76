package store

import (
	"errors"

	"github.com/pliu/courier/internal/models"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned on a uniqueness violation (username, bot
	// token, or a (conversation, user) membership pair).
	ErrDuplicate = errors.New("record already exists")
)

type Store interface {
	// User operations
	CreateUser(user *models.User) error
	GetUserByID(id int) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	SearchUsers(query string) ([]models.User, error)

	// Contact operations
	AddContact(ownerID, contactUserID int) error
	GetContacts(ownerID int) ([]models.User, error)

	// Conversation operations
	CreateConversation(kind models.ConversationKind, name string, creatorID int) (int64, error)
	GetConversation(id int, kind models.ConversationKind) (*models.Conversation, error)
	RenameConversation(id int, name string) error
	GetMember(conversationID, userID int) (*models.Member, error)
	EnsureMember(conversationID, userID int) (*models.Member, error)
	UpdateMember(member *models.Member) error
	IsMember(conversationID, userID int) (bool, error)
	GetMembers(conversationID int) ([]models.User, error)

	// Bot operations
	CreateBot(ownerID, userID int, token string) (int64, error)
	GetBotByID(id int) (*models.Bot, error)
	GetBotByUserID(userID int) (*models.Bot, error)
	GetBotByUsername(username string) (*models.Bot, error)
	GetBotsByOwner(ownerID int) ([]models.Bot, error)
	AddScript(botID int, trigger, response string) (int64, error)
	GetScript(id int) (*models.BotScript, error)
	GetScripts(botID int) ([]models.BotScript, error)
	DeleteScript(id int) error
	AttachBot(conversationID, botID int) error
	GetConversationBots(conversationID int) ([]models.Bot, error)

	// Message operations
	SaveMessage(msg *models.Message) error
	GetMessage(id int) (*models.Message, error)
	GetConversationMessages(conversationID int) ([]models.Message, error)
	GetDirectMessages(userID, otherID int) ([]models.Message, error)
	MarkMessageDeleted(id int) error
}
