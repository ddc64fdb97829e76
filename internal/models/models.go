package models

import "time"

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
}

// Contact is a directed edge: the owner added ContactUser. Adding A->B does
// not add B->A.
type Contact struct {
	OwnerID     int       `json:"-"`
	ContactUser User      `json:"contact_user"`
	CreatedAt   time.Time `json:"created_at"`
}

// Bot wraps a backing user identity with an owner and an API token. The
// token is generated once at creation and never regenerated.
type Bot struct {
	ID        int       `json:"id"`
	OwnerID   int       `json:"owner_id"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type BotScript struct {
	ID        int       `json:"id"`
	BotID     int       `json:"bot_id"`
	Trigger   string    `json:"trigger"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

type ConversationKind string

const (
	KindGroup   ConversationKind = "group"
	KindChannel ConversationKind = "channel"
)

func (k ConversationKind) Valid() bool {
	return k == KindGroup || k == KindChannel
}

// Conversation is a group or a broadcast channel. The two share shape and
// membership mechanics; they differ only in send semantics (channels gate
// sending behind an explicit can_send_messages grant).
type Conversation struct {
	ID        int              `json:"id"`
	Kind      ConversationKind `json:"kind"`
	Name      string           `json:"name"`
	CreatorID int              `json:"creator_id"`
	CreatedAt time.Time        `json:"created_at"`
}

// Member is the membership record for one (conversation, user) pair,
// carrying the permission bundle. At most one record exists per pair.
// CanSendMessages is only meaningful for channel conversations.
type Member struct {
	ConversationID    int  `json:"-"`
	UserID            int  `json:"user_id"`
	CanAddUsers       bool `json:"can_add_users"`
	CanDeleteMessages bool `json:"can_delete_messages"`
	CanManageItem     bool `json:"can_manage_item"`
	CanPromoteMembers bool `json:"can_promote_members"`
	CanSendMessages   bool `json:"can_send_messages"`
	IsAdmin           bool `json:"is_admin"`
}

type Permission int

const (
	PermAddUsers Permission = iota
	PermDeleteMessages
	PermManageItem
	PermPromoteMembers
	PermSendMessages
)

// Has reports whether the member holds the given permission. A nil receiver
// means "not a member" and holds nothing, so absent records fail closed.
func (m *Member) Has(p Permission) bool {
	if m == nil {
		return false
	}
	switch p {
	case PermAddUsers:
		return m.CanAddUsers
	case PermDeleteMessages:
		return m.CanDeleteMessages
	case PermManageItem:
		return m.CanManageItem
	case PermPromoteMembers:
		return m.CanPromoteMembers
	case PermSendMessages:
		return m.CanSendMessages
	}
	return false
}

// FounderMember returns the record created for a conversation's creator:
// every flag set.
func FounderMember(conversationID, userID int) *Member {
	return &Member{
		ConversationID:    conversationID,
		UserID:            userID,
		CanAddUsers:       true,
		CanDeleteMessages: true,
		CanManageItem:     true,
		CanPromoteMembers: true,
		CanSendMessages:   true,
		IsAdmin:           true,
	}
}

// PermissionPatch is a partial update of a membership record. Nil fields
// keep the current value.
type PermissionPatch struct {
	IsAdmin           *bool `json:"is_admin"`
	CanAddUsers       *bool `json:"can_add_users"`
	CanDeleteMessages *bool `json:"can_delete_messages"`
	CanManageItem     *bool `json:"can_manage_item"`
	CanPromoteMembers *bool `json:"can_promote_members"`
	CanSendMessages   *bool `json:"can_send_messages"`
}

// Apply overlays the patch onto a member record, leaving nil fields alone.
func (p PermissionPatch) Apply(m *Member) {
	if p.IsAdmin != nil {
		m.IsAdmin = *p.IsAdmin
	}
	if p.CanAddUsers != nil {
		m.CanAddUsers = *p.CanAddUsers
	}
	if p.CanDeleteMessages != nil {
		m.CanDeleteMessages = *p.CanDeleteMessages
	}
	if p.CanManageItem != nil {
		m.CanManageItem = *p.CanManageItem
	}
	if p.CanPromoteMembers != nil {
		m.CanPromoteMembers = *p.CanPromoteMembers
	}
	if p.CanSendMessages != nil {
		m.CanSendMessages = *p.CanSendMessages
	}
}

type TargetType string

const (
	TargetUser    TargetType = "user"
	TargetGroup   TargetType = "group"
	TargetChannel TargetType = "channel"
)

// Target addresses a message: a user, a group, or a channel, by id.
type Target struct {
	Type TargetType `json:"type"`
	ID   int        `json:"id"`
}

// Message has exactly one recipient: RecipientUserID for direct messages,
// RecipientConversationID for group or channel messages. Zero means unset.
// FilePath is the blob-store locator; FileURL is resolved at the API
// boundary and never persisted.
type Message struct {
	ID                      int       `json:"id"`
	SenderID                int       `json:"-"`
	SenderUsername          string    `json:"sender_username"`
	RecipientUserID         int       `json:"-"`
	RecipientConversationID int       `json:"-"`
	Text                    string    `json:"text"`
	FilePath                string    `json:"-"`
	FileURL                 string    `json:"file_url,omitempty"`
	Timestamp               time.Time `json:"timestamp"`
	IsDeleted               bool      `json:"is_deleted"`
}
