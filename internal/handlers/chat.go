package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/pliu/courier/internal/chat"
	"github.com/pliu/courier/internal/middleware"
	"github.com/pliu/courier/internal/models"
)

type ChatHandler struct {
	Service *chat.Service
}

type CreateItemRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type AddMemberRequest struct {
	Username string `json:"username"`
	Type     string `json:"type"`
}

type ManageItemRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type ManageRoleRequest struct {
	Type        string                 `json:"type"`
	Permissions models.PermissionPatch `json:"permissions"`
}

type AttachBotRequest struct {
	Username string `json:"username"`
}

type AddContactRequest struct {
	Username string `json:"username"`
}

func itemKind(t string) (models.ConversationKind, error) {
	kind := models.ConversationKind(t)
	if !kind.Valid() {
		return "", fmt.Errorf("invalid item type %q: %w", t, chat.ErrBadRequest)
	}
	return kind, nil
}

func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, chat.ErrBadRequest)
	}
	return id, nil
}

func (h *ChatHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	kind, err := itemKind(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.Service.CreateItem(middleware.UserID(r), kind, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

func (h *ChatHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	kind, err := itemKind(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Service.AddMember(middleware.UserID(r), itemID, kind, req.Username); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *ChatHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	kind, err := itemKind(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, err)
		return
	}

	members, err := h.Service.ListMembers(middleware.UserID(r), itemID, kind)
	if err != nil {
		writeError(w, err)
		return
	}
	if members == nil {
		members = []models.User{}
	}
	json.NewEncoder(w).Encode(members)
}

func (h *ChatHandler) ManageItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req ManageItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	kind, err := itemKind(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	item, err := h.Service.ManageItem(middleware.UserID(r), itemID, kind, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(item)
}

func (h *ChatHandler) ManageMemberRole(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	targetID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req ManageRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	kind, err := itemKind(req.Type)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Service.ManageMemberRole(middleware.UserID(r), itemID, kind, targetID, req.Permissions); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *ChatHandler) AttachBot(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req AttachBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Service.AttachBot(middleware.UserID(r), itemID, models.KindGroup, req.Username); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SendMessage accepts a multipart form (type, id, text, optional file) so a
// file can ride along with the text.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	} else if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	target, err := parseTarget(r.FormValue("type"), r.FormValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var upload *chat.FileUpload
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		upload = &chat.FileUpload{Name: header.Filename, Data: file}
	}

	msg, err := h.Service.Send(middleware.UserID(r), target, r.FormValue("text"), upload)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	target, err := parseTarget(r.URL.Query().Get("type"), r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	messages, err := h.Service.Fetch(middleware.UserID(r), target)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	json.NewEncoder(w).Encode(messages)
}

func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Service.SoftDelete(middleware.UserID(r), messageID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *ChatHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	var req AddContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	contact, err := h.Service.AddContact(middleware.UserID(r), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(contact)
}

func (h *ChatHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Service.ListContacts(middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if contacts == nil {
		contacts = []models.User{}
	}
	json.NewEncoder(w).Encode(contacts)
}

func (h *ChatHandler) FindUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.FindUser(mux.Vars(r)["username"])
	if err != nil {
		writeError(w, err)
		return
	}
	json.NewEncoder(w).Encode(user)
}

func (h *ChatHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		json.NewEncoder(w).Encode([]models.User{})
		return
	}

	users, err := h.Service.SearchUsers(query)
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	json.NewEncoder(w).Encode(users)
}

func parseTarget(targetType, id string) (models.Target, error) {
	targetID, err := strconv.Atoi(id)
	if err != nil {
		return models.Target{}, fmt.Errorf("invalid recipient id: %w", chat.ErrBadRequest)
	}
	switch t := models.TargetType(targetType); t {
	case models.TargetUser, models.TargetGroup, models.TargetChannel:
		return models.Target{Type: t, ID: targetID}, nil
	}
	return models.Target{}, fmt.Errorf("invalid recipient type %q: %w", targetType, chat.ErrBadRequest)
}
