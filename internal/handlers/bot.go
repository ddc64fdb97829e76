package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pliu/courier/internal/bots"
	"github.com/pliu/courier/internal/middleware"
	"github.com/pliu/courier/internal/models"
)

type BotHandler struct {
	Registry *bots.Registry
}

type CreateBotRequest struct {
	Username string `json:"username"`
}

type AddScriptRequest struct {
	Trigger  string `json:"trigger"`
	Response string `json:"response"`
}

// CreateBot returns the bot's token in the response body. This is the only
// time the token is ever exposed.
func (h *BotHandler) CreateBot(w http.ResponseWriter, r *http.Request) {
	var req CreateBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	bot, err := h.Registry.CreateBot(middleware.UserID(r), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"username": bot.Username,
		"token":    bot.Token,
	})
}

func (h *BotHandler) ListBots(w http.ResponseWriter, r *http.Request) {
	list, err := h.Registry.ListBots(middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []models.Bot{}
	}
	json.NewEncoder(w).Encode(list)
}

func (h *BotHandler) ListScripts(w http.ResponseWriter, r *http.Request) {
	botID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	scripts, err := h.Registry.ListScripts(middleware.UserID(r), botID)
	if err != nil {
		writeError(w, err)
		return
	}
	if scripts == nil {
		scripts = []models.BotScript{}
	}
	json.NewEncoder(w).Encode(scripts)
}

func (h *BotHandler) AddScript(w http.ResponseWriter, r *http.Request) {
	botID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req AddScriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	script, err := h.Registry.AddScript(middleware.UserID(r), botID, req.Trigger, req.Response)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(script)
}

func (h *BotHandler) DeleteScript(w http.ResponseWriter, r *http.Request) {
	scriptID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.Registry.DeleteScript(middleware.UserID(r), scriptID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
