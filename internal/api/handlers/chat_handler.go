package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/princekumar9234/DarkBot/internal/api/middlewares"
	"github.com/princekumar9234/DarkBot/internal/core"
	"github.com/princekumar9234/DarkBot/internal/services"
)

const (
	maxAttachments   = 5
	maxAttachmentLen = 10 << 20 // 10 MB per file
)

// ChatHandler serves the send-message workflow and chat CRUD.
type ChatHandler struct {
	chats *services.ChatService
}

func NewChatHandler(chats *services.ChatService) *ChatHandler {
	return &ChatHandler{chats: chats}
}

type sendRequest struct {
	Message    string `json:"message"`
	ChatID     string `json:"chatId"`
	AIProvider string `json:"aiProvider"`
}

// Send accepts either a JSON body or a multipart form with up to five file
// attachments. Attachments are never stored: images go inline to the
// multimodal provider, text documents are extracted into the outbound prompt.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := middlewares.UserID(r.Context())
	if !ok {
		writeError(w, core.ErrInvalidToken)
		return
	}

	in := services.SendInput{UserID: userID}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := parseMultipartSend(r, &in); err != nil {
			writeError(w, err)
			return
		}
	} else {
		var req sendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, core.NewValidationError("invalid request body"))
			return
		}
		in.Message = req.Message
		in.ChatID = req.ChatID
		in.Provider = req.AIProvider
	}

	result, err := h.chats.SendMessage(r.Context(), in)
	if err != nil {
		writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success":  true,
		"chatId":   result.ChatID,
		"title":    result.Title,
		"response": result.Response,
		"provider": result.Provider,
	})
}

func parseMultipartSend(r *http.Request, in *services.SendInput) error {
	if err := r.ParseMultipartForm(maxAttachments * maxAttachmentLen); err != nil {
		return core.NewValidationError("invalid multipart form")
	}
	in.Message = r.FormValue("message")
	in.ChatID = r.FormValue("chatId")
	in.Provider = r.FormValue("aiProvider")

	files := r.MultipartForm.File["files"]
	if len(files) > maxAttachments {
		return core.NewValidationError("at most 5 files per message")
	}
	for _, fh := range files {
		if fh.Size > maxAttachmentLen {
			return core.NewValidationError("each file must be 10MB or smaller")
		}
		f, err := fh.Open()
		if err != nil {
			return core.NewValidationError("invalid file upload")
		}
		data, err := io.ReadAll(io.LimitReader(f, maxAttachmentLen+1))
		f.Close()
		if err != nil {
			return core.NewValidationError("invalid file upload")
		}
		if len(data) > maxAttachmentLen {
			return core.NewValidationError("each file must be 10MB or smaller")
		}
		in.Attachments = append(in.Attachments, &core.Attachment{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return nil
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	chats, err := h.chats.History(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "chats": chats})
}

func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	chat, err := h.chats.GetChat(r.Context(), chi.URLParam(r, "chatID"), userID)
	if err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "chat": chat})
}

func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	if err := h.chats.DeleteChat(r.Context(), chi.URLParam(r, "chatID"), userID); err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "Chat deleted successfully."})
}

func (h *ChatHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	userID, _ := middlewares.UserID(r.Context())
	if err := h.chats.ClearAll(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "All chats deleted successfully."})
}

// writeChatError rewords the generic not-found sentinel for chat endpoints.
// Ownership mismatches surface identically, so another user's chat ids are
// indistinguishable from ids that never existed.
func writeChatError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, envelope{"success": false, "message": "chat not found"})
		return
	}
	writeError(w, err)
}
