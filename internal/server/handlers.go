package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"docchat/internal/domain"
	"docchat/internal/logger"
)

const previewLen = 200

type errorResponse struct {
	Error string `json:"error"`
}

func jsonError(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type uploadResponse struct {
	DocID       string `json:"docId"`
	Filename    string `json:"filename"`
	ChunksCount int    `json:"chunksCount"`
	Preview     string `json:"preview"`
}

func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "No file provided")
	}

	var doc domain.Document
	data, err := s.readUpload(fh)
	if err == nil {
		contentType := fh.Header.Get("Content-Type")
		doc, err = s.ingestor.IngestFile(c.Request().Context(), fh.Filename, contentType, data, owner(c))
	}
	switch {
	case errors.Is(err, domain.ErrFileTooLarge):
		return jsonError(c, http.StatusBadRequest, fmt.Sprintf("File too large (max %d MB)", s.maxUpload/(1024*1024)))
	case errors.Is(err, domain.ErrUnsupportedType):
		return jsonError(c, http.StatusBadRequest, "Only PDF and plain text files are supported")
	case errors.Is(err, domain.ErrEmptyDocument):
		return jsonError(c, http.StatusBadRequest, "No text could be extracted from the file")
	case err != nil:
		logger.Warn("upload %s: %v", fh.Filename, err)
		return jsonError(c, http.StatusInternalServerError, "Upload failed")
	}

	return c.JSON(http.StatusOK, uploadResponse{
		DocID:       doc.ID,
		Filename:    doc.Filename,
		ChunksCount: len(doc.Chunks),
		Preview:     preview(doc.FullText),
	})
}

// readUpload reads the multipart file, enforcing the configured size cap on
// both the declared size and the actual bytes read.
func (s *Server) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > s.maxUpload {
		return nil, domain.ErrFileTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxUpload {
		return nil, domain.ErrFileTooLarge
	}
	return data, nil
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen]) + "…"
}

type chatRequest struct {
	Messages []domain.Message `json:"messages"`
	DocIDs   []string         `json:"docIds"`
}

// handleChat streams the model's answer as server-sent events. Each delta is
// one `data:` line carrying a JSON string; the stream ends with [DONE].
func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil || req.Messages == nil {
		return jsonError(c, http.StatusBadRequest, "messages required")
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	writeDelta := func(delta string) error {
		payload, err := json.Marshal(delta)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(res, "data: %s\n\n", payload); err != nil {
			return err
		}
		res.Flush()
		return nil
	}

	if err := s.chatter.Stream(c.Request().Context(), req.Messages, req.DocIDs, owner(c), writeDelta); err != nil {
		logger.Warn("chat stream: %v", err)
		fmt.Fprintf(res, "data: %s\n\n", sseError(err))
		res.Flush()
		return nil
	}

	fmt.Fprint(res, "data: [DONE]\n\n")
	res.Flush()
	return nil
}

func sseError(err error) []byte {
	payload, _ := json.Marshal(map[string]string{"error": err.Error()})
	return payload
}

func (s *Server) handleListDocuments(c echo.Context) error {
	who := owner(c)
	if who == "" {
		return jsonError(c, http.StatusUnauthorized, "Sign in to list documents")
	}
	docs, err := s.docs.ListDocs(c.Request().Context(), who)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to list documents")
	}
	if docs == nil {
		docs = []domain.DocInfo{}
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleDeleteDocument(c echo.Context) error {
	who := owner(c)
	if who == "" {
		return jsonError(c, http.StatusUnauthorized, "Sign in to delete documents")
	}
	if err := s.docs.Delete(c.Request().Context(), c.Param("id"), who); err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to delete document")
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleListChats(c echo.Context) error {
	who := owner(c)
	if who == "" {
		return jsonError(c, http.StatusUnauthorized, "Sign in to list chats")
	}
	chats, err := s.chats.List(c.Request().Context(), who)
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to list chats")
	}
	if chats == nil {
		chats = []domain.ChatInfo{}
	}
	return c.JSON(http.StatusOK, map[string]any{"chats": chats})
}

type saveChatRequest struct {
	ChatID   string           `json:"chatId"`
	Title    string           `json:"title"`
	Messages []domain.Message `json:"messages"`
}

func (s *Server) handleSaveChat(c echo.Context) error {
	who := owner(c)
	if who == "" {
		return jsonError(c, http.StatusUnauthorized, "Sign in to save chats")
	}
	var req saveChatRequest
	if err := c.Bind(&req); err != nil || req.ChatID == "" || req.Messages == nil {
		return jsonError(c, http.StatusBadRequest, "chatId and messages required")
	}
	if err := s.chats.Save(c.Request().Context(), who, req.ChatID, req.Title, req.Messages); err != nil {
		logger.Warn("save chat %s: %v", req.ChatID, err)
		return jsonError(c, http.StatusInternalServerError, "Failed to save chat")
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGetChat(c echo.Context) error {
	who := owner(c)
	if who == "" {
		return jsonError(c, http.StatusUnauthorized, "Sign in to view chats")
	}
	chat, err := s.chats.Get(c.Request().Context(), who, c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		return jsonError(c, http.StatusNotFound, "Chat not found")
	}
	if err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to load chat")
	}
	return c.JSON(http.StatusOK, map[string]any{"chat": chat})
}

func (s *Server) handleDeleteChat(c echo.Context) error {
	who := owner(c)
	if who == "" {
		return jsonError(c, http.StatusUnauthorized, "Sign in to delete chats")
	}
	if err := s.chats.Delete(c.Request().Context(), who, c.Param("id")); err != nil {
		return jsonError(c, http.StatusInternalServerError, "Failed to delete chat")
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
