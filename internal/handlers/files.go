package handlers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"filevault/internal/media/sniffer"
	"filevault/internal/models"
	"filevault/internal/service"
)

type uploadFileRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Data     string `json:"data"`
	ParentID any    `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
}

type fileResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID any    `json:"parentId"`
}

func newFileResponse(file models.File) fileResponse {
	// Root is rendered as the number 0, folder parents as their id.
	var parent any = file.ParentID
	if file.ParentID == models.RootParentID {
		parent = 0
	}
	return fileResponse{
		ID:       file.ID,
		UserID:   file.UserID,
		Name:     file.Name,
		Type:     string(file.Type),
		IsPublic: file.IsPublic,
		ParentID: parent,
	}
}

// normalizeParentID accepts the wire forms clients send for parentId:
// absent, the number 0, or a record id string.
func normalizeParentID(v any) string {
	switch parent := v.(type) {
	case nil:
		return models.RootParentID
	case string:
		if parent == "" {
			return models.RootParentID
		}
		return parent
	case float64:
		if parent == 0 {
			return models.RootParentID
		}
		return strconv.FormatFloat(parent, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", parent)
	}
}

func (h HandlerSet) UploadFile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req uploadFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing name"})
		return
	}

	file, err := h.uploads.Upload(c.Request.Context(), service.UploadInput{
		OwnerID:  user.ID,
		Name:     req.Name,
		Type:     req.Type,
		Data:     req.Data,
		ParentID: normalizeParentID(req.ParentID),
		IsPublic: req.IsPublic,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing name"})
		case errors.Is(err, service.ErrMissingType):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing type"})
		case errors.Is(err, service.ErrMissingData):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing data"})
		case errors.Is(err, service.ErrParentNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent not found"})
		case errors.Is(err, service.ErrParentNotFolder):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parent is not a folder"})
		default:
			h.log.Error().Err(err).Str("user_id", user.ID).Msg("upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		}
		return
	}

	c.JSON(http.StatusCreated, newFileResponse(file))
}

func (h HandlerSet) ShowFile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	file, err := h.files.Show(c.Request.Context(), user.ID, c.Param("id"))
	if err != nil {
		h.respondFileError(c, err)
		return
	}

	c.JSON(http.StatusOK, newFileResponse(file))
}

func (h HandlerSet) ListFiles(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page := 0
	if v, err := strconv.Atoi(c.DefaultQuery("page", "0")); err == nil {
		page = v
	}

	files, err := h.files.List(c.Request.Context(), user.ID, c.Query("parentId"), page)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	resp := make([]fileResponse, 0, len(files))
	for _, file := range files {
		resp = append(resp, newFileResponse(file))
	}
	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) PublishFile(c *gin.Context) {
	h.setPublic(c, true)
}

func (h HandlerSet) UnpublishFile(c *gin.Context) {
	h.setPublic(c, false)
}

func (h HandlerSet) setPublic(c *gin.Context, isPublic bool) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	file, err := h.files.SetPublic(c.Request.Context(), user.ID, c.Param("id"), isPublic)
	if err != nil {
		h.respondFileError(c, err)
		return
	}

	c.JSON(http.StatusOK, newFileResponse(file))
}

func (h HandlerSet) DownloadFile(c *gin.Context) {
	// Token is optional here; an invalid one just means anonymous.
	callerID := ""
	if token := c.GetHeader("X-Token"); token != "" {
		if userID, err := h.auth.Resolve(c.Request.Context(), token); err == nil {
			callerID = userID
		}
	}

	file, data, err := h.files.Download(c.Request.Context(), callerID, c.Param("id"), c.Query("size"))
	if err != nil {
		h.respondFileError(c, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(file.Name))
	if contentType == "" {
		contentType = sniffer.DetectMIME(data)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Data(http.StatusOK, contentType, data)
}

func (h HandlerSet) respondFileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrFolderNoContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "A folder doesn't have content"})
	default:
		h.log.Error().Err(err).Msg("file request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
	}
}
