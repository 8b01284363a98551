package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hoekwacht/hoekwacht/internal/common"
	"github.com/hoekwacht/hoekwacht/internal/model"
	"github.com/hoekwacht/hoekwacht/internal/service"
)

// CatchUpPoller runs an immediate, non-notifying poll for one search
// request so a freshly created request has results right away.
type CatchUpPoller interface {
	CatchUp(ctx context.Context, req *model.SearchRequest) (int, error)
}

// Handler carries the dependencies for all HTTP endpoints.
type Handler struct {
	storage    service.Storage
	poller     CatchUpPoller
	uploadsDir string
}

// NewHandler creates an API handler. poller may be nil, in which case new
// search requests wait for the next watcher tick instead of catching up.
func NewHandler(storage service.Storage, poller CatchUpPoller, uploadsDir string) *Handler {
	return &Handler{
		storage:    storage,
		poller:     poller,
		uploadsDir: uploadsDir,
	}
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createClientRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	WhatsApp string `json:"whatsapp"`
}

// CreateClient registers a new client.
func (h *Handler) CreateClient(c *gin.Context) {
	var body createClientRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := &model.Client{
		Name:     body.Name,
		Email:    body.Email,
		WhatsApp: body.WhatsApp,
	}
	if err := h.storage.CreateClient(c.Request.Context(), client); err != nil {
		h.storageError(c, err)
		return
	}

	c.JSON(http.StatusCreated, client)
}

// ListClients returns all clients.
func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.storage.ListClients(c.Request.Context())
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

// CreateSearchRequest registers a standing search. Accepts multipart form
// data so a reference photo can be attached for photo-based requests.
func (h *Handler) CreateSearchRequest(c *gin.Context) {
	clientID, err := strconv.ParseInt(c.PostForm("client_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id must be an integer"})
		return
	}

	side, ok := model.ParseCornerSide(c.PostForm("corner_side"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "corner_side must be 'left' or 'right'"})
		return
	}

	req := &model.SearchRequest{
		ClientID:           clientID,
		IsPhotoBased:       c.DefaultPostForm("is_photo_based", "true") == "true",
		CornerSide:         side,
		Color:              c.PostForm("color"),
		Fabric:             c.PostForm("fabric"),
		Shape:              c.PostForm("shape"),
		Dimensions:         c.PostForm("dimensions"),
		IncludeKeywordsCSV: c.PostForm("include_keywords_csv"),
		ExcludeKeywordsCSV: c.PostForm("exclude_keywords_csv"),
		TextQuery:          c.PostForm("text_query"),
		IsActive:           true,
	}

	for field, dst := range map[string]**int{
		"budget":          &req.Budget,
		"max_distance_km": &req.MaxDistanceKM,
		"min_price":       &req.MinPrice,
		"max_price":       &req.MaxPrice,
	} {
		if raw := c.PostForm(field); raw != "" {
			v, convErr := strconv.Atoi(raw)
			if convErr != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": field + " must be an integer"})
				return
			}
			*dst = &v
		}
	}

	if file, fileErr := c.FormFile("photo"); fileErr == nil {
		dir := h.uploadsDir
		if dir == "" {
			dir = "uploads"
		}
		if mkErr := os.MkdirAll(dir, 0750); mkErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store photo"})
			return
		}
		path := filepath.Join(dir, filepath.Base(file.Filename))
		if saveErr := c.SaveUploadedFile(file, path); saveErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store photo"})
			return
		}
		req.PhotoPath = path
	}

	if err := h.storage.CreateSearchRequest(c.Request.Context(), req); err != nil {
		h.storageError(c, err)
		return
	}

	// Initial catch-up poll so the new request has results immediately.
	// No alerts go out for these: they are not newly discovered, the
	// request is.
	if h.poller != nil {
		if _, pollErr := h.poller.CatchUp(c.Request.Context(), req); pollErr != nil {
			slog.Error("Catch-up poll failed",
				"search_request_id", req.ID,
				"error", pollErr)
		}
	}

	c.JSON(http.StatusCreated, req)
}

// ListSearchRequests returns all search requests.
func (h *Handler) ListSearchRequests(c *gin.Context) {
	requests, err := h.storage.ListSearchRequests(c.Request.Context())
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

// ListResults returns one search request's results, filtered by any of the
// supported query parameters.
func (h *Handler) ListResults(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var filter service.ResultFilter

	if raw := c.Query("min_match_percent"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_match_percent must be a number"})
			return
		}
		filter.MinMatchPercent = &v
	}
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_price must be an integer"})
			return
		}
		filter.MaxPrice = &v
	}
	if raw := c.Query("max_distance_km"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_distance_km must be an integer"})
			return
		}
		filter.MaxDistanceKM = &v
	}
	if raw := c.Query("corner_side"); raw != "" {
		side, sideOK := model.ParseCornerSide(raw)
		if !sideOK {
			c.JSON(http.StatusBadRequest, gin.H{"error": "corner_side must be 'left' or 'right'"})
			return
		}
		filter.CornerSide = &side
	}
	if raw := c.Query("status"); raw != "" {
		status, statusOK := model.ParseResultStatus(raw)
		if !statusOK {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		filter.Status = &status
	}

	results, err := h.storage.ListResults(c.Request.Context(), id, filter)
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ActivateSearchRequest resumes polling for a request.
func (h *Handler) ActivateSearchRequest(c *gin.Context) {
	h.setActive(c, true)
}

// DeactivateSearchRequest pauses polling for a request.
func (h *Handler) DeactivateSearchRequest(c *gin.Context) {
	h.setActive(c, false)
}

func (h *Handler) setActive(c *gin.Context, active bool) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.storage.SetSearchRequestActive(c.Request.Context(), id, active); err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "is_active": active})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateResultStatus moves a result through the reviewing workflow.
func (h *Handler) UpdateResultStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	var body updateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, statusOK := model.ParseResultStatus(body.Status)
	if !statusOK {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	if err := h.storage.UpdateResultStatus(c.Request.Context(), id, status, body.Notes); err != nil {
		h.storageError(c, err)
		return
	}

	result, err := h.storage.GetResult(c.Request.Context(), id)
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ForwardResult flags a result as forwarded to the client.
func (h *Handler) ForwardResult(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	if err := h.storage.MarkResultForwarded(c.Request.Context(), id); err != nil {
		h.storageError(c, err)
		return
	}

	result, err := h.storage.GetResult(c.Request.Context(), id)
	if err != nil {
		h.storageError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *Handler) storageError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	slog.Error("Storage error", "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
