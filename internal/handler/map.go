package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/middleware"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/service"
)

// imageField is the multipart form field carrying map screenshots.
const imageField = "images"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// MapHandler handles map CRUD and like endpoints.
type MapHandler struct {
	maps        *service.MapService
	maxFiles    int
	maxFileSize int64
}

// MapHandlerConfig holds configuration for the map handler
type MapHandlerConfig struct {
	Maps        *service.MapService
	MaxFiles    int
	MaxFileSize int64
}

// NewMapHandler creates a new map handler
func NewMapHandler(cfg MapHandlerConfig) *MapHandler {
	return &MapHandler{
		maps:        cfg.Maps,
		maxFiles:    cfg.MaxFiles,
		maxFileSize: cfg.MaxFileSize,
	}
}

// ListMaps handles GET /api/public/maps - paginated browse with
// filters. Login is optional; a viewer's likes annotate the page.
func (h *MapHandler) ListMaps(w http.ResponseWriter, r *http.Request) {
	query := model.ListMapsQuery{
		Category: r.URL.Query().Get("category"),
		Query:    r.URL.Query().Get("query"),
		Sort:     r.URL.Query().Get("sort"),
		Page:     1,
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, invalidInputs())
			return
		}
		query.Page = page
	}
	if err := model.Validate(&query); err != nil {
		WriteError(w, invalidInputs())
		return
	}

	page, err := h.maps.ListMaps(r.Context(), &query, middleware.CurrentUser(r.Context()))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, page)
}

// GetMap handles GET /api/public/maps/{mapId}
func (h *MapHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	mapID := r.PathValue("mapId")
	if mapID == "" {
		WriteError(w, invalidInputs())
		return
	}

	view, err := h.maps.GetMap(r.Context(), mapID, middleware.CurrentUser(r.Context()))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"map": view})
}

// CreateMap handles POST /api/maps - multipart form with text fields
// plus up to maxFiles screenshot files.
func (h *MapHandler) CreateMap(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	// Allow headroom over the per-file cap for the text fields.
	limit := int64(h.maxFiles)*h.maxFileSize + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		WriteError(w, model.NewValidationError(http.StatusBadRequest, "Invalid form data."))
		return
	}

	req := model.CreateMapRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Code:        r.FormValue("code"),
		Category:    r.FormValue("category"),
	}
	if err := model.Validate(&req); err != nil {
		WriteError(w, invalidInputs())
		return
	}

	files, apiErr := h.readImages(r)
	if apiErr != nil {
		WriteError(w, apiErr)
		return
	}

	view, err := h.maps.CreateMap(r.Context(), user, &req, files)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{"map": view})
}

// UpdateMap handles PATCH /api/maps/{mapId}
func (h *MapHandler) UpdateMap(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	mapID := r.PathValue("mapId")

	var req model.UpdateMapRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, invalidInputs())
		return
	}
	if req.Empty() {
		WriteError(w, invalidInputs())
		return
	}
	if err := model.Validate(&req); err != nil {
		WriteError(w, invalidInputs())
		return
	}

	view, err := h.maps.UpdateMap(r.Context(), user, mapID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"map": view})
}

// DeleteMap handles DELETE /api/maps/{mapId}
func (h *MapHandler) DeleteMap(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	mapID := r.PathValue("mapId")

	if err := h.maps.DeleteMap(r.Context(), user, mapID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteMessage(w, http.StatusOK, "Deleted map.")
}

// LikeMap handles POST /api/maps/{mapId}/like
func (h *MapHandler) LikeMap(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	mapID := r.PathValue("mapId")

	if err := h.maps.Like(r.Context(), user, mapID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteMessage(w, http.StatusOK, "Map liked.")
}

// UnlikeMap handles DELETE /api/maps/{mapId}/like
func (h *MapHandler) UnlikeMap(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	mapID := r.PathValue("mapId")

	if err := h.maps.Unlike(r.Context(), user, mapID); err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteMessage(w, http.StatusOK, "Map unliked.")
}

// readImages drains the uploaded screenshot files, enforcing count,
// size, and content-type limits.
func (h *MapHandler) readImages(r *http.Request) ([][]byte, *model.APIError) {
	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File[imageField]
	}
	// A submission without screenshots is an invalid payload, same as
	// a missing title.
	if len(headers) == 0 {
		return nil, invalidInputs()
	}
	if len(headers) > h.maxFiles {
		return nil, model.NewValidationError(http.StatusBadRequest,
			"Too many files uploaded, maximum is "+strconv.Itoa(h.maxFiles)+".")
	}

	files := make([][]byte, 0, len(headers))
	for _, header := range headers {
		if header.Size > h.maxFileSize {
			return nil, model.NewValidationError(http.StatusBadRequest, "File too large, maximum size is 1MB.")
		}

		file, err := header.Open()
		if err != nil {
			return nil, model.NewValidationError(http.StatusBadRequest, "Invalid form data.")
		}
		data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
		file.Close()
		if err != nil || int64(len(data)) > h.maxFileSize {
			return nil, model.NewValidationError(http.StatusBadRequest, "File too large, maximum size is 1MB.")
		}

		if !allowedImageTypes[http.DetectContentType(data)] {
			return nil, model.NewValidationError(http.StatusBadRequest,
				"Invalid file type, only JPEG, PNG and GIF are allowed.")
		}
		files = append(files, data)
	}
	return files, nil
}
