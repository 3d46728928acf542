package recommendations

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"recommendations-service/internal/shared/server/respond"
)

// Query keys that would filter by target product. Search rejects them.
var targetFilterKeys = []string{"product_target", "product-target", "target", "target-id"}

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	rg := r.Group("/recommendations")
	rg.POST("", h.create)
	rg.GET("", h.search)
	rg.DELETE("/reset", h.reset)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.PUT("/:id/dislike", h.dislike)
}

func (h *Handler) create(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	rec, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("recommendationId", rec.ID)
	respond.Created(c, fmt.Sprintf("/recommendations/%d", rec.ID), toResponse(rec))
}

func (h *Handler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rec, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(rec))
}

func (h *Handler) update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := bindInput(c)
	if !ok {
		return
	}
	rec, err := h.Svc.Update(c.Request.Context(), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(rec))
}

func (h *Handler) delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		// A non-numeric id names nothing, so there is nothing to delete.
		respond.NoContent(c)
		return
	}
	c.Set("recommendationId", id)
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) dislike(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	rec, err := h.Svc.Dislike(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponse(rec))
}

func (h *Handler) search(c *gin.Context) {
	for _, key := range targetFilterKeys {
		if _, ok := c.GetQuery(key); ok {
			respond.Error(c, http.StatusBadRequest, "unsupported_filter", "filtering by product_target is not supported", nil)
			return
		}
	}

	var filter Filter
	origin := firstQuery(c, "product-id", "product_origin")
	if origin != "" {
		v, err := strconv.ParseInt(origin, 10, 64)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "product-id must be an integer", nil)
			return
		}
		filter.ProductOrigin = &v
	}
	if raw := strings.TrimSpace(c.Query("relation")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "relation must be an integer", nil)
			return
		}
		rel := Relation(v)
		filter.Relation = &rel
	}

	recs, err := h.Svc.Search(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, toResponses(recs))
}

func (h *Handler) reset(c *gin.Context) {
	if err := h.Svc.Reset(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func bindInput(c *gin.Context) (Input, bool) {
	var in Input
	if c.ContentType() != gin.MIMEJSON {
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_media_type", "Content-Type must be application/json", nil)
		return in, false
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", bindMessage(err), nil)
		return in, false
	}
	return in, true
}

func bindMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return fmt.Sprintf("Invalid Recommendation: %s must be an integer", typeErr.Field)
	case errors.Is(err, io.EOF):
		return "Invalid Recommendation: body of request contained bad or no data"
	default:
		return "Invalid Recommendation: malformed JSON body"
	}
}

func pathID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", fmt.Sprintf("Recommendation with id '%s' was not found.", raw), nil)
		return 0, false
	}
	c.Set("recommendationId", id)
	return id, true
}

func firstQuery(c *gin.Context, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			return v
		}
	}
	return ""
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, ErrInvalidRelation):
		respond.Error(c, http.StatusBadRequest, "invalid_relation", err.Error(), nil)
	case errors.Is(err, ErrValidation):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected server error", nil)
	}
}
