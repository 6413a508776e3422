package clinic

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medagenda/scheduler-api/internal/service/clinic"
	apperrors "github.com/medagenda/scheduler-api/pkg/errors"
	"github.com/medagenda/scheduler-api/pkg/httputil"
)

type Handler struct {
	service *clinic.Service
}

func NewHandler(service *clinic.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	clinics := r.Group("/clinics")
	{
		clinics.GET("", h.ListClinics)
		clinics.GET("/:id", h.GetClinic)
	}
}

func (h *Handler) GetClinic(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid clinic ID", err))
		return
	}

	cl, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, cl)
}

func (h *Handler) ListClinics(c *gin.Context) {
	clinics, err := h.service.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, clinics)
}
