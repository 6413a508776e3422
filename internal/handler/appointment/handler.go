package appointment

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medagenda/scheduler-api/internal/model"
	"github.com/medagenda/scheduler-api/internal/service/appointment"
	apperrors "github.com/medagenda/scheduler-api/pkg/errors"
	"github.com/medagenda/scheduler-api/pkg/httputil"
)

type Handler struct {
	service *appointment.Service
}

func NewHandler(service *appointment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.GET("/availability", h.GetAvailability)
		appointments.GET("/calendar", h.GetMonthCalendar)
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.PUT("/:id/reschedule", h.RescheduleAppointment)
		appointments.PUT("/:id/cancel", h.CancelAppointment)
		appointments.DELETE("/:id", h.DeleteAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.Schedule(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusCreated, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, apt)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filters := &model.AppointmentFilters{}

	if id := c.Query("doctor_id"); id != "" {
		doctorID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", err))
			return
		}
		filters.DoctorID = doctorID
	}

	if id := c.Query("patient_id"); id != "" {
		patientID, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
			return
		}
		filters.PatientID = patientID
	}

	if status := c.Query("status"); status != "" {
		filters.Status = model.AppointmentStatus(status)
	}

	if date := c.Query("start_date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid start_date format, expected YYYY-MM-DD", err))
			return
		}
		filters.StartDate = parsed
	}

	if date := c.Query("end_date"); date != "" {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid end_date format, expected YYYY-MM-DD", err))
			return
		}
		filters.EndDate = parsed.Add(24 * time.Hour)
	}

	appointments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, appointments)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, apt)
}

func (h *Handler) RescheduleAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.Reschedule(c.Request.Context(), id, req.StartTime)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, apt)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	var req model.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	apt, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, apt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid appointment ID", err))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, nil)
}

func (h *Handler) GetAvailability(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", err))
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid date format, expected YYYY-MM-DD", err))
		return
	}

	slots, err := h.service.Availability(c.Request.Context(), doctorID, date)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, slots)
}

func (h *Handler) GetMonthCalendar(c *gin.Context) {
	now := time.Now()

	year := now.Year()
	if y := c.Query("year"); y != "" {
		parsed, err := time.Parse("2006", y)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid year", err))
			return
		}
		year = parsed.Year()
	}

	month := int(now.Month())
	if m := c.Query("month"); m != "" {
		parsed, err := time.Parse("1", m)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid month", err))
			return
		}
		month = int(parsed.Month())
	}

	var doctorID uuid.UUID
	if id := c.Query("doctor_id"); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid doctor ID", err))
			return
		}
		doctorID = parsed
	}

	cal, err := h.service.MonthCalendar(c.Request.Context(), doctorID, year, month)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, http.StatusOK, cal)
}
