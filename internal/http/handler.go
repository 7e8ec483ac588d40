package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/rodify-dispatch/internal/http/middleware"
	"github.com/nurpe/rodify-dispatch/internal/model"
	"github.com/nurpe/rodify-dispatch/internal/service"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

type Services struct {
	Lifecycle   *service.LifecycleService
	Pricing     *service.PricingService
	Technicians *service.TechnicianService
	Reports     *service.ReportService
	System      *service.SystemService
}

type Handler struct {
	lifecycle   *service.LifecycleService
	pricing     *service.PricingService
	technicians *service.TechnicianService
	reports     *service.ReportService
	system      *service.SystemService
	log         zerolog.Logger
	now         func() time.Time
}

func NewHandler(services Services, log zerolog.Logger) *Handler {
	return &Handler{
		lifecycle:   services.Lifecycle,
		pricing:     services.Pricing,
		technicians: services.Technicians,
		reports:     services.Reports,
		system:      services.System,
		log:         log,
		now:         time.Now,
	}
}

func (h *Handler) Register(router *gin.Engine) {
	router.GET("/health", h.health)

	services := router.Group("/services")
	services.POST("", h.createService)
	services.POST("/quote", h.quote)
	services.GET("/export", h.exportServices)
	services.GET("/:code", h.getService)
	services.GET("/:code/events", h.serviceEvents)
	services.GET("/:code/receipt", h.serviceReceipt)
	services.POST("/:code/accept", h.acceptService)
	services.POST("/:code/status", h.updateStatus)

	router.GET("/technicians/available", h.availableTechnicians)
	router.GET("/pricing/rules", h.pricingRules)
	router.GET("/system/demo-users", h.demoUsers)
}

type locationRequest struct {
	Lat     *float64 `json:"lat" binding:"required"`
	Lng     *float64 `json:"lng" binding:"required"`
	Address *string  `json:"address"`
	Zone    string   `json:"zone" binding:"required"`
}

type createServiceRequest struct {
	CustomerID    int64           `json:"customer_id" binding:"required"`
	ServiceType   string          `json:"service_type" binding:"required"`
	Location      locationRequest `json:"location"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
}

func (h *Handler) createService(c *gin.Context) {
	var req createServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	serviceType, err := model.ParseServiceType(req.ServiceType)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_input", "invalid service_type")
		return
	}
	zone, err := model.ParseZone(req.Location.Zone)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_input", "invalid location.zone")
		return
	}

	svc, err := h.lifecycle.Create(c.Request.Context(), service.CreateServiceInput{
		CustomerID:    req.CustomerID,
		ServiceType:   serviceType,
		Zone:          zone,
		Lat:           *req.Location.Lat,
		Lng:           *req.Location.Lng,
		Address:       trimmedPtr(req.Location.Address),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":           svc.ID,
		"code":         svc.Code,
		"status":       svc.Status,
		"quoted_price": svc.QuotedPrice,
	})
}

func (h *Handler) getService(c *gin.Context) {
	svc, err := h.lifecycle.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *Handler) serviceEvents(c *gin.Context) {
	events, err := h.lifecycle.History(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) serviceReceipt(c *gin.Context) {
	result, err := h.reports.GenerateReceipt(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, pdfContentType, result.Content)
}

type acceptServiceRequest struct {
	TechnicianID *int64 `json:"technician_id"`
}

// acceptService reads technician_id from the query string or the JSON body.
func (h *Handler) acceptService(c *gin.Context) {
	var technicianID int64
	if raw, ok := c.GetQuery("technician_id"); ok {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_input", "invalid technician_id")
			return
		}
		technicianID = id
	} else {
		var req acceptServiceRequest
		if hasBody(c) {
			if err := c.ShouldBindJSON(&req); err != nil {
				writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
				return
			}
		}
		if req.TechnicianID == nil {
			writeError(c, http.StatusBadRequest, "invalid_input", "technician_id is required")
			return
		}
		technicianID = *req.TechnicianID
	}

	svc, err := h.lifecycle.Accept(c.Request.Context(), c.Param("code"), technicianID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":            true,
		"code":          svc.Code,
		"status":        svc.Status,
		"technician_id": svc.TechnicianID,
	})
}

type updateStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// updateStatus accepts status and notes as a JSON body or as query params.
func (h *Handler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if hasBody(c) {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
			return
		}
	}
	if req.Status == "" {
		req.Status = c.Query("status")
	}
	if req.Notes == nil {
		if notes, ok := c.GetQuery("notes"); ok {
			req.Notes = &notes
		}
	}

	status, err := model.ParseServiceStatus(req.Status)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_input", "invalid status")
		return
	}

	svc, err := h.lifecycle.UpdateStatus(c.Request.Context(), c.Param("code"), status, req.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":     true,
		"code":   svc.Code,
		"status": svc.Status,
	})
}

type quoteRequest struct {
	ServiceType string `json:"service_type" binding:"required"`
	Zone        string `json:"zone" binding:"required"`
	DateTimeISO string `json:"date_time_iso"`
	IsHoliday   bool   `json:"is_holiday"`
}

func (h *Handler) quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}

	serviceType, err := model.ParseServiceType(req.ServiceType)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_input", "invalid service_type")
		return
	}
	zone, err := model.ParseZone(req.Zone)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_input", "invalid zone")
		return
	}

	at := h.now()
	if strings.TrimSpace(req.DateTimeISO) != "" {
		at, err = parseDateTime(req.DateTimeISO, h.pricing.Location())
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_input", "invalid date_time_iso")
			return
		}
	}

	quote, err := h.pricing.Quote(c.Request.Context(), serviceType, zone, at, req.IsHoliday)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"price":    quote.Price,
		"currency": quote.Currency,
		"at":       quote.At.Format(time.RFC3339),
	})
}

func (h *Handler) exportServices(c *gin.Context) {
	start, err := parseDate(c.Query("from"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_input", "invalid from")
		return
	}
	end, err := parseDate(c.Query("to"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_input", "invalid to")
		return
	}

	input := service.ExportServicesInput{PeriodStart: start, PeriodEnd: end}
	if raw := c.Query("zone"); raw != "" {
		zone, err := model.ParseZone(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_input", "invalid zone")
			return
		}
		input.Zone = &zone
	}
	if raw := c.Query("status"); raw != "" {
		status, err := model.ParseServiceStatus(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "invalid_input", "invalid status")
			return
		}
		input.Status = &status
	}

	result, err := h.reports.ExportServices(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}

type technicianResponse struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Phone  string   `json:"phone"`
	Zones  []string `json:"zones"`
	Online bool     `json:"online"`
}

func (h *Handler) availableTechnicians(c *gin.Context) {
	zone, err := model.ParseZone(c.Query("zone"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_input", "invalid zone")
		return
	}

	technicians, err := h.technicians.ListAvailable(c.Request.Context(), zone)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := make([]technicianResponse, 0, len(technicians))
	for _, tech := range technicians {
		resp = append(resp, technicianResponse{
			ID:     tech.ID,
			Name:   tech.Name,
			Phone:  tech.Phone,
			Zones:  tech.ZoneList(),
			Online: tech.Online,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) pricingRules(c *gin.Context) {
	rules, err := h.pricing.ListRules(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

type contactResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (h *Handler) demoUsers(c *gin.Context) {
	demo, err := h.system.DemoUsers(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeError(c, http.StatusNotFound, "not_found", "demo users are not seeded")
			return
		}
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customer": contactResponse{
			ID:    demo.Customer.ID,
			Name:  demo.Customer.Name,
			Phone: demo.Customer.Phone,
		},
		"technician": contactResponse{
			ID:    demo.Technician.ID,
			Name:  demo.Technician.Name,
			Phone: demo.Technician.Phone,
		},
	})
}

func (h *Handler) health(c *gin.Context) {
	if err := h.system.Health(c.Request.Context()); err != nil {
		h.log.Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, service.ErrCustomerNotFound):
		writeError(c, http.StatusBadRequest, "customer_not_found", err.Error())
	case errors.Is(err, service.ErrTechnicianNotFound):
		writeError(c, http.StatusBadRequest, "technician_not_found", err.Error())
	case errors.Is(err, service.ErrServiceNotFound):
		writeError(c, http.StatusNotFound, "service_not_found", err.Error())
	case errors.Is(err, service.ErrPricingRuleNotFound):
		writeError(c, http.StatusUnprocessableEntity, "pricing_rule_not_found", err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	default:
		h.log.Error().
			Err(err).
			Str("request_id", middleware.RequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		writeError(c, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": message, "code": code})
}

func hasBody(c *gin.Context) bool {
	return c.Request.Body != nil && c.Request.Body != http.NoBody && c.Request.ContentLength != 0
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

// parseDateTime reads an RFC 3339 timestamp, or a naive one taken as wall
// clock time in loc. A bare date means midnight.
func parseDateTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return parsed, nil
	}
	layouts := []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if parsed, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
