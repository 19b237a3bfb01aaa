package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/poker-club/services"
)

type AdminHandler struct {
	responder
	auditService  services.AuditService
	healthService services.HealthService
}

func NewAdminHandler(as services.AuditService, hs services.HealthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{responder: responder{logger: logger}, auditService: as, healthService: hs}
}

// ListAuditLogs godoc
// @Summary Журнал действий администраторов
// @Tags admin
// @Produce json
// @Param action query string false "CREATE, UPDATE или DELETE"
// @Param entityType query string false "Player, Tournament или Participation"
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(20)
// @Success 200 {object} services.AuditLogList
// @Failure 422 {object} map[string]interface{} "Неизвестный фильтр"
// @Security BearerAuth
// @Router /admin/audit-logs [get]
func (h *AdminHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	page, limit, err := readPage(r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	list, err := h.auditService.ListAuditLogs(r.Context(), services.ListAuditLogsInput{
		Action:     query.Get("action"),
		EntityType: query.Get("entityType"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, list)
}

// DBHealth godoc
// @Summary Состояние базы данных
// @Tags admin
// @Produce json
// @Success 200 {object} services.HealthStatus
// @Failure 503 {object} services.HealthStatus
// @Router /admin/db-health [get]
func (h *AdminHandler) DBHealth(w http.ResponseWriter, r *http.Request) {
	status := h.healthService.Status(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	h.respond(w, r, code, status)
}
