package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/poker-club/services"
)

type StatisticsHandler struct {
	responder
	statisticsService services.StatisticsService
}

func NewStatisticsHandler(ss services.StatisticsService, logger *slog.Logger) *StatisticsHandler {
	return &StatisticsHandler{responder: responder{logger: logger}, statisticsService: ss}
}

// Scoreboard godoc
// @Summary Рейтинг игроков
// @Tags scoreboard
// @Description Порядок: очки, число турниров, баунти (по убыванию), среднее место (по возрастанию), имя.
// @Produce json
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(20)
// @Success 200 {object} services.Scoreboard
// @Router /scoreboard [get]
func (h *StatisticsHandler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	page, limit, err := readPage(r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	board, err := h.statisticsService.Scoreboard(r.Context(), page, limit)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, board)
}

// ClubStatistics godoc
// @Summary Статистика клуба
// @Tags scoreboard
// @Produce json
// @Success 200 {object} models.ClubStatistics
// @Router /statistics [get]
func (h *StatisticsHandler) ClubStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statisticsService.ClubStatistics(r.Context())
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, stats)
}
