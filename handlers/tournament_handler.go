package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/poker-club/middleware"
	"github.com/Dosada05/poker-club/services"
)

type TournamentHandler struct {
	responder
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService, logger *slog.Logger) *TournamentHandler {
	return &TournamentHandler{responder: responder{logger: logger}, tournamentService: ts}
}

// CreateTournament godoc
// @Summary Создать турнир
// @Tags tournaments
// @Description Дата принимается в свободном формате (2024-03-15, 15.03.2024 19:00, RFC3339).
// @Accept json
// @Produce json
// @Param body body services.TournamentInput true "Данные турнира"
// @Success 201 {object} map[string]interface{} "Турнир создан"
// @Failure 422 {object} map[string]interface{} "Ошибка валидации"
// @Security BearerAuth
// @Router /tournaments [post]
func (h *TournamentHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to create tournament")
		return
	}

	var input services.TournamentInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), actorID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, jsonResponse{"tournament": tournament})
}

// ListTournaments godoc
// @Summary Список турниров
// @Tags tournaments
// @Description Новые турниры сначала.
// @Produce json
// @Param search query string false "Поиск по названию и месту"
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(20)
// @Success 200 {object} services.TournamentList
// @Router /tournaments [get]
func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	page, limit, err := readPage(r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	list, err := h.tournamentService.ListTournaments(r.Context(), services.ListTournamentsInput{
		Search: r.URL.Query().Get("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, list)
}

// GetTournament godoc
// @Summary Турнир с участниками
// @Tags tournaments
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]interface{} "Турнир"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getPathParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetTournament(r.Context(), tournamentID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"tournament": tournament})
}

// UpdateTournament godoc
// @Summary Обновить турнир
// @Tags tournaments
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Param body body services.TournamentInput true "Данные турнира"
// @Success 200 {object} map[string]interface{} "Турнир обновлён"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 422 {object} map[string]interface{} "Ошибка валидации"
// @Security BearerAuth
// @Router /tournaments/{tournamentID} [put]
func (h *TournamentHandler) UpdateTournament(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to update tournament")
		return
	}
	tournamentID, err := getPathParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.TournamentInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.UpdateTournament(r.Context(), actorID, tournamentID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"tournament": tournament})
}

// DeleteTournament godoc
// @Summary Удалить турнир
// @Tags tournaments
// @Description Удаляет турнир и участия, статистика бывших участников пересчитывается.
// @Param tournamentID path string true "Tournament ID"
// @Success 204 "Турнир удалён"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Security BearerAuth
// @Router /tournaments/{tournamentID} [delete]
func (h *TournamentHandler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to delete tournament")
		return
	}
	tournamentID, err := getPathParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.DeleteTournament(r.Context(), actorID, tournamentID); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadLogo godoc
// @Summary Загрузить логотип турнира
// @Tags tournaments
// @Accept multipart/form-data
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Param logo formData file true "Изображение"
// @Success 200 {object} map[string]interface{} "Логотип обновлён"
// @Failure 400 {object} map[string]string "Нет файла"
// @Failure 503 {object} map[string]string "Хранилище недоступно"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/logo [post]
func (h *TournamentHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to upload logo")
		return
	}
	tournamentID, err := getPathParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	file, contentType, err := readImage(r, "logo")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	tournament, err := h.tournamentService.UploadTournamentLogo(r.Context(), actorID, tournamentID, file, contentType)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"tournament": tournament})
}
