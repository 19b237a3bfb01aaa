package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/poker-club/middleware"
	"github.com/Dosada05/poker-club/services"
)

type ParticipationHandler struct {
	responder
	participationService services.ParticipationService
}

func NewParticipationHandler(ps services.ParticipationService, logger *slog.Logger) *ParticipationHandler {
	return &ParticipationHandler{responder: responder{logger: logger}, participationService: ps}
}

type playerRefInput struct {
	PlayerID string `json:"player_id"`
}

type updateResultRequest struct {
	PlayerID string `json:"player_id"`
	// Rank shadows the embedded field: "rank": null clears the rank.
	Rank optionalInt `json:"rank" swaggertype:"integer" extensions:"x-nullable"`
	services.UpdateResultInput
}

// patch folds the decoded rank into the service input.
func (req updateResultRequest) patch() services.UpdateResultInput {
	in := req.UpdateResultInput
	in.Rank = req.Rank.Value
	if req.Rank.Set && req.Rank.Value == nil {
		in.ClearRank = true
	}
	return in
}

// optionalInt отличает отсутствующее поле от явного null.
type optionalInt struct {
	Set   bool
	Value *int
}

func (o *optionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

var errPlayerIDRequired = errors.New("player_id must be provided")

// ListParticipants godoc
// @Summary Участники турнира
// @Tags participations
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]interface{} "Участники"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/players [get]
func (h *ParticipationHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getPathParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	participants, err := h.participationService.ListParticipants(r.Context(), tournamentID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"participants": participants})
}

// AddPlayer godoc
// @Summary Зарегистрировать игрока в турнире
// @Tags participations
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Param body body playerRefInput true "ID игрока"
// @Success 201 {object} map[string]interface{} "Игрок добавлен"
// @Failure 404 {object} map[string]string "Игрок или турнир не найден"
// @Failure 409 {object} map[string]string "Игрок уже в турнире"
// @Failure 503 {object} map[string]string "База данных недоступна"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/players [post]
func (h *ParticipationHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to register player")
		return
	}
	tournamentID, err := getPathParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input playerRefInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if strings.TrimSpace(input.PlayerID) == "" {
		h.badRequestResponse(w, r, errPlayerIDRequired)
		return
	}

	participation, err := h.participationService.AddPlayer(r.Context(), actorID, tournamentID, strings.TrimSpace(input.PlayerID))
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, jsonResponse{"participation": participation})
}

// RemovePlayer godoc
// @Summary Убрать игрока из турнира
// @Tags participations
// @Description player_id передаётся в query или в теле запроса. Очки турнира пересчитываются.
// @Param tournamentID path string true "Tournament ID"
// @Param player_id query string false "Player ID"
// @Success 204 "Игрок удалён из турнира"
// @Failure 404 {object} map[string]string "Игрок не зарегистрирован"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/players [delete]
func (h *ParticipationHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to remove player")
		return
	}
	tournamentID, err := getPathParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	playerID := strings.TrimSpace(r.URL.Query().Get("player_id"))
	if playerID == "" {
		var input playerRefInput
		if err := readJSON(w, r, &input); err != nil {
			h.badRequestResponse(w, r, err)
			return
		}
		playerID = strings.TrimSpace(input.PlayerID)
	}
	if playerID == "" {
		h.badRequestResponse(w, r, errPlayerIDRequired)
		return
	}

	if err := h.participationService.RemovePlayer(r.Context(), actorID, tournamentID, playerID); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateResult godoc
// @Summary Обновить результат игрока
// @Tags participations
// @Description Частичное обновление места, очков, баунти и ре-энтри. Отсутствующие поля не меняются; "rank": null или "clear_rank": true снимают место, очки при этом сохраняются. После изменения очки турнира и статистика участников пересчитываются.
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Param body body updateResultRequest true "Изменения"
// @Success 200 {object} map[string]interface{} "Результат обновлён"
// @Failure 404 {object} map[string]string "Игрок не зарегистрирован"
// @Failure 422 {object} map[string]interface{} "Ошибка валидации"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/players [patch]
func (h *ParticipationHandler) UpdateResult(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to update results")
		return
	}
	tournamentID, err := getPathParam(r, "tournamentID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input updateResultRequest
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	if strings.TrimSpace(input.PlayerID) == "" {
		h.badRequestResponse(w, r, errPlayerIDRequired)
		return
	}

	participation, err := h.participationService.UpdateResult(r.Context(), actorID, tournamentID, strings.TrimSpace(input.PlayerID), input.patch())
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"participation": participation})
}
