package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/poker-club/middleware"
	"github.com/Dosada05/poker-club/services"
)

type PlayerHandler struct {
	responder
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{responder: responder{logger: logger}, playerService: ps}
}

// CreatePlayer godoc
// @Summary Добавить игрока
// @Tags players
// @Description Создаёт игрока клуба. Имя, telegram и телефон обязательны.
// @Accept json
// @Produce json
// @Param body body services.CreatePlayerInput true "Данные игрока"
// @Success 201 {object} map[string]interface{} "Игрок создан"
// @Failure 400 {object} map[string]string "Некорректный JSON"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 403 {object} map[string]string "Нет прав (не админ)"
// @Failure 422 {object} map[string]interface{} "Ошибка валидации"
// @Failure 503 {object} map[string]string "База данных недоступна"
// @Security BearerAuth
// @Router /admin/players [post]
func (h *PlayerHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to create player")
		return
	}

	var input services.CreatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.CreatePlayer(r.Context(), actorID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusCreated, jsonResponse{"player": player})
}

// ListPlayers godoc
// @Summary Список игроков
// @Tags players
// @Description Поиск по имени, telegram и телефону без учёта регистра, сортировка по имени.
// @Produce json
// @Param search query string false "Строка поиска"
// @Param page query int false "Номер страницы" default(1)
// @Param limit query int false "Размер страницы" default(20)
// @Success 200 {object} services.PlayerList
// @Failure 400 {object} map[string]string "Некорректные параметры"
// @Router /players [get]
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	page, limit, err := readPage(r)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	list, err := h.playerService.ListPlayers(r.Context(), services.ListPlayersInput{
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

// GetPlayer godoc
// @Summary Профиль игрока
// @Tags players
// @Description Игрок, его статистика и история турниров (новые сначала).
// @Produce json
// @Param playerID path string true "Player ID"
// @Success 200 {object} models.PlayerProfile
// @Failure 404 {object} map[string]string "Игрок не найден"
// @Router /players/{playerID} [get]
func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := getPathParam(r, "playerID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	profile, err := h.playerService.GetPlayerProfile(r.Context(), playerID)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, profile)
}

// UpdatePlayer godoc
// @Summary Обновить игрока
// @Tags players
// @Accept json
// @Produce json
// @Param playerID path string true "Player ID"
// @Param body body services.UpdatePlayerInput true "Новые данные"
// @Success 200 {object} map[string]interface{} "Игрок обновлён"
// @Failure 404 {object} map[string]string "Игрок не найден"
// @Failure 422 {object} map[string]interface{} "Ошибка валидации"
// @Security BearerAuth
// @Router /players/{playerID} [put]
func (h *PlayerHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to update player")
		return
	}
	playerID, err := getPathParam(r, "playerID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	var input services.UpdatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.UpdatePlayer(r.Context(), actorID, playerID, input)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"player": player})
}

// DeletePlayer godoc
// @Summary Удалить игрока
// @Tags players
// @Description Удаляет игрока вместе со статистикой и участиями, очки в его турнирах пересчитываются.
// @Param playerID path string true "Player ID"
// @Success 204 "Игрок удалён"
// @Failure 404 {object} map[string]string "Игрок не найден"
// @Security BearerAuth
// @Router /players/{playerID} [delete]
func (h *PlayerHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to delete player")
		return
	}
	playerID, err := getPathParam(r, "playerID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.DeletePlayer(r.Context(), actorID, playerID); err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadAvatar godoc
// @Summary Загрузить аватар игрока
// @Tags players
// @Accept multipart/form-data
// @Produce json
// @Param playerID path string true "Player ID"
// @Param avatar formData file true "Изображение"
// @Success 200 {object} map[string]interface{} "Аватар обновлён"
// @Failure 400 {object} map[string]string "Нет файла"
// @Failure 503 {object} map[string]string "Хранилище недоступно"
// @Security BearerAuth
// @Router /players/{playerID}/avatar [post]
func (h *PlayerHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	actorID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.unauthorizedResponse(w, r, "authentication required to upload avatar")
		return
	}
	playerID, err := getPathParam(r, "playerID")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}

	file, contentType, err := readImage(r, "avatar")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	player, err := h.playerService.UploadPlayerAvatar(r.Context(), actorID, playerID, file, contentType)
	if err != nil {
		h.mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.respond(w, r, http.StatusOK, jsonResponse{"player": player})
}
