package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/Dosada05/ttleague/services"
	"github.com/go-chi/chi/v5"
)

type RankingHandler struct {
	rankingService services.RankingService
}

func NewRankingHandler(rs services.RankingService) *RankingHandler {
	return &RankingHandler{
		rankingService: rs,
	}
}

type setPointsInput struct {
	Category string `json:"category"`
	Points   *int   `json:"points"`
}

// TableHandler godoc
// @Summary Ranking table
// @Description Entries sorted by points descending. An empty category lists every category.
// @Tags ranking
// @Produce json
// @Param category query string false "Category"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /ranking [get]
func (h *RankingHandler) TableHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entries, err := h.rankingService.Table(r.Context(), r.URL.Query().Get("category"), limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ranking": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PlayerRankHandler godoc
// @Summary Player position and neighbouring entries
// @Tags ranking
// @Produce json
// @Param playerID path int true "Player ID"
// @Param category query string true "Category"
// @Param radius query int false "Entries on each side (default 3)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /ranking/players/{playerID} [get]
func (h *RankingHandler) PlayerRankHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	category := r.URL.Query().Get("category")
	if category == "" {
		badRequestResponse(w, r, errors.New("category query parameter is required"))
		return
	}
	radius, err := queryInt(r, "radius", services.DefaultAroundRadius)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.rankingService.PlayerRank(r.Context(), playerID, category)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	around, err := h.rankingService.Around(r.Context(), playerID, category, radius)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entry": entry, "around": around}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetPointsHandler godoc
// @Summary Set the exact point total of a player
// @Tags ranking
// @Accept json
// @Produce json
// @Param playerID path int true "Player ID"
// @Param input body setPointsInput true "Category and points"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /ranking/players/{playerID} [put]
func (h *RankingHandler) SetPointsHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input setPointsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Points == nil {
		badRequestResponse(w, r, errors.New("points is required"))
		return
	}

	entry, err := h.rankingService.SetPoints(r.Context(), playerID, input.Category, *input.Points)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetCategoryHandler godoc
// @Summary Delete every ranking entry of a category
// @Tags ranking
// @Produce json
// @Param category path string true "Category"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /ranking/categories/{category} [delete]
func (h *RankingHandler) ResetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	category, err := url.PathUnescape(chi.URLParam(r, "category"))
	if err != nil || category == "" {
		badRequestResponse(w, r, errors.New("invalid category in URL path"))
		return
	}

	deleted, err := h.rankingService.ResetCategory(r.Context(), category)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": deleted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
