package handlers

import (
	"net/http"

	"github.com/Dosada05/ttleague/services"
)

type BracketHandler struct {
	bracketService services.BracketService
	archiveService services.ArchiveService
}

func NewBracketHandler(bs services.BracketService, as services.ArchiveService) *BracketHandler {
	return &BracketHandler{
		bracketService: bs,
		archiveService: as,
	}
}

// BuildHandler godoc
// @Summary Generate the bracket
// @Description Seeds enrolled players by ranking and replaces any existing bracket.
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Unknown bracket type"
// @Failure 404 {object} map[string]interface{}
// @Failure 412 {object} map[string]interface{} "Fewer than two players or format not implemented"
// @Router /tournaments/{tournamentID}/bracket [post]
func (h *BracketHandler) BuildHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.Build(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler godoc
// @Summary Get the bracket ordered by round and slot
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/bracket [get]
func (h *BracketHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.Get(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetHandler godoc
// @Summary Delete the bracket and return the tournament to created
// @Tags brackets
// @Param tournamentID path int true "Tournament ID"
// @Success 204
// @Failure 404 {object} map[string]interface{}
// @Router /tournaments/{tournamentID}/bracket [delete]
func (h *BracketHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.bracketService.Reset(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetArchiveHandler godoc
// @Summary Download the archived snapshot of a finished bracket
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{} "Not archived yet"
// @Failure 412 {object} map[string]interface{} "Archive storage not configured"
// @Router /tournaments/{tournamentID}/archive [get]
func (h *BracketHandler) GetArchiveHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.archiveService.Download(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"archive": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateArchiveHandler обрабатывает POST /tournaments/{tournamentID}/archive
func (h *BracketHandler) CreateArchiveHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.archiveService.ArchiveTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	resp := jsonResponse{"key": result.Key}
	if result.Location != "" {
		resp["location"] = result.Location
	}
	if err := writeJSON(w, http.StatusCreated, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
