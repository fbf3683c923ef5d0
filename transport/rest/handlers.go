package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/doko-tracker/internal/apperror"
	"github.com/rocketscienceinc/doko-tracker/internal/entity"
	"github.com/rocketscienceinc/doko-tracker/internal/scoring"
	"github.com/rocketscienceinc/doko-tracker/internal/usecase"
	"github.com/rocketscienceinc/doko-tracker/internal/views"
)

const exportFileName = "doko-game.json"

type scoreboardUseCase interface {
	Game() *entity.Game

	RecordRound(ctx context.Context, input usecase.RoundInput) (*usecase.RecordedRound, scoring.Validation, error)
	EditRound(ctx context.Context, index int, input usecase.RoundInput) (*usecase.RecordedRound, scoring.Validation, error)
	RoundWinners(index int) ([entity.PlayerCount]bool, error)
	Reset(ctx context.Context) error

	RenamePlayer(ctx context.Context, index int, name string) (string, error)
	ReplacePlayers(ctx context.Context, names [entity.PlayerCount]string) error

	Import(ctx context.Context, data usecase.ImportData) (int, error)
	Export() *entity.Game

	Overview() usecase.Overview
}

type Handlers struct {
	logger     *slog.Logger
	scoreboard scoreboardUseCase
}

func NewHandlers(logger *slog.Logger, scoreboard scoreboardUseCase) *Handlers {
	return &Handlers{
		logger:     logger.With("component", "rest"),
		scoreboard: scoreboard,
	}
}

type roundRequest struct {
	Points  *float64                 `json:"points"`
	Winners [entity.PlayerCount]bool `json:"winners"`
	Solo    bool                     `json:"solo"`
}

// toInput maps a missing point value to NaN so validation rejects it.
func (that roundRequest) toInput() usecase.RoundInput {
	points := math.NaN()
	if that.Points != nil {
		points = *that.Points
	}

	return usecase.RoundInput{
		Points:  points,
		Winners: that.Winners,
		Solo:    that.Solo,
	}
}

type renameRequest struct {
	Name string `json:"name"`
}

type playersRequest struct {
	Players [entity.PlayerCount]string `json:"players"`
}

type seriesResponse struct {
	Series [entity.PlayerCount][]int `json:"series"`
	Range  views.Range               `json:"range"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *Handlers) GetGame(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.scoreboard.Game())
}

func (that *Handlers) GetOverview(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.scoreboard.Overview())
}

func (that *Handlers) GetTotals(w http.ResponseWriter, _ *http.Request) {
	that.writeJSON(w, http.StatusOK, that.scoreboard.Overview().Totals)
}

func (that *Handlers) GetSeries(w http.ResponseWriter, _ *http.Request) {
	overview := that.scoreboard.Overview()

	that.writeJSON(w, http.StatusOK, seriesResponse{
		Series: overview.Series,
		Range:  overview.Range,
	})
}

func (that *Handlers) RecordRound(w http.ResponseWriter, r *http.Request) {
	var req roundRequest
	if !that.decode(w, r, &req) {
		return
	}

	recorded, validation, err := that.scoreboard.RecordRound(r.Context(), req.toInput())
	if err != nil {
		that.writeFailure(w, "RecordRound", err)
		return
	}

	if !validation.Valid {
		that.writeJSON(w, http.StatusUnprocessableEntity, validation)
		return
	}

	that.writeJSON(w, http.StatusCreated, recorded)
}

func (that *Handlers) EditRound(w http.ResponseWriter, r *http.Request) {
	index, ok := that.pathIndex(w, r)
	if !ok {
		return
	}

	var req roundRequest
	if !that.decode(w, r, &req) {
		return
	}

	recorded, validation, err := that.scoreboard.EditRound(r.Context(), index, req.toInput())
	if err != nil {
		that.writeFailure(w, "EditRound", err)
		return
	}

	if !validation.Valid {
		that.writeJSON(w, http.StatusUnprocessableEntity, validation)
		return
	}

	that.writeJSON(w, http.StatusOK, recorded)
}

func (that *Handlers) RoundWinners(w http.ResponseWriter, r *http.Request) {
	index, ok := that.pathIndex(w, r)
	if !ok {
		return
	}

	winners, err := that.scoreboard.RoundWinners(index)
	if err != nil {
		that.writeFailure(w, "RoundWinners", err)
		return
	}

	that.writeJSON(w, http.StatusOK, map[string]any{"winners": winners})
}

func (that *Handlers) Reset(w http.ResponseWriter, r *http.Request) {
	if err := that.scoreboard.Reset(r.Context()); err != nil {
		that.writeFailure(w, "Reset", err)
		return
	}

	that.writeJSON(w, http.StatusOK, that.scoreboard.Game())
}

func (that *Handlers) RenamePlayer(w http.ResponseWriter, r *http.Request) {
	index, ok := that.pathIndex(w, r)
	if !ok {
		return
	}

	var req renameRequest
	if !that.decode(w, r, &req) {
		return
	}

	name, err := that.scoreboard.RenamePlayer(r.Context(), index, req.Name)
	if err != nil {
		that.writeFailure(w, "RenamePlayer", err)
		return
	}

	that.writeJSON(w, http.StatusOK, renameRequest{Name: name})
}

func (that *Handlers) ReplacePlayers(w http.ResponseWriter, r *http.Request) {
	var req playersRequest
	if !that.decode(w, r, &req) {
		return
	}

	if err := that.scoreboard.ReplacePlayers(r.Context(), req.Players); err != nil {
		that.writeFailure(w, "ReplacePlayers", err)
		return
	}

	that.writeJSON(w, http.StatusOK, that.scoreboard.Game())
}

func (that *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	var req usecase.ImportData
	if !that.decode(w, r, &req) {
		return
	}

	count, err := that.scoreboard.Import(r.Context(), req)
	if err != nil {
		that.writeFailure(w, "Import", err)
		return
	}

	that.writeJSON(w, http.StatusOK, map[string]int{"imported": count})
}

func (that *Handlers) Export(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="`+exportFileName+`"`)
	that.writeJSON(w, http.StatusOK, that.scoreboard.Export())
}

func (that *Handlers) pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "index must be an integer"})
		return 0, false
	}

	return index, true
}

func (that *Handlers) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}

	return true
}

func (that *Handlers) writeFailure(w http.ResponseWriter, method string, err error) {
	switch {
	case errors.Is(err, apperror.ErrRoundNotFound), errors.Is(err, apperror.ErrInvalidPlayerIndex):
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
