package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"coop-service/configs"
	"coop-service/internal/service"
	"coop-service/pkg/utils"
)

// ScoringHandler handles credit scoring HTTP requests
type ScoringHandler struct {
	scoringService service.ScoringService
	logger         *logrus.Logger
	config         *configs.Config
}

// NewScoringHandler creates a new ScoringHandler
func NewScoringHandler(scoringService service.ScoringService, logger *logrus.Logger, config *configs.Config) *ScoringHandler {
	return &ScoringHandler{
		scoringService: scoringService,
		logger:         logger,
		config:         config,
	}
}

// Calculate handles credit score calculation for a member
func (h *ScoringHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid member ID")
		return
	}

	result, err := h.scoringService.Calculate(r.Context(), userID)
	if err != nil {
		h.logger.Warnf("Failed to calculate credit score: %v", err)
		utils.RespondWithError(w, statusForError(err), "failed to calculate credit score")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "credit score calculated successfully", result)
}
