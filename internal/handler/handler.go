package handler

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"coop-service/configs"
	"coop-service/internal/models"
	"coop-service/internal/service"
)

// Dependencies contains handler dependencies
type Dependencies struct {
	Services *service.Service
	Logger   *logrus.Logger
	Config   *configs.Config
}

// Handler contains all HTTP handlers for the application
type Handler struct {
	Scoring  *ScoringHandler
	PayLater *PayLaterHandler
}

// NewHandler creates a new Handler with all subhandlers
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		Scoring:  NewScoringHandler(deps.Services.Scoring, deps.Logger, deps.Config),
		PayLater: NewPayLaterHandler(deps.Services.PayLater, deps.Logger, deps.Config),
	}
}

// statusForError maps the service error taxonomy to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotEligible),
		errors.Is(err, models.ErrLimitExceeded),
		errors.Is(err, models.ErrInvalidLoanTerms):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
