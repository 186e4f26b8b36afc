package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"coop-service/configs"
	"coop-service/internal/models"
	"coop-service/internal/service"
	"coop-service/pkg/utils"
)

// PayLaterHandler handles pay-later HTTP requests
type PayLaterHandler struct {
	payLaterService service.PayLaterService
	logger          *logrus.Logger
	config          *configs.Config
}

// NewPayLaterHandler creates a new PayLaterHandler
func NewPayLaterHandler(payLaterService service.PayLaterService, logger *logrus.Logger, config *configs.Config) *PayLaterHandler {
	return &PayLaterHandler{
		payLaterService: payLaterService,
		logger:          logger,
		config:          config,
	}
}

// CheckEligibility handles the pay-later eligibility check for a member
func (h *PayLaterHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid member ID")
		return
	}

	eligibility, err := h.payLaterService.CheckEligibility(r.Context(), userID)
	if err != nil {
		h.logger.Warnf("Failed to check eligibility: %v", err)
		utils.RespondWithError(w, statusForError(err), "failed to check eligibility")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "eligibility checked successfully", eligibility)
}

// CreateApplication handles pay-later application creation
func (h *PayLaterHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req models.PayLaterRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	defer r.Body.Close()

	application, err := h.payLaterService.CreateApplication(r.Context(), &req)
	if err != nil {
		h.logger.Warnf("Failed to create application: %v", err)
		utils.RespondWithError(w, statusForError(err), err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusCreated, "application created successfully", application)
}

// GetApplications handles retrieving all pay-later applications for a member
func (h *PayLaterHandler) GetApplications(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid member ID")
		return
	}

	applications, err := h.payLaterService.GetByUserID(r.Context(), userID)
	if err != nil {
		h.logger.Warnf("Failed to get applications: %v", err)
		utils.RespondWithError(w, statusForError(err), "failed to get applications")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "applications retrieved successfully", applications)
}

// ApproveApplication handles approving a pending application
func (h *PayLaterHandler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	applicationID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	application, err := h.payLaterService.ApproveApplication(r.Context(), applicationID)
	if err != nil {
		h.logger.Warnf("Failed to approve application: %v", err)
		utils.RespondWithError(w, statusForError(err), err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "application approved successfully", application)
}

// RejectApplication handles rejecting a pending application
func (h *PayLaterHandler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	applicationID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	application, err := h.payLaterService.RejectApplication(r.Context(), applicationID)
	if err != nil {
		h.logger.Warnf("Failed to reject application: %v", err)
		utils.RespondWithError(w, statusForError(err), err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "application rejected successfully", application)
}

// GetInstallments handles retrieving the installment plan of an application
func (h *PayLaterHandler) GetInstallments(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	applicationID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid application ID")
		return
	}

	installments, err := h.payLaterService.GetInstallments(r.Context(), applicationID)
	if err != nil {
		h.logger.Warnf("Failed to get installments: %v", err)
		utils.RespondWithError(w, statusForError(err), "failed to get installments")
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, "installments retrieved successfully", installments)
}

// ProcessPayment handles paying one installment
func (h *PayLaterHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	installmentID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid installment ID")
		return
	}

	result, err := h.payLaterService.ProcessScheduledPayment(r.Context(), installmentID)
	if err != nil {
		h.logger.Warnf("Failed to process payment: %v", err)
		utils.RespondWithError(w, statusForError(err), err.Error())
		return
	}

	// A declined capture is an expected, retryable outcome carried in the
	// result body, not an error status
	utils.RespondWithSuccess(w, http.StatusOK, result.Message, result)
}

// CancelPayment handles cancelling a scheduled installment
func (h *PayLaterHandler) CancelPayment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	installmentID, err := strconv.Atoi(vars["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid installment ID")
		return
	}

	result, err := h.payLaterService.CancelScheduledPayment(r.Context(), installmentID)
	if err != nil {
		h.logger.Warnf("Failed to cancel payment: %v", err)
		utils.RespondWithError(w, statusForError(err), err.Error())
		return
	}

	utils.RespondWithSuccess(w, http.StatusOK, result.Message, result)
}
