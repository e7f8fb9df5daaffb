package fees

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/scholaris-erp/scholaris-erp/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the fee core.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers fee routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/structures", h.createStructure)
	r.Get("/structures", h.listStructures)
	r.Post("/discounts", h.createDiscount)
	r.Get("/discounts", h.listDiscounts)
	r.Post("/assignments", h.assign)
	r.Post("/students/{studentID}/installments", h.generateForStudent)
	r.Post("/student-fees/{studentFeeID}/installments", h.generate)
	r.Get("/student-fees/{studentFeeID}/installments", h.listInstallments)
	r.Post("/installments/{installmentID}/payments", h.pay)
}

type createStructureRequest struct {
	SchoolID       int64   `json:"schoolId" validate:"required"`
	ClassID        int64   `json:"classId" validate:"required"`
	AcademicYearID int64   `json:"sessionId" validate:"required"`
	FeeHeadID      int64   `json:"feeHeadId" validate:"required"`
	Amount         float64 `json:"amount" validate:"gte=0"`
	Frequency      string  `json:"frequency" validate:"required,oneof=monthly quarterly yearly"`
}

func (h *Handler) createStructure(w http.ResponseWriter, r *http.Request) {
	var req createStructureRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	structure, err := h.service.CreateFeeStructure(r.Context(), CreateFeeStructureInput{
		SchoolID:       req.SchoolID,
		ClassID:        req.ClassID,
		AcademicYearID: req.AcademicYearID,
		FeeHeadID:      req.FeeHeadID,
		Amount:         req.Amount,
		Frequency:      FeeFrequency(req.Frequency),
	})
	if err != nil {
		h.logger.Error("create fee structure", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, structure)
}

func (h *Handler) listStructures(w http.ResponseWriter, r *http.Request) {
	filter := ListFeeStructuresFilter{
		SchoolID:       queryInt64(r, "schoolId"),
		ClassID:        queryInt64(r, "classId"),
		AcademicYearID: queryInt64(r, "academicYearId"),
	}
	structures, err := h.service.ListFeeStructures(r.Context(), filter)
	if err != nil {
		h.logger.Error("list fee structures", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if structures == nil {
		structures = []FeeStructureDetail{}
	}
	httpx.JSON(w, http.StatusOK, structures)
}

type createDiscountRequest struct {
	SchoolID   int64   `json:"schoolId" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Type       string  `json:"type" validate:"required,oneof=percentage flat"`
	Value      float64 `json:"value" validate:"gte=0"`
	FeeHeadIDs []int64 `json:"applicableFeeHeads"`
}

func (h *Handler) createDiscount(w http.ResponseWriter, r *http.Request) {
	var req createDiscountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	discount, err := h.service.CreateDiscount(r.Context(), CreateDiscountInput{
		SchoolID:   req.SchoolID,
		Name:       req.Name,
		Type:       DiscountType(req.Type),
		Value:      req.Value,
		FeeHeadIDs: req.FeeHeadIDs,
	})
	if err != nil {
		h.logger.Error("create discount", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, discount)
}

func (h *Handler) listDiscounts(w http.ResponseWriter, r *http.Request) {
	schoolID := queryInt64(r, "schoolId")
	discounts, err := h.service.ListDiscounts(r.Context(), schoolID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if discounts == nil {
		discounts = []Discount{}
	}
	httpx.JSON(w, http.StatusOK, discounts)
}

type assignRequest struct {
	FeeStructureID int64    `json:"feeStructureId" validate:"required"`
	StudentID      int64    `json:"studentId"`
	StudentIDs     []int64  `json:"studentIds"`
	AcademicYearID int64    `json:"academicYearId" validate:"required"`
	SchoolID       int64    `json:"schoolId" validate:"required"`
	CustomAmount   *float64 `json:"customAmount"`
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	result, err := h.service.Assign(r.Context(), AssignInput{
		FeeStructureID: req.FeeStructureID,
		StudentID:      req.StudentID,
		StudentIDs:     req.StudentIDs,
		AcademicYearID: req.AcademicYearID,
		SchoolID:       req.SchoolID,
		CustomAmount:   req.CustomAmount,
	})
	if err != nil {
		h.logger.Error("assign student fee", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func (h *Handler) generateForStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := pathInt64(r, "studentID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Path", "invalid student ID")
		return
	}
	installments, err := h.service.GenerateForStudent(r.Context(), studentID)
	if err != nil {
		h.logger.Error("generate installments", slog.Any("error", err), slog.Int64("student_id", studentID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, installments)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	studentFeeID, err := pathInt64(r, "studentFeeID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Path", "invalid student fee ID")
		return
	}
	installments, err := h.service.Generate(r.Context(), studentFeeID)
	if err != nil {
		h.logger.Error("generate installments", slog.Any("error", err), slog.Int64("student_fee_id", studentFeeID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, installments)
}

func (h *Handler) listInstallments(w http.ResponseWriter, r *http.Request) {
	studentFeeID, err := pathInt64(r, "studentFeeID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Path", "invalid student fee ID")
		return
	}
	installments, err := h.service.ListInstallments(r.Context(), studentFeeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if installments == nil {
		installments = []FeeInstallment{}
	}
	httpx.JSON(w, http.StatusOK, installments)
}

type payRequest struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMode   string  `json:"paymentMode" validate:"required,oneof=cash online cheque"`
	TransactionID string  `json:"transactionId"`
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	installmentID, err := pathInt64(r, "installmentID")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Path", "invalid installment ID")
		return
	}
	var req payRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	result, err := h.service.Pay(r.Context(), PayInput{
		InstallmentID: installmentID,
		Amount:        req.Amount,
		Mode:          PaymentMode(req.PaymentMode),
		TransactionID: req.TransactionID,
	})
	if err != nil {
		h.logger.Error("record payment", slog.Any("error", err), slog.Int64("installment_id", installmentID))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

func queryInt64(r *http.Request, key string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return v
}

func pathInt64(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}
