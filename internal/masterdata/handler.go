package masterdata

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/scholaris-erp/scholaris-erp/internal/platform/httpx"
)

// Handler wires HTTP endpoints for the masterdata catalog.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers masterdata routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/schools", h.createSchool)
	r.Get("/schools", h.listSchools)
	r.Get("/schools/{id}", h.getSchool)
	r.Post("/academic-years", h.createAcademicYear)
	r.Get("/academic-years", h.listAcademicYears)
	r.Post("/classes", h.createClass)
	r.Get("/classes", h.listClasses)
	r.Post("/fee-heads", h.createFeeHead)
	r.Get("/fee-heads", h.listFeeHeads)
	r.Post("/students", h.createStudent)
	r.Get("/students", h.listStudents)
	r.Get("/students/{id}", h.getStudent)
}

type createSchoolRequest struct {
	Code    string `json:"code" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
}

func (h *Handler) createSchool(w http.ResponseWriter, r *http.Request) {
	var req createSchoolRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	school, err := h.service.CreateSchool(r.Context(), School{Code: req.Code, Name: req.Name, Address: req.Address})
	if err != nil {
		h.logger.Error("create school", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, school)
}

func (h *Handler) listSchools(w http.ResponseWriter, r *http.Request) {
	schools, err := h.service.ListSchools(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if schools == nil {
		schools = []School{}
	}
	httpx.JSON(w, http.StatusOK, schools)
}

func (h *Handler) getSchool(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Path", "invalid school ID")
		return
	}
	school, err := h.service.GetSchool(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, school)
}

type createAcademicYearRequest struct {
	SchoolID  int64  `json:"schoolId" validate:"required"`
	Name      string `json:"name" validate:"required"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
	Active    bool   `json:"active"`
}

func (h *Handler) createAcademicYear(w http.ResponseWriter, r *http.Request) {
	var req createAcademicYearRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	start, err1 := time.Parse("2006-01-02", req.StartDate)
	end, err2 := time.Parse("2006-01-02", req.EndDate)
	if err1 != nil || err2 != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "dates must be YYYY-MM-DD")
		return
	}
	year, err := h.service.CreateAcademicYear(r.Context(), AcademicYear{
		SchoolID:  req.SchoolID,
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		Active:    req.Active,
	})
	if err != nil {
		h.logger.Error("create academic year", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, year)
}

func (h *Handler) listAcademicYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.ListAcademicYears(r.Context(), queryInt64(r, "schoolId"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if years == nil {
		years = []AcademicYear{}
	}
	httpx.JSON(w, http.StatusOK, years)
}

type createClassRequest struct {
	SchoolID int64  `json:"schoolId" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Section  string `json:"section"`
}

func (h *Handler) createClass(w http.ResponseWriter, r *http.Request) {
	var req createClassRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	class, err := h.service.CreateClass(r.Context(), SchoolClass{SchoolID: req.SchoolID, Name: req.Name, Section: req.Section})
	if err != nil {
		h.logger.Error("create class", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, class)
}

func (h *Handler) listClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.service.ListClasses(r.Context(), queryInt64(r, "schoolId"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if classes == nil {
		classes = []SchoolClass{}
	}
	httpx.JSON(w, http.StatusOK, classes)
}

type createFeeHeadRequest struct {
	SchoolID int64  `json:"schoolId" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

func (h *Handler) createFeeHead(w http.ResponseWriter, r *http.Request) {
	var req createFeeHeadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	head, err := h.service.CreateFeeHead(r.Context(), FeeHead{SchoolID: req.SchoolID, Name: req.Name})
	if err != nil {
		h.logger.Error("create fee head", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, head)
}

func (h *Handler) listFeeHeads(w http.ResponseWriter, r *http.Request) {
	heads, err := h.service.ListFeeHeads(r.Context(), queryInt64(r, "schoolId"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if heads == nil {
		heads = []FeeHead{}
	}
	httpx.JSON(w, http.StatusOK, heads)
}

type createStudentRequest struct {
	SchoolID      int64  `json:"schoolId" validate:"required"`
	ClassID       int64  `json:"classId" validate:"required"`
	AdmissionNo   string `json:"admissionNo" validate:"required"`
	FullName      string `json:"fullName" validate:"required"`
	GuardianName  string `json:"guardianName"`
	GuardianPhone string `json:"guardianPhone"`
}

func (h *Handler) createStudent(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	student, err := h.service.CreateStudent(r.Context(), Student{
		SchoolID:      req.SchoolID,
		ClassID:       req.ClassID,
		AdmissionNo:   req.AdmissionNo,
		FullName:      req.FullName,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
		Active:        true,
	})
	if err != nil {
		h.logger.Error("create student", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, student)
}

func (h *Handler) listStudents(w http.ResponseWriter, r *http.Request) {
	filter := StudentFilter{
		SchoolID: queryInt64(r, "schoolId"),
		ClassID:  queryInt64(r, "classId"),
	}
	if v := r.URL.Query().Get("active"); v != "" {
		active := v == "true"
		filter.Active = &active
	}
	students, err := h.service.ListStudents(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if students == nil {
		students = []Student{}
	}
	httpx.JSON(w, http.StatusOK, students)
}

func (h *Handler) getStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathInt64(r, "id")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Path", "invalid student ID")
		return
	}
	student, err := h.service.GetStudent(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, student)
}

func queryInt64(r *http.Request, key string) int64 {
	v, _ := strconv.ParseInt(r.URL.Query().Get(key), 10, 64)
	return v
}

func pathInt64(r *http.Request, key string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, key), 10, 64)
}
