package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	appanalyses "github.com/bryanwahyu/healthsync/internal/application/analyses"
	appmeds "github.com/bryanwahyu/healthsync/internal/application/medications"
	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
	"github.com/bryanwahyu/healthsync/internal/domain/failures"
	"github.com/bryanwahyu/healthsync/internal/domain/medication"
	"github.com/bryanwahyu/healthsync/internal/middleware"
	"github.com/bryanwahyu/healthsync/internal/render"
)

const maxUploadBytes = 10 << 20

// AnalysisService is the part of the analyses service the router needs.
type AnalysisService interface {
	Submit(ctx context.Context, cmd appanalyses.SubmitCommand) (*analysis.Record, analysis.Result, error)
	Get(ctx context.Context, id analysis.RecordID) (*analysis.Record, error)
	ListForDoctor(ctx context.Context, doctorID string, reviewed *bool, limit int) ([]*analysis.Record, error)
	ListForPatient(ctx context.Context, patientID string, limit int) ([]*analysis.Record, error)
	MarkReviewed(ctx context.Context, id analysis.RecordID) (*analysis.Record, error)
	Render(ctx context.Context, id analysis.RecordID, view render.View) (render.Document, error)
	ExportPDF(ctx context.Context, id analysis.RecordID) ([]byte, string, error)
	ListFailures(ctx context.Context, patientID string, limit int) ([]*failures.Failure, error)
}

// MedicationService is the part of the medications service the router needs.
type MedicationService interface {
	AddPrescription(ctx context.Context, cmd appmeds.AddPrescriptionCommand) (*medication.Prescription, error)
	Overview(ctx context.Context, patientID string) (medication.Overview, error)
	MarkTaken(ctx context.Context, patientID, medicineName string) (*medication.Reminder, error)
	Adherence(ctx context.Context, patientID string) (*int, error)
}

// Options carries the cross-cutting pieces of the router.
type Options struct {
	APIKeys        []middleware.APIKey
	AllowedOrigins []string
	Limiter        *middleware.RateLimiter
	Health         map[string]middleware.HealthChecker
	Metrics        *middleware.Metrics
	Log            zerolog.Logger
}

type Router struct {
	analyses    AnalysisService
	medications MedicationService
	log         zerolog.Logger
}

func NewRouter(analyses AnalysisService, medications MedicationService, opts Options) http.Handler {
	r := &Router{analyses: analyses, medications: medications, log: opts.Log}
	if opts.Metrics == nil {
		opts.Metrics = middleware.NewMetrics()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.Logging(opts.Log))
	mux.Use(opts.Metrics.Middleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Archive-URL", "X-Request-Id"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(opts.Health))
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler)

	mux.Group(func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKeys))
		if opts.Limiter != nil {
			rt.Use(middleware.RateLimit(opts.Limiter))
		}

		rt.With(middleware.RequireRole(middleware.RoleAdmin)).Get("/metrics", opts.Metrics.Handler)

		rt.Route("/v1/analyses/{id}", func(rt chi.Router) {
			rt.Get("/", r.wrap(r.handleGet))
			rt.Get("/render", r.wrap(r.handleRender))
			rt.Get("/pdf", r.wrap(r.handlePDF))
			rt.With(middleware.RequireRole(middleware.RoleDoctor)).Post("/review", r.wrap(r.handleReview))
		})

		rt.With(middleware.RequireRole(middleware.RoleDoctor)).
			Get("/v1/doctors/{doctorID}/analyses", r.wrap(r.handleDoctorInbox))

		rt.Route("/v1/patients/{patientID}", func(rt chi.Router) {
			patientOnly := middleware.RequireRole(middleware.RolePatient)
			rt.With(patientOnly).Post("/lab-reports", r.wrap(r.handleSubmit))
			rt.Get("/analyses", r.wrap(r.handlePatientAnalyses))
			rt.Get("/failures", r.wrap(r.handleFailures))
			rt.With(patientOnly).Post("/prescriptions", r.wrap(r.handleAddPrescription))
			rt.Get("/medications", r.wrap(r.handleMedications))
			rt.With(patientOnly).Post("/medications/taken", r.wrap(r.handleMarkTaken))
			rt.Get("/adherence", r.wrap(r.handleAdherence))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequest marks caller input errors.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func invalid(format string, args ...any) error {
	return badRequest{err: fmt.Errorf(format, args...)}
}

var errForbidden = errors.New("forbidden")

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var br badRequest
		switch {
		case errors.As(err, &br), errors.Is(err, medication.ErrNoMedicines):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, errForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		case errors.Is(err, analysis.ErrNotFound), errors.Is(err, medication.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		default:
			r.log.Error().Err(err).Str("request_id", chimw.GetReqID(req.Context())).Msg("request failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// patientParam validates the patient id and that patients only touch their own data.
func patientParam(req *http.Request) (string, error) {
	id := chi.URLParam(req, "patientID")
	if err := middleware.ValidateID("patient id", id); err != nil {
		return "", badRequest{err: err}
	}
	if p, ok := middleware.PrincipalFrom(req.Context()); ok && p.Role == middleware.RolePatient && p.Subject != id {
		return "", errForbidden
	}
	return id, nil
}

func recordParam(req *http.Request) (analysis.RecordID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateID("analysis id", id); err != nil {
		return "", badRequest{err: err}
	}
	return analysis.RecordID(id), nil
}

// canRead hides other patients' records from patient callers.
func canRead(req *http.Request, rec *analysis.Record) error {
	if p, ok := middleware.PrincipalFrom(req.Context()); ok && p.Role == middleware.RolePatient && p.Subject != rec.PatientID {
		return analysis.ErrNotFound
	}
	return nil
}

//
// ==== ANALYSES ====
//

type submitBody struct {
	PatientName string `json:"patientName"`
	Age         *int   `json:"age"`
	DoctorID    string `json:"doctorId"`
	FileName    string `json:"fileName"`
	Text        string `json:"text"`
}

// POST /v1/patients/{patientID}/lab-reports
// Accepts JSON {"patientName","age","doctorId","fileName","text"} or a
// multipart form with a "file" part and the same fields.
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	patientID, err := patientParam(req)
	if err != nil {
		return err
	}
	body, err := decodeSubmit(w, req)
	if err != nil {
		return err
	}
	if err := middleware.ValidateFileName(body.FileName); err != nil {
		return badRequest{err: err}
	}
	if err := middleware.ValidateAge(body.Age); err != nil {
		return badRequest{err: err}
	}
	if body.DoctorID != "" {
		if err := middleware.ValidateID("doctor id", body.DoctorID); err != nil {
			return badRequest{err: err}
		}
	}

	rec, res, err := r.analyses.Submit(req.Context(), appanalyses.SubmitCommand{
		PatientID:   patientID,
		PatientName: middleware.SanitizeString(body.PatientName),
		Age:         body.Age,
		DoctorID:    body.DoctorID,
		FileName:    body.FileName,
		Text:        body.Text,
	})
	if appanalyses.IsClientError(err) {
		return writeJSON(w, http.StatusUnprocessableEntity, res)
	}
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, map[string]any{"record": rec, "result": res})
}

func decodeSubmit(w http.ResponseWriter, req *http.Request) (submitBody, error) {
	var body submitBody
	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)

	if mediaType != "multipart/form-data" {
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			return body, invalid("invalid JSON body: %v", err)
		}
		return body, nil
	}

	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return body, invalid("invalid multipart body: %v", err)
	}
	body.PatientName = req.FormValue("patientName")
	body.DoctorID = req.FormValue("doctorId")
	if raw := req.FormValue("age"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return body, invalid("age must be a number")
		}
		body.Age = &n
	}
	f, hdr, err := req.FormFile("file")
	if err != nil {
		return body, invalid("file is required")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return body, invalid("read file: %v", err)
	}
	body.FileName = hdr.Filename
	body.Text = string(data)
	return body, nil
}

// GET /v1/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := recordParam(req)
	if err != nil {
		return err
	}
	rec, err := r.analyses.Get(req.Context(), id)
	if err != nil {
		return err
	}
	if err := canRead(req, rec); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

// GET /v1/analyses/{id}/render?view=patient|doctor
func (r *Router) handleRender(w http.ResponseWriter, req *http.Request) error {
	id, err := recordParam(req)
	if err != nil {
		return err
	}
	view, err := render.ParseView(req.URL.Query().Get("view"))
	if err != nil {
		return badRequest{err: err}
	}
	rec, err := r.analyses.Get(req.Context(), id)
	if err != nil {
		return err
	}
	if err := canRead(req, rec); err != nil {
		return err
	}
	doc, err := r.analyses.Render(req.Context(), id, view)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, doc)
}

// GET /v1/analyses/{id}/pdf
func (r *Router) handlePDF(w http.ResponseWriter, req *http.Request) error {
	id, err := recordParam(req)
	if err != nil {
		return err
	}
	rec, err := r.analyses.Get(req.Context(), id)
	if err != nil {
		return err
	}
	if err := canRead(req, rec); err != nil {
		return err
	}
	data, url, err := r.analyses.ExportPDF(req.Context(), id)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="analysis-%s.pdf"`, id))
	if url != "" {
		w.Header().Set("X-Archive-URL", url)
	}
	_, err = w.Write(data)
	return err
}

// POST /v1/analyses/{id}/review
// A doctor reviews records sent to them or still unassigned.
func (r *Router) handleReview(w http.ResponseWriter, req *http.Request) error {
	id, err := recordParam(req)
	if err != nil {
		return err
	}
	rec, err := r.analyses.Get(req.Context(), id)
	if err != nil {
		return err
	}
	if p, ok := middleware.PrincipalFrom(req.Context()); ok && p.Role == middleware.RoleDoctor &&
		rec.DoctorID != p.Subject && rec.DoctorID != analysis.UnassignedDoctor {
		return errForbidden
	}
	rec, err = r.analyses.MarkReviewed(req.Context(), id)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}

// GET /v1/doctors/{doctorID}/analyses?reviewed=&limit=
func (r *Router) handleDoctorInbox(w http.ResponseWriter, req *http.Request) error {
	doctorID := chi.URLParam(req, "doctorID")
	if err := middleware.ValidateID("doctor id", doctorID); err != nil {
		return badRequest{err: err}
	}
	if p, ok := middleware.PrincipalFrom(req.Context()); ok && p.Role == middleware.RoleDoctor && p.Subject != doctorID {
		return errForbidden
	}
	reviewed, err := middleware.ParseReviewed(req.URL.Query().Get("reviewed"))
	if err != nil {
		return badRequest{err: err}
	}
	list, err := r.analyses.ListForDoctor(req.Context(), doctorID, reviewed, middleware.ParseLimit(req.URL.Query().Get("limit")))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/patients/{patientID}/analyses?limit=
func (r *Router) handlePatientAnalyses(w http.ResponseWriter, req *http.Request) error {
	patientID, err := patientParam(req)
	if err != nil {
		return err
	}
	list, err := r.analyses.ListForPatient(req.Context(), patientID, middleware.ParseLimit(req.URL.Query().Get("limit")))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /v1/patients/{patientID}/failures?limit=
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	patientID, err := patientParam(req)
	if err != nil {
		return err
	}
	list, err := r.analyses.ListFailures(req.Context(), patientID, middleware.ParseLimit(req.URL.Query().Get("limit")))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

//
// ==== MEDICATIONS ====
//

// POST /v1/patients/{patientID}/prescriptions
// Body: {"doctorId": "...", "medicines": [{"name","drugName","dosage","timings","schedule"}]}
func (r *Router) handleAddPrescription(w http.ResponseWriter, req *http.Request) error {
	patientID, err := patientParam(req)
	if err != nil {
		return err
	}
	var body struct {
		DoctorID  string                `json:"doctorId"`
		Medicines []medication.Medicine `json:"medicines"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return invalid("invalid JSON body: %v", err)
	}
	p, err := r.medications.AddPrescription(req.Context(), appmeds.AddPrescriptionCommand{
		PatientID: patientID,
		DoctorID:  body.DoctorID,
		Medicines: body.Medicines,
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusCreated, p)
}

// GET /v1/patients/{patientID}/medications
func (r *Router) handleMedications(w http.ResponseWriter, req *http.Request) error {
	patientID, err := patientParam(req)
	if err != nil {
		return err
	}
	ov, err := r.medications.Overview(req.Context(), patientID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, ov)
}

// POST /v1/patients/{patientID}/medications/taken
// Body: {"medicineName": "..."}
func (r *Router) handleMarkTaken(w http.ResponseWriter, req *http.Request) error {
	patientID, err := patientParam(req)
	if err != nil {
		return err
	}
	var body struct {
		MedicineName string `json:"medicineName"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return invalid("invalid JSON body: %v", err)
	}
	name := middleware.SanitizeString(body.MedicineName)
	if name == "" {
		return invalid("medicineName is required")
	}
	rem, err := r.medications.MarkTaken(req.Context(), patientID, name)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rem)
}

// GET /v1/patients/{patientID}/adherence
func (r *Router) handleAdherence(w http.ResponseWriter, req *http.Request) error {
	patientID, err := patientParam(req)
	if err != nil {
		return err
	}
	rate, err := r.medications.Adherence(req.Context(), patientID)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"patientId":     patientID,
		"adherenceRate": rate,
	})
}
