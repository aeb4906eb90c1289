package ui

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"nuanswers/adapters/sqlstore"
	"nuanswers/internal"
	"nuanswers/internal/analytics"
	"nuanswers/internal/errors"
	"nuanswers/internal/export"
	"nuanswers/models"
	"nuanswers/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// AdminConfig configures the dashboard router
type AdminConfig struct {
	Store     ports.RecordStore
	Password  string
	Location  *time.Location
	Templates *template.Template
	Logger    *internal.Logger
}

type adminHandler struct {
	AdminConfig
}

// NewAdminRouter builds the password-gated dashboard under /admin
func NewAdminRouter(cfg AdminConfig) http.Handler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Logger == nil {
		cfg.Logger = internal.DefaultLogger
	}
	if cfg.Store == nil {
		cfg.Store = sqlstore.Unavailable{Err: errors.ConfigInvalid("DATABASE_URL is required")}
	}
	a := &adminHandler{AdminConfig: cfg}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Route("/admin", func(r chi.Router) {
		r.Use(a.authenticate)
		r.Get("/", a.handleDashboard)
		r.Get("/metrics", a.handleMetrics)
		r.Get("/registrations", a.handleRegistrations)
		r.Get("/export/registrations.csv", a.handleExportCSV)
		r.Get("/export/registrations.xlsx", a.handleExportXLSX)
		r.Get("/export/all.xlsx", a.handleExportAll)
	})
	return r
}

// authenticate accepts the shared password from X-Admin-Password or a password parameter
func (a *adminHandler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Password == "" {
			a.writeError(w, errors.ConfigInvalid("admin password not configured: set ADMIN_PASSWORD"))
			return
		}
		given := r.Header.Get("X-Admin-Password")
		if given == "" {
			given = r.FormValue("password")
		}
		if subtle.ConstantTimeCompare([]byte(given), []byte(a.Password)) != 1 {
			a.writeError(w, errors.Unauthorized("incorrect admin password"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *adminHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.Logger.Error("[admin] %v", err)
	}
	a.writeJSON(w, status, errorBody(err))
}

// writeJSON encodes before writing the status so an unencodable value
// becomes a 500 instead of an empty 200
func (a *adminHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		a.Logger.Error("[admin] encode response: %v", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(errorBody(errors.InternalError("failed to encode response")))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// parseFilter reads from/to (YYYY-MM-DD, in the dashboard's zone, both
// inclusive) and repeated or comma-separated major/campus parameters
func parseFilter(r *http.Request, loc *time.Location) (models.RegistrationFilter, error) {
	q := r.URL.Query()
	return export.ParseFilter(q.Get("from"), q.Get("to"), q["major"], q["campus"], loc)
}

func (a *adminHandler) report(r *http.Request) (analytics.Report, error) {
	ds, err := analytics.Load(r.Context(), a.Store, models.RegistrationFilter{})
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.Compute(ds, a.Location), nil
}

type dashboardData struct {
	Report        analytics.Report
	Registrations []models.RegistrationRecord
	Filter        map[string]string
	Query         template.URL
	Error         string
}

func (a *adminHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{Filter: map[string]string{
		"from":   r.URL.Query().Get("from"),
		"to":     r.URL.Query().Get("to"),
		"major":  r.URL.Query().Get("major"),
		"campus": r.URL.Query().Get("campus"),
	}}
	status := http.StatusOK

	rep, err := a.report(r)
	if err == nil {
		data.Report = rep
		var filter models.RegistrationFilter
		if filter, err = parseFilter(r, a.Location); err == nil {
			data.Registrations, err = a.Store.ListRegistrations(r.Context(), filter)
		}
	}
	if err != nil {
		a.Logger.Error("[handleDashboard] %v", err)
		data.Error = errors.UserMessage(err)
		status = statusFor(err)
	}
	data.Query = template.URL(r.URL.RawQuery)

	var buf bytes.Buffer
	if err := a.Templates.ExecuteTemplate(&buf, "admin.html", data); err != nil {
		a.Logger.Error("[handleDashboard] template: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (a *adminHandler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	rep, err := a.report(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, rep)
}

func (a *adminHandler) filtered(w http.ResponseWriter, r *http.Request) ([]models.RegistrationRecord, bool) {
	filter, err := parseFilter(r, a.Location)
	if err != nil {
		a.writeError(w, err)
		return nil, false
	}
	recs, err := a.Store.ListRegistrations(r.Context(), filter)
	if err != nil {
		a.writeError(w, err)
		return nil, false
	}
	return recs, true
}

func (a *adminHandler) handleRegistrations(w http.ResponseWriter, r *http.Request) {
	recs, ok := a.filtered(w, r)
	if !ok {
		return
	}
	if recs == nil {
		recs = []models.RegistrationRecord{}
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"registrations": recs, "count": len(recs)})
}

func (a *adminHandler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	recs, ok := a.filtered(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteRegistrationsCSV(&buf, recs); err != nil {
		a.writeError(w, err)
		return
	}
	attach(w, "text/csv; charset=utf-8", "nuanswers_registration_data.csv", buf.Bytes())
}

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (a *adminHandler) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	recs, ok := a.filtered(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteRegistrationsXLSX(&buf, recs); err != nil {
		a.writeError(w, errors.Wrap(err, "Error generating Excel file"))
		return
	}
	attach(w, xlsxMIME, "nuanswers_registration_data.xlsx", buf.Bytes())
}

func (a *adminHandler) handleExportAll(w http.ResponseWriter, r *http.Request) {
	ds, err := analytics.Load(r.Context(), a.Store, models.RegistrationFilter{})
	if err != nil {
		a.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, ds); err != nil {
		a.writeError(w, errors.Wrap(err, "Error generating Excel file"))
		return
	}
	attach(w, xlsxMIME, "nuanswers_data.xlsx", buf.Bytes())
}

func attach(w http.ResponseWriter, mime, filename string, body []byte) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
