package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"movimentos/internal/core"
	"movimentos/internal/form"
	"movimentos/internal/ledger"
	applog "movimentos/internal/log"
	"movimentos/internal/middleware/trace"
	"movimentos/internal/projector"
)

const (
	msgMovementSaved    = "Movimento registrado"
	msgMovementRemoved  = "Movimento removido"
	msgMovementNotFound = "Movimento não encontrado."
	msgFormClosed       = "Abra o formulário antes de salvar."
	msgSaveFailed       = "Erro ao salvar o movimento."
	msgInvalidRequest   = "Requisição inválida."
	msgRenderFailed     = "Erro ao montar a página."
)

type formData struct {
	Open        bool
	Kind        core.Kind
	KindClass   string
	Title       string
	Description string
	Amount      string
	Category    string
	Categories  []string
}

type dashboardData struct {
	Table     projector.TableView
	Summary   projector.SummaryView
	ChartJSON string
	Revision  uint64
}

type indexData struct {
	Form      formData
	Dashboard dashboardData
}

func (s *Server) formData(ctx context.Context) formData {
	state, kind, fields := s.svc.FormState()
	if state == form.Hidden {
		return formData{}
	}
	cats, err := s.categories.List(ctx)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Category list error",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpList)
	}
	return formData{
		Open:        true,
		Kind:        kind,
		KindClass:   kindClass(kind),
		Title:       "Nova " + kind.String(),
		Description: fields.Description,
		Amount:      fields.Amount,
		Category:    fields.Category,
		Categories:  cats,
	}
}

func (s *Server) dashboardData(ctx context.Context) (dashboardData, error) {
	view, rev := s.svc.View(ctx)
	chart, err := view.Chart.JSON()
	if err != nil {
		return dashboardData{}, fmt.Errorf("encode chart: %w", err)
	}
	return dashboardData{
		Table:     view.Table,
		Summary:   view.Summary,
		ChartJSON: chart,
		Revision:  rev,
	}, nil
}

// render executes a template into a buffer so a failure never leaves a
// half-written body behind.
func (s *Server) render(ctx context.Context, name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(ctx).WithComponent(applog.ComponentTemplate).ErrorContext(ctx, "Template execution failed",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeInternal,
			applog.FieldOperation, applog.OpRender,
			"template", name)
		return "", err
	}
	return buf.String(), nil
}

func (s *Server) writeTemplate(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	html, err := s.render(r.Context(), name, data)
	if err != nil {
		InternalServerError(msgRenderFailed).Write(w)
		return
	}
	b.BodyHTML(html).Write(w)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	dash, err := s.dashboardData(r.Context())
	if err != nil {
		InternalServerError(msgRenderFailed).Write(w)
		return
	}
	data := indexData{
		Form:      s.formData(r.Context()),
		Dashboard: dash,
	}
	s.writeTemplate(w, r, NewHTMXResponse(), "index.html", data)
}

// handleDashboard renders the table, summary and chart data. The client
// replaces the whole section.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.dashboardData(r.Context())
	if err != nil {
		InternalServerError(msgRenderFailed).Write(w)
		return
	}
	s.writeTemplate(w, r, NewHTMXResponse().Header("Cache-Control", "no-store"), "dashboard.html", dash)
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.writeTemplate(w, r, NewHTMXResponse(), "form.html", s.formData(r.Context()))
}

func (s *Server) handleOpenForm(w http.ResponseWriter, r *http.Request) {
	kind, err := parseKind(r)
	if err != nil {
		BadRequestError("Tipo de movimento inválido.").Write(w)
		return
	}
	if err := s.svc.OpenForm(r.Context(), kind); err != nil {
		BadRequestError("Tipo de movimento inválido.").Write(w)
		return
	}
	s.writeTemplate(w, r, NewHTMXResponse(), "form.html", s.formData(r.Context()))
}

func (s *Server) handleCancelForm(w http.ResponseWriter, r *http.Request) {
	s.svc.CancelForm(r.Context())
	s.writeTemplate(w, r, NewHTMXResponse().TriggerFormReset(), "form.html", s.formData(r.Context()))
}

// errorFields tags server-side failures with the request they belong to.
func (s *Server) errorFields(r *http.Request, errorType string) applog.LogFields {
	return applog.NewFields().
		WithErrorType(errorType).
		WithRequestID(trace.GetRequestID(r.Context())).
		WithClientIP(s.detector.ExtractClientIP(r))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		BadRequestError(msgInvalidRequest).Write(w)
		return
	}

	in := form.Input{
		Description: sanitizeInput(r.PostForm.Get("descricao")),
		Amount:      sanitizeInput(r.PostForm.Get("valor")),
		Category:    sanitizeInput(r.PostForm.Get("categoria")),
	}
	_, pending, _ := s.svc.FormState()

	m, err := s.svc.Submit(ctx, in)
	var invalid *form.InvalidInputError
	switch {
	case err == nil:
	case errors.As(err, &invalid):
		s.events.LogInvalidInput(ctx, err, pending.String())
		s.writeTemplate(w, r,
			NewHTMXResponse().
				Status(http.StatusUnprocessableEntity).
				TriggerBlockingNotice(invalid.Notice()),
			"form.html", s.formData(ctx))
		return
	case errors.Is(err, form.ErrFormClosed):
		ConflictError(msgFormClosed).TriggerErrorNotification(msgFormClosed).Write(w)
		return
	default:
		s.events.LogError(ctx, "Movement append failed", err, applog.OpAppend,
			s.errorFields(r, applog.ErrorTypeDatabase))
		InternalServerError(msgSaveFailed).TriggerErrorNotification(msgSaveFailed).Write(w)
		return
	}

	rev := s.svc.Revision()
	s.events.LogMovementCreated(ctx, m.ID, m.Description, m.Amount.Cents, m.Category, m.Kind.String(), rev)
	s.writeTemplate(w, r,
		NewHTMXResponse().
			TriggerLedgerChanged(rev).
			TriggerFormReset().
			TriggerSuccessNotification(msgMovementSaved),
		"form.html", s.formData(ctx))
}

// handleRemove deletes one movement by id (preferred) or by row index.
// Unknown ids and out-of-range indexes leave the ledger untouched.
func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		BadRequestError(msgInvalidRequest).Write(w)
		return
	}
	target, err := parseRemoveTarget(r)
	if err != nil {
		BadRequestError(msgInvalidRequest).Write(w)
		return
	}

	var removed core.Movement
	if target.ID != "" {
		removed, err = s.svc.Remove(ctx, target.ID)
	} else {
		removed, err = s.svc.RemoveAt(ctx, target.Index)
	}
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, ledger.ErrIndexOutOfRange):
		applog.FromContext(ctx).WarnContext(ctx, "Removal rejected",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeOutOfRange,
			applog.FieldOperation, applog.OpDelete,
			applog.FieldMovementID, target.ID,
			"index", target.Index)
		NotFoundError(msgMovementNotFound).TriggerErrorNotification(msgMovementNotFound).Write(w)
		return
	default:
		s.events.LogError(ctx, "Movement removal failed", err, applog.OpDelete,
			s.errorFields(r, applog.ErrorTypeDatabase))
		InternalServerError(msgSaveFailed).TriggerErrorNotification(msgSaveFailed).Write(w)
		return
	}

	rev := s.svc.Revision()
	applog.FromContext(ctx).InfoContext(ctx, "Movement removed",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldMovementID, removed.ID,
		applog.FieldRevision, rev)
	NewHTMXResponse().
		TriggerLedgerChanged(rev).
		TriggerSuccessNotification(msgMovementRemoved).
		Write(w)
}

// handleChart serves the Chart.js configuration of the current ledger.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	view, rev := s.svc.View(r.Context())
	NewHTMXResponse().
		Header("X-Ledger-Revision", strconv.FormatUint(rev, 10)).
		Header("Cache-Control", "no-store").
		JSON(view.Chart).
		Write(w)
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewHTMXResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks templates and the storage backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{"templates": "ok", "storage": "ok"}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["storage"] = "failed: " + err.Error()
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	NewHTMXResponse().
		Status(httpStatus).
		JSON(map[string]any{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"checks":    checks,
		}).
		Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	view, rev := s.svc.View(r.Context())
	traceMetrics := s.tracer.GetMetrics()
	rateLimitMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "Responses with a 5xx status", "counter", traceMetrics.ServerErrors)
	metric("ledger_movements", "Movements currently in the ledger", "gauge", len(view.Table.Rows))
	metric("ledger_revision", "Current ledger revision", "counter", rev)
	metric("ledger_balance_cents", "Current balance in cents", "gauge", view.Summary.Balance.Cents)
	metric("rate_limit_hits_total", "Total rate limit hits", "counter", rateLimitMetrics.TotalHits)
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", rateLimitMetrics.ClientCount)
	metric("suspicious_requests_total", "Total suspicious requests detected", "counter", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(s.started).Seconds()))
}
