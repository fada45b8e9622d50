package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/mycent-kz/edo-orchestrator/internal/core/domain"
	"github.com/mycent-kz/edo-orchestrator/internal/core/usecase"
	"github.com/mycent-kz/edo-orchestrator/internal/observability/metrics"
)

// Options carries the transport-level knobs the router needs beyond
// its use-case dependencies.
type Options struct {
	JWTSecret          string
	CORSAllowedOrigins []string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

type Router struct {
	sessions  *usecase.SessionManager
	loader    *usecase.LoadDocumentUseCase
	creator   *usecase.CreateDocumentUseCase
	submitter *usecase.SubmitUseCase
	resender  *usecase.ResendUseCase
	printer   *usecase.PrintFormUseCase
	metrics   *metrics.HTTPServerMetrics
	opts      Options
}

func NewRouter(
	sessions *usecase.SessionManager,
	loader *usecase.LoadDocumentUseCase,
	creator *usecase.CreateDocumentUseCase,
	submitter *usecase.SubmitUseCase,
	resender *usecase.ResendUseCase,
	printer *usecase.PrintFormUseCase,
	httpMetrics *metrics.HTTPServerMetrics,
	opts Options,
) *Router {
	return &Router{
		sessions:  sessions,
		loader:    loader,
		creator:   creator,
		submitter: submitter,
		resender:  resender,
		printer:   printer,
		metrics:   httpMetrics,
		opts:      opts,
	}
}

func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(accessLogMiddleware)
	r.Use(chimiddleware.Recoverer)
	if rt.metrics != nil {
		r.Use(rt.metrics.Middleware(func(req *http.Request) string {
			return chi.RouteContext(req.Context()).RoutePattern()
		}))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if rt.metrics != nil {
		r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		if rt.opts.RateLimitPerSecond > 0 {
			r.Use(rateLimitMiddleware(rate.Limit(rt.opts.RateLimitPerSecond), rt.opts.RateLimitBurst))
		}
		r.Use(authMiddleware(rt.opts.JWTSecret))

		r.Post("/sessions", rt.openSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", rt.getSession)
			r.Delete("/", rt.closeSession)
			r.Post("/class", rt.chooseClass)
			r.Post("/submit", rt.submit)
			r.Post("/back", rt.back)
			r.Post("/confirm-ack", rt.ackConfirm)
			r.Post("/survey-ack", rt.ackSurvey)
			r.Post("/resend", rt.resend)
			r.Get("/print-form", rt.printForm)
			r.Get("/tabular.xlsx", rt.exportTabular)
		})
	})

	return r
}

// stateView is the wire projection of a session's editor state.
type stateView struct {
	SessionID string `json:"session_id"`
	Step      int    `json:"step"`

	Document *domain.Document `json:"document,omitempty"`
	Settings *domain.Settings `json:"settings,omitempty"`

	LoadingSettings         bool `json:"loading_settings"`
	ConfirmModalVisible     bool `json:"confirm_modal_visible"`
	SurveyModalVisible      bool `json:"survey_modal_visible"`
	DownloadFormRequested   bool `json:"download_form_requested"`
	IntegrationResendNeeded bool `json:"integration_resend_needed"`
	AccessDenied            bool `json:"access_denied"`
	HasSurvey               bool `json:"has_survey"`
	CanRenderDetail         bool `json:"can_render_detail"`
}

func viewOf(sess *usecase.Session) stateView {
	state := sess.State()
	return stateView{
		SessionID:               sess.ID,
		Step:                    int(state.Step),
		Document:                state.Document,
		Settings:                state.Settings,
		LoadingSettings:         state.LoadingSettings,
		ConfirmModalVisible:     state.ConfirmModalVisible,
		SurveyModalVisible:      state.SurveyModalVisible,
		DownloadFormRequested:   state.DownloadFormRequested,
		IntegrationResendNeeded: state.IntegrationResendNeeded,
		AccessDenied:            state.AccessDenied,
		HasSurvey:               state.HasSurvey,
		CanRenderDetail:         state.CanRenderDetail(),
	}
}

func (rt *Router) session(w http.ResponseWriter, r *http.Request) (*usecase.Session, bool) {
	sess, err := rt.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

type openSessionRequest struct {
	DocumentID *int64 `json:"document_id"`
}

// openSession starts an editing session. With a document_id it also
// performs the full document load; a forbidden document still yields a
// session so the client can render the access-denied view and go back.
func (rt *Router) openSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	sess := rt.sessions.Create(IdentityFromContext(r.Context()))

	if req.DocumentID == nil {
		writeJSON(w, http.StatusCreated, viewOf(sess))
		return
	}

	sess.Lock()
	defer sess.Unlock()
	if err := rt.loader.Load(r.Context(), sess, *req.DocumentID); err != nil {
		if domain.IsKind(err, domain.ErrAccessDenied) {
			writeJSON(w, http.StatusForbidden, viewOf(sess))
			return
		}
		rt.sessions.Delete(sess.ID)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(sess))
}

func (rt *Router) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := rt.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (rt *Router) closeSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := rt.session(w, r)
	if !ok {
		return
	}
	rt.sessions.Delete(sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// chooseClass finishes step 1: resolves the class configuration,
// registers the document remotely and moves the session to the detail
// step.
func (rt *Router) chooseClass(w http.ResponseWriter, r *http.Request) {
	sess, ok := rt.session(w, r)
	if !ok {
		return
	}

	var req usecase.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	sess.Lock()
	defer sess.Unlock()
	doc, err := rt.creator.Create(r.Context(), sess, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"document": doc,
		"state":    viewOf(sess),
	})
}

func (rt *Router) submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := rt.session(w, r)
	if !ok {
		return
	}

	var forms domain.SubForms
	if err := json.NewDecoder(r.Body).Decode(&forms); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return
	}

	sess.Lock()
	defer sess.Unlock()
	action, err := rt.submitter.Submit(r.Context(), sess, &forms)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"action":    action.String(),
		"submitted": action.Submits(),
		"state":     viewOf(sess),
	})
}

func (rt *Router) back(w http.ResponseWriter, r *http.Request) {
	sess, ok := rt.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	sess.GoBack()
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (rt *Router) ackConfirm(w http.ResponseWriter, r *http.Request) {
	sess, ok := rt.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	sess.SetState(sess.State().HideConfirmModal())
	writeJSON(w, http.StatusOK, viewOf(sess))
}

func (rt *Router) ackSurvey(w http.ResponseWriter, r *http.Request) {
	sess, ok := rt.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()
	sess.SetState(sess.State().HideSurveyModal())
	writeJSON(w, http.StatusOK, viewOf(sess))
}

// resend re-pushes the document to the integration system. The action
// is administrative and only meaningful while the failure flag is set.
func (rt *Router) resend(w http.ResponseWriter, r *http.Request) {
	sess, ok := rt.session(w, r)
	if !ok {
		return
	}
	if !IdentityFromContext(r.Context()).IsAdmin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "administrator role required"})
		return
	}

	sess.Lock()
	defer sess.Unlock()
	if !sess.State().IntegrationResendNeeded {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "document has no pending integration failure"})
		return
	}

	success, err := rt.resender.Resend(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": success,
		"state":   viewOf(sess),
	})
}

func (rt *Router) printForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := rt.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	filename, data, err := rt.printer.Fetch(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAttachment(w, filename, "application/pdf", data)
}

func (rt *Router) exportTabular(w http.ResponseWriter, r *http.Request) {
	sess, ok := rt.session(w, r)
	if !ok {
		return
	}
	sess.Lock()
	defer sess.Unlock()

	filename, data, err := rt.printer.ExportTabular(r.Context(), sess)
	if err != nil {
		writeError(w, err)
		return
	}
	writeAttachment(w, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func writeAttachment(w http.ResponseWriter, filename, contentType string, data []byte) {
	// FormatMediaType renders the filename* form for non-ASCII names.
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
