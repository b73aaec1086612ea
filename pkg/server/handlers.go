package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-leadform/pkg/model"
	"github.com/goliatone/go-leadform/pkg/render"
	"github.com/goliatone/go-leadform/pkg/workflow"
)

const maxFormBytes = 64 << 10

type problem struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(s.contract.Raw())
}

func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	token := s.csrfToken(w, r)
	sess, release, err := s.acquire(w, r)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	defer release()
	s.respond(w, r, sess, nil, token, http.StatusOK)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	step, err := strconv.Atoi(chi.URLParam(r, "step"))
	if err != nil || step < 1 {
		s.fail(w, r, http.StatusBadRequest, errors.New("server: step must be a positive integer"))
		return
	}
	values, submittedToken, err := readSubmission(w, r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	if err := s.checkCSRF(r, submittedToken); err != nil {
		s.fail(w, r, http.StatusForbidden, err)
		return
	}
	token := s.csrfToken(w, r)

	sess, release, err := s.acquire(w, r)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	defer release()

	err = sess.SubmitStep(r.Context(), model.StepID(step), values)
	switch {
	case err == nil:
	case errors.Is(err, workflow.ErrStaleStep), errors.Is(err, workflow.ErrTerminal):
		if s.wantsHTML(r) {
			s.redirect(w, r)
			return
		}
		s.fail(w, r, http.StatusConflict, err)
		return
	case errors.Is(err, workflow.ErrSubmitInProgress):
		s.fail(w, r, http.StatusTooManyRequests, err)
		return
	default:
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if err := s.save(r.Context(), sess); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}

	snap := sess.Snapshot()
	if snap.ErrorMessage != "" {
		s.respond(w, r, sess, values, token, http.StatusUnprocessableEntity)
		return
	}
	if s.wantsHTML(r) {
		s.redirect(w, r)
		return
	}
	s.respond(w, r, sess, nil, token, http.StatusOK)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *workflow.Session) { sess.GoBack() })
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(sess *workflow.Session) { sess.Reset() })
}

func (s *Server) mutate(w http.ResponseWriter, r *http.Request, apply func(*workflow.Session)) {
	_, submittedToken, err := readSubmission(w, r)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	if err := s.checkCSRF(r, submittedToken); err != nil {
		s.fail(w, r, http.StatusForbidden, err)
		return
	}
	token := s.csrfToken(w, r)

	sess, release, err := s.acquire(w, r)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	defer release()

	apply(sess)
	if err := s.save(r.Context(), sess); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	if s.wantsHTML(r) {
		s.redirect(w, r)
		return
	}
	s.respond(w, r, sess, nil, token, http.StatusOK)
}

// handleOptions serves the combobox listbox entries matching ?q= as an HTML
// fragment.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "field")
	field, ok := s.comboboxField(name)
	if !ok {
		s.fail(w, r, http.StatusNotFound, errors.New("server: unknown combobox field"))
		return
	}
	query := r.URL.Query()
	body, err := s.html.ComboboxOptions(field, query.Get("value"), query.Get("q"))
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

func (s *Server) comboboxField(name string) (model.FieldDefinition, bool) {
	for _, step := range s.engine.Definition().Steps {
		for _, field := range step.Fields {
			if field.Name == name && field.Kind == model.FieldKindCombobox {
				return field, true
			}
		}
	}
	return model.FieldDefinition{}, false
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *workflow.Session, draft map[string]string, token string, status int) {
	renderer, err := s.renderers.Negotiate(r.Header.Get("Accept"), s.html.Name())
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	opts := render.RenderOptions{
		BasePath:   s.basePath,
		Hidden:     hiddenFields(token),
		Theme:      s.theme(r),
		Translator: s.translator,
	}
	if s.translator != nil {
		opts.Locale = requestLocale(r)
	}

	body, err := renderer.Render(r.Context(), sess.View(draft), opts)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) theme(r *http.Request) *theme.RendererConfig {
	if s.themes == nil {
		return nil
	}
	query := r.URL.Query()
	name, variant := query.Get("theme"), query.Get("variant")
	if name == "" {
		name = s.themeName
	}
	if variant == "" {
		variant = s.themeVariant
	}
	cfg, err := s.themes.Resolve(name, variant)
	if err == nil {
		return cfg
	}
	s.logger.Debug("server: theme fallback", "theme", name, "variant", variant, "error", err)
	cfg, err = s.themes.Resolve(s.themeName, s.themeVariant)
	if err != nil {
		return nil
	}
	return cfg
}

// redirect answers HTML form posts with 303 so a refresh never resubmits.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.basePath, http.StatusSeeOther)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("server: request failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		s.logger.Debug("server: request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	message := http.StatusText(status)
	if status < http.StatusInternalServerError && err != nil {
		message = err.Error()
	}
	if s.wantsHTML(r) {
		http.Error(w, message, status)
		return
	}
	writeJSON(w, status, problem{Error: message})
}

func (s *Server) wantsHTML(r *http.Request) bool {
	renderer, err := s.renderers.Negotiate(r.Header.Get("Accept"), s.html.Name())
	return err == nil && renderer.Name() == s.html.Name()
}

// readSubmission decodes a JSON object or a form body into field values and
// returns the submitted CSRF token separately. The step and CSRF hidden
// inputs are never passed on as field values.
func readSubmission(w http.ResponseWriter, r *http.Request) (map[string]string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	values := make(map[string]string)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
				return nil, "", errors.New("server: body must be a JSON object of strings")
			}
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, "", errors.New("server: malformed form body")
		}
		for key := range r.PostForm {
			values[key] = r.PostForm.Get(key)
		}
	}

	token := values[render.HiddenCSRF]
	delete(values, render.HiddenCSRF)
	delete(values, render.HiddenStep)
	return values, token, nil
}

func requestLocale(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return lang
	}
	header := r.Header.Get("Accept-Language")
	if header == "" {
		return ""
	}
	first := strings.Split(header, ",")[0]
	tag, _, _ := strings.Cut(first, ";")
	return strings.TrimSpace(tag)
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}
