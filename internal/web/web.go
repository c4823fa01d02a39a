// Package web renders the marketplace pages on the server. Pages share one
// layout that carries the theme pre-hydration script.
package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/config"
	"github.com/induskill/marketplace-api/internal/logger"
	"github.com/induskill/marketplace-api/internal/service"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// SignupRoleKey is the local-storage key that carries the role picked on the sign-up form
const SignupRoleKey = "signup_role"

// ThemeStorageKey is the local-storage key holding the theme preference
const ThemeStorageKey = "theme"

var pages = []string{"home", "courses", "course", "partners", "contact", "dashboard", "error"}

type Handler struct {
	courses     *service.CourseService
	partners    *service.PartnerService
	enrollments *service.EnrollmentService
	contact     *service.ContactService
	dashboards  *service.DashboardService
	cfg         *config.WebConfig
	appName     string
	secure      bool
	templates   map[string]*template.Template
	logger      *zap.Logger
}

func NewHandler(
	cfg *config.WebConfig,
	app *config.AppConfig,
	courses *service.CourseService,
	partners *service.PartnerService,
	enrollments *service.EnrollmentService,
	contact *service.ContactService,
	dashboards *service.DashboardService,
	logger *zap.Logger,
) (*Handler, error) {
	templates, err := parseTemplates(templateFS)
	if err != nil {
		return nil, err
	}

	return &Handler{
		courses:     courses,
		partners:    partners,
		enrollments: enrollments,
		contact:     contact,
		dashboards:  dashboards,
		cfg:         cfg,
		appName:     app.Name,
		secure:      strings.HasPrefix(app.PublicURL, "https://"),
		templates:   templates,
		logger:      logger,
	}, nil
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"rating": func(r float64) string {
		return fmt.Sprintf("%.1f", r)
	},
	"title": func(s interface{}) string {
		v := fmt.Sprint(s)
		if v == "" {
			return v
		}
		return strings.ToUpper(v[:1]) + v[1:]
	},
	"add": func(a, b int) int { return a + b },
}

func parseTemplates(fsys fs.FS) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(fsys, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", page, err)
		}
		templates[page] = t
	}
	return templates, nil
}

// pageData is the model every page template receives
type pageData struct {
	AppName         string
	Title           string
	Path            string
	Theme           Theme
	ThemeFromCookie bool
	ThemeCookie     string
	ThemeKey        string
	SignupRoleKey   string
	SignInURL       string
	User            *auth.UserContext
	Dashboard       string
	Flash           string
	Errors          map[string]string
	Form            interface{}
	Data            interface{}
}

func (h *Handler) newPage(r *http.Request, title string) *pageData {
	theme, source := ResolveTheme(r, h.cfg.ThemeCookie, Theme(h.cfg.DefaultTheme))
	p := &pageData{
		AppName:         h.appName,
		Title:           title,
		Path:            r.URL.RequestURI(),
		Theme:           theme,
		ThemeFromCookie: source == ThemeSourceCookie,
		ThemeCookie:     h.cfg.ThemeCookie,
		ThemeKey:        ThemeStorageKey,
		SignupRoleKey:   SignupRoleKey,
		SignInURL:       h.cfg.SignInURL,
	}
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		p.SignInURL = h.signInURL(r.URL.RequestURI())
	}
	if user, ok := auth.FromContext(r.Context()); ok {
		p.User = user
		p.Dashboard = user.EffectiveRole().DashboardPath()
	}
	return p
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, data *pageData) {
	t, ok := h.templates[page]
	if !ok {
		h.logger.Error("unknown page template", zap.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.logger.Error("failed to render page", zap.String("page", page), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status, message := http.StatusInternalServerError, "Something went wrong. Please try again later."
	var missing *service.MissingTableError
	switch {
	case errors.As(err, &missing):
		status, message = http.StatusServiceUnavailable, "The catalog is being set up. Please check back soon."
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, "We couldn't find that page."
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, "You don't have access to this page."
	case errors.Is(err, service.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context(), h.logger).Error("failed to "+action, zap.Error(err))
	}

	p := h.newPage(r, http.StatusText(status))
	p.Data = map[string]interface{}{"Status": status, "Message": message}
	h.render(w, status, "error", p)
}

// signInURL is the sign-in page that returns the visitor to returnTo afterwards.
// returnTo must be a page that answers GET.
func (h *Handler) signInURL(returnTo string) string {
	sep := "?"
	if strings.Contains(h.cfg.SignInURL, "?") {
		sep = "&"
	}
	return h.cfg.SignInURL + sep + "redirect_url=" + url.QueryEscape(returnTo)
}

// redirectToSignIn sends anonymous visitors to the identity provider's sign-in page
func (h *Handler) redirectToSignIn(w http.ResponseWriter, r *http.Request, returnTo string) {
	http.Redirect(w, r, h.signInURL(returnTo), http.StatusSeeOther)
}

// ToggleTheme flips or sets the theme cookie and returns to the page the form was posted from
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	current, _ := ResolveTheme(r, h.cfg.ThemeCookie, Theme(h.cfg.DefaultTheme))
	next := current.Toggle()
	if t, ok := ParseTheme(r.PostForm.Get("theme")); ok {
		next = t
	}

	http.SetCookie(w, themeCookie(h.cfg.ThemeCookie, next, h.secure))
	http.Redirect(w, r, safeRedirect(r.PostForm.Get("redirect")), http.StatusSeeOther)
}
