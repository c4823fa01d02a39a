package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/repository"
	"github.com/induskill/marketplace-api/internal/service"
)

var validate = validator.New()

const (
	homeFeaturedCourses = 6
	homePartners        = 6
	catalogPageSize     = 12
)

// Home renders the landing page with featured courses and partners
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	featured, err := h.courses.Featured(r.Context(), homeFeaturedCourses)
	if err != nil {
		h.renderError(w, r, err, "load featured courses")
		return
	}
	partners, err := h.partners.List(r.Context(), 1, homePartners, "", "")
	if err != nil {
		h.renderError(w, r, err, "load partners")
		return
	}

	p := h.newPage(r, "Industrial training that works")
	p.Data = map[string]interface{}{
		"Courses":  featured,
		"Partners": partners.Data,
	}
	h.render(w, http.StatusOK, "home", p)
}

// Courses renders the searchable catalog
func (h *Handler) Courses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.TrimSpace(q.Get("search"))
	courseType := domain.CourseType(q.Get("type"))
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}

	filters := &repository.CourseFilters{}
	if search != "" {
		filters.Search = &search
	}
	if courseType.IsValid() {
		filters.Type = &courseType
	} else {
		courseType = ""
	}

	result, err := h.courses.List(r.Context(), page, catalogPageSize, filters, repository.CourseSortNewest)
	if err != nil {
		h.renderError(w, r, err, "list courses")
		return
	}

	p := h.newPage(r, "Courses")
	p.Data = map[string]interface{}{
		"Result": result,
		"Search": search,
		"Type":   string(courseType),
		"Types":  []domain.CourseType{domain.CourseTypeOnline, domain.CourseTypeOnsite, domain.CourseTypeHybrid},
	}
	h.render(w, http.StatusOK, "courses", p)
}

// Course renders a course with its enrollment form
func (h *Handler) Course(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(w, r, service.ErrCourseNotFound, "get course")
		return
	}

	h.renderCourse(w, r, id, http.StatusOK, nil, nil, "")
}

// Enroll handles the enrollment form on the course page
func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.renderError(w, r, service.ErrCourseNotFound, "enroll")
		return
	}
	if _, ok := auth.FromContext(r.Context()); !ok {
		h.redirectToSignIn(w, r, coursePath(id))
		return
	}
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, service.ErrInvalidInput, "enroll")
		return
	}

	req := &domain.EnrollRequest{
		CourseID:      id,
		ContactName:   strings.TrimSpace(r.PostForm.Get("contactName")),
		ContactEmail:  strings.TrimSpace(r.PostForm.Get("contactEmail")),
		Phone:         strings.TrimSpace(r.PostForm.Get("phone")),
		Organization:  strings.TrimSpace(r.PostForm.Get("organization")),
		PaymentMethod: domain.PaymentMethod(r.PostForm.Get("paymentMethod")),
		Notes:         strings.TrimSpace(r.PostForm.Get("notes")),
	}
	if fields := formErrors(validate.Struct(req)); len(fields) > 0 {
		h.renderCourse(w, r, id, http.StatusBadRequest, req, fields, "")
		return
	}

	if _, err := h.enrollments.Enroll(r.Context(), req); err != nil {
		if errors.Is(err, service.ErrConflict) {
			h.renderCourse(w, r, id, http.StatusConflict, req, nil, "You are already enrolled in this course.")
			return
		}
		h.renderError(w, r, err, "enroll")
		return
	}

	h.renderCourse(w, r, id, http.StatusOK, nil, nil, "You're enrolled! We'll be in touch with batch details.")
}

func (h *Handler) renderCourse(w http.ResponseWriter, r *http.Request, id uuid.UUID, status int, form *domain.EnrollRequest, fields map[string]string, flash string) {
	course, err := h.courses.GetByID(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err, "get course")
		return
	}

	p := h.newPage(r, course.Title)
	p.SignInURL = h.signInURL(coursePath(id))
	p.Data = course
	p.Form = form
	p.Errors = fields
	p.Flash = flash
	h.render(w, status, "course", p)
}

func coursePath(id uuid.UUID) string {
	return "/courses/" + id.String()
}

// Partners renders the partner company directory
func (h *Handler) Partners(w http.ResponseWriter, r *http.Request) {
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	industry := strings.TrimSpace(r.URL.Query().Get("industry"))

	result, err := h.partners.List(r.Context(), 1, 100, search, industry)
	if err != nil {
		h.renderError(w, r, err, "list partners")
		return
	}
	industries, err := h.partners.Industries(r.Context())
	if err != nil {
		h.renderError(w, r, err, "list industries")
		return
	}

	p := h.newPage(r, "Partner companies")
	p.Data = map[string]interface{}{
		"Result":     result,
		"Search":     search,
		"Industry":   industry,
		"Industries": industries,
	}
	h.render(w, http.StatusOK, "partners", p)
}

// ContactForm renders the empty contact form
func (h *Handler) ContactForm(w http.ResponseWriter, r *http.Request) {
	p := h.newPage(r, "Contact us")
	p.Form = &domain.CreateContactMessageRequest{}
	h.render(w, http.StatusOK, "contact", p)
}

// ContactSubmit stores a contact form submission
func (h *Handler) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, service.ErrInvalidInput, "submit contact form")
		return
	}

	req := &domain.CreateContactMessageRequest{
		Name:    strings.TrimSpace(r.PostForm.Get("name")),
		Email:   strings.TrimSpace(r.PostForm.Get("email")),
		Subject: strings.TrimSpace(r.PostForm.Get("subject")),
		Message: strings.TrimSpace(r.PostForm.Get("message")),
	}

	p := h.newPage(r, "Contact us")
	if fields := formErrors(validate.Struct(req)); len(fields) > 0 {
		p.Form = req
		p.Errors = fields
		h.render(w, http.StatusBadRequest, "contact", p)
		return
	}

	if _, err := h.contact.Submit(r.Context(), req); err != nil {
		h.renderError(w, r, err, "submit contact form")
		return
	}

	p.Form = &domain.CreateContactMessageRequest{}
	p.Flash = "Thanks for reaching out. Our team will reply within two working days."
	h.render(w, http.StatusOK, "contact", p)
}

// Dashboard sends signed-in users to their role's dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		h.redirectToSignIn(w, r, r.URL.RequestURI())
		return
	}
	http.Redirect(w, r, user.EffectiveRole().DashboardPath(), http.StatusSeeOther)
}

// RoleDashboard renders a role dashboard. Visiting another role's dashboard
// without admin rights redirects to the visitor's own.
func (h *Handler) RoleDashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		h.redirectToSignIn(w, r, r.URL.RequestURI())
		return
	}

	role := domain.Role(chi.URLParam(r, "role"))
	data, err := h.dashboards.ForRole(r.Context(), role)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			http.Redirect(w, r, user.EffectiveRole().DashboardPath(), http.StatusSeeOther)
			return
		}
		h.renderError(w, r, err, "load dashboard")
		return
	}

	p := h.newPage(r, strings.ToUpper(string(role[:1]))+string(role[1:])+" dashboard")
	p.Data = map[string]interface{}{
		"Role":      string(role),
		"Dashboard": data,
	}
	h.render(w, http.StatusOK, "dashboard", p)
}

// NotFound renders the themed 404 page
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, service.ErrNotFound, "route")
}

// formErrors turns validator errors into form field messages keyed by the input name
func formErrors(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		name := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		fields[name] = domain.GetValidationMessage(fe.Tag())
	}
	return fields
}
