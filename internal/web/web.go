// Package web serves the browser-rendered pages: the sign-in form, the
// first-run bootstrap page, and the protected dashboard area. Pages are
// presentational; every decision runs through the JSON API.
package web

import (
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	appmiddleware "github.com/launchkit/boilerplate/internal/api/middleware"
	"github.com/launchkit/boilerplate/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer satisfies echo.Renderer over the embedded templates.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// Handler registers the page routes.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/", h.Home)
	e.GET("/sign-in", h.SignInPage)
	e.GET("/start", h.StartPage)
	e.GET("/dashboard", h.DashboardPage)
	e.GET("/profile", h.DashboardPage)
	e.GET("/admin", h.DashboardPage)
}

func (h *Handler) Home(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/start")
}

func (h *Handler) SignInPage(c echo.Context) error {
	return c.Render(http.StatusOK, "sign-in.html", nil)
}

// StartPage renders the first-run flow. The page itself is public; the
// script on it calls /api/admin/count with the stored token and offers the
// self-promotion action only while zero admins exist.
func (h *Handler) StartPage(c echo.Context) error {
	return c.Render(http.StatusOK, "start.html", nil)
}

// DashboardPage renders the protected area. The session gate has already
// resolved the user and stored it on the context.
func (h *Handler) DashboardPage(c echo.Context) error {
	user, _ := c.Get(appmiddleware.UserContextKey).(*domain.User)
	return c.Render(http.StatusOK, "dashboard.html", map[string]any{
		"User": user,
		"Path": c.Request().URL.Path,
	})
}
