// Package render выполняет серверный рендеринг страниц приложения.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/Dommgrand/notesapp/internal/app"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageTemplate  = "page.html"
	loginTemplate = "login.html"
)

// PageData - данные основной страницы заметок.
type PageData struct {
	app.Snapshot

	Username string
}

// LoginData - данные страницы входа и регистрации.
type LoginData struct {
	Error    string
	Email    string
	Username string
}

// Renderer исполняет встроенные шаблоны приложения.
type Renderer struct {
	templates *template.Template
}

// New разбирает встроенные шаблоны.
func New() (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Renderer{templates: templates}, nil
}

// Page рендерит страницу заметок.
func (r *Renderer) Page(data PageData) ([]byte, error) {
	return r.execute(pageTemplate, data)
}

// Login рендерит страницу входа.
func (r *Renderer) Login(data LoginData) ([]byte, error) {
	return r.execute(loginTemplate, data)
}

func (r *Renderer) execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("executing template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
