// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the HTML pages. Each page is parsed together
// with the layout once at startup and exposed as a templ.Component.
package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"codeberg.org/oliverandrich/mylife/internal/i18n"
	"codeberg.org/oliverandrich/mylife/internal/models"
	"github.com/a-h/templ"
)

//go:embed views/*.html
var viewsFS embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"login", "register", "forgot", "reset", "dashboard", "profile", "error"} {
		pages[name] = template.Must(
			template.New(name).Funcs(funcs(context.Background())).
				ParseFS(viewsFS, "views/layout.html", "views/"+name+".html"),
		)
	}
}

// funcs binds the template helpers to the request context. The set parsed
// at init only fixes the names; every render installs its own copy.
func funcs(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"t":     func(id string) string { return T(ctx, id) },
		"tdata": func(id string, pairs ...any) (string, error) { return TData(ctx, id, pairs...) },
		"csrf":  func() string { return CSRFToken(ctx) },
		"user":    func() *models.User { return GetUser(ctx) },
		"locale":  func() string { return Locale(ctx) },
		"date":    func(t time.Time) string { return FormatDate(ctx, t) },
		"month":   func(m time.Month) string { return i18n.Month(ctx, m) },
		"weekday": func(d time.Weekday) string { return i18n.Weekday(ctx, d) },
	}
}

func page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		base, ok := pages[name]
		if !ok {
			return fmt.Errorf("unknown page %q", name)
		}
		tmpl, err := base.Clone()
		if err != nil {
			return err
		}
		return tmpl.Funcs(funcs(ctx)).ExecuteTemplate(w, "layout", data)
	})
}
