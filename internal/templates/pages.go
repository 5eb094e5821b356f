// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"codeberg.org/oliverandrich/mylife/internal/models"
	"codeberg.org/oliverandrich/mylife/internal/services/session"
	"codeberg.org/oliverandrich/mylife/internal/services/tasks"
	"github.com/a-h/templ"
)

// Page holds what the layout needs on every page.
type Page struct {
	Flashes []session.Flash
}

// LoginPage is the login form. Next is the local path to return to.
type LoginPage struct {
	Page
	Email string
	Next  string
}

// RegisterPage is the sign-up form, refilled after a validation error.
type RegisterPage struct {
	Page
	Name  string
	Email string
}

// ForgotPage asks for the account email.
type ForgotPage struct {
	Page
	Email string
}

// ResetPage sets a new password for the owner of Token.
type ResetPage struct {
	Page
	Token string
}

// DashboardPage is the task list of the signed-in user.
type DashboardPage struct {
	Page
	User  *models.User
	Board *tasks.Dashboard
	Week  []tasks.Day
	Today string
	Form  tasks.Input
}

// ProfilePage shows and edits the account.
type ProfilePage struct {
	Page
	User      *models.User
	Total     int
	Completed int
	Name      string
}

// ErrorPage is rendered by the HTTP error handler.
type ErrorPage struct {
	Page
	Code    int
	Message string
	Detail  string
}

func Login(p LoginPage) templ.Component         { return page("login", p) }
func Register(p RegisterPage) templ.Component   { return page("register", p) }
func Forgot(p ForgotPage) templ.Component       { return page("forgot", p) }
func Reset(p ResetPage) templ.Component         { return page("reset", p) }
func Dashboard(p DashboardPage) templ.Component { return page("dashboard", p) }
func Profile(p ProfilePage) templ.Component     { return page("profile", p) }
func Error(p ErrorPage) templ.Component         { return page("error", p) }
