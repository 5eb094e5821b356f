// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context.
package appcontext

import (
	"context"

	"codeberg.org/oliverandrich/mylife/internal/ctxkeys"
	"codeberg.org/oliverandrich/mylife/internal/htmx"
	"codeberg.org/oliverandrich/mylife/internal/models"
	"github.com/labstack/echo/v4"
)

// Context is a custom Echo context with typed fields for htmx and the user.
type Context struct {
	echo.Context
	Htmx *htmx.Request
	User *models.User // nil if not authenticated
}

// GetUser returns the authenticated user, or nil if not authenticated.
func (c *Context) GetUser() *models.User {
	return c.User
}

// IsAuthenticated returns true if the user is authenticated.
func (c *Context) IsAuthenticated() bool {
	return c.User != nil
}

// SetUser attaches user to c and to the request context, where templates
// look it up.
func SetUser(c echo.Context, user *models.User) {
	if cc, ok := c.(*Context); ok {
		cc.User = user
	}
	ctx := context.WithValue(c.Request().Context(), ctxkeys.User{}, user)
	c.SetRequest(c.Request().WithContext(ctx))
}

// UserFrom returns the user attached by SetUser, or nil.
func UserFrom(c echo.Context) *models.User {
	if cc, ok := c.(*Context); ok && cc.User != nil {
		return cc.User
	}
	if user, ok := c.Request().Context().Value(ctxkeys.User{}).(*models.User); ok {
		return user
	}
	return nil
}

// IsHtmx reports whether the request was issued by htmx.
func IsHtmx(c echo.Context) bool {
	if cc, ok := c.(*Context); ok && cc.Htmx != nil {
		return cc.Htmx.IsHtmx
	}
	return htmx.IsRequest(c.Request())
}
