// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package session

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

const flashStateKey = "session.flash"

// Flash is a message shown once on the next rendered page.
type Flash struct {
	Kind string `json:"k"`
	Text string `json:"t"`
}

type flashState struct {
	pending  []Flash
	consumed bool
}

func (m *Manager) flashCookieName() string {
	return m.name + "_flash"
}

// AddFlash queues a message. It is shown by this request's page if it
// renders one, otherwise by the next request after a redirect.
func (m *Manager) AddFlash(c echo.Context, kind, text string) {
	s := m.flashState(c)
	s.pending = append(s.pending, Flash{Kind: kind, Text: text})
}

// Flashes returns and clears the queued messages.
func (m *Manager) Flashes(c echo.Context) []Flash {
	s := m.flashState(c)

	var out []Flash
	if !s.consumed {
		out = m.storedFlashes(c)
		s.consumed = true
	}
	out = append(out, s.pending...)
	s.pending = nil
	return out
}

// storedFlashes decodes the messages carried over from an earlier request.
func (m *Manager) storedFlashes(c echo.Context) []Flash {
	cookie, err := c.Request().Cookie(m.flashCookieName())
	if err != nil {
		return nil
	}
	var stored []Flash
	if m.codec.Decode(m.flashCookieName(), cookie.Value, &stored) != nil {
		return nil
	}
	return stored
}

func (m *Manager) flashState(c echo.Context) *flashState {
	if s, ok := c.Get(flashStateKey).(*flashState); ok {
		return s
	}
	s := &flashState{}
	c.Set(flashStateKey, s)
	c.Response().Before(func() {
		m.writeFlashes(c, s)
	})
	return s
}

// writeFlashes persists unread messages, or drops the cookie once read.
// Messages still unread from an earlier request are kept ahead of new ones.
func (m *Manager) writeFlashes(c echo.Context, s *flashState) {
	name := m.flashCookieName()
	if len(s.pending) > 0 {
		unread := s.pending
		if !s.consumed {
			unread = append(m.storedFlashes(c), s.pending...)
		}
		encoded, err := m.codec.Encode(name, unread)
		if err != nil {
			c.Logger().Errorf("flash encode: %v", err)
			return
		}
		http.SetCookie(c.Response(), m.cookie(name, encoded, 0))
		return
	}
	if _, err := c.Request().Cookie(name); err == nil && s.consumed {
		http.SetCookie(c.Response(), m.cookie(name, "", -1))
	}
}
