// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"

	"codeberg.org/oliverandrich/mylife/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_SetPassword(t *testing.T) {
	user := &models.User{}

	err := user.SetPassword("segredo123")

	require.NoError(t, err)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "segredo123", user.PasswordHash)
}

func TestUser_CheckPassword(t *testing.T) {
	user := &models.User{}
	require.NoError(t, user.SetPassword("segredo123"))

	assert.True(t, user.CheckPassword("segredo123"))
	assert.False(t, user.CheckPassword("wrong"))
	assert.False(t, user.CheckPassword(""))
}

func TestUser_CheckPassword_NoHash(t *testing.T) {
	user := &models.User{}

	assert.False(t, user.CheckPassword("anything"))
}

func TestUser_SessionStamp(t *testing.T) {
	user := &models.User{}
	require.NoError(t, user.SetPassword("first-password"))
	before := user.SessionStamp()

	assert.Len(t, before, 16)
	assert.Equal(t, before, user.SessionStamp(), "stamp is stable for the same hash")

	require.NoError(t, user.SetPassword("second-password"))

	assert.NotEqual(t, before, user.SessionStamp())
}

func TestUser_HasRecoveryToken(t *testing.T) {
	user := &models.User{}
	assert.False(t, user.HasRecoveryToken())

	empty := ""
	user.RecoveryTokenHash = &empty
	assert.False(t, user.HasRecoveryToken())

	hash := "abc"
	user.RecoveryTokenHash = &hash
	assert.True(t, user.HasRecoveryToken())
}
