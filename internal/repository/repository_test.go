// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"errors"
	"testing"

	"codeberg.org/oliverandrich/mylife/internal/repository"
	"codeberg.org/oliverandrich/mylife/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	db, repo := testutil.NewTestDB(t)

	assert.NotNil(t, repo)
	assert.Same(t, db, repo.DB())
	assert.NoError(t, repo.Ping(context.Background()))
}

func TestWithTx_Commit(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "Ana", "ana@x.com")

	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		return tx.UpdateListName(ctx, user.ID, "Semana")
	})
	require.NoError(t, err)

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Semana", got.ListName)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "Ana", "ana@x.com")
	boom := errors.New("boom")

	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.UpdateListName(ctx, user.ID, "Semana"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Minha Lista de Tarefas", got.ListName)
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "Ana", "ana@x.com")

	assert.PanicsWithValue(t, "boom", func() {
		_ = repo.WithTx(ctx, func(tx *repository.Repository) error {
			_ = tx.UpdateListName(ctx, user.ID, "Semana")
			panic("boom")
		})
	})

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Minha Lista de Tarefas", got.ListName)
}

func TestWithTx_Nested(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "Ana", "ana@x.com")

	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		return tx.WithTx(ctx, func(inner *repository.Repository) error {
			return inner.UpdateUserName(ctx, user.ID, "Ana Maria")
		})
	})
	require.NoError(t, err)

	got, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", got.Name)
}
