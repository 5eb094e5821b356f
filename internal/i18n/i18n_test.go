// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package i18n_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/oliverandrich/mylife/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestInit(t *testing.T) {
	err := i18n.Init()
	require.NoError(t, err)
}

func TestT(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "Invalid email or password.", i18n.T(ctx, "flash_invalid_credentials"))
}

func TestT_Portuguese(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.BrazilianPortuguese)

	assert.Equal(t, "E-mail ou senha inválidos.", i18n.T(ctx, "flash_invalid_credentials"))
}

func TestT_UnknownKey(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	// Should return the key itself for unknown messages
	result := i18n.T(ctx, "unknown_key_that_does_not_exist")
	assert.Equal(t, "unknown_key_that_does_not_exist", result)
}

func TestT_NoLocaleContext(t *testing.T) {
	require.NoError(t, i18n.Init())

	// Without WithLocale the default language is used
	result := i18n.T(context.Background(), "task_delete")
	assert.Equal(t, "Excluir", result)
}

func TestTData(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	result := i18n.TData(ctx, "dashboard_progress", map[string]any{
		"Completed": 1,
		"Total":     3,
		"Percent":   33,
	})
	assert.Equal(t, "1 of 3 done (33%)", result)
}

func TestMonthAndWeekday(t *testing.T) {
	require.NoError(t, i18n.Init())

	pt := i18n.WithLocale(context.Background(), language.BrazilianPortuguese)
	en := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "Março", i18n.Month(pt, time.March))
	assert.Equal(t, "December", i18n.Month(en, time.December))
	assert.Equal(t, "Segunda", i18n.Weekday(pt, time.Monday))
	assert.Equal(t, "Sunday", i18n.Weekday(en, time.Sunday))
}

func TestCalendarNamesTranslated(t *testing.T) {
	require.NoError(t, i18n.Init())

	pt := i18n.WithLocale(context.Background(), language.BrazilianPortuguese)
	en := i18n.WithLocale(context.Background(), language.English)

	for m := time.January; m <= time.December; m++ {
		assert.NotContains(t, i18n.Month(en, m), "month_")
		assert.NotContains(t, i18n.Month(pt, m), "month_")
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		assert.NotContains(t, i18n.Weekday(en, d), "weekday_")
		assert.NotContains(t, i18n.Weekday(pt, d), "weekday_")
	}
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		expected       language.Tag
		acceptLanguage string
	}{
		{language.English, "en"},
		{language.English, "en-US"},
		{language.English, "en-GB"},
		{language.BrazilianPortuguese, "pt-BR"},
		{language.BrazilianPortuguese, "pt"},
		{language.BrazilianPortuguese, "fr"}, // fallback to default
		{language.BrazilianPortuguese, ""},   // empty defaults to default
		{language.BrazilianPortuguese, "pt-BR, en;q=0.9"},
		{language.English, "en, pt;q=0.9"},
	}

	for _, tt := range tests {
		t.Run(tt.acceptLanguage, func(t *testing.T) {
			assert.Equal(t, tt.expected, i18n.MatchLanguage(tt.acceptLanguage))
		})
	}
}

func TestWithLocale(t *testing.T) {
	require.NoError(t, i18n.Init())

	ctx := i18n.WithLocale(context.Background(), language.English)

	assert.Equal(t, "en", i18n.GetLocale(ctx))
}

func TestGetLocale_Default(t *testing.T) {
	assert.Equal(t, "pt-BR", i18n.GetLocale(context.Background()))
}
