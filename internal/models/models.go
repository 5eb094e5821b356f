// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package models holds the row types shared by the repository and services.
package models

// Field limits mirrored by the schema and the validators.
const (
	MaxNameLength     = 100
	MaxEmailLength    = 120
	MaxListNameLength = 100
	MaxTitleLength    = 200
	MaxDateLength     = 20
	MaxLinkLength     = 500
)

// DefaultListName is the list heading a new account starts with.
const DefaultListName = "Minha Lista de Tarefas"
