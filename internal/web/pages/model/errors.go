package model

import "github.com/Laisky/errors/v2"

// ErrNotFound is returned when no page matches a slug
var ErrNotFound = errors.New("page not found")
