package service

import (
	"fmt"
	"strings"

	"studio/internal/domain/errs"
)

// Domain errors
var (
	ErrEmptyName          = fmt.Errorf("%w: service name cannot be empty", errs.ErrValidation)
	ErrNameTooLong        = fmt.Errorf("%w: service name cannot exceed %d characters", errs.ErrValidation, MaxNameLength)
	ErrDescriptionTooLong = fmt.Errorf("%w: service description cannot exceed %d characters", errs.ErrValidation, MaxDescriptionLength)
	ErrInvalidLevel       = fmt.Errorf("%w: level must be 'beginner', 'intermediate', 'advanced' or 'all'", errs.ErrValidation)
	ErrNotFound           = fmt.Errorf("%w: service not found", errs.ErrNotFound)
)

// Level constants.
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelAll          = "all"
)

// Max length constants.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 2000
)

// Service is a class offering (e.g. Hatha, Ashtanga, Prenatal) that schedules run.
type Service struct {
	ID       string
	Name     string
	IsActive bool

	// Optional metadata for timetable display.
	Description string
	Level       string // optional; one of the Level constants
}

// Validate checks if the Service has valid data.
// PRE: Service struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if len(s.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(s.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	switch s.Level {
	case "", LevelBeginner, LevelIntermediate, LevelAdvanced, LevelAll:
	default:
		return ErrInvalidLevel
	}
	return nil
}
