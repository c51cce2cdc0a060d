package profile

import (
	"fmt"
	"strings"

	"comida-a-casa/internal/apperr"
)

// Gender of a family member.
type Gender string

const (
	Male   Gender = "Hombre"
	Female Gender = "Mujer"
	Other  Gender = "Otro"
)

// ActivityLevel of a family member.
type ActivityLevel string

const (
	ActivityLow      ActivityLevel = "Bajo"
	ActivityModerate ActivityLevel = "Moderado"
	ActivityHigh     ActivityLevel = "Alto"
	ActivityVeryHigh ActivityLevel = "Muy Alto"
)

// InvalidMessage is shown when a profile lacks a name or a valid age.
const InvalidMessage = "Por favor, completa el nombre y una edad válida."

// Profile is a family member whose attributes personalize generation.
type Profile struct {
	ID            string        `json:"id"`
	Name          string        `json:"name" binding:"required"`
	Age           int           `json:"age" binding:"required,gt=0"`
	Gender        Gender        `json:"gender" binding:"required,oneof=Hombre Mujer Otro"`
	ActivityLevel ActivityLevel `json:"activityLevel" binding:"required,oneof=Bajo Moderado Alto 'Muy Alto'"`
	Notes         string        `json:"notes"`
}

// Validate checks the invariants of a profile before it is stored.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" || p.Age <= 0 {
		return apperr.New(apperr.MalformedInput, "profile.validate", InvalidMessage)
	}
	switch p.Gender {
	case Male, Female, Other:
	default:
		return apperr.New(apperr.MalformedInput, "profile.validate", "Selecciona un género válido.")
	}
	switch p.ActivityLevel {
	case ActivityLow, ActivityModerate, ActivityHigh, ActivityVeryHigh:
	default:
		return apperr.New(apperr.MalformedInput, "profile.validate", "Selecciona un nivel de actividad válido.")
	}
	return nil
}

// Summary renders profiles as the family description used in prompts.
// Notes are only included when withNotes is set.
func Summary(profiles []Profile, withNotes bool) string {
	if len(profiles) == 0 {
		return "Por defecto: un adulto estándar."
	}
	parts := make([]string, len(profiles))
	for i, p := range profiles {
		if withNotes {
			notes := p.Notes
			if strings.TrimSpace(notes) == "" {
				notes = "ninguna"
			}
			parts[i] = fmt.Sprintf("%s (%d años, %s, Nivel de actividad: %s, Notas: %s)", p.Name, p.Age, p.Gender, p.ActivityLevel, notes)
		} else {
			parts[i] = fmt.Sprintf("%s (%d años, %s, Nivel de actividad: %s)", p.Name, p.Age, p.Gender, p.ActivityLevel)
		}
	}
	return strings.Join(parts, "; ")
}
