package embed

import (
	"errors"
	"strings"
)

// ErrMissingSummary rejects embedding-text construction for a call without a
// summary; the vector is meaningless without one.
var ErrMissingSummary = errors.New("call summary is required to build embedding text")

// Fields are the interpreted call attributes that get embedded. The raw
// transcript is deliberately not part of the vector representation.
type Fields struct {
	Name        string
	Age         string
	Description string
	Summary     string
}

// BuildText serializes the fields as labeled lines in fixed order, omitting
// blank ones. Deterministic: the same input always yields the same string.
func BuildText(f Fields) (string, error) {
	if strings.TrimSpace(f.Summary) == "" {
		return "", ErrMissingSummary
	}

	var lines []string
	if v := strings.TrimSpace(f.Name); v != "" {
		lines = append(lines, "Nombre: "+v)
	}
	if v := strings.TrimSpace(f.Age); v != "" {
		lines = append(lines, "Edad: "+v)
	}
	if v := strings.TrimSpace(f.Description); v != "" {
		lines = append(lines, "Descripcion: "+v)
	}
	lines = append(lines, "Resumen: "+strings.TrimSpace(f.Summary))

	return strings.Join(lines, "\n"), nil
}
