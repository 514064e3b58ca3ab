// Package encoder maps a closed set of category labels to integer codes.
package encoder

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"churn-prediction-engine/internal/models"
)

// LabelEncoder assigns each known category the index it had in the trained
// artifact's class list. It is immutable after construction.
type LabelEncoder struct {
	field   string
	classes []string
	index   map[string]int
}

// New creates a label encoder for field from the artifact's class list.
func New(field string, classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: encoder %s has no classes", models.ErrInvalidArtifact, field)
	}

	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("%w: encoder %s has duplicate class %q", models.ErrInvalidArtifact, field, c)
		}
		index[c] = i
	}

	return &LabelEncoder{
		field:   field,
		classes: append([]string(nil), classes...),
		index:   index,
	}, nil
}

// Normalize trims surrounding whitespace, upper-cases the first letter and
// lower-cases the rest ("  mALE " -> "Male").
func Normalize(category string) string {
	s := strings.TrimSpace(category)
	if s == "" {
		return s
	}

	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Encode returns the integer code for category. Unknown values fail with
// *models.UnknownCategoryError carrying the normalized string.
func (e *LabelEncoder) Encode(category string) (int, error) {
	normalized := Normalize(category)
	code, ok := e.index[normalized]
	if !ok {
		return 0, &models.UnknownCategoryError{
			Field: e.field,
			Value: normalized,
			Known: e.Classes(),
		}
	}
	return code, nil
}

// Classes returns a copy of the known categories in code order.
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.classes...)
}
