package valueobjects

import apperrors "socialhub/pkg/errors"

// SortMode selects feed ordering
type SortMode string

const (
	SortRecent  SortMode = "recent"
	SortPopular SortMode = "popular"
)

// ParseSortMode accepts "recent" or "popular". An empty string selects recent.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(s) {
	case "":
		return SortRecent, nil
	case SortRecent, SortPopular:
		return SortMode(s), nil
	}
	return "", apperrors.NewInvalidArgumentError("sort mode must be recent or popular").
		WithCode(apperrors.CodeInvalidSortMode).
		WithDetails(map[string]interface{}{"sort": s})
}
