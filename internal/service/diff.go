package service

import (
	"regexp"
	"strings"
	"time"
)

// Decision is the outcome of reconciling one incoming record against its
// previously persisted state.
type Decision int

const (
	DecisionCreate Decision = iota
	DecisionUpdate
	DecisionSkipUnchanged
	DecisionSkipImmutable
)

func (d Decision) String() string {
	switch d {
	case DecisionCreate:
		return "create"
	case DecisionUpdate:
		return "update"
	case DecisionSkipUnchanged:
		return "skip_unchanged"
	case DecisionSkipImmutable:
		return "skip_immutable"
	default:
		return "unknown"
	}
}

// decide reconciles one incoming record against the persisted one (nil if the
// record has never been seen). Immutable records skip the field diff entirely;
// a newer remote updatedAt forces an update regardless of field equality.
func decide[T Record](adapter EntityAdapter[T], existing *T, incoming T) Decision {
	if existing == nil {
		return DecisionCreate
	}
	if adapter.Immutable(*existing, incoming) {
		return DecisionSkipImmutable
	}
	if incoming.RecordUpdatedAt().After((*existing).RecordUpdatedAt()) {
		return DecisionUpdate
	}
	if adapter.Changed(*existing, incoming) {
		return DecisionUpdate
	}
	return DecisionSkipUnchanged
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// normalizeText collapses whitespace runs and trims, so formatting-only
// remote changes don't register as diffs
func normalizeText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func textEqual(a, b string) bool {
	return normalizeText(a) == normalizeText(b)
}

func float64PtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
