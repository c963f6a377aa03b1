package transaction

import (
	"errors"

	"github.com/carteira-sync/internal/domain/shared"
	"github.com/google/uuid"
)

var ErrInvalidOccurrences = errors.New("occurrences must be between 1 and 120")

const maxOccurrences = 120

// Series expands template into monthly occurrences sharing a fresh recurrence
// group. Occurrences dated after today are forecasts.
func Series(template Transaction, occurrences int, today shared.Date) ([]*Transaction, error) {
	if occurrences < 1 || occurrences > maxOccurrences {
		return nil, ErrInvalidOccurrences
	}
	if err := template.Validate(); err != nil {
		return nil, err
	}

	group := uuid.New()
	series := make([]*Transaction, 0, occurrences)
	for i := 0; i < occurrences; i++ {
		occ := template
		occ.Base = shared.Base{}
		occ.RecurrenceID = &group
		occ.Date = template.Date.AddMonths(i)
		occ.Forecast = occ.Date.After(today.Time)
		occ.Realized = !occ.Forecast && template.Realized
		series = append(series, &occ)
	}
	return series, nil
}

// InGroup reports whether t belongs to the recurrence group.
func InGroup(t *Transaction, group uuid.UUID) bool {
	return t.RecurrenceID != nil && *t.RecurrenceID == group
}
