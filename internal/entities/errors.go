package entities

import (
	"errors"
	"fmt"

	"rras-datagen/internal/classification"
)

// ErrInconsistentClassification is matched by every *ClassificationError.
var ErrInconsistentClassification = errors.New("classification inconsistent with days past due")

// ClassificationError reports a loan whose stored class or stage does not
// match its days past due.
type ClassificationError struct {
	LoanID      string
	DaysPastDue int
	AssetClass  classification.AssetClass
	Stage       classification.Stage
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("loan %s: %s/stage %d does not match %d days past due",
		e.LoanID, e.AssetClass, e.Stage, e.DaysPastDue)
}

func (e *ClassificationError) Is(target error) bool {
	return target == ErrInconsistentClassification
}
