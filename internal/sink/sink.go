// Package sink defines the delivery contract shared by the relational and
// HTTP destinations.
package sink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rras-datagen/internal/entities"
)

var (
	// ErrUnsupportedKind is returned when a sink has no mapping for a record kind.
	ErrUnsupportedKind = errors.New("record kind not supported by sink")
	// ErrTransient marks failures worth retrying after a pause.
	ErrTransient = errors.New("transient sink failure")
)

// Sink accepts generated records one at a time.
type Sink interface {
	Supports(kind entities.Kind) bool
	Put(ctx context.Context, rec entities.Record) Result
	Close() error
}

// Result is the outcome of delivering one record. Failures are carried in
// Err rather than returned separately.
type Result struct {
	Kind entities.Kind
	// Key identifies the record at the destination: the database id for
	// relational rows, the generated identifier otherwise.
	Key string
	// Status is the HTTP status code when the destination is an API.
	Status    int
	Duplicate bool
	Err       error
}

// OK reports whether the record was accepted, including as a duplicate.
func (r Result) OK() bool { return r.Err == nil }

// Transient reports whether the failure was a connectivity problem.
func (r Result) Transient() bool { return errors.Is(r.Err, ErrTransient) }

// Failed builds a failed result for kind.
func Failed(kind entities.Kind, err error) Result {
	return Result{Kind: kind, Err: err}
}

// Unsupported builds the result for a kind the sink cannot map.
func Unsupported(kind entities.Kind) Result {
	return Failed(kind, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind))
}

// Transient wraps err so that Result.Transient reports true.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrTransient, err)
}

// NaturalKey is the identifier a record carries before any destination has
// assigned one. Snapshot rows have no identifier and get a composite key.
func NaturalKey(rec entities.Record) string {
	switch r := rec.(type) {
	case *entities.Customer:
		return r.ID
	case *entities.Account:
		return r.ID
	case *entities.LoanRecord:
		return r.Loan.ID
	case *entities.LoanExposure:
		return r.LoanID
	case *entities.OffBalanceSheetItem:
		return r.ID
	case *entities.CapitalComponent:
		return strings.Join([]string{r.AsOfDate.String(), string(r.Tier), r.Name}, "/")
	case *entities.LiquidityAsset:
		return strings.Join([]string{r.AsOfDate.String(), r.AssetType, r.Currency}, "/")
	case *entities.LiquidityCashflow:
		return strings.Join([]string{r.AsOfDate.String(), r.FlowType, r.Category, r.MaturityBucket}, "/")
	default:
		return ""
	}
}
