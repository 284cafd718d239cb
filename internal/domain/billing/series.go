package billing

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ucrm/backend/internal/domain/shared"
)

// numberToken matches the {NUMBER} or {NUMBER:width} placeholder in a
// series format template.
var numberToken = regexp.MustCompile(`\{NUMBER(?::(\d+))?\}`)

// TransactionSeries is a receipt-number issuing range assigned to one
// cashier. A user has at most one active series at a time; CurrentNumber
// only ever moves forward, and issuance happens under a row-level lock so
// concurrent cashiers can never draw the same number.
type TransactionSeries struct {
	shared.BaseAggregateRoot
	Name           string    `json:"name" gorm:"type:varchar(200);not null"`
	Prefix         string    `json:"prefix" gorm:"type:varchar(20)"`
	Format         string    `json:"format" gorm:"type:varchar(100);not null"` // e.g. "{PREFIX}-{NUMBER:7}"
	StartNumber    int64     `json:"start_number" gorm:"not null"`
	EndNumber      int64     `json:"end_number" gorm:"not null"`
	CurrentNumber  int64     `json:"current_number" gorm:"not null"` // last issued; next is CurrentNumber+1
	IsActive       bool      `json:"is_active" gorm:"not null;default:false;index"`
	AssignedUserID uuid.UUID `json:"assigned_user_id" gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (TransactionSeries) TableName() string {
	return "transaction_series"
}

// NewTransactionSeries creates a new inactive numbering series
func NewTransactionSeries(name, prefix, format string, startNumber, endNumber int64, assignedUserID uuid.UUID) (*TransactionSeries, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_SERIES_NAME", "Series name cannot be empty")
	}
	if format == "" {
		return nil, shared.NewDomainError("INVALID_SERIES_FORMAT", "Series format cannot be empty")
	}
	if !numberToken.MatchString(format) {
		return nil, shared.NewDomainError("INVALID_SERIES_FORMAT", "Series format must contain a {NUMBER} token")
	}
	if startNumber < 1 {
		return nil, shared.NewDomainError("INVALID_SERIES_RANGE", "Start number must be 1 or greater")
	}
	if endNumber < startNumber {
		return nil, shared.NewDomainError("INVALID_SERIES_RANGE", "End number must not be below start number")
	}
	if assignedUserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SERIES_USER", "Series must be assigned to a user")
	}

	return &TransactionSeries{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Prefix:            prefix,
		Format:            format,
		StartNumber:       startNumber,
		EndNumber:         endNumber,
		CurrentNumber:     startNumber - 1,
		IsActive:          false,
		AssignedUserID:    assignedUserID,
	}, nil
}

// Activate marks the series as the user's issuing series. Deactivating
// the previously active series is the service's responsibility; the two
// writes share one transaction.
func (s *TransactionSeries) Activate() {
	s.IsActive = true
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Deactivate retires the series from issuance. In-flight transactions
// keep the numbers they were issued.
func (s *TransactionSeries) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// IsExhausted returns true when no numbers remain in the range
func (s *TransactionSeries) IsExhausted() bool {
	return s.CurrentNumber >= s.EndNumber
}

// Remaining returns how many numbers the series can still issue
func (s *TransactionSeries) Remaining() int64 {
	if s.IsExhausted() {
		return 0
	}
	return s.EndNumber - s.CurrentNumber
}

// IssueNext advances the counter and returns the formatted receipt
// number. Callers must hold the series row lock for the duration of the
// surrounding transaction.
func (s *TransactionSeries) IssueNext() (string, error) {
	if !s.IsActive {
		return "", ErrNoActiveSeries
	}
	if s.IsExhausted() {
		return "", ErrSeriesExhausted
	}

	s.CurrentNumber++
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return s.FormatNumber(s.CurrentNumber), nil
}

// FormatNumber renders a number through the series' format template,
// substituting {PREFIX} and {NUMBER:width} (zero-padded) tokens.
func (s *TransactionSeries) FormatNumber(n int64) string {
	out := strings.ReplaceAll(s.Format, "{PREFIX}", s.Prefix)
	return numberToken.ReplaceAllStringFunc(out, func(tok string) string {
		m := numberToken.FindStringSubmatch(tok)
		if m[1] == "" {
			return fmt.Sprintf("%d", n)
		}
		return fmt.Sprintf("%0*d", atoiOr(m[1], 0), n)
	})
}

func atoiOr(s string, def int) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return def
		}
		n = n*10 + int(c-'0')
	}
	return n
}
