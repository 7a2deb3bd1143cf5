package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the ISO calendar date layout used for every stored date.
const DateLayout = "2006-01-02"

const (
	Fixed     ExpenseType = "Fixed"
	ShortTerm ExpenseType = "Short-term"
)

type (
	ExpenseType string

	// Transaction is one income-generating service rendered on a date.
	Transaction struct {
		ID    string  `json:"id"`
		Date  string  `json:"date"`  // YYYY-MM-DD
		Style string  `json:"style"` // Service name
		Price float64 `json:"price"`
		Notes string  `json:"notes,omitempty"`
	}

	// Expense is one cost incurred on a date.
	Expense struct {
		ID          string      `json:"id"`
		Date        string      `json:"date"` // YYYY-MM-DD
		Type        ExpenseType `json:"type"`
		Description string      `json:"description"`
		Amount      float64     `json:"amount"`
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyStyle         = errors.New("empty service style")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidExpenseType = errors.New("invalid expense type")
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateID        = errors.New("record id already exists")
)

// ExpenseTypes returns the accepted expense types in display order.
func ExpenseTypes() []ExpenseType {
	return []ExpenseType{Fixed, ShortTerm}
}

func (t ExpenseType) IsValid() bool {
	switch t {
	case Fixed, ShortTerm:
		return true
	default:
		return false
	}
}

func (t ExpenseType) String() string {
	return string(t)
}

// ParseExpenseType matches s case-insensitively against the known expense types.
func ParseExpenseType(s string) (ExpenseType, error) {
	s = strings.TrimSpace(s)
	for _, t := range ExpenseTypes() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", ErrInvalidExpenseType
}

// ParseDate parses a YYYY-MM-DD string as a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NewID returns a random identifier with the given prefix (e.g. "txn_...").
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

func (t Transaction) Validate() error {
	if _, err := ParseDate(t.Date); err != nil {
		return err
	}
	if strings.TrimSpace(t.Style) == "" {
		return ErrEmptyStyle
	}
	if len(t.Style) > 100 {
		return errors.New("style too long (max 100 characters)")
	}
	if t.Price < 0 || t.Price != t.Price {
		return ErrInvalidAmount
	}
	if len(t.Notes) > 500 {
		return errors.New("notes too long (max 500 characters)")
	}
	return nil
}

func (e Expense) Validate() error {
	if _, err := ParseDate(e.Date); err != nil {
		return err
	}
	if !e.Type.IsValid() {
		return ErrInvalidExpenseType
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if e.Amount < 0 || e.Amount != e.Amount {
		return ErrInvalidAmount
	}
	return nil
}
