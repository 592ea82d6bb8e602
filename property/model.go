// Package property serves the property listing through a read-through
// cache and reports how well that cache is doing.
package property

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// Property is one listed real-estate record
type Property struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Price       Price     `gorm:"type:decimal(10,2);not null" json:"price"`
	Location    string    `gorm:"size:100" json:"location"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Property) TableName() string {
	return "properties"
}

// Price is a decimal(10,2) amount kept in its textual form, always with
// two fraction digits
type Price string

// ParsePrice normalises s to two fraction digits
func ParsePrice(s string) (Price, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return "", fmt.Errorf("invalid price %q: %w", s, err)
	}
	return Price(strconv.FormatFloat(f, 'f', 2, 64)), nil
}

// Scan implements sql.Scanner. Drivers hand decimals back as text,
// float or integer depending on the engine.
func (p *Price) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = ""
	case []byte:
		return p.scanString(string(v))
	case string:
		return p.scanString(v)
	case float64:
		*p = Price(strconv.FormatFloat(v, 'f', 2, 64))
	case int64:
		*p = Price(strconv.FormatInt(v, 10) + ".00")
	default:
		return fmt.Errorf("cannot scan %T into Price", src)
	}
	return nil
}

func (p *Price) scanString(s string) error {
	parsed, err := ParsePrice(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Value implements driver.Valuer
func (p Price) Value() (driver.Value, error) {
	if p == "" {
		return "0.00", nil
	}
	return string(p), nil
}

func (p Price) String() string {
	return string(p)
}
