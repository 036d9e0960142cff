package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFromCents(t *testing.T) {
	assert.Equal(t, "1250.00", FromCents(125000).StringFixed(2))
	assert.Equal(t, "0.05", FromCents(5).StringFixed(2))
	assert.Equal(t, "-3.99", FromCents(-399).StringFixed(2))
}

func TestToCentsRoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, int64(100), ToCents(decimal.NewFromFloat(1.0)))
	assert.Equal(t, int64(13), ToCents(decimal.NewFromFloat(0.125)))
	assert.Equal(t, int64(-13), ToCents(decimal.NewFromFloat(-0.125)))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "1899.00 USD", Format(189900, "usd"))
	assert.Equal(t, "0.99 EUR", Format(99, "EUR"))
	assert.Equal(t, "12.00 USD", Format(1200, ""))
}
