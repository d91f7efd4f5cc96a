package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatEuro(t *testing.T) {
	got := FormatEuro(1500.5)
	assert.Contains(t, got, "500,50")
	assert.True(t, strings.HasPrefix(got, "1"))
	assert.True(t, strings.HasSuffix(got, "€"))

	assert.Contains(t, FormatEuro(0), "0,00")
}

func TestFormatBareAmount(t *testing.T) {
	assert.Equal(t, "1500.5", FormatBareAmount(1500.5))
	assert.Equal(t, "1200", FormatBareAmount(1200))
	assert.Equal(t, "99.99", FormatBareAmount(99.99))
}

func TestFrenchDates(t *testing.T) {
	d := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "15/03/2024", FormatShortDateFR(d))
	assert.Equal(t, "15 mars 2024", FormatLongDateFR(d))

	d = time.Date(2023, time.August, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "01/08/2023", FormatShortDateFR(d))
	assert.Equal(t, "1 août 2023", FormatLongDateFR(d))
}
