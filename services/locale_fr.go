package services

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	frShortDateLayout = "02/01/2006"
	notSpecified      = "Non spécifié"
)

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

var frPrinter = message.NewPrinter(language.French)

// FormatEuro renders an amount as a fr-FR currency string, e.g. "1 500,50 €"
func FormatEuro(amount float64) string {
	return frPrinter.Sprint(number.Decimal(amount, number.Scale(2))) + " €"
}

// FormatBareAmount renders an amount with the shortest decimal representation ("1500.5")
func FormatBareAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// FormatShortDateFR renders dd/mm/yyyy
func FormatShortDateFR(t time.Time) string {
	return t.Format(frShortDateLayout)
}

// FormatLongDateFR renders "15 mars 2024"
func FormatLongDateFR(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
}
