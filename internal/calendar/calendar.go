// Package calendar keeps game time in the calendar of Creation: a year of
// fifteen 28-day months plus the five days of Calibration.
package calendar

import "fmt"

// Useful second constants.
const (
	Minute int64 = 60
	Hour         = 60 * Minute
	Day          = 24 * Hour
	Year         = DaysPerYear * Day

	DaysPerYear  = 425
	DaysPerMonth = 28
)

// Month is a month of the year, starting at 1.
type Month int

const (
	AscendingAir Month = iota + 1
	ResplendentAir
	DescendingAir
	AscendingWater
	ResplendentWater
	DescendingWater
	AscendingEarth
	ResplendentEarth
	DescendingEarth
	AscendingWood
	ResplendentWood
	DescendingWood
	AscendingFire
	ResplendentFire
	DescendingFire
	Calibration
)

var monthNames = [...]string{
	AscendingAir:     "Ascending Air",
	ResplendentAir:   "Resplendent Air",
	DescendingAir:    "Descending Air",
	AscendingWater:   "Ascending Water",
	ResplendentWater: "Resplendent Water",
	DescendingWater:  "Descending Water",
	AscendingEarth:   "Ascending Earth",
	ResplendentEarth: "Resplendent Earth",
	DescendingEarth:  "Descending Earth",
	AscendingWood:    "Ascending Wood",
	ResplendentWood:  "Resplendent Wood",
	DescendingWood:   "Descending Wood",
	AscendingFire:    "Ascending Fire",
	ResplendentFire:  "Resplendent Fire",
	DescendingFire:   "Descending Fire",
	Calibration:      "Calibration",
}

func (m Month) String() string {
	if m < AscendingAir || m > Calibration {
		return fmt.Sprintf("Month(%d)", int(m))
	}
	return monthNames[m]
}

// Time is the number of seconds since the first of Ascending Air, year 0.
type Time int64

func (t Time) Year() int64 { return int64(t) / Year }

func (t Time) dayIndex() int64 { return (int64(t) / Day) % DaysPerYear }

// DayOfYear is 1 based.
func (t Time) DayOfYear() int { return int(t.dayIndex()) + 1 }

func (t Time) Month() Month { return Month(t.dayIndex()/DaysPerMonth + 1) }

// DayOfMonth is 1 based. Calibration has five days.
func (t Time) DayOfMonth() int { return int(t.dayIndex()%DaysPerMonth) + 1 }

func (t Time) Hour() int { return int((int64(t) / Hour) % 24) }

func (t Time) Minute() int { return int((int64(t) / Minute) % 60) }

func (t Time) Second() int { return int(int64(t) % 60) }

// Add returns t advanced by seconds.
func (t Time) Add(seconds int64) Time { return t + Time(seconds) }

// String formats t as "15:56 h, 20. Resplendent Earth 147".
func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d h, %d. %s %d", t.Hour(), t.Minute(), t.DayOfMonth(), t.Month(), t.Year())
}
