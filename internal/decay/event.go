package decay

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// DecayEvent is one accepted decay event of the reference element
type DecayEvent struct {
	Number              int      `json:"event_number"`
	StartYear           int      `json:"start_year"`
	EndYear             int      `json:"end_year"`
	StartFractionalDay  float64  `json:"start_fractional_day"`
	EndFractionalDay    float64  `json:"end_fractional_day"`
	StartHour           float64  `json:"start_hour"`
	EndHour             float64  `json:"end_hour"`
	ElementsDecaying    int      `json:"elements_decaying"`
	NonDecayingElements []string `json:"non_decaying_elements"`

	Start                       time.Time `json:"start"`
	End                         time.Time `json:"end"`
	DecayingElements            []string  `json:"decaying_elements"`
	DurationAboveThresholdHours float64   `json:"duration_above_threshold_hours"`
	StartShifts                 int       `json:"start_shifts"`
}

// NewDecayEvent assembles the record for an accepted refinement
func NewDecayEvent(number int, ref Refinement, cls Classification) DecayEvent {
	start, end := ref.Segment.Start, ref.Segment.End
	return DecayEvent{
		Number:                      number,
		StartYear:                   start.Year(),
		EndYear:                     end.Year(),
		StartFractionalDay:          FractionalDay(start),
		EndFractionalDay:            FractionalDay(end),
		StartHour:                   HourOfDay(start),
		EndHour:                     HourOfDay(end),
		ElementsDecaying:            len(cls.Decaying) + 1,
		NonDecayingElements:         cls.NonDecaying,
		Start:                       start,
		End:                         end,
		DecayingElements:            cls.Decaying,
		DurationAboveThresholdHours: ref.DurationHours,
		StartShifts:                 ref.Shift.Steps,
	}
}

// FractionalDay returns the day of year of t (January 1 is day 1) plus the
// elapsed fraction of that day, to whole-second resolution
func FractionalDay(t time.Time) float64 {
	day := julian.DayOfYearGregorian(t.Year(), int(t.Month()), t.Day())
	return float64(day) + float64(t.Hour())/24 + float64(t.Minute())/1440 + float64(t.Second())/86400
}

// HourOfDay returns the hours elapsed since midnight of t, to whole-second resolution
func HourOfDay(t time.Time) float64 {
	return float64(t.Hour()) + float64(t.Minute())/60 + float64(t.Second())/3600
}

// FractionalDayToTime converts a year and fractional day of year back to a
// UTC time rounded to the nearest second
func FractionalDayToTime(year int, fday float64) time.Time {
	day := int(math.Floor(fday))
	month, dom := julian.DayOfYearToCalendar(day, julian.LeapYearGregorian(year))
	midnight := time.Date(year, time.Month(month), dom, 0, 0, 0, 0, time.UTC)
	seconds := math.Round((fday - float64(day)) * 86400)
	return midnight.Add(time.Duration(seconds) * time.Second)
}
