// Package schedule projects completion dates for a practice plan.
//
// The projection is a pure day-by-day simulation over the calculator
// settings: weekdays advance at the configured weekday pace, weekends
// at the weekday pace plus the weekend extra, and the first simulated
// day gets a one-time boost. No I/O happens here; callers feed it
// settings and logs from the local store.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/oscarhq/oscar/internal/record"
)

// Inputs are the knobs for a completion projection.
type Inputs struct {
	TotalQuestions        int
	QuestionsPerWeekday   int
	ExtraQuestionsToday   int
	ExtraQuestionsWeekend int
	StartDate             time.Time
}

// Result is a projected completion.
type Result struct {
	// TotalDays counts every simulated day, including days where the
	// pace is zero.
	TotalDays int
	// EndDate is the calendar date the final question is solved.
	EndDate time.Time
	// Remaining is how many questions were left before simulation.
	Remaining float64
}

// maxProjectionDays bounds the simulation so a plan that never
// finishes reports an error instead of spinning.
const maxProjectionDays = 36500

// InputsFromSettings builds projection inputs from stored calculator
// settings.
func InputsFromSettings(cs *record.CalculatorSettings) (Inputs, error) {
	start, err := time.Parse(record.DateLayout, cs.StartDate)
	if err != nil {
		return Inputs{}, fmt.Errorf("invalid start date %q: %w", cs.StartDate, err)
	}
	return Inputs{
		TotalQuestions:        cs.TotalQuestions,
		QuestionsPerWeekday:   cs.QuestionsPerWeekday,
		ExtraQuestionsToday:   cs.ExtraQuestionsToday,
		ExtraQuestionsWeekend: cs.ExtraQuestionsWeekend,
		StartDate:             start,
	}, nil
}

// CompletionDate projects when the plan finishes, assuming work
// starts on StartDate with nothing solved yet.
func CompletionDate(in Inputs) (Result, error) {
	return simulate(in, float64(in.TotalQuestions), in.StartDate, true)
}

// CompletionFromLogs projects when the plan finishes given the actual
// daily log history. If the logged work already covers the plan, the
// returned end date is the date the cumulative count first crossed
// the total. Otherwise the remainder is simulated starting the day
// after the last logged date.
func CompletionFromLogs(in Inputs, logs []record.DailyLog) (Result, error) {
	if in.TotalQuestions <= 0 {
		return Result{}, fmt.Errorf("total questions must be positive (got %d)", in.TotalQuestions)
	}

	sorted := make([]record.DailyLog, len(logs))
	copy(sorted, logs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date < sorted[j].Date })

	remaining := float64(in.TotalQuestions)
	for _, l := range sorted {
		remaining -= l.Count
		if remaining <= 0 {
			end, err := time.Parse(record.DateLayout, l.Date)
			if err != nil {
				return Result{}, fmt.Errorf("invalid log date %q: %w", l.Date, err)
			}
			days := int(end.Sub(in.StartDate).Hours()/24) + 1
			if days < 1 {
				days = 1
			}
			return Result{TotalDays: days, EndDate: end, Remaining: 0}, nil
		}
	}

	start := in.StartDate
	firstDay := len(sorted) == 0
	if !firstDay {
		last, err := time.Parse(record.DateLayout, sorted[len(sorted)-1].Date)
		if err != nil {
			return Result{}, fmt.Errorf("invalid log date %q: %w", sorted[len(sorted)-1].Date, err)
		}
		start = last.AddDate(0, 0, 1)
	}
	return simulate(in, remaining, start, firstDay)
}

// simulate walks calendar days from start until remaining reaches
// zero. firstDayBoost applies the one-time extra on the first day.
func simulate(in Inputs, remaining float64, start time.Time, firstDayBoost bool) (Result, error) {
	if remaining <= 0 {
		return Result{TotalDays: 0, EndDate: start, Remaining: 0}, nil
	}
	weekendPace := in.QuestionsPerWeekday + in.ExtraQuestionsWeekend
	if in.QuestionsPerWeekday <= 0 && weekendPace <= 0 && in.ExtraQuestionsToday <= 0 {
		return Result{}, fmt.Errorf("plan makes no progress: all paces are zero")
	}

	res := Result{Remaining: remaining}
	day := start
	for d := 0; d < maxProjectionDays; d++ {
		pace := in.QuestionsPerWeekday
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			pace = weekendPace
		}
		if firstDayBoost && d == 0 {
			pace += in.ExtraQuestionsToday
		}

		res.TotalDays++
		remaining -= float64(pace)
		if remaining <= 0 {
			res.EndDate = day
			return res, nil
		}
		day = day.AddDate(0, 0, 1)
	}
	return Result{}, fmt.Errorf("plan does not finish within %d days", maxProjectionDays)
}
