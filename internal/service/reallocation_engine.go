package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/noah-isme/faculty-realloc-api/internal/models"
)

// Scoring weights for substitute candidates. Every candidate is scored; the
// penalties push unsuitable ones below the selection threshold instead of
// removing them from the pool.
const (
	scoreSubjectMatch   = 40
	scoreSameDepartment = 15
	scoreLabQualified   = 20
	scoreLabUnqualified = -50
	scoreFreePeriod     = 30
	scoreConflict       = -100
	scoreOverloaded     = -100
	fairnessPenalty     = 5

	// selectionThreshold is exclusive: a candidate needs score > 0.
	selectionThreshold = 0
)

// --- Window expansion ---

var teachingWeekdays = []rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// expandTeachingDates returns every Monday..Saturday between start and end
// inclusive, ascending, minus holidays. start after end yields no dates.
func expandTeachingDates(start, end time.Time, holidays []time.Time) ([]time.Time, error) {
	start, end = dateOnly(start), dateOnly(end)
	if start.After(end) {
		return []time.Time{}, nil
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.DAILY,
		Dtstart:   start,
		Until:     end,
		Byweekday: teachingWeekdays,
	})
	if err != nil {
		return nil, fmt.Errorf("build teaching day rule: %w", err)
	}

	set := &rrule.Set{}
	set.RRule(rule)
	for _, h := range holidays {
		set.ExDate(dateOnly(h))
	}

	dates := set.All()
	if dates == nil {
		dates = []time.Time{}
	}
	return dates, nil
}

// dateOnly truncates t to its calendar date in UTC without shifting the day.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// weekdayIndex maps a date onto timetable_slots.day_of_week (Monday=1, Sunday=7).
func weekdayIndex(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return models.DaySunday
	}
	return int(t.Weekday())
}

func slotsForWeekday(slots []models.TimetableSlot, day int) []models.TimetableSlot {
	var out []models.TimetableSlot
	for _, slot := range slots {
		if slot.DayOfWeek == day {
			out = append(out, slot)
		}
	}
	return out
}

// --- Weekly occupancy ---

type weeklyKey struct {
	facultyID string
	day       int
	period    int
}

type dailyKey struct {
	facultyID string
	day       int
}

// slotOccupancy indexes the full weekly timetable by instructor.
type slotOccupancy struct {
	periods map[weeklyKey]struct{}
	load    map[dailyKey]int
}

func newSlotOccupancy(slots []models.TimetableSlot) *slotOccupancy {
	occ := &slotOccupancy{
		periods: make(map[weeklyKey]struct{}, len(slots)),
		load:    make(map[dailyKey]int),
	}
	for _, slot := range slots {
		facultyID := slot.Faculty()
		if facultyID == "" {
			continue
		}
		occ.periods[weeklyKey{facultyID, slot.DayOfWeek, slot.PeriodNumber}] = struct{}{}
		occ.load[dailyKey{facultyID, slot.DayOfWeek}]++
	}
	return occ
}

// Busy reports whether the instructor teaches at day/period every week.
func (o *slotOccupancy) Busy(facultyID string, day, period int) bool {
	_, ok := o.periods[weeklyKey{facultyID, day, period}]
	return ok
}

// Load returns how many weekly slots the instructor holds on day.
func (o *slotOccupancy) Load(facultyID string, day int) int {
	return o.load[dailyKey{facultyID, day}]
}

// --- Bookings ---

type bookingKey struct {
	facultyID string
	date      time.Time
	period    int
}

type occurrenceKey struct {
	slotID string
	date   time.Time
}

// bookingLedger tracks substitutes already committed to a concrete date and
// period, from stored suggestions and from picks made earlier in the run.
type bookingLedger struct {
	enforce bool
	booked  map[bookingKey]struct{}
	covered map[occurrenceKey]struct{}
}

func newBookingLedger(enforce bool, bookings []models.SuggestionBooking) *bookingLedger {
	l := &bookingLedger{
		enforce: enforce,
		booked:  make(map[bookingKey]struct{}, len(bookings)),
		covered: make(map[occurrenceKey]struct{}, len(bookings)),
	}
	for _, b := range bookings {
		if b.TimetableSlotID != "" {
			l.covered[occurrenceKey{b.TimetableSlotID, dateOnly(b.ReallocationDate)}] = struct{}{}
		}
		if b.Status == models.ReallocationStatusRejected {
			continue
		}
		l.Book(b.SubstituteFacultyID, b.ReallocationDate, b.PeriodNumber)
	}
	return l
}

// Booked reports whether facultyID is already substituting at date/period.
func (l *bookingLedger) Booked(facultyID string, date time.Time, period int) bool {
	if !l.enforce {
		return false
	}
	_, ok := l.booked[bookingKey{facultyID, dateOnly(date), period}]
	return ok
}

// Book marks facultyID as substituting at date/period.
func (l *bookingLedger) Book(facultyID string, date time.Time, period int) {
	l.booked[bookingKey{facultyID, dateOnly(date), period}] = struct{}{}
}

// Covered reports whether a suggestion already exists for the slot occurrence.
func (l *bookingLedger) Covered(slotID string, date time.Time) bool {
	_, ok := l.covered[occurrenceKey{slotID, dateOnly(date)}]
	return ok
}

// --- Fairness ---

// fairnessTracker counts substitutions per instructor. It is seeded from
// every suggestion in the window, whatever its status, and bumped after each
// pick so later slots in the same run see the new total.
type fairnessTracker struct {
	counts map[string]int
}

func newFairnessTracker(bookings []models.SuggestionBooking) *fairnessTracker {
	f := &fairnessTracker{counts: make(map[string]int)}
	for _, b := range bookings {
		if b.SubstituteFacultyID != "" {
			f.counts[b.SubstituteFacultyID]++
		}
	}
	return f
}

func (f *fairnessTracker) Count(facultyID string) int {
	return f.counts[facultyID]
}

func (f *fairnessTracker) Record(facultyID string) {
	f.counts[facultyID]++
}

// --- Scoring & selection ---

type candidateScore struct {
	Faculty      models.Faculty
	Score        int
	SubjectMatch bool
	Conflict     bool
}

type scoringContext struct {
	occupancy *slotOccupancy
	ledger    *bookingLedger
	fairness  *fairnessTracker
}

// scoreCandidate rates one candidate for one occurrence of slot on date.
func scoreCandidate(candidate models.Faculty, slot models.TimetableSlot, date time.Time, sc scoringContext) candidateScore {
	day := weekdayIndex(date)
	result := candidateScore{Faculty: candidate}

	if candidate.Qualifies(slot.Subject()) {
		result.SubjectMatch = true
		result.Score += scoreSubjectMatch
	}

	if candidate.InDepartment(slot.SubjectDepartmentID) {
		result.Score += scoreSameDepartment
	}

	if slot.IsPractical() {
		if candidate.LabQualified {
			result.Score += scoreLabQualified
		} else {
			result.Score += scoreLabUnqualified
		}
	}

	if sc.occupancy.Busy(candidate.ID, day, slot.PeriodNumber) || sc.ledger.Booked(candidate.ID, date, slot.PeriodNumber) {
		result.Conflict = true
		result.Score += scoreConflict
	} else {
		result.Score += scoreFreePeriod
	}

	result.Score -= fairnessPenalty * sc.fairness.Count(candidate.ID)

	if sc.occupancy.Load(candidate.ID, day) >= candidate.MaxPeriodsPerDay {
		result.Score += scoreOverloaded
	}

	return result
}

// rankCandidates scores the pool and orders it best first. Ties keep roster order.
func rankCandidates(pool []models.Faculty, slot models.TimetableSlot, date time.Time, sc scoringContext) []candidateScore {
	ranked := make([]candidateScore, 0, len(pool))
	for _, candidate := range pool {
		ranked = append(ranked, scoreCandidate(candidate, slot, date, sc))
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// selectSubstitute returns the first ranked candidate above the threshold.
func selectSubstitute(ranked []candidateScore) (candidateScore, bool) {
	for _, c := range ranked {
		if c.Score > selectionThreshold {
			return c, true
		}
	}
	return candidateScore{}, false
}

func suggestionNotes(c candidateScore) string {
	match := "No"
	if c.SubjectMatch {
		match = "Yes"
	}
	return fmt.Sprintf("Score: %d. Subject match: %s", c.Score, match)
}

// --- Plan ---

type planInput struct {
	LeaveRequestID string
	AbsentID       string
	Dates          []time.Time
	AbsentSlots    []models.TimetableSlot
	Candidates     []models.Faculty
	AllSlots       []models.TimetableSlot
	Bookings       []models.SuggestionBooking
	// BookingsAsConflict makes existing suggestions occupy their substitute.
	BookingsAsConflict bool
}

type unassignedOccurrence struct {
	SlotID    string
	Date      time.Time
	Period    int
	BestScore *int
}

type substitutionPlan struct {
	Suggestions []models.ReallocationSuggestion
	Unassigned  []unassignedOccurrence
	Covered     int
}

// buildSubstitutionPlan walks dates ascending and, within a date, the absent
// instructor's slots in timetable order, picking one substitute per occurrence.
func buildSubstitutionPlan(in planInput) substitutionPlan {
	sc := scoringContext{
		occupancy: newSlotOccupancy(in.AllSlots),
		ledger:    newBookingLedger(in.BookingsAsConflict, in.Bookings),
		fairness:  newFairnessTracker(in.Bookings),
	}

	var plan substitutionPlan
	for _, date := range in.Dates {
		for _, slot := range slotsForWeekday(in.AbsentSlots, weekdayIndex(date)) {
			if sc.ledger.Covered(slot.ID, date) {
				plan.Covered++
				continue
			}

			ranked := rankCandidates(in.Candidates, slot, date, sc)
			best, ok := selectSubstitute(ranked)
			if !ok {
				miss := unassignedOccurrence{SlotID: slot.ID, Date: date, Period: slot.PeriodNumber}
				if len(ranked) > 0 {
					top := ranked[0].Score
					miss.BestScore = &top
				}
				plan.Unassigned = append(plan.Unassigned, miss)
				continue
			}

			plan.Suggestions = append(plan.Suggestions, models.ReallocationSuggestion{
				LeaveRequestID:      in.LeaveRequestID,
				TimetableSlotID:     slot.ID,
				OriginalFacultyID:   in.AbsentID,
				SubstituteFacultyID: best.Faculty.ID,
				ReallocationDate:    date,
				Score:               best.Score,
				Status:              models.ReallocationStatusSuggested,
				Notes:               suggestionNotes(best),
			})
			sc.fairness.Record(best.Faculty.ID)
			sc.ledger.Book(best.Faculty.ID, date, slot.PeriodNumber)
		}
	}
	return plan
}
