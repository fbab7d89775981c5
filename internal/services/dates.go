package services

import "time"

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// CalendarDaysBetween counts whole calendar days from one date to another in
// the given location. DST transitions do not shift the result.
func CalendarDaysBetween(from time.Time, to time.Time, location *time.Location) int {
	fromDay := DateAtLocation(from, location)
	toDay := DateAtLocation(to, location)
	fromUTC := time.Date(fromDay.Year(), fromDay.Month(), fromDay.Day(), 0, 0, 0, 0, time.UTC)
	toUTC := time.Date(toDay.Year(), toDay.Month(), toDay.Day(), 0, 0, 0, 0, time.UTC)
	return int(toUTC.Sub(fromUTC).Hours() / 24)
}

func DayKey(value time.Time, location *time.Location) string {
	return DateAtLocation(value, location).Format("2006-01-02")
}

// WeekStart returns the Monday that opens the week containing value.
func WeekStart(value time.Time, location *time.Location) time.Time {
	day := DateAtLocation(value, location)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func MonthStart(value time.Time, location *time.Location) time.Time {
	day := DateAtLocation(value, location)
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
}
