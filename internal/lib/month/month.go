// Package month содержит календарные помощники для графиков дохода.
package month

import (
	"time"
)

var shortNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Short возвращает короткое имя месяца 1..12, для остальных значений пустую строку.
func Short(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return shortNames[m-1]
}

// All возвращает короткие имена всех месяцев по порядку.
func All() []string {
	out := make([]string, len(shortNames))
	copy(out, shortNames[:])
	return out
}

// YearOptions возвращает текущий год и два предыдущих, от нового к старому.
func YearOptions(now time.Time) []int {
	y := now.Year()
	return []int{y, y - 1, y - 2}
}

// YearSpan — на сколько лет назад от текущего можно запросить доход.
const YearSpan = 10

// ValidYear сообщает, попадает ли year в диапазон от текущего года минус YearSpan до следующего года.
func ValidYear(now time.Time, year int) bool {
	y := now.Year()
	return year >= y-YearSpan && year <= y+1
}
