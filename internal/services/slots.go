package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/davidmmovement/agent-finder-api/internal/constants"
	"github.com/davidmmovement/agent-finder-api/internal/models"
)

/*
GenerateOneHourSlots slices each raw working interval into consecutive
one-hour bookable slots starting at the interval's start time. A trailing
partial hour is dropped, never padded or rounded. When preferredTime
("HH:MM") is given, candidates are stable-sorted by the absolute
difference between each slot's start hour and the preferred hour before
truncation to constants.MaxBookableSlots.

Known simplification: the preferred-time comparison looks at whole hours
only, so a 13:45 slot ranks the same as 13:05 against a 14:00 preference.
*/
func GenerateOneHourSlots(intervals []models.TimeSlot, preferredTime string) []models.BookableSlot {
	var out []models.BookableSlot

	for _, interval := range intervals {
		startMin, okStart := parseMinutes(interval.StartTime)
		endMin, okEnd := parseMinutes(interval.EndTime)
		if !okStart || !okEnd {
			continue
		}

		for cur := startMin; cur+constants.SlotDurationMinutes <= endMin; cur += constants.SlotDurationMinutes {
			out = append(out, models.BookableSlot{
				Day:       interval.Day,
				StartTime: formatMinutes(cur),
				EndTime:   formatMinutes(cur + constants.SlotDurationMinutes),
				Duration:  "1 hour",
				Available: true,
			})
		}
	}

	if preferredTime != "" {
		if prefMin, ok := parseMinutes(preferredTime); ok {
			prefHour := prefMin / 60
			sort.SliceStable(out, func(i, j int) bool {
				return hourDistance(out[i].StartTime, prefHour) < hourDistance(out[j].StartTime, prefHour)
			})
		}
	}

	if len(out) > constants.MaxBookableSlots {
		out = out[:constants.MaxBookableSlots]
	}
	return out
}

func hourDistance(start string, prefHour int) int {
	min, _ := parseMinutes(start)
	d := min/60 - prefHour
	if d < 0 {
		d = -d
	}
	return d
}

func parseMinutes(hhmm string) (int, bool) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func formatMinutes(total int) string {
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
