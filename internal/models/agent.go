package models

import (
	"time"

	"github.com/google/uuid"
)

// Weekday values accepted on a TimeSlot.
var Weekdays = []string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

func IsValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

/*
TimeSlot is a contiguous working window on one weekday. StartTime and
EndTime are zero-padded "HH:MM" strings, which compare correctly with
plain string ordering.
*/
type TimeSlot struct {
	ID        uuid.UUID `json:"id"`
	Day       string    `json:"day"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Available bool      `json:"available"`
}

type Agent struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	Street      string    `json:"street"`
	City        string    `json:"city"`
	State       string    `json:"state"`
	ZipCode     string    `json:"zip_code"`
	TimeZone    string    `json:"timezone"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	IsActive    bool      `json:"is_active"`

	TimeSlots []TimeSlot `json:"time_slots"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullAddress joins the postal fields the way the geocoder expects them.
func (a *Agent) FullAddress() string {
	return a.Street + ", " + a.City + ", " + a.State + " " + a.ZipCode
}
