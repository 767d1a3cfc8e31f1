package app

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"

	"github.com/davidmmovement/agent-finder-api/internal/models"
	"github.com/davidmmovement/agent-finder-api/internal/repositories"
	"github.com/davidmmovement/agent-finder-api/internal/utils"
)

// sentinelAgentID marks an already-seeded database. Fixed so reruns of
// the seeder are no-ops.
var sentinelAgentID = uuid.MustParse("7f0d7b2a-9f1e-4a2c-8a31-5b1c3a96e001")

type seedSlot struct {
	day       string
	start     string
	end       string
	available bool
}

type seedAgent struct {
	id     uuid.UUID
	name   string
	email  string
	phone  string
	street string
	lat    float64
	lng    float64
	slots  []seedSlot
}

// Downtown Yerevan test fixture. The cluster sits around Republic
// Square so distance-ranked searches produce a stable, human-checkable
// ordering.
var yerevanSeedAgents = []seedAgent{
	{
		id: sentinelAgentID, name: "Tigran Ghukasyan",
		email: "tigran@example.am", phone: "+374 91 100001",
		street: "2 Republic Square", lat: 40.1777, lng: 44.5133,
		slots: []seedSlot{
			{"monday", "09:00", "17:00", true},
			{"wednesday", "09:00", "17:00", true},
			{"friday", "09:00", "13:00", true},
		},
	},
	{
		id: uuid.MustParse("7f0d7b2a-9f1e-4a2c-8a31-5b1c3a96e002"), name: "Armen Sargsyan",
		email: "armen@example.am", phone: "+374 91 100002",
		street: "1 Amiryan St", lat: 40.1792, lng: 44.5152,
		slots: []seedSlot{
			{"monday", "09:00", "17:00", true},
			{"tuesday", "09:00", "17:00", true},
			{"saturday", "10:00", "14:00", false},
		},
	},
	{
		id: uuid.MustParse("7f0d7b2a-9f1e-4a2c-8a31-5b1c3a96e003"), name: "Anahit Petrosyan",
		email: "anahit@example.am", phone: "+374 91 100003",
		street: "14 Abovyan St", lat: 40.1811, lng: 44.5133,
		slots: []seedSlot{
			{"monday", "10:00", "18:00", true},
			{"thursday", "10:00", "18:00", true},
		},
	},
	{
		id: uuid.MustParse("7f0d7b2a-9f1e-4a2c-8a31-5b1c3a96e004"), name: "Gevorg Hakobyan",
		email: "gevorg@example.am", phone: "+374 91 100004",
		street: "5 Vazgen Sargsyan St", lat: 40.1776, lng: 44.5146,
		slots: []seedSlot{
			{"monday", "08:00", "16:00", true},
			{"wednesday", "08:00", "16:00", true},
			{"friday", "08:00", "12:00", false},
		},
	},
	{
		id: uuid.MustParse("7f0d7b2a-9f1e-4a2c-8a31-5b1c3a96e005"), name: "Karine Manukyan",
		email: "karine@example.am", phone: "+374 91 100005",
		street: "3 Buzand St", lat: 40.1794, lng: 44.5119,
		slots: []seedSlot{
			{"monday", "11:00", "15:00", true},
			{"tuesday", "11:00", "19:00", true},
		},
	},
	{
		id: uuid.MustParse("7f0d7b2a-9f1e-4a2c-8a31-5b1c3a96e006"), name: "Lusine Vardanyan",
		email: "lusine@example.am", phone: "+374 91 100006",
		street: "22 Mashtots Ave", lat: 40.1801, lng: 44.5094,
		slots: []seedSlot{
			{"monday", "09:00", "17:00", false},
			{"thursday", "09:00", "17:00", true},
		},
	},
	{
		id: uuid.MustParse("7f0d7b2a-9f1e-4a2c-8a31-5b1c3a96e007"), name: "Sona Grigoryan",
		email: "sona@example.am", phone: "+374 91 100007",
		street: "10 Teryan St", lat: 40.1833, lng: 44.5108,
		slots: []seedSlot{
			{"monday", "09:00", "13:00", true},
			{"tuesday", "14:00", "18:00", true},
			{"sunday", "10:00", "14:00", true},
		},
	},
	{
		id: uuid.MustParse("7f0d7b2a-9f1e-4a2c-8a31-5b1c3a96e008"), name: "Davit Karapetyan",
		email: "davit@example.am", phone: "+374 91 100008",
		street: "48 Komitas Ave", lat: 40.1865, lng: 44.5156,
		slots: []seedSlot{
			{"monday", "12:00", "20:00", true},
			{"saturday", "09:00", "17:00", true},
		},
	},
}

// SeedTestData inserts the Yerevan fixture agents. Safe to call on every
// boot: the sentinel agent short-circuits, and unique violations from a
// concurrent seeder are ignored.
func SeedTestData(ctx context.Context, repo repositories.AgentRepository) error {
	existing, err := repo.GetByID(ctx, sentinelAgentID)
	if err != nil {
		return err
	}
	if existing != nil {
		utils.Logger.Info("Test data already seeded; skipping")
		return nil
	}

	for _, sa := range yerevanSeedAgents {
		agent := &models.Agent{
			ID:          sa.id,
			Name:        sa.name,
			Email:       sa.email,
			PhoneNumber: sa.phone,
			Street:      sa.street,
			City:        "Yerevan",
			State:       "Yerevan",
			ZipCode:     "0010",
			TimeZone:    "Asia/Yerevan",
			Latitude:    sa.lat,
			Longitude:   sa.lng,
			IsActive:    true,
		}
		for _, s := range sa.slots {
			agent.TimeSlots = append(agent.TimeSlots, models.TimeSlot{
				ID:        uuid.New(),
				Day:       s.day,
				StartTime: s.start,
				EndTime:   s.end,
				Available: s.available,
			})
		}
		if err := repo.Create(ctx, agent); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return err
		}
	}

	utils.Logger.Infof("Seeded %d test agents in Yerevan", len(yerevanSeedAgents))
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
