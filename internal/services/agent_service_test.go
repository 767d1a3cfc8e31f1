package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/require"

	"github.com/davidmmovement/agent-finder-api/internal/dtos"
	"github.com/davidmmovement/agent-finder-api/internal/models"
	"github.com/davidmmovement/agent-finder-api/internal/utils"
)

// recordingAgentRepo extends the in-memory fake with write capture and
// scriptable slot errors.
type recordingAgentRepo struct {
	fakeAgentRepo
	created *models.Agent
	updated *models.Agent
	slotErr error
}

func (r *recordingAgentRepo) Create(ctx context.Context, agent *models.Agent) error {
	r.created = agent
	r.agents = append(r.agents, agent)
	return nil
}

func (r *recordingAgentRepo) Update(ctx context.Context, agent *models.Agent) error {
	r.updated = agent
	return nil
}

func (r *recordingAgentRepo) RemoveTimeSlot(ctx context.Context, agentID, slotID uuid.UUID) error {
	return r.slotErr
}

func (r *recordingAgentRepo) SetTimeSlotAvailability(ctx context.Context, agentID, slotID uuid.UUID, ok bool) error {
	return r.slotErr
}

func yerevanResolver() *fakeResolver {
	return &fakeResolver{coords: &models.GeoCoordinate{Latitude: 40.1777, Longitude: 44.5133}}
}

func TestCreateAgentGeocodesAndSetsTimezone(t *testing.T) {
	repo := &recordingAgentRepo{}
	svc := NewAgentService(repo, yerevanResolver())

	agent, err := svc.Create(context.Background(), &dtos.CreateAgentRequest{
		Name:        "Armen Sargsyan",
		PhoneNumber: "+374 91 123456",
		Address: dtos.AddressPayload{
			Street: "1 Amiryan St", City: "Yerevan", State: "Yerevan", ZipCode: "0010",
		},
		TimeSlots: []dtos.TimeSlotPayload{
			{Day: "monday", StartTime: "09:00", EndTime: "17:00", Available: true},
		},
	})

	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, agent.ID)
	require.InDelta(t, 40.1777, agent.Latitude, 0.0001)
	require.InDelta(t, 44.5133, agent.Longitude, 0.0001)
	require.Equal(t, "Asia/Yerevan", agent.TimeZone)
	require.True(t, agent.IsActive)
	require.Len(t, agent.TimeSlots, 1)
	require.NotEqual(t, uuid.Nil, agent.TimeSlots[0].ID)
	require.Same(t, agent, repo.created)
}

func TestCreateAgentRejectsInvertedSlot(t *testing.T) {
	svc := NewAgentService(&recordingAgentRepo{}, yerevanResolver())

	_, err := svc.Create(context.Background(), &dtos.CreateAgentRequest{
		Name:        "Bad Slot",
		PhoneNumber: "+374 91 000000",
		Address: dtos.AddressPayload{
			Street: "1 Amiryan St", City: "Yerevan", State: "Yerevan", ZipCode: "0010",
		},
		TimeSlots: []dtos.TimeSlotPayload{
			{Day: "monday", StartTime: "17:00", EndTime: "09:00"},
		},
	})

	require.ErrorIs(t, err, utils.ErrInvalidTimeSlot)
}

func TestCreateAgentGeocodingFailure(t *testing.T) {
	svc := NewAgentService(&recordingAgentRepo{}, &fakeResolver{err: utils.ErrGeocodingFailed})

	_, err := svc.Create(context.Background(), &dtos.CreateAgentRequest{
		Name:        "Unreachable",
		PhoneNumber: "+374 91 000000",
		Address: dtos.AddressPayload{
			Street: "nowhere", City: "nowhere", State: "NA", ZipCode: "00000",
		},
	})

	require.ErrorIs(t, err, utils.ErrGeocodingFailed)
}

func TestUpdateAgentAddressChangeRegeocdes(t *testing.T) {
	existing := testAgent("Anahit Petrosyan", 40.0, 44.0)
	existing.TimeZone = "Asia/Yerevan"
	repo := &recordingAgentRepo{fakeAgentRepo: fakeAgentRepo{agents: []*models.Agent{existing}}}
	svc := NewAgentService(repo, yerevanResolver())

	updated, err := svc.Update(context.Background(), existing.ID, &dtos.UpdateAgentRequest{
		Address: &dtos.AddressPayload{
			Street: "5 Northern Ave", City: "Yerevan", State: "Yerevan", ZipCode: "0001",
		},
	})

	require.NoError(t, err)
	require.Equal(t, "5 Northern Ave", updated.Street)
	require.InDelta(t, 40.1777, updated.Latitude, 0.0001)
	require.NotNil(t, repo.updated)
}

func TestUpdateAgentPartialFieldsSkipGeocoding(t *testing.T) {
	existing := testAgent("Gevorg Hakobyan", 40.1776, 44.5146)
	repo := &recordingAgentRepo{fakeAgentRepo: fakeAgentRepo{agents: []*models.Agent{existing}}}
	// A resolver that fails proves no geocoding happens without an
	// address change.
	svc := NewAgentService(repo, &fakeResolver{err: utils.ErrGeocodingFailed})

	name := "Gevorg H."
	updated, err := svc.Update(context.Background(), existing.ID, &dtos.UpdateAgentRequest{Name: &name})

	require.NoError(t, err)
	require.Equal(t, "Gevorg H.", updated.Name)
	require.InDelta(t, 40.1776, updated.Latitude, 0.0001)
}

func TestUpdateUnknownAgent(t *testing.T) {
	svc := NewAgentService(&recordingAgentRepo{}, yerevanResolver())

	_, err := svc.Update(context.Background(), uuid.New(), &dtos.UpdateAgentRequest{})

	require.ErrorIs(t, err, utils.ErrAgentNotFound)
}

func TestAddTimeSlotValidation(t *testing.T) {
	existing := testAgent("Sona Grigoryan", 40.1833, 44.5108)
	repo := &recordingAgentRepo{fakeAgentRepo: fakeAgentRepo{agents: []*models.Agent{existing}}}
	svc := NewAgentService(repo, yerevanResolver())

	_, err := svc.AddTimeSlot(context.Background(), existing.ID, &dtos.TimeSlotPayload{
		Day: "someday", StartTime: "09:00", EndTime: "17:00",
	})
	require.ErrorIs(t, err, utils.ErrInvalidWeekday)

	_, err = svc.AddTimeSlot(context.Background(), existing.ID, &dtos.TimeSlotPayload{
		Day: "tuesday", StartTime: "17:00", EndTime: "09:00",
	})
	require.ErrorIs(t, err, utils.ErrInvalidTimeSlot)

	slot, err := svc.AddTimeSlot(context.Background(), existing.ID, &dtos.TimeSlotPayload{
		Day: "tuesday", StartTime: "09:00", EndTime: "17:00", Available: true,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, slot.ID)
}

func TestSlotNotFoundMapping(t *testing.T) {
	repo := &recordingAgentRepo{slotErr: pgx.ErrNoRows}
	svc := NewAgentService(repo, yerevanResolver())

	err := svc.RemoveTimeSlot(context.Background(), uuid.New(), uuid.New())
	require.ErrorIs(t, err, utils.ErrSlotNotFound)

	err = svc.SetTimeSlotAvailability(context.Background(), uuid.New(), uuid.New(), false)
	require.ErrorIs(t, err, utils.ErrSlotNotFound)
}

func TestDeactivateUnknownAgent(t *testing.T) {
	svc := NewAgentService(&recordingAgentRepo{}, yerevanResolver())

	err := svc.Deactivate(context.Background(), uuid.New())

	require.ErrorIs(t, err, utils.ErrAgentNotFound)
}
