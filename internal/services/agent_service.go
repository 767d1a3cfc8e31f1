package services

import (
	"context"
	"errors"

	"github.com/bradfitz/latlong"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/davidmmovement/agent-finder-api/internal/dtos"
	"github.com/davidmmovement/agent-finder-api/internal/models"
	"github.com/davidmmovement/agent-finder-api/internal/repositories"
	"github.com/davidmmovement/agent-finder-api/internal/utils"
)

/*
AgentService owns the agent lifecycle: registration, profile updates,
availability management and deactivation. Coordinates are resolved once
at write time so searches never geocode agent addresses.
*/
type AgentService struct {
	repo     repositories.AgentRepository
	geocoder addressResolver
}

func NewAgentService(repo repositories.AgentRepository, geocoder addressResolver) *AgentService {
	return &AgentService{repo: repo, geocoder: geocoder}
}

func (s *AgentService) Create(ctx context.Context, req *dtos.CreateAgentRequest) (*models.Agent, error) {
	agent := &models.Agent{
		ID:          uuid.New(),
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Street:      req.Address.Street,
		City:        req.Address.City,
		State:       req.Address.State,
		ZipCode:     req.Address.ZipCode,
		IsActive:    true,
	}

	if err := s.resolveLocation(ctx, agent); err != nil {
		return nil, err
	}

	for _, slot := range req.TimeSlots {
		if slot.StartTime >= slot.EndTime {
			return nil, utils.ErrInvalidTimeSlot
		}
		agent.TimeSlots = append(agent.TimeSlots, models.TimeSlot{
			ID:        uuid.New(),
			Day:       slot.Day,
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			Available: slot.Available,
		})
	}

	if err := s.repo.Create(ctx, agent); err != nil {
		return nil, err
	}

	utils.Logger.WithFields(map[string]interface{}{
		"agent_id": agent.ID,
		"city":     agent.City,
		"timezone": agent.TimeZone,
	}).Info("Agent registered")
	return agent, nil
}

func (s *AgentService) Get(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	agent, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, utils.ErrAgentNotFound
	}
	return agent, nil
}

// Update applies the non-nil fields. An address change re-geocodes and
// recomputes the timezone.
func (s *AgentService) Update(ctx context.Context, id uuid.UUID, req *dtos.UpdateAgentRequest) (*models.Agent, error) {
	agent, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		agent.Name = *req.Name
	}
	if req.Email != nil {
		agent.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		agent.PhoneNumber = *req.PhoneNumber
	}
	if req.Address != nil {
		agent.Street = req.Address.Street
		agent.City = req.Address.City
		agent.State = req.Address.State
		agent.ZipCode = req.Address.ZipCode
		if err := s.resolveLocation(ctx, agent); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

// Deactivate soft-removes the agent from search results. The record and
// its slots stay for reactivation and stats.
func (s *AgentService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, id, false)
}

func (s *AgentService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, id, true)
}

func (s *AgentService) List(ctx context.Context) ([]*models.Agent, error) {
	return s.repo.ListActive(ctx)
}

func (s *AgentService) ListByCity(ctx context.Context, city, state string, limit int) ([]*models.Agent, error) {
	return s.repo.ListByCity(ctx, city, state, limit)
}

func (s *AgentService) Stats(ctx context.Context) (*repositories.AgentStats, error) {
	return s.repo.Stats(ctx)
}

func (s *AgentService) AddTimeSlot(ctx context.Context, agentID uuid.UUID, payload *dtos.TimeSlotPayload) (*models.TimeSlot, error) {
	if !models.IsValidWeekday(payload.Day) {
		return nil, utils.ErrInvalidWeekday
	}
	if payload.StartTime >= payload.EndTime {
		return nil, utils.ErrInvalidTimeSlot
	}
	if _, err := s.Get(ctx, agentID); err != nil {
		return nil, err
	}

	slot := &models.TimeSlot{
		ID:        uuid.New(),
		Day:       payload.Day,
		StartTime: payload.StartTime,
		EndTime:   payload.EndTime,
		Available: payload.Available,
	}
	if err := s.repo.AddTimeSlot(ctx, agentID, slot); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *AgentService) RemoveTimeSlot(ctx context.Context, agentID, slotID uuid.UUID) error {
	if err := s.repo.RemoveTimeSlot(ctx, agentID, slotID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return utils.ErrSlotNotFound
		}
		return err
	}
	return nil
}

func (s *AgentService) SetTimeSlotAvailability(ctx context.Context, agentID, slotID uuid.UUID, available bool) error {
	if err := s.repo.SetTimeSlotAvailability(ctx, agentID, slotID, available); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return utils.ErrSlotNotFound
		}
		return err
	}
	return nil
}

// resolveLocation geocodes the postal address and derives the IANA
// timezone from the resulting point.
func (s *AgentService) resolveLocation(ctx context.Context, agent *models.Agent) error {
	coords, err := s.geocoder.Resolve(ctx, agent.FullAddress())
	if err != nil {
		return err
	}
	agent.Latitude = coords.Latitude
	agent.Longitude = coords.Longitude
	if zone := latlong.LookupZoneName(coords.Latitude, coords.Longitude); zone != "" {
		agent.TimeZone = zone
	}
	return nil
}
