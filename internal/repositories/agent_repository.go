package repositories

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/davidmmovement/agent-finder-api/internal/models"
)

type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

type AgentStats struct {
	TotalAgents      int         `json:"total_agents"`
	InactiveAgents   int         `json:"inactive_agents"`
	AgentsByCity     []CityCount `json:"agents_by_city"`
	AvailableSlots   int         `json:"available_slots"`
	UnavailableSlots int         `json:"unavailable_slots"`
}

type AgentRepository interface {
	Create(ctx context.Context, agent *models.Agent) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	Update(ctx context.Context, agent *models.Agent) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	ListActive(ctx context.Context) ([]*models.Agent, error)
	ListActiveNear(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.Agent, error)
	ListByCity(ctx context.Context, city, state string, limit int) ([]*models.Agent, error)
	Stats(ctx context.Context) (*AgentStats, error)

	AddTimeSlot(ctx context.Context, agentID uuid.UUID, slot *models.TimeSlot) error
	RemoveTimeSlot(ctx context.Context, agentID, slotID uuid.UUID) error
	SetTimeSlotAvailability(ctx context.Context, agentID, slotID uuid.UUID, available bool) error
}

type agentRepo struct {
	db DB
}

func NewAgentRepository(db DB) AgentRepository {
	return &agentRepo{db}
}

func (r *agentRepo) Create(ctx context.Context, agent *models.Agent) error {
	q := `
        INSERT INTO agents (
            id, name, email, phone_number, street, city, state, zip_code,
            timezone, latitude, longitude, is_active, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12, NOW(), NOW())
    `
	_, err := r.db.Exec(ctx, q,
		agent.ID, agent.Name, agent.Email, agent.PhoneNumber,
		agent.Street, agent.City, agent.State, agent.ZipCode,
		agent.TimeZone, agent.Latitude, agent.Longitude, agent.IsActive,
	)
	if err != nil {
		return err
	}
	for i := range agent.TimeSlots {
		if err := r.AddTimeSlot(ctx, agent.ID, &agent.TimeSlots[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *agentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	q := baseSelectAgent() + " WHERE id=$1"
	row := r.db.QueryRow(ctx, q, id)
	agent, err := scanAgent(row)
	if err != nil || agent == nil {
		return agent, err
	}
	if err := r.loadTimeSlots(ctx, agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (r *agentRepo) Update(ctx context.Context, agent *models.Agent) error {
	q := `
        UPDATE agents SET
            name=$2, email=$3, phone_number=$4, street=$5, city=$6,
            state=$7, zip_code=$8, timezone=$9, latitude=$10, longitude=$11,
            updated_at=NOW()
        WHERE id=$1
    `
	_, err := r.db.Exec(ctx, q,
		agent.ID, agent.Name, agent.Email, agent.PhoneNumber,
		agent.Street, agent.City, agent.State, agent.ZipCode,
		agent.TimeZone, agent.Latitude, agent.Longitude,
	)
	return err
}

func (r *agentRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	_, err := r.db.Exec(ctx,
		`UPDATE agents SET is_active=$2, updated_at=NOW() WHERE id=$1`, id, active)
	return err
}

func (r *agentRepo) ListActive(ctx context.Context) ([]*models.Agent, error) {
	q := baseSelectAgent() + " WHERE is_active=true ORDER BY name"
	return r.queryAgents(ctx, q)
}

/*
ListActiveNear prefilters with a latitude/longitude bounding box around
the center; callers compute exact haversine distances and apply the true
radius cut. The box over-fetches slightly (it circumscribes the circle),
which is fine: correctness lives in the caller's exact pass.
*/
func (r *agentRepo) ListActiveNear(ctx context.Context, lat, lng, radiusMeters float64) ([]*models.Agent, error) {
	latDelta := radiusMeters / 111320.0
	lngDelta := latDelta
	if cosLat := math.Cos(lat * math.Pi / 180); cosLat > 0.01 {
		lngDelta = latDelta / cosLat
	}

	q := baseSelectAgent() + `
        WHERE is_active=true
          AND latitude BETWEEN $1 AND $2
          AND longitude BETWEEN $3 AND $4
    `
	return r.queryAgents(ctx, q, lat-latDelta, lat+latDelta, lng-lngDelta, lng+lngDelta)
}

func (r *agentRepo) ListByCity(ctx context.Context, city, state string, limit int) ([]*models.Agent, error) {
	q := baseSelectAgent() + " WHERE is_active=true AND city ILIKE '%' || $1 || '%'"
	args := []interface{}{city}
	if state != "" {
		q += " AND state ILIKE '%' || $2 || '%'"
		args = append(args, state)
	}
	args = append(args, limit)
	q += fmt.Sprintf(" ORDER BY name LIMIT $%d", len(args))
	return r.queryAgents(ctx, q, args...)
}

func (r *agentRepo) Stats(ctx context.Context) (*AgentStats, error) {
	stats := &AgentStats{}

	row := r.db.QueryRow(ctx, `
        SELECT
            COUNT(*) FILTER (WHERE is_active),
            COUNT(*) FILTER (WHERE NOT is_active)
        FROM agents
    `)
	if err := row.Scan(&stats.TotalAgents, &stats.InactiveAgents); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
        SELECT city, COUNT(*) FROM agents
        WHERE is_active=true
        GROUP BY city ORDER BY COUNT(*) DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cc CityCount
		if err := rows.Scan(&cc.City, &cc.Count); err != nil {
			return nil, err
		}
		stats.AgentsByCity = append(stats.AgentsByCity, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	row = r.db.QueryRow(ctx, `
        SELECT
            COUNT(*) FILTER (WHERE ts.available),
            COUNT(*) FILTER (WHERE NOT ts.available)
        FROM agent_time_slots ts
        JOIN agents a ON a.id = ts.agent_id
        WHERE a.is_active=true
    `)
	if err := row.Scan(&stats.AvailableSlots, &stats.UnavailableSlots); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *agentRepo) AddTimeSlot(ctx context.Context, agentID uuid.UUID, slot *models.TimeSlot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	_, err := r.db.Exec(ctx, `
        INSERT INTO agent_time_slots (id, agent_id, day, start_time, end_time, available)
        VALUES ($1,$2,$3,$4,$5,$6)
    `, slot.ID, agentID, slot.Day, slot.StartTime, slot.EndTime, slot.Available)
	return err
}

func (r *agentRepo) RemoveTimeSlot(ctx context.Context, agentID, slotID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM agent_time_slots WHERE id=$1 AND agent_id=$2`, slotID, agentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agentRepo) SetTimeSlotAvailability(ctx context.Context, agentID, slotID uuid.UUID, available bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE agent_time_slots SET available=$3 WHERE id=$1 AND agent_id=$2`,
		slotID, agentID, available)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// -------------------------- helpers --------------------------

func (r *agentRepo) queryAgents(ctx context.Context, q string, args ...interface{}) ([]*models.Agent, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Agent
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, agent := range out {
		if err := r.loadTimeSlots(ctx, agent); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *agentRepo) loadTimeSlots(ctx context.Context, agent *models.Agent) error {
	rows, err := r.db.Query(ctx, `
        SELECT id, day, start_time, end_time, available
        FROM agent_time_slots
        WHERE agent_id=$1
        ORDER BY array_position(ARRAY['monday','tuesday','wednesday','thursday','friday','saturday','sunday'], day), start_time
    `, agent.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ts models.TimeSlot
		if err := rows.Scan(&ts.ID, &ts.Day, &ts.StartTime, &ts.EndTime, &ts.Available); err != nil {
			return err
		}
		agent.TimeSlots = append(agent.TimeSlots, ts)
	}
	return rows.Err()
}

func baseSelectAgent() string {
	return `
        SELECT
            id, name, email, phone_number, street, city, state, zip_code,
            timezone, latitude, longitude, is_active, created_at, updated_at
        FROM agents
    `
}

func scanAgent(row pgx.Row) (*models.Agent, error) {
	var agent models.Agent
	err := row.Scan(
		&agent.ID, &agent.Name, &agent.Email, &agent.PhoneNumber,
		&agent.Street, &agent.City, &agent.State, &agent.ZipCode,
		&agent.TimeZone, &agent.Latitude, &agent.Longitude, &agent.IsActive,
		&agent.CreatedAt, &agent.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}
