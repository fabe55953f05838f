// Package wizard implements the four-step trip scheduling flow used by
// transporters. A session holds a draft trip and a current step; the
// caller advances with Next (refused while the step's required fields
// are missing) and retreats with Prev (which exits the flow from the
// first step). Invoking Next from the confirmation step submits the
// draft through the configured Submitter.
package wizard

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zugo/transit-backend/internal/models"
)

// Step identifies a wizard step, 1-based and strictly linear
type Step int

const (
	StepRouteSelection Step = iota + 1
	StepScheduleDetails
	StepResourceAssignment
	StepConfirmation
)

// String returns the client-facing name of the step
func (s Step) String() string {
	switch s {
	case StepRouteSelection:
		return "route_selection"
	case StepScheduleDetails:
		return "schedule_details"
	case StepResourceAssignment:
		return "resource_assignment"
	case StepConfirmation:
		return "confirmation"
	}
	return "unknown"
}

// MarshalJSON implements json.Marshaler so steps render by name
func (s Step) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", s.String())), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Step) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for step := StepRouteSelection; step <= StepConfirmation; step++ {
		if step.String() == name {
			*s = step
			return nil
		}
	}
	return fmt.Errorf("unknown wizard step: %q", name)
}

var (
	// ErrSessionNotFound indicates the wizard session does not exist,
	// has expired, or belongs to another user
	ErrSessionNotFound = fmt.Errorf("wizard session not found")

	// ErrRouteRequired indicates step 1 cannot advance without a route
	ErrRouteRequired = fmt.Errorf("select a route before continuing")

	// ErrDepartureRequired indicates step 2 cannot advance without a
	// departure time
	ErrDepartureRequired = fmt.Errorf("enter a departure time before continuing")

	// ErrResourcesRequired indicates step 3 cannot advance without both
	// a bus and a driver
	ErrResourcesRequired = fmt.Errorf("assign a bus and a driver before continuing")
)

// Draft accumulates the trip being scheduled across steps. Route, bus,
// and driver are carried as the caller supplied them; no check is made
// that the referenced records still exist when the draft is submitted.
type Draft struct {
	RouteID       string `json:"route_id,omitempty"`
	RouteCode     string `json:"route_code,omitempty"`
	DepartureTime string `json:"departure_time,omitempty"` // HH:MM
	ArrivalTime   string `json:"arrival_time,omitempty"`   // HH:MM
	RepeatDays    []int  `json:"repeat_days,omitempty"`    // weekday numbers, 0=Sunday
	BusID         string `json:"bus_id,omitempty"`
	BusNumber     string `json:"bus_number,omitempty"`
	DriverID      string `json:"driver_id,omitempty"`
	DriverName    string `json:"driver_name,omitempty"`
}

// DraftPatch carries the fields a step submits. Nil fields are left
// untouched in the draft.
type DraftPatch struct {
	RouteID       *string `json:"route_id,omitempty"`
	RouteCode     *string `json:"route_code,omitempty"`
	DepartureTime *string `json:"departure_time,omitempty"`
	ArrivalTime   *string `json:"arrival_time,omitempty"`
	RepeatDays    []int   `json:"repeat_days,omitempty"`
	BusID         *string `json:"bus_id,omitempty"`
	BusNumber     *string `json:"bus_number,omitempty"`
	DriverID      *string `json:"driver_id,omitempty"`
	DriverName    *string `json:"driver_name,omitempty"`
}

// Validate validates the DraftPatch
func (p *DraftPatch) Validate() error {
	if p.DepartureTime != nil && *p.DepartureTime != "" {
		if err := models.ValidateClockTime(*p.DepartureTime); err != nil {
			return err
		}
	}
	if p.ArrivalTime != nil && *p.ArrivalTime != "" {
		if err := models.ValidateClockTime(*p.ArrivalTime); err != nil {
			return err
		}
	}
	for _, day := range p.RepeatDays {
		if day < 0 || day > 6 {
			return fmt.Errorf("invalid repeat day %d: must be 0 through 6", day)
		}
	}
	return nil
}

// Session is one transporter's in-progress scheduling flow
type Session struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Step      Step      `json:"step"`
	Draft     Draft     `json:"draft"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	expiresAt time.Time
}

// Result reports the outcome of a completed wizard
type Result struct {
	// Trip is the persisted record, or nil when the manager has no
	// submitter wired and the draft was accepted without being stored
	Trip *models.Trip `json:"trip,omitempty"`

	// Persisted is false when submission succeeded without a submitter
	Persisted bool `json:"persisted"`
}

// Submitter turns a finished draft into a stored trip
type Submitter interface {
	Submit(ownerID string, draft Draft) (*models.Trip, error)
}

// Manager owns the live wizard sessions. Sessions expire after the
// configured TTL and are purged lazily on access.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	ttl       time.Duration
	submitter Submitter
}

// NewManager creates a wizard manager. A nil submitter leaves the flow
// unwired: completed drafts are accepted and discarded, mirroring the
// original mock flow, and the Result reports Persisted=false so callers
// can surface the gap.
func NewManager(ttl time.Duration, submitter Submitter) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		ttl:       ttl,
		submitter: submitter,
	}
}

// Start opens a new session on the first step
func (m *Manager) Start(ownerID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	session := &Session{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Step:      StepRouteSelection,
		CreatedAt: now,
		UpdatedAt: now,
		expiresAt: now.Add(m.ttl),
	}
	m.sessions[session.ID] = session
	return session
}

// Get returns a copy of the session, scoped to its owner
func (m *Manager) Get(id, ownerID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.lookup(id, ownerID)
	if err != nil {
		return nil, err
	}
	copied := *session
	return &copied, nil
}

// Next applies the patch to the draft and advances one step. The step
// does not change when its required fields are still missing after the
// patch. Invoking Next from the confirmation step submits the draft,
// closes the session, and returns a Result.
func (m *Manager) Next(id, ownerID string, patch *DraftPatch) (*Session, *Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.lookup(id, ownerID)
	if err != nil {
		return nil, nil, err
	}

	if patch != nil {
		if err := patch.Validate(); err != nil {
			return nil, nil, err
		}
		applyDraftPatch(&session.Draft, patch)
		session.UpdatedAt = time.Now()
	}

	if err := requiredFields(session.Step, &session.Draft); err != nil {
		return nil, nil, err
	}

	if session.Step == StepConfirmation {
		result, err := m.submit(session)
		if err != nil {
			return nil, nil, err
		}
		delete(m.sessions, session.ID)
		return nil, result, nil
	}

	session.Step++
	session.UpdatedAt = time.Now()
	copied := *session
	return &copied, nil, nil
}

// Prev retreats one step. From the first step the session is closed and
// exited reports true; otherwise the step decreases by one, never below
// the first step.
func (m *Manager) Prev(id, ownerID string) (session *Session, exited bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.lookup(id, ownerID)
	if err != nil {
		return nil, false, err
	}

	if current.Step == StepRouteSelection {
		delete(m.sessions, current.ID)
		return nil, true, nil
	}

	current.Step--
	current.UpdatedAt = time.Now()
	copied := *current
	return &copied, false, nil
}

// Cancel discards the session
func (m *Manager) Cancel(id, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.lookup(id, ownerID); err != nil {
		return err
	}
	delete(m.sessions, id)
	return nil
}

// lookup must be called with the mutex held
func (m *Manager) lookup(id, ownerID string) (*Session, error) {
	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(session.expiresAt) {
		delete(m.sessions, id)
		return nil, ErrSessionNotFound
	}
	if session.OwnerID != ownerID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (m *Manager) submit(session *Session) (*Result, error) {
	if m.submitter == nil {
		return &Result{Persisted: false}, nil
	}
	trip, err := m.submitter.Submit(session.OwnerID, session.Draft)
	if err != nil {
		return nil, fmt.Errorf("failed to submit trip: %w", err)
	}
	return &Result{Trip: trip, Persisted: true}, nil
}

func requiredFields(step Step, draft *Draft) error {
	switch step {
	case StepRouteSelection:
		if draft.RouteID == "" {
			return ErrRouteRequired
		}
	case StepScheduleDetails:
		if draft.DepartureTime == "" {
			return ErrDepartureRequired
		}
	case StepResourceAssignment:
		if draft.BusID == "" || draft.DriverID == "" {
			return ErrResourcesRequired
		}
	}
	return nil
}

func applyDraftPatch(draft *Draft, patch *DraftPatch) {
	if patch.RouteID != nil {
		draft.RouteID = *patch.RouteID
	}
	if patch.RouteCode != nil {
		draft.RouteCode = *patch.RouteCode
	}
	if patch.DepartureTime != nil {
		draft.DepartureTime = *patch.DepartureTime
	}
	if patch.ArrivalTime != nil {
		draft.ArrivalTime = *patch.ArrivalTime
	}
	if patch.RepeatDays != nil {
		draft.RepeatDays = append([]int(nil), patch.RepeatDays...)
	}
	if patch.BusID != nil {
		draft.BusID = *patch.BusID
	}
	if patch.BusNumber != nil {
		draft.BusNumber = *patch.BusNumber
	}
	if patch.DriverID != nil {
		draft.DriverID = *patch.DriverID
	}
	if patch.DriverName != nil {
		draft.DriverName = *patch.DriverName
	}
}
