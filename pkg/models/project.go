package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hourbook/hourbook/pkg/apperrors"
)

// ProjectStatus values.
const (
	StatusPlanning   = "planning"
	StatusInProgress = "in_progress"
	StatusOnHold     = "on_hold"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ValidStatuses contains all valid project status values.
var ValidStatuses = []string{StatusPlanning, StatusInProgress, StatusOnHold, StatusCompleted, StatusCancelled}

// IsValidStatus checks if the given status is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ProjectType values. The billing block a project must carry depends on its type.
const (
	TypeOneTime  = "one_time"
	TypeRetainer = "retainer"
	TypeHourly   = "hourly"
)

// RevenueType values for one_time and retainer projects.
const (
	RevenueFixed      = "fixed"
	RevenueHoursBased = "hours_based"
)

// BillingFrequency values for retainer projects.
const (
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
	FrequencyYearly    = "yearly"
)

// Cost categories along which project costs and hour estimates are decomposed.
const (
	CategoryBackend        = "backend"
	CategoryFrontendWeb    = "frontend_web"
	CategoryFrontendMobile = "frontend_mobile"
	CategoryUIDesign       = "ui_design"
	CategoryDeployment     = "deployment"
	CategoryOther          = "other"
)

// ValidCategories contains all valid cost category keys.
var ValidCategories = []string{
	CategoryBackend, CategoryFrontendWeb, CategoryFrontendMobile,
	CategoryUIDesign, CategoryDeployment, CategoryOther,
}

// IsValidCategory checks if the given cost category is known.
func IsValidCategory(c string) bool {
	for _, v := range ValidCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Developer roles assignable on a project.
const (
	DevRoleFrontendMobile = "frontend_mobile"
	DevRoleFrontendWeb    = "frontend_web"
	DevRoleBackend        = "backend"
	DevRoleUIDesigner     = "ui_designer"
	DevRoleTeamLead       = "team_lead"
)

// ValidDeveloperRoles contains all valid developer role keys.
var ValidDeveloperRoles = []string{
	DevRoleFrontendMobile, DevRoleFrontendWeb, DevRoleBackend,
	DevRoleUIDesigner, DevRoleTeamLead,
}

// IsValidDeveloperRole checks if the given developer role is known.
func IsValidDeveloperRole(r string) bool {
	for _, v := range ValidDeveloperRoles {
		if v == r {
			return true
		}
	}
	return false
}

// CategoryMap maps cost categories to non-negative amounts (currency or
// hours depending on the field). Missing keys are treated as zero.
type CategoryMap map[string]float64

// Total sums all category values.
func (m CategoryMap) Total() float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	return total
}

// Normalize replaces NaN values with zero in place.
func (m CategoryMap) Normalize() {
	for k, v := range m {
		if math.IsNaN(v) {
			m[k] = 0
		}
	}
}

// Validate rejects unknown category keys and negative amounts. The field
// argument names the owning field in validation messages.
func (m CategoryMap) Validate(field string, v *apperrors.ValidationError) {
	for k, amount := range m {
		if !IsValidCategory(k) {
			v.Fieldf(field, "unknown category %q", k)
			continue
		}
		if amount < 0 {
			v.Fieldf(field, "%s must not be negative", k)
		}
	}
}

// Value implements driver.Valuer for JSONB serialization.
func (m CategoryMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB deserialization.
func (m *CategoryMap) Scan(value any) error {
	if value == nil {
		*m = make(CategoryMap)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into CategoryMap", value)
	}
	return json.Unmarshal(bytes, m)
}

// DeveloperRoles maps a developer role to the ordered set of assigned user
// ids. Historical documents stored a single user id string instead of a
// list; decoding coerces either shape, encoding always emits lists.
type DeveloperRoles map[string][]string

// UnmarshalJSON accepts both "u1" and ["u1", "u2"] per role.
func (d *DeveloperRoles) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(DeveloperRoles, len(raw))
	for role, val := range raw {
		var single string
		if err := json.Unmarshal(val, &single); err == nil {
			out[role] = []string{single}
			continue
		}
		var many []string
		if err := json.Unmarshal(val, &many); err != nil {
			return fmt.Errorf("developer role %q: expected string or string list", role)
		}
		out[role] = many
	}
	*d = out
	return nil
}

// Members returns the union of all assigned user ids.
func (d DeveloperRoles) Members() []string {
	seen := make(map[string]struct{})
	var members []string
	for _, ids := range d {
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				members = append(members, id)
			}
		}
	}
	return members
}

// Contains reports whether the user id is assigned to any role.
func (d DeveloperRoles) Contains(userID string) bool {
	for _, ids := range d {
		for _, id := range ids {
			if id == userID {
				return true
			}
		}
	}
	return false
}

// Normalize deduplicates ids within each role, preserving order.
func (d DeveloperRoles) Normalize() {
	for role, ids := range d {
		seen := make(map[string]struct{}, len(ids))
		out := ids[:0]
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
		d[role] = out
	}
}

// Validate rejects unknown role keys and requires a non-empty team_lead.
func (d DeveloperRoles) Validate(v *apperrors.ValidationError) {
	for role := range d {
		if !IsValidDeveloperRole(role) {
			v.Fieldf("developerRoles", "unknown role %q", role)
		}
	}
	if len(d[DevRoleTeamLead]) == 0 {
		v.Field("developerRoles", "team_lead must have at least one member")
	}
}

// Value implements driver.Valuer for JSONB serialization.
func (d DeveloperRoles) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB deserialization, applying the
// string-or-list coercion.
func (d *DeveloperRoles) Scan(value any) error {
	if value == nil {
		*d = make(DeveloperRoles)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into DeveloperRoles", value)
	}
	return d.UnmarshalJSON(bytes)
}

// Billing is the projectType-tagged billing variant. Only the fields of the
// active variant are meaningful; Validate enforces the variant shape.
type Billing struct {
	Type string `json:"type"`

	// one_time
	Income float64 `json:"income,omitempty"`

	// retainer
	MonthlyAmount    float64 `json:"monthlyAmount,omitempty"`
	BillingFrequency string  `json:"billingFrequency,omitempty"`

	// one_time and retainer
	RevenueType string `json:"revenueType,omitempty"`

	// hourly
	HourlyRate float64 `json:"hourlyRate,omitempty"`
}

// Normalize replaces NaN amounts with zero and defaults the revenue type
// to fixed where the variant carries one.
func (b *Billing) Normalize() {
	if math.IsNaN(b.Income) {
		b.Income = 0
	}
	if math.IsNaN(b.MonthlyAmount) {
		b.MonthlyAmount = 0
	}
	if math.IsNaN(b.HourlyRate) {
		b.HourlyRate = 0
	}
	if (b.Type == TypeOneTime || b.Type == TypeRetainer) && b.RevenueType == "" {
		b.RevenueType = RevenueFixed
	}
}

// Validate checks the variant shape.
func (b *Billing) Validate(v *apperrors.ValidationError) {
	switch b.Type {
	case TypeOneTime:
		if b.Income < 0 {
			v.Field("income", "must not be negative")
		}
		if b.RevenueType != RevenueFixed && b.RevenueType != RevenueHoursBased {
			v.Field("revenueType", "must be fixed or hours_based")
		}
	case TypeRetainer:
		if b.MonthlyAmount < 0 {
			v.Field("monthlyAmount", "must not be negative")
		}
		switch b.BillingFrequency {
		case FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		default:
			v.Field("billingFrequency", "must be monthly, quarterly or yearly")
		}
		if b.RevenueType != RevenueFixed && b.RevenueType != RevenueHoursBased {
			v.Field("revenueType", "must be fixed or hours_based")
		}
	case TypeHourly:
		if b.HourlyRate < 0 {
			v.Field("hourlyRate", "must not be negative")
		}
	default:
		v.Fieldf("projectType", "must be one of %s", strings.Join([]string{TypeOneTime, TypeRetainer, TypeHourly}, ", "))
	}
}

// Revenue derives the revenue for h logged hours under this billing variant.
func (b *Billing) Revenue(h float64) float64 {
	switch b.Type {
	case TypeOneTime:
		if b.RevenueType == RevenueHoursBased {
			return b.Income * h
		}
		return b.Income
	case TypeRetainer:
		if b.RevenueType == RevenueHoursBased {
			return b.MonthlyAmount * h
		}
		return b.MonthlyAmount
	case TypeHourly:
		return b.HourlyRate * h
	}
	return 0
}

// Value implements driver.Valuer for JSONB serialization.
func (b Billing) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan implements sql.Scanner for JSONB deserialization.
func (b *Billing) Scan(value any) error {
	if value == nil {
		*b = Billing{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into Billing", value)
	}
	return json.Unmarshal(bytes, b)
}

// Project is a unit of billable work with a type, costs, hour estimates and
// a team. TotalLoggedHours is denormalized; its canonical value is the
// recomputed sum over the project's time logs.
type Project struct {
	ID               uuid.UUID      `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	Client           string         `json:"client,omitempty"`
	Status           string         `json:"status"`
	Billing          Billing        `json:"billing"`
	Costs            CategoryMap    `json:"costs"`
	EstimatedHours   CategoryMap    `json:"estimatedHours"`
	StartDate        *time.Time     `json:"startDate,omitempty"`
	EndDate          *time.Time     `json:"endDate,omitempty"`
	DeveloperRoles   DeveloperRoles `json:"developerRoles"`
	TotalLoggedHours float64        `json:"totalLoggedHours"`
	IsActive         bool           `json:"isActive"`
	DeletedAt        *time.Time     `json:"deletedAt,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// Normalize applies NaN-to-zero normalization and role deduplication before
// validation or persistence.
func (p *Project) Normalize() {
	p.Billing.Normalize()
	p.Costs.Normalize()
	p.EstimatedHours.Normalize()
	p.DeveloperRoles.Normalize()
	if math.IsNaN(p.TotalLoggedHours) {
		p.TotalLoggedHours = 0
	}
}

// Validate checks the full project shape, including the projectType
// conditional billing block.
func (p *Project) Validate() error {
	v := apperrors.NewValidationError()

	if len(strings.TrimSpace(p.Name)) < 2 {
		v.Field("name", "must be at least 2 characters")
	}
	if p.Status != "" && !IsValidStatus(p.Status) {
		v.Fieldf("status", "must be one of %s", strings.Join(ValidStatuses, ", "))
	}
	p.Billing.Validate(v)
	p.Costs.Validate("costs", v)
	p.EstimatedHours.Validate("estimatedHours", v)
	p.DeveloperRoles.Validate(v)
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		v.Field("endDate", "must not be before startDate")
	}
	if p.TotalLoggedHours < 0 {
		v.Field("totalLoggedHours", "must not be negative")
	}

	return v.ErrOrNil()
}

// HasMember reports whether the user is assigned to any developer role.
func (p *Project) HasMember(userID string) bool {
	return p.DeveloperRoles.Contains(userID)
}

// Revenue derives revenue at the project's observed logged hours.
func (p *Project) Revenue() float64 {
	return p.Billing.Revenue(p.TotalLoggedHours)
}

// TotalCosts sums the project's cost categories.
func (p *Project) TotalCosts() float64 {
	return p.Costs.Total()
}

// Profit is revenue at the observed logged hours minus total costs.
func (p *Project) Profit() float64 {
	return p.Revenue() - p.TotalCosts()
}
