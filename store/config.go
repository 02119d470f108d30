package store

import "time"

// Config holds configuration for the Store.
type Config struct {
	// ProfileTable is the table holding user profiles.
	// Default: "profiles"
	ProfileTable string

	// ProfileUserColumn is the profile column referencing the user id.
	// Default: "user_id"
	ProfileUserColumn string

	// TenantColumn is the column scoping every row to a department.
	// Default: "department_id"
	TenantColumn string

	// IDColumn is the primary key column name.
	// Default: "id"
	IDColumn string

	// CreatedColumn is the creation timestamp column.
	// Default: "created_at"
	CreatedColumn string

	// UpdatedColumn is the last-update timestamp column.
	// Default: "updated_at"
	UpdatedColumn string

	// HealthTable is the table probed by HealthCheck.
	// Default: ProfileTable
	HealthTable string

	// TenantCacheTTL is how long a resolved department id stays cached.
	// Default: 5 minutes
	TenantCacheTTL time.Duration

	// FieldOverrides is the explicit internal-to-external field-name
	// dictionary for names the algorithmic camelCase/snake_case rule
	// cannot round-trip (digits at a case boundary, acronyms).
	FieldOverrides map[string]string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ProfileTable:      "profiles",
		ProfileUserColumn: "user_id",
		TenantColumn:      "department_id",
		IDColumn:          "id",
		CreatedColumn:     "created_at",
		UpdatedColumn:     "updated_at",
		TenantCacheTTL:    5 * time.Minute,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.ProfileTable == "" {
		c.ProfileTable = "profiles"
	}
	if c.ProfileUserColumn == "" {
		c.ProfileUserColumn = "user_id"
	}
	if c.TenantColumn == "" {
		c.TenantColumn = "department_id"
	}
	if c.IDColumn == "" {
		c.IDColumn = "id"
	}
	if c.CreatedColumn == "" {
		c.CreatedColumn = "created_at"
	}
	if c.UpdatedColumn == "" {
		c.UpdatedColumn = "updated_at"
	}
	if c.HealthTable == "" {
		c.HealthTable = c.ProfileTable
	}
	if c.TenantCacheTTL <= 0 {
		c.TenantCacheTTL = 5 * time.Minute
	}
}
