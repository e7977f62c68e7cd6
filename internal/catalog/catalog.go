// Package catalog serves the technician, service and skill catalogs from the
// index database. The day core consumes it through the read-only ports in
// internal/models; lookups degrade to "not found" on storage errors so a
// catalog hiccup never fails a whole day mutation.
package catalog

import (
	"turnboard/internal/database"
	"turnboard/internal/models"
)

type Catalog struct {
	db *database.DB
}

func New(db *database.DB) *Catalog {
	return &Catalog{db: db}
}

// Service resolves a service by name. Implements models.ServiceLookup.
func (c *Catalog) Service(name string) (models.ServiceInfo, bool) {
	var svc models.ServiceInfo
	err := c.db.QueryRow(
		`SELECT name, time_needed, short_name, is_bonus, is_default FROM services WHERE name = ?`,
		name,
	).Scan(&svc.Name, &svc.TimeNeeded, &svc.ShortName, &svc.IsBonus, &svc.IsDefault)
	if err != nil {
		return models.ServiceInfo{}, false
	}
	return svc, true
}

// Technician resolves a technician by alias.
func (c *Catalog) Technician(alias string) (models.Technician, bool) {
	var tech models.Technician
	err := c.db.QueryRow(
		`SELECT alias, name FROM technicians WHERE alias = ?`,
		alias,
	).Scan(&tech.Alias, &tech.Name)
	if err != nil {
		return models.Technician{}, false
	}
	return tech, true
}

// ListTechnicians returns every technician ordered by alias.
func (c *Catalog) ListTechnicians() ([]models.Technician, error) {
	rows, err := c.db.Query(`SELECT alias, name FROM technicians ORDER BY alias`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var techs []models.Technician
	for rows.Next() {
		var t models.Technician
		if err := rows.Scan(&t.Alias, &t.Name); err != nil {
			return nil, err
		}
		techs = append(techs, t)
	}
	return techs, rows.Err()
}

// HasSkill reports whether the technician can perform the service.
// Implements models.SkillLookup.
func (c *Catalog) HasSkill(techAlias, serviceName string) bool {
	var one int
	err := c.db.QueryRow(
		`SELECT 1 FROM tech_skills WHERE tech_alias = ? AND service_name = ?`,
		techAlias, serviceName,
	).Scan(&one)
	return err == nil
}

// UpsertTechnician creates or renames a technician.
func (c *Catalog) UpsertTechnician(tech models.Technician) error {
	_, err := c.db.Exec(
		`INSERT INTO technicians (alias, name) VALUES (?, ?)
		 ON CONFLICT(alias) DO UPDATE SET name = excluded.name, updated_at = CURRENT_TIMESTAMP`,
		tech.Alias, tech.Name,
	)
	return err
}

// UpsertService creates or updates a service definition.
func (c *Catalog) UpsertService(svc models.ServiceInfo) error {
	_, err := c.db.Exec(
		`INSERT INTO services (name, time_needed, short_name, is_bonus, is_default)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			time_needed = excluded.time_needed,
			short_name = excluded.short_name,
			is_bonus = excluded.is_bonus,
			is_default = excluded.is_default,
			updated_at = CURRENT_TIMESTAMP`,
		svc.Name, svc.TimeNeeded, svc.ShortName, svc.IsBonus, svc.IsDefault,
	)
	return err
}

// GrantSkill records that a technician can perform a service. Idempotent.
func (c *Catalog) GrantSkill(techAlias, serviceName string) error {
	_, err := c.db.Exec(
		`INSERT OR IGNORE INTO tech_skills (tech_alias, service_name) VALUES (?, ?)`,
		techAlias, serviceName,
	)
	return err
}

// RevokeSkill removes a skill mapping.
func (c *Catalog) RevokeSkill(techAlias, serviceName string) error {
	_, err := c.db.Exec(
		`DELETE FROM tech_skills WHERE tech_alias = ? AND service_name = ?`,
		techAlias, serviceName,
	)
	return err
}

// Skills returns the service names a technician can perform.
func (c *Catalog) Skills(techAlias string) ([]string, error) {
	rows, err := c.db.Query(
		`SELECT service_name FROM tech_skills WHERE tech_alias = ? ORDER BY service_name`,
		techAlias,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
