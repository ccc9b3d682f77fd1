package model

// Me is the reply of the me/ endpoint.
type Me struct {
	Email          string `json:"email"`
	CanWrite       *bool  `json:"can_write"`
	CanSeeAllSites bool   `json:"can_see_all_sites"`
	SiteID         *int   `json:"site_id"`
	IsSuperuser    bool   `json:"is_superuser"`
}

// Permissions gates what the signed-in user may do. HQ/CEO accounts are read-only.
type Permissions struct {
	CanWrite       bool `json:"can_write"`
	CanSeeAllSites bool `json:"can_see_all_sites"`
	SiteID         *int `json:"site_id,omitempty"`
	IsSuperuser    bool `json:"is_superuser"`
}

// DefaultPermissions applies when me/ could not be read.
func DefaultPermissions() Permissions {
	return Permissions{CanWrite: true}
}

// Permissions treats a missing can_write as writable.
func (m *Me) Permissions() Permissions {
	p := DefaultPermissions()
	if m.CanWrite != nil {
		p.CanWrite = *m.CanWrite
	}
	p.CanSeeAllSites = m.CanSeeAllSites
	p.SiteID = m.SiteID
	p.IsSuperuser = m.IsSuperuser
	return p
}
