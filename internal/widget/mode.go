package widget

import (
	"fmt"

	"github.com/urbansetunoreply-byte/UrbanSetuCloneBackend-sub002/internal/model"
)

// Mode is the single active UI surface. Exactly one mode is active at
// a time; the modal soup of overlapping panels reduces to this enum.
type Mode string

const (
	ModeClosed       Mode = "closed"
	ModeChat         Mode = "chat"
	ModeSettings     Mode = "settings"
	ModeHistory      Mode = "history"
	ModeBookmarks    Mode = "bookmarks"
	ModeAdminReports Mode = "admin_reports"
	ModeAdminRatings Mode = "admin_ratings"
)

// adminModes require an administrative role.
var adminModes = map[Mode]bool{
	ModeAdminReports: true,
	ModeAdminRatings: true,
}

// SetMode switches the active surface. Administrative surfaces are
// rejected for non-admin roles.
func (w *Widget) SetMode(m Mode) error {
	if adminModes[m] {
		role := w.identity.Role
		if role != model.TierAdmin && role != model.TierRootAdmin {
			return fmt.Errorf("mode %s requires an admin role", m)
		}
	}

	w.mu.Lock()
	w.mode = m
	w.mu.Unlock()
	return nil
}

// Mode returns the active surface.
func (w *Widget) Mode() Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.mode
}
