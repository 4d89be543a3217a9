package wizard

import (
	"fmt"
	"strings"

	"prolink-server/internal/catalog"
	"prolink-server/internal/domain"
)

// Background is either a named catalog option or a user-supplied image. The
// custom variant always carries its bytes, so "Custom Upload selected but no
// image attached" is not representable here; an unset background is the zero
// value.
type Background struct {
	label  string
	custom *domain.SourceImage
}

// NamedBackground selects a catalog background by label.
func NamedBackground(label string) Background {
	return Background{label: label}
}

// CustomBackground selects a user-uploaded background image.
func CustomBackground(data []byte, mime string) Background {
	return Background{
		label:  catalog.CustomUploadBackground,
		custom: &domain.SourceImage{Data: data, MIME: mime},
	}
}

// IsSet reports whether any background has been chosen.
func (b Background) IsSet() bool { return b.label != "" }

// IsCustom reports whether the background is a user-uploaded image.
func (b Background) IsCustom() bool { return b.custom != nil }

// Label returns the background label, or the custom-upload sentinel.
func (b Background) Label() string { return b.label }

// CustomImage returns the uploaded background image, if any.
func (b Background) CustomImage() (domain.SourceImage, bool) {
	if b.custom == nil {
		return domain.SourceImage{}, false
	}
	return *b.custom, true
}

// Selection holds the user's current wizard choices. Attire, background and
// lighting are only meaningful within the current vibe; changing the vibe
// resets them but preserves the camera angle.
type Selection struct {
	Vibe       string
	Attire     string
	Background Background
	Lighting   string
	Angle      string
}

// NewSelection returns an empty selection with the default camera angle.
func NewSelection() Selection {
	return Selection{Angle: catalog.DefaultAngle}
}

// SetVibe switches the vibe. A changed vibe invalidates attire, background and
// lighting; the angle is a cross-vibe preference and is left untouched.
func (s *Selection) SetVibe(vibe string) {
	if vibe == s.Vibe {
		return
	}
	s.Vibe = vibe
	s.Attire = ""
	s.Background = Background{}
	s.Lighting = ""
}

// SetField sets one selection field by name. Validity against the catalog is
// the caller's concern; this is a plain data holder.
func (s *Selection) SetField(key, value string) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "vibe":
		s.SetVibe(value)
	case "attire":
		s.Attire = value
	case "background":
		s.Background = NamedBackground(value)
	case "lighting":
		s.Lighting = value
	case "angle":
		s.Angle = value
	default:
		return fmt.Errorf("unknown selection field %q", key)
	}
	return nil
}

// IsComplete reports whether generation may start: attire, background,
// lighting and angle all chosen.
func (s Selection) IsComplete() bool {
	return s.Attire != "" && s.Background.IsSet() && s.Lighting != "" && s.Angle != ""
}

// Snapshot captures the label-only view of the selection for persistence.
func (s Selection) Snapshot() domain.FeatureSnapshot {
	return domain.FeatureSnapshot{
		Vibe:       s.Vibe,
		Attire:     s.Attire,
		Background: s.Background.Label(),
		Lighting:   s.Lighting,
		Angle:      s.Angle,
	}
}
