// Package catalog holds the static style catalog for the headshot wizard: the
// vibe categories with their allowed attire/background/lighting option sets and
// the fixed camera-angle set. Pure data, no behavior beyond lookups.
package catalog

// Option is one selectable catalog entry. The label is what the prompt
// composer embeds; the id is a stable short code used by clients.
type Option struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// VibeConfig lists the option sets available under one vibe.
type VibeConfig struct {
	Attire     []Option `json:"attire"`
	Background []Option `json:"background"`
	Lighting   []Option `json:"lighting"`
}

const (
	VibeCorporate = "Corporate"
	VibeStartup   = "Startup"
	VibeCreative  = "Creative"

	// DefaultAngle is preselected and survives vibe changes.
	DefaultAngle = "Eye Level"

	// CustomUploadBackground is the sentinel background label meaning the
	// user supplies their own background image instead of a catalog entry.
	CustomUploadBackground = "Custom Upload"
)

var vibeOrder = []string{VibeCorporate, VibeStartup, VibeCreative}

var vibes = map[string]VibeConfig{
	VibeCorporate: {
		Attire: []Option{
			{ID: "C01", Label: "Classic Suit & Tie"},
			{ID: "C02", Label: "Blazer + Shirt (No Tie)"},
			{ID: "C03", Label: "Business Formal Dress"},
			{ID: "C04", Label: "Smart Shirt + Trousers"},
		},
		Background: []Option{
			{ID: "CBG01", Label: "High-rise Office", Description: "Blurred city view"},
			{ID: "CBG02", Label: "Clean Corporate Wall", Description: "Neutral grey/white"},
			{ID: "CBG03", Label: "Boardroom", Description: "Soft blur meeting room"},
			{ID: "CBG04", Label: "Corporate Lobby", Description: "Subtle depth of field"},
		},
		Lighting: []Option{
			{ID: "L01", Label: "Soft Studio", Description: "Even, flattering"},
			{ID: "L02", Label: "Natural Window", Description: "Daylight, soft shadows"},
			{ID: "L03", Label: "Neutral Front", Description: "Minimizes shadows"},
		},
	},
	VibeStartup: {
		Attire: []Option{
			{ID: "S01", Label: "Smart Casual Shirt"},
			{ID: "S02", Label: "T-Shirt + Blazer"},
			{ID: "S03", Label: "Polo Shirt"},
			{ID: "S04", Label: "Hoodie + T-Shirt"},
		},
		Background: []Option{
			{ID: "SBG01", Label: "Modern Open Office", Description: "Desks, blurred"},
			{ID: "SBG02", Label: "Co-working Space", Description: "Plants, warm elements"},
			{ID: "SBG03", Label: "Tech Gradient", Description: "Minimal abstract"},
			{ID: "SBG04", Label: "Textured Wall", Description: "Brick, subtle"},
		},
		Lighting: []Option{
			{ID: "L01", Label: "Soft Studio", Description: "Even, flattering"},
			{ID: "L02", Label: "Natural Window", Description: "Daylight, soft shadows"},
			{ID: "L04", Label: "Slight Rim Light", Description: "Techy depth"},
		},
	},
	VibeCreative: {
		Attire: []Option{
			{ID: "CR01", Label: "Stylish Casual", Description: "Shirt / Blouse + Jeans"},
			{ID: "CR02", Label: "Statement Outfit", Description: "Patterns / Colors"},
			{ID: "CR03", Label: "Monochrome", Description: "Black Turtleneck"},
			{ID: "CR04", Label: "Artsy Layered", Description: "Jacket, Accessories"},
		},
		Background: []Option{
			{ID: "CRBG01", Label: "Studio Color", Description: "Muted pastel"},
			{ID: "CRBG02", Label: "Artistic Workspace", Description: "Easel, gear"},
			{ID: "CRBG03", Label: "Urban Street", Description: "Soft blur"},
			{ID: "CRBG04", Label: "Minimal Dark", Description: "Spotlight effect"},
		},
		Lighting: []Option{
			{ID: "L01", Label: "Soft Studio", Description: "Even, flattering"},
			{ID: "L02", Label: "Natural Window", Description: "Daylight"},
			{ID: "L05", Label: "Creative Directional", Description: "Mild contrast"},
		},
	},
}

var angles = []Option{
	{ID: "A01", Label: "Eye Level", Description: "Classic & Neutral"},
	{ID: "A02", Label: "Low Angle", Description: "Heroic & Powerful"},
	{ID: "A03", Label: "High Angle", Description: "Flattering & Soft"},
	{ID: "A04", Label: "Wide Angle", Description: "Environmental Context"},
}

// Vibes returns the vibe names in display order.
func Vibes() []string {
	out := make([]string, len(vibeOrder))
	copy(out, vibeOrder)
	return out
}

// Lookup returns the option sets for a vibe.
func Lookup(vibe string) (VibeConfig, bool) {
	cfg, ok := vibes[vibe]
	return cfg, ok
}

// Angles returns the fixed camera-angle set shared by all vibes.
func Angles() []Option {
	out := make([]Option, len(angles))
	copy(out, angles)
	return out
}

// ValidAttire reports whether the label belongs to the vibe's attire set.
func ValidAttire(vibe, label string) bool {
	cfg, ok := vibes[vibe]
	return ok && containsLabel(cfg.Attire, label)
}

// ValidBackground reports whether the label belongs to the vibe's background
// set. The custom-upload sentinel is valid under every vibe.
func ValidBackground(vibe, label string) bool {
	if label == CustomUploadBackground {
		_, ok := vibes[vibe]
		return ok
	}
	cfg, ok := vibes[vibe]
	return ok && containsLabel(cfg.Background, label)
}

// ValidLighting reports whether the label belongs to the vibe's lighting set.
func ValidLighting(vibe, label string) bool {
	cfg, ok := vibes[vibe]
	return ok && containsLabel(cfg.Lighting, label)
}

// ValidAngle reports whether the label is one of the fixed camera angles.
func ValidAngle(label string) bool {
	return containsLabel(angles, label)
}

func containsLabel(opts []Option, label string) bool {
	for _, o := range opts {
		if o.Label == label {
			return true
		}
	}
	return false
}
