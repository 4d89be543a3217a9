package catalog

import "testing"

func TestVibesOrder(t *testing.T) {
	got := Vibes()
	want := []string{VibeCorporate, VibeStartup, VibeCreative}
	if len(got) != len(want) {
		t.Fatalf("Vibes() returned %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Vibes()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLookupOptionSets(t *testing.T) {
	for _, vibe := range Vibes() {
		cfg, ok := Lookup(vibe)
		if !ok {
			t.Fatalf("Lookup(%q) missing", vibe)
		}
		if len(cfg.Attire) != 4 {
			t.Errorf("%s attire: got %d options, want 4", vibe, len(cfg.Attire))
		}
		if len(cfg.Background) != 4 {
			t.Errorf("%s background: got %d options, want 4", vibe, len(cfg.Background))
		}
		if len(cfg.Lighting) != 3 {
			t.Errorf("%s lighting: got %d options, want 3", vibe, len(cfg.Lighting))
		}
	}
	if _, ok := Lookup("Casual"); ok {
		t.Fatalf("Lookup(Casual) should be missing")
	}
}

func TestAnglesSharedAcrossVibes(t *testing.T) {
	angles := Angles()
	if len(angles) != 4 {
		t.Fatalf("Angles() returned %d entries, want 4", len(angles))
	}
	if angles[0].Label != DefaultAngle {
		t.Fatalf("first angle = %q, want the default %q", angles[0].Label, DefaultAngle)
	}
	for _, a := range angles {
		if !ValidAngle(a.Label) {
			t.Errorf("ValidAngle(%q) = false", a.Label)
		}
	}
	if ValidAngle("Dutch Tilt") {
		t.Fatalf("ValidAngle(Dutch Tilt) = true")
	}
}

func TestValidityScopedToVibe(t *testing.T) {
	if !ValidAttire(VibeCorporate, "Classic Suit & Tie") {
		t.Fatalf("corporate attire rejected")
	}
	if ValidAttire(VibeStartup, "Classic Suit & Tie") {
		t.Fatalf("corporate attire accepted under startup")
	}
	if !ValidBackground(VibeCorporate, "High-rise Office") {
		t.Fatalf("corporate background rejected")
	}
	if ValidBackground(VibeCreative, "High-rise Office") {
		t.Fatalf("corporate background accepted under creative")
	}
	if !ValidLighting(VibeStartup, "Slight Rim Light") {
		t.Fatalf("startup lighting rejected")
	}
	if ValidLighting(VibeCorporate, "Slight Rim Light") {
		t.Fatalf("startup-only lighting accepted under corporate")
	}
}

func TestCustomUploadValidUnderEveryVibe(t *testing.T) {
	for _, vibe := range Vibes() {
		if !ValidBackground(vibe, CustomUploadBackground) {
			t.Errorf("ValidBackground(%q, custom upload) = false", vibe)
		}
	}
	if ValidBackground("Casual", CustomUploadBackground) {
		t.Fatalf("custom upload accepted under unknown vibe")
	}
}

func TestNormalizeVibe(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"corporate", VibeCorporate, true},
		{"CREATIVE", VibeCreative, true},
		{"  Startup ", VibeStartup, true},
		{"sTaRtUp", VibeStartup, true},
		{"casual", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizeVibe(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("NormalizeVibe(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
