package metadata

import "testing"

func TestRegistryAPI_Messages(t *testing.T) {
	api := NewAPI(loadedRegistry(t))
	yes, no := true, false

	tests := []struct {
		name   string
		filter MessageFilter
		want   []string
	}{
		{"all", MessageFilter{}, []string{"transfer", "total_supply"}},
		{"mutating", MessageFilter{Mutates: &yes}, []string{"transfer"}},
		{"read only", MessageFilter{Mutates: &no}, []string{"total_supply"}},
		{"prefix", MessageFilter{Name: "total_*"}, []string{"total_supply"}},
		{"suffix", MessageFilter{Name: "*fer"}, []string{"transfer"}},
		{"contains", MessageFilter{Name: "*s*"}, []string{"transfer", "total_supply"}},
		{"by type", MessageFilter{Type: "u128"}, []string{"transfer", "total_supply"}},
		{"type and mutates", MessageFilter{Type: "u128", Mutates: &no}, []string{"total_supply"}},
		{"no match", MessageFilter{Name: "approve"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := names(api.Messages(tt.filter)); !equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistryAPI_Events(t *testing.T) {
	api := NewAPI(loadedRegistry(t))

	if got := len(api.Events("")); got != 1 {
		t.Errorf("Events(\"\"): got %d, want 1", got)
	}
	if got := len(api.Events("Trans*")); got != 1 {
		t.Errorf("Events(Trans*): got %d, want 1", got)
	}
	if got := len(api.Events("Approval")); got != 0 {
		t.Errorf("Events(Approval): got %d, want 0", got)
	}
}

func TestGetRegistry_UsesGlobal(t *testing.T) {
	defer Reset()
	if err := RegisterManifest(tokenManifest(t)); err != nil {
		t.Fatalf("RegisterManifest failed: %v", err)
	}
	c, err := GetRegistry().Contract()
	if err != nil || c.Name != "Erc20" {
		t.Errorf("Contract: got %v, %v", c, err)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		s, pattern string
		want       bool
	}{
		{"transfer", "transfer", true},
		{"transfer", "*", true},
		{"transfer", "trans*", true},
		{"transfer", "*fer", true},
		{"transfer", "*ans*", true},
		{"transfer", "approve", false},
		{"transfer", "x*", false},
	}
	for _, tt := range tests {
		if got := matchPattern(tt.s, tt.pattern); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.s, tt.pattern, got, tt.want)
		}
	}
}
