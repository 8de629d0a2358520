package features

import "testing"

func TestSet(t *testing.T) {
	initial := map[string]bool{PublicElevators: true, CameraSnapshot: false}
	s := NewSet(initial)
	initial[PrivateElevators] = true

	if !s.IsEnabled(PublicElevators) {
		t.Errorf("Expected %s enabled", PublicElevators)
	}
	if s.IsEnabled(PrivateElevators) {
		t.Errorf("NewSet must copy its input")
	}
	if s.IsEnabled("NoSuchFlag") {
		t.Errorf("Unknown flags must be disabled")
	}

	s.Set(CameraSnapshot, true)
	if !s.IsEnabled(CameraSnapshot) {
		t.Errorf("Expected %s enabled after Set", CameraSnapshot)
	}

	all := s.All()
	if len(all) != len(Names) {
		t.Errorf("Expected every known flag listed, got %v", all)
	}
	if all[ServiceElevators] {
		t.Errorf("Flags never set should be reported disabled")
	}
	all[ServiceElevators] = true
	if s.IsEnabled(ServiceElevators) {
		t.Errorf("All must return a copy")
	}
}
