package steward

import "testing"

func TestMatchPermission(t *testing.T) {
	tests := []struct {
		granted  string
		required string
		want     bool
	}{
		{"employee.read", "employee.read", true},
		{"employee.read", "employee.write", false},
		{"employee.*", "employee.read", true},
		{"employee.*", "employee.salary.read", true},
		{"employee.*", "document.read", false},
		{"*", "anything.at.all", true},
		{"employee", "employee.read", false},
		{"", "employee.read", false},
	}
	for _, tt := range tests {
		if got := matchPermission(tt.granted, tt.required); got != tt.want {
			t.Errorf("matchPermission(%q, %q) = %v, want %v", tt.granted, tt.required, got, tt.want)
		}
	}
}
