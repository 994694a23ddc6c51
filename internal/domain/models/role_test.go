package models

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Role
		wantErr bool
	}{
		{name: "owner", input: "OWNER", want: RoleOwner},
		{name: "admin", input: "ADMIN", want: RoleAdmin},
		{name: "editor", input: "EDITOR", want: RoleEditor},
		{name: "viewer", input: "VIEWER", want: RoleViewer},
		{name: "empty string", input: "", wantErr: true},
		{name: "lowercase", input: "admin", wantErr: true},
		{name: "unknown", input: "SUPERUSER", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRole(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRole(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCombineRoles(t *testing.T) {
	tests := []struct {
		name string
		a, b Role
		want Role
	}{
		{name: "owner and viewer narrows to viewer", a: RoleOwner, b: RoleViewer, want: RoleViewer},
		{name: "admin and editor narrows to editor", a: RoleAdmin, b: RoleEditor, want: RoleEditor},
		{name: "editor and admin is commutative", a: RoleEditor, b: RoleAdmin, want: RoleEditor},
		{name: "same role is idempotent", a: RoleEditor, b: RoleEditor, want: RoleEditor},
		{name: "none absorbs owner", a: RoleNone, b: RoleOwner, want: RoleNone},
		{name: "owner with none is none", a: RoleOwner, b: RoleNone, want: RoleNone},
		{name: "invalid role is none", a: Role("MANAGER"), b: RoleViewer, want: RoleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CombineRoles(tt.a, tt.b); got != tt.want {
				t.Errorf("CombineRoles(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRoleStorable(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RoleOwner, false},
		{RoleAdmin, true},
		{RoleEditor, true},
		{RoleViewer, true},
		{RoleNone, false},
	}

	for _, tt := range tests {
		if got := tt.role.Storable(); got != tt.want {
			t.Errorf("Role(%q).Storable() = %v, want %v", tt.role, got, tt.want)
		}
	}
}

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		name     string
		r, other Role
		want     bool
	}{
		{name: "owner at least admin", r: RoleOwner, other: RoleAdmin, want: true},
		{name: "admin at least admin", r: RoleAdmin, other: RoleAdmin, want: true},
		{name: "viewer not at least editor", r: RoleViewer, other: RoleEditor, want: false},
		{name: "none never suffices", r: RoleNone, other: RoleViewer, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.AtLeast(tt.other); got != tt.want {
				t.Errorf("%v.AtLeast(%v) = %v, want %v", tt.r, tt.other, got, tt.want)
			}
		})
	}
}
