package user

import "testing"

func TestUserPassword(t *testing.T) {
	usr := User{}
	if err := usr.SetPassword("V3ry$ecret"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if len(usr.PasswordHash) == 0 {
		t.Fatal("PasswordHash not set")
	}
	if err := usr.CheckPassword("V3ry$ecret"); err != nil {
		t.Errorf("CheckPassword() rejected the right password: %v", err)
	}
	if err := usr.CheckPassword("nope"); err == nil {
		t.Error("CheckPassword() accepted a wrong password")
	}
}

func TestUserRoles(t *testing.T) {
	tests := []struct {
		name                         string
		roles                        []string
		isAdmin, isTeacher, isStudent bool
	}{
		{name: "no roles"},
		{name: "student", roles: []string{RoleStudent}, isStudent: true},
		{name: "teacher", roles: []string{RoleTeacher}, isTeacher: true},
		{name: "admin", roles: []string{RoleAdmin}, isAdmin: true},
		{name: "all", roles: AllRoles, isAdmin: true, isTeacher: true, isStudent: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			usr := User{Roles: tt.roles}
			if got := usr.IsAdmin(); got != tt.isAdmin {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.isAdmin)
			}
			if got := usr.IsTeacher(); got != tt.isTeacher {
				t.Errorf("IsTeacher() = %v, want %v", got, tt.isTeacher)
			}
			if got := usr.IsStudent(); got != tt.isStudent {
				t.Errorf("IsStudent() = %v, want %v", got, tt.isStudent)
			}
		})
	}
}
