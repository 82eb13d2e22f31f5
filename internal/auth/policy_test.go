package auth

import (
	"testing"

	"inventory-service/internal/model"
)

func TestCanMutatePrivileged(t *testing.T) {
	tests := []struct {
		name      string
		principal *Principal
		want      bool
	}{
		{"nil principal", nil, false},
		{"anonymous", &Principal{}, false},
		{"plain employee", &Principal{UserID: 1, UserType: model.UserTypeEmployee}, false},
		{"admin", &Principal{UserID: 1, UserType: model.UserTypeAdmin}, true},
		{"staff employee", &Principal{UserID: 1, UserType: model.UserTypeEmployee, Staff: true}, true},
		{"superuser employee", &Principal{UserID: 1, UserType: model.UserTypeEmployee, Superuser: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanMutatePrivileged(tt.principal); got != tt.want {
				t.Errorf("CanMutatePrivileged() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRole(t *testing.T) {
	var p *Principal
	if p.Role() != RoleAnonymous {
		t.Error("nil principal should be anonymous")
	}
	if (&Principal{}).Role() != RoleAnonymous {
		t.Error("zero principal should be anonymous")
	}
	if (&Principal{UserID: 1, UserType: model.UserTypeAdmin}).Role() != RoleAdmin {
		t.Error("admin user type should map to the admin role")
	}
	if (&Principal{UserID: 1, UserType: model.UserTypeEmployee}).Role() != RoleEmployee {
		t.Error("employee user type should map to the employee role")
	}
}

func TestFromUser(t *testing.T) {
	user := model.User{Username: "boss", UserType: model.UserTypeAdmin, IsStaff: true}
	user.ID = 7

	p := FromUser(&user)
	if p.UserID != 7 || p.Username != "boss" || !p.Staff {
		t.Errorf("unexpected principal %+v", p)
	}
	if p.Role() != RoleAdmin {
		t.Errorf("expected admin role, got %v", p.Role())
	}
}
