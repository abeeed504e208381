package authz_test

import (
	"testing"

	"crm-backend/internal/authz"
)

// grantRow is one expected cell of the shipped grant table.
type grantRow struct {
	role    authz.Role
	module  authz.Module
	grants  map[authz.Action]bool
}

// fullTable spells out every cell of the default matrix so regressions in
// DefaultMatrix show up as an exact diff.
var fullTable = []grantRow{
	// super_admin
	{authz.RoleSuperAdmin, authz.ModuleDashboard, map[authz.Action]bool{"read": true, "write": true}},
	{authz.RoleSuperAdmin, authz.ModuleLeads, map[authz.Action]bool{"read": true, "write": true, "delete": true, "assign": true}},
	{authz.RoleSuperAdmin, authz.ModuleInventory, map[authz.Action]bool{"read": true, "write": true, "delete": true, "allocate": true}},
	{authz.RoleSuperAdmin, authz.ModuleOrders, map[authz.Action]bool{"read": true, "write": true, "delete": true, "approve": true}},
	{authz.RoleSuperAdmin, authz.ModuleDelivery, map[authz.Action]bool{"read": true, "write": true, "delete": true}},
	{authz.RoleSuperAdmin, authz.ModuleFinance, map[authz.Action]bool{"read": true, "write": true, "delete": true, "approve": true}},
	{authz.RoleSuperAdmin, authz.ModuleUsers, map[authz.Action]bool{"read": true, "write": true, "delete": true}},
	// admin
	{authz.RoleAdmin, authz.ModuleDashboard, map[authz.Action]bool{"read": true, "write": true}},
	{authz.RoleAdmin, authz.ModuleLeads, map[authz.Action]bool{"read": true, "write": true, "delete": false, "assign": true}},
	{authz.RoleAdmin, authz.ModuleInventory, map[authz.Action]bool{"read": true, "write": true, "delete": false, "allocate": true}},
	{authz.RoleAdmin, authz.ModuleOrders, map[authz.Action]bool{"read": true, "write": true, "delete": false, "approve": false}},
	{authz.RoleAdmin, authz.ModuleDelivery, map[authz.Action]bool{"read": true, "write": true, "delete": false}},
	{authz.RoleAdmin, authz.ModuleFinance, map[authz.Action]bool{"read": true, "write": false, "delete": false, "approve": false}},
	{authz.RoleAdmin, authz.ModuleUsers, map[authz.Action]bool{"read": true, "write": true, "delete": false}},
	// sales_manager
	{authz.RoleSalesManager, authz.ModuleDashboard, map[authz.Action]bool{"read": true, "write": false}},
	{authz.RoleSalesManager, authz.ModuleLeads, map[authz.Action]bool{"read": true, "write": true, "delete": false, "assign": true}},
	{authz.RoleSalesManager, authz.ModuleInventory, map[authz.Action]bool{"read": true, "write": false, "delete": false, "allocate": false}},
	{authz.RoleSalesManager, authz.ModuleOrders, map[authz.Action]bool{"read": true, "write": true, "delete": false, "approve": false}},
	{authz.RoleSalesManager, authz.ModuleDelivery, map[authz.Action]bool{"read": true, "write": false, "delete": false}},
	{authz.RoleSalesManager, authz.ModuleFinance, map[authz.Action]bool{"read": false, "write": false, "delete": false, "approve": false}},
	{authz.RoleSalesManager, authz.ModuleUsers, map[authz.Action]bool{"read": false, "write": false, "delete": false}},
	// sales_executive
	{authz.RoleSalesExecutive, authz.ModuleDashboard, map[authz.Action]bool{"read": true, "write": false}},
	{authz.RoleSalesExecutive, authz.ModuleLeads, map[authz.Action]bool{"read": true, "write": true, "delete": false, "assign": false}},
	{authz.RoleSalesExecutive, authz.ModuleInventory, map[authz.Action]bool{"read": true, "write": false, "delete": false, "allocate": false}},
	{authz.RoleSalesExecutive, authz.ModuleOrders, map[authz.Action]bool{"read": true, "write": false, "delete": false, "approve": false}},
	{authz.RoleSalesExecutive, authz.ModuleDelivery, map[authz.Action]bool{"read": false, "write": false, "delete": false}},
	{authz.RoleSalesExecutive, authz.ModuleFinance, map[authz.Action]bool{"read": false, "write": false, "delete": false, "approve": false}},
	{authz.RoleSalesExecutive, authz.ModuleUsers, map[authz.Action]bool{"read": false, "write": false, "delete": false}},
	// viewer
	{authz.RoleViewer, authz.ModuleDashboard, map[authz.Action]bool{"read": true, "write": false}},
	{authz.RoleViewer, authz.ModuleLeads, map[authz.Action]bool{"read": true, "write": false, "delete": false, "assign": false}},
	{authz.RoleViewer, authz.ModuleInventory, map[authz.Action]bool{"read": true, "write": false, "delete": false, "allocate": false}},
	{authz.RoleViewer, authz.ModuleOrders, map[authz.Action]bool{"read": true, "write": false, "delete": false, "approve": false}},
	{authz.RoleViewer, authz.ModuleDelivery, map[authz.Action]bool{"read": true, "write": false, "delete": false}},
	{authz.RoleViewer, authz.ModuleFinance, map[authz.Action]bool{"read": false, "write": false, "delete": false, "approve": false}},
	{authz.RoleViewer, authz.ModuleUsers, map[authz.Action]bool{"read": false, "write": false, "delete": false}},
}

func TestDefaultMatrix_FullTable(t *testing.T) {
	m := authz.DefaultMatrix()

	for _, row := range fullTable {
		for action, want := range row.grants {
			got := m.IsAllowed(row.role, row.module, action)
			if got != want {
				t.Errorf("IsAllowed(%s, %s, %s) = %v, want %v", row.role, row.module, action, got, want)
			}
		}
	}
}

func TestIsAllowed_UnknownRole(t *testing.T) {
	m := authz.DefaultMatrix()

	for _, module := range []authz.Module{authz.ModuleDashboard, authz.ModuleLeads, authz.ModuleUsers} {
		for _, action := range []authz.Action{authz.ActionRead, authz.ActionWrite, authz.ActionDelete} {
			if m.IsAllowed("intern", module, action) {
				t.Errorf("IsAllowed(intern, %s, %s) = true, want false", module, action)
			}
		}
	}
}

func TestIsAllowed_UnknownModuleAndAction(t *testing.T) {
	m := authz.DefaultMatrix()

	if m.IsAllowed(authz.RoleSuperAdmin, "reports", authz.ActionRead) {
		t.Error("unknown module should be denied even for super_admin")
	}
	if m.IsAllowed(authz.RoleSuperAdmin, authz.ModuleDelivery, authz.ActionApprove) {
		t.Error("action absent from a module's grant set should be denied")
	}
}

func TestIsAllowed_FinanceScenario(t *testing.T) {
	m := authz.DefaultMatrix()

	if m.IsAllowed(authz.RoleViewer, authz.ModuleFinance, authz.ActionRead) {
		t.Error("viewer must not read finance")
	}
	if !m.IsAllowed(authz.RoleAdmin, authz.ModuleFinance, authz.ActionRead) {
		t.Error("admin must read finance")
	}
	if m.IsAllowed(authz.RoleAdmin, authz.ModuleFinance, authz.ActionWrite) {
		t.Error("admin finance access is read-only")
	}
}

func TestIsKnownRole(t *testing.T) {
	m := authz.DefaultMatrix()

	for _, role := range []authz.Role{
		authz.RoleSuperAdmin, authz.RoleAdmin, authz.RoleSalesManager,
		authz.RoleSalesExecutive, authz.RoleViewer,
	} {
		if !m.IsKnownRole(role) {
			t.Errorf("expected %s to be a known role", role)
		}
	}
	if m.IsKnownRole("root") {
		t.Error("root should not be a known role")
	}
}

func TestGrantsFor(t *testing.T) {
	m := authz.DefaultMatrix()

	grants := m.GrantsFor(authz.RoleViewer)
	if grants == nil {
		t.Fatal("expected grants for viewer")
	}
	if !grants[authz.ModuleDashboard][authz.ActionRead] {
		t.Error("viewer grants should include dashboard.read")
	}
	if m.GrantsFor("ghost") != nil {
		t.Error("expected nil grants for unknown role")
	}
}

func TestNewMatrix_Isolated(t *testing.T) {
	m := authz.NewMatrix(map[authz.Role]authz.ModuleGrants{
		"auditor": {authz.ModuleFinance: {authz.ActionRead: true}},
	})

	if !m.IsAllowed("auditor", authz.ModuleFinance, authz.ActionRead) {
		t.Error("custom matrix grant not honored")
	}
	if m.IsAllowed("auditor", authz.ModuleFinance, authz.ActionWrite) {
		t.Error("custom matrix must stay default-deny")
	}
	if m.IsAllowed(authz.RoleSuperAdmin, authz.ModuleFinance, authz.ActionRead) {
		t.Error("custom matrix must not inherit default roles")
	}
}
