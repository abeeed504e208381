// Package authz holds the static role-permission matrix that gates every
// module-scoped operation in the CRM. The matrix is built once at startup
// and shared read-only by the middleware, handlers, and websocket layer.
package authz

// Role is a named capability set. A user holds exactly one role.
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleAdmin          Role = "admin"
	RoleSalesManager   Role = "sales_manager"
	RoleSalesExecutive Role = "sales_executive"
	RoleViewer         Role = "viewer"
)

// Module is a functional area permissions are scoped to.
type Module string

const (
	ModuleDashboard Module = "dashboard"
	ModuleLeads     Module = "leads"
	ModuleInventory Module = "inventory"
	ModuleOrders    Module = "orders"
	ModuleDelivery  Module = "delivery"
	ModuleFinance   Module = "finance"
	ModuleUsers     Module = "users"
)

// Action is an operation kind within a module. Not every module defines
// every action; an absent action is denied.
type Action string

const (
	ActionRead     Action = "read"
	ActionWrite    Action = "write"
	ActionDelete   Action = "delete"
	ActionAssign   Action = "assign"
	ActionApprove  Action = "approve"
	ActionAllocate Action = "allocate"
)

// Grants maps action -> allowed for one module.
type Grants map[Action]bool

// ModuleGrants maps module -> grants for one role.
type ModuleGrants map[Module]Grants

// Matrix answers whether a role may perform an action on a module.
// Closed-world: anything not explicitly granted is denied, including
// unknown roles, modules, and actions.
type Matrix struct {
	grants map[Role]ModuleGrants
}

// NewMatrix builds a Matrix from an explicit grant table. The table is
// copied by reference; callers must not mutate it after construction.
func NewMatrix(grants map[Role]ModuleGrants) *Matrix {
	return &Matrix{grants: grants}
}

// IsAllowed reports whether role holds the (module, action) grant.
// Never errors; a missing role, module, or action grant means false.
func (m *Matrix) IsAllowed(role Role, module Module, action Action) bool {
	mods, ok := m.grants[role]
	if !ok {
		return false
	}
	acts, ok := mods[module]
	if !ok {
		return false
	}
	return acts[action]
}

// Roles returns the roles the matrix knows about.
func (m *Matrix) Roles() []Role {
	roles := make([]Role, 0, len(m.grants))
	for r := range m.grants {
		roles = append(roles, r)
	}
	return roles
}

// IsKnownRole reports whether the matrix defines any grants for role.
// Used to validate the role field on user create/update.
func (m *Matrix) IsKnownRole(role Role) bool {
	_, ok := m.grants[role]
	return ok
}

// GrantsFor returns the full module grant table for a role, for the /me
// endpoint so the UI can gate its controls without per-action round trips.
// Returns nil for an unknown role.
func (m *Matrix) GrantsFor(role Role) ModuleGrants {
	return m.grants[role]
}

// DefaultMatrix returns the shipped five-role grant table.
func DefaultMatrix() *Matrix {
	return NewMatrix(map[Role]ModuleGrants{
		RoleSuperAdmin: {
			ModuleDashboard: {ActionRead: true, ActionWrite: true},
			ModuleLeads:     {ActionRead: true, ActionWrite: true, ActionDelete: true, ActionAssign: true},
			ModuleInventory: {ActionRead: true, ActionWrite: true, ActionDelete: true, ActionAllocate: true},
			ModuleOrders:    {ActionRead: true, ActionWrite: true, ActionDelete: true, ActionApprove: true},
			ModuleDelivery:  {ActionRead: true, ActionWrite: true, ActionDelete: true},
			ModuleFinance:   {ActionRead: true, ActionWrite: true, ActionDelete: true, ActionApprove: true},
			ModuleUsers:     {ActionRead: true, ActionWrite: true, ActionDelete: true},
		},
		RoleAdmin: {
			ModuleDashboard: {ActionRead: true, ActionWrite: true},
			ModuleLeads:     {ActionRead: true, ActionWrite: true, ActionDelete: false, ActionAssign: true},
			ModuleInventory: {ActionRead: true, ActionWrite: true, ActionDelete: false, ActionAllocate: true},
			ModuleOrders:    {ActionRead: true, ActionWrite: true, ActionDelete: false, ActionApprove: false},
			ModuleDelivery:  {ActionRead: true, ActionWrite: true, ActionDelete: false},
			ModuleFinance:   {ActionRead: true, ActionWrite: false, ActionDelete: false, ActionApprove: false},
			ModuleUsers:     {ActionRead: true, ActionWrite: true, ActionDelete: false},
		},
		RoleSalesManager: {
			ModuleDashboard: {ActionRead: true, ActionWrite: false},
			ModuleLeads:     {ActionRead: true, ActionWrite: true, ActionDelete: false, ActionAssign: true},
			ModuleInventory: {ActionRead: true, ActionWrite: false, ActionDelete: false, ActionAllocate: false},
			ModuleOrders:    {ActionRead: true, ActionWrite: true, ActionDelete: false, ActionApprove: false},
			ModuleDelivery:  {ActionRead: true, ActionWrite: false, ActionDelete: false},
			ModuleFinance:   {ActionRead: false, ActionWrite: false, ActionDelete: false, ActionApprove: false},
			ModuleUsers:     {ActionRead: false, ActionWrite: false, ActionDelete: false},
		},
		RoleSalesExecutive: {
			ModuleDashboard: {ActionRead: true, ActionWrite: false},
			ModuleLeads:     {ActionRead: true, ActionWrite: true, ActionDelete: false, ActionAssign: false},
			ModuleInventory: {ActionRead: true, ActionWrite: false, ActionDelete: false, ActionAllocate: false},
			ModuleOrders:    {ActionRead: true, ActionWrite: false, ActionDelete: false, ActionApprove: false},
			ModuleDelivery:  {ActionRead: false, ActionWrite: false, ActionDelete: false},
			ModuleFinance:   {ActionRead: false, ActionWrite: false, ActionDelete: false, ActionApprove: false},
			ModuleUsers:     {ActionRead: false, ActionWrite: false, ActionDelete: false},
		},
		RoleViewer: {
			ModuleDashboard: {ActionRead: true, ActionWrite: false},
			ModuleLeads:     {ActionRead: true, ActionWrite: false, ActionDelete: false, ActionAssign: false},
			ModuleInventory: {ActionRead: true, ActionWrite: false, ActionDelete: false, ActionAllocate: false},
			ModuleOrders:    {ActionRead: true, ActionWrite: false, ActionDelete: false, ActionApprove: false},
			ModuleDelivery:  {ActionRead: true, ActionWrite: false, ActionDelete: false},
			ModuleFinance:   {ActionRead: false, ActionWrite: false, ActionDelete: false, ActionApprove: false},
			ModuleUsers:     {ActionRead: false, ActionWrite: false, ActionDelete: false},
		},
	})
}
