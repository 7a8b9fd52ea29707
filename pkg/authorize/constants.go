package authorize

type Action string
type Resource string
type Role string
type Domain string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// ActionManage covers every action on the resource.
	ActionManage Action = "manage"

	// Pages are only ever viewed.
	ActionView Action = "view"

	ActionGrant  Action = "grant"
	ActionRevoke Action = "revoke"

	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionUpdate: {}, ActionDelete: {}, ActionList: {},
	ActionManage: {}, ActionView: {},
	ActionGrant: {}, ActionRevoke: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	ResourceAccount         Resource = "account"
	ResourceUser            Resource = "user"
	ResourceOnboarding      Resource = "onboarding"
	ResourceCallbackRequest Resource = "callback_request"
	ResourceTherapist       Resource = "therapist"
	ResourceAvailability    Resource = "availability"
	ResourceSchedule        Resource = "schedule"
	ResourceSession         Resource = "session"
	ResourceSessionStatus   Resource = "session_status"
	ResourceAssignment      Resource = "assignment"
	ResourceReport          Resource = "report"
	ResourcePackage         Resource = "package"
	ResourceClientDirectory Resource = "client_directory"
	ResourceRBAC            Resource = "rbac"

	ResourcePageAdmin     Resource = "page:admin"
	ResourcePageTherapist Resource = "page:therapist"
	ResourcePageClient    Resource = "page:client"
)

var KnownResources = map[Resource]struct{}{
	ResourceAccount: {}, ResourceUser: {}, ResourceOnboarding: {}, ResourceCallbackRequest: {},
	ResourceTherapist: {}, ResourceAvailability: {}, ResourceSchedule: {},
	ResourceSession: {}, ResourceSessionStatus: {}, ResourceAssignment: {}, ResourceReport: {},
	ResourcePackage: {}, ResourceClientDirectory: {}, ResourceRBAC: {},
	ResourcePageAdmin: {}, ResourcePageTherapist: {}, ResourcePageClient: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// Accounts get roles through grouping rows: g, <account id>, <role>, sys.
// Client and therapist inherit everything anonymous callers may do.

const (
	WildcardRole Role = "*"

	RoleAdmin     Role = "role:admin"
	RoleTherapist Role = "role:therapist"
	RoleClient    Role = "role:client"
	RoleAnonymous Role = "role:anonymous"
)

var KnownRoles = map[Role]struct{}{
	RoleAdmin:     {},
	RoleTherapist: {},
	RoleClient:    {},
	RoleAnonymous: {},
}

// AssignableRoles are the roles an admin may grant through the API.
var AssignableRoles = map[Role]struct{}{
	RoleAdmin:     {},
	RoleTherapist: {},
	RoleClient:    {},
}

// RoleFromName accepts "admin" as well as "role:admin".
func RoleFromName(name string) (Role, bool) {
	r := Role(name)
	if _, ok := KnownRoles[r]; ok {
		return r, true
	}
	r = Role("role:" + name)
	_, ok := KnownRoles[r]
	return r, ok
}

// AnonymousSubject is the casbin subject used for requests without a token.
const AnonymousSubject GroupSubject = "anonymous"

// ----------------------------
// Domains
// ----------------------------

const (
	DomainSys      Domain = "sys"
	WildcardDomain Domain = "*"
)

func IsValidDomain(d Domain) bool {
	return d == DomainSys || d == WildcardDomain
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// GroupSubject is g.sub: an account id, a role, or AnonymousSubject.
type GroupSubject string

// Permission rows: p, role, domain, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
