package shared

// Permission names as issued by the backend catalog.
const (
	PermCreate            = "Create"
	PermRead              = "Read"
	PermUpdate            = "Update"
	PermDelete            = "Delete"
	PermManagePermissions = "ManagePermissions"
	PermMimicUser         = "mimic_user"
)

// Session value keys persisted alongside the identity.
const (
	SidebarCollapsedKey = "sidebar_collapsed"
	ReturnPathKey       = "return_path"
)

// KnownPermissions lists the permissions the console gates on.
func KnownPermissions() []string {
	return []string{
		PermCreate,
		PermRead,
		PermUpdate,
		PermDelete,
		PermManagePermissions,
		PermMimicUser,
	}
}
