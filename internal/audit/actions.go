package audit

const (
	ActionLogin       = "auth.login"
	ActionLoginFailed = "auth.login_failed"
	ActionLogout      = "auth.logout"

	ActionUserCreate        = "user.create"
	ActionUserUpdate        = "user.update"
	ActionUserResetPassword = "user.reset_password"
	ActionUserToggleLock    = "user.toggle_lock"
	ActionUserDelete        = "user.delete"

	ActionSettingsUpdate = "settings.update"
	ActionBranchCreate   = "branch.create"
	ActionBranchUpdate   = "branch.update"
	ActionBranchDelete   = "branch.delete"
)

const (
	EntityUser     = "user"
	EntitySession  = "session"
	EntitySettings = "settings"
	EntityBranch   = "branch"
)
