package constants

const (
	// Config keys
	SettingDatabase        = "database"
	SettingTimezone        = "timezone"
	SettingDebug           = "debug"
	SettingGoalCapDays     = "engine.goal_cap_days"
	SettingMomentumDaily   = "engine.momentum.daily"
	SettingMomentumWeekly  = "engine.momentum.weekly"
	SettingMomentumOverall = "engine.momentum.overall"
	SettingSyncEnabled     = "sync.enabled"
	SettingSyncMaxRetries  = "sync.max_retries"
	SettingSyncRetryDelay  = "sync.retry_delay"
	SettingNotifyOnGoal    = "notify.goal_completed"
	SettingNotifyReminders = "notify.reminders"

	// Default values
	DefaultTimezone     = "Local" // Use system local timezone by default
	DefaultSyncEnabled  = true
	DefaultNotifyOnGoal = true
	DefaultReminders    = true
)
