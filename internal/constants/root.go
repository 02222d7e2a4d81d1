package constants

import "time"

// TaskStatus is the lifecycle status of an external task record
type TaskStatus string

const (
	AppName            = "cadence"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/cadence"
	DefaultDBPath      = "~/.config/cadence/cadence.db"
	DefaultConfigFile  = "~/.config/cadence/config.yaml"
	EnvPrefix          = "CADENCE"
	EnvDBConnection    = "CADENCE_DB_CONNECTION"
	Version            = "v0.3.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "cadence-"
	BackupFileSuffix = ".db"

	// Mirror sync constants
	SyncMaxRetries   = 5
	SyncRetryDelay   = 200 * time.Millisecond
	SyncMaxDelay     = 10 * time.Second
	SyncApplyTimeout = 15 * time.Second

	// Notify constants
	NotifierLockfileName   = "cadence-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.cadence"
	TrayExecutablePrefix   = "cadence-tray"

	// Task status constants
	TaskStatusOngoing   TaskStatus = "ongoing"
	TaskStatusCompleted TaskStatus = "completed"
)
