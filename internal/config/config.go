package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Birthday Bot"
	AppID          = "com.github.tartampluch.birthday-bot"
	KeyringService = "com.github.tartampluch.birthday-bot"
	KeyringAPIUser = "resend_api_key"
	LogFileName    = "bot.log"
	DotEnvFile     = ".env"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// Environment Keys
// -----------------------------------------------------------------------------

const (
	EnvFriendsConfig       = "FRIENDS_CONFIG"
	EnvFriendsVCardPath    = "FRIENDS_VCARD_PATH"
	EnvDefaultBefore       = "DEFAULT_NOTIFICATION_BEFORE"
	EnvResendAPIKey        = "RESEND_API_KEY"
	EnvNotificationEmail   = "NOTIFICATION_EMAIL"
	EnvMailFrom            = "MAIL_FROM"
	EnvMailProvider        = "MAIL_PROVIDER"
	EnvSMTPHost            = "SMTP_HOST"
	EnvSMTPPort            = "SMTP_PORT"
	EnvSMTPUser            = "SMTP_USER"
	EnvSMTPPassword        = "SMTP_PASSWORD"
	EnvDryRunWithoutAPIKey = "DRY_RUN_WITHOUT_API_KEY"
	EnvSendPause           = "SEND_PAUSE"
	EnvCheckSchedule       = "CHECK_SCHEDULE"
	EnvCheckTimezone       = "CHECK_TIMEZONE"
	EnvPort                = "PORT"
	EnvBindAddr            = "BIND_ADDR"
	EnvDebug               = "DEBUG"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	ProviderResend = "resend"
	ProviderSMTP   = "smtp"

	DefaultMailFrom      = "Birthday Bot <emailer@birthdayreminder.space>"
	DefaultMailProvider  = ProviderResend
	DefaultSMTPPort      = 587
	DefaultSendPause     = 2 * time.Second
	DefaultCheckSchedule = "0 8 * * *"
	DefaultTimezone      = "Local"
	DefaultPort          = "8000"
	DefaultBindAddr      = "0.0.0.0"
	DefaultLanguage      = "en" // Language of the embedded message catalogue

	// MilestoneInterval is the day count whose positive multiples are celebrated.
	MilestoneInterval = 1000

	// DateSeparator splits the D/M[/Y] date field of a record.
	DateSeparator = "/"

	// RecipientSeparator splits the NOTIFICATION_EMAIL list.
	RecipientSeparator = ","

	UIDSalt       = "birthday-bot-v1-" // Salt for deterministic UID generation
	SecondsPerDay = 24 * 60 * 60
	LogDateLayout = "2006-01-02"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	// Subjects and messages receive Name; Advance adds Date, Milestone adds Days.
	TKeyBirthdaySubject  = "birthday_subject"
	TKeyBirthdayTitle    = "birthday_title"
	TKeyBirthdayMessage  = "birthday_message"
	TKeyAdvanceSubject   = "advance_subject"
	TKeyAdvanceTitle     = "advance_title"
	TKeyAdvanceMessage   = "advance_message"
	TKeyMilestoneSubject = "milestone_subject"
	TKeyMilestoneTitle   = "milestone_title"
	TKeyMilestoneMessage = "milestone_message"
	TKeyGreeting         = "mail_greeting"
	TKeySignOff          = "mail_sign_off"
	TKeySignature        = "mail_signature"
	TKeyFooter           = "mail_footer"
	TKeyEvtSummary       = "event_summary"       // Requires Name
	TKeyEvtSummaryAge    = "event_summary_age"   // Requires Name, Age
	TKeyEvtSummaryBirth  = "event_summary_birth" // Requires Name
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Birthday Bot//Engine//EN"
	ICalCalName   = "Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "birthdaybot"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"

	DefaultICalRefresh = 1 * time.Hour

	// FormatAlarmTrigger builds a negative ISO8601 day duration (e.g., "-P3D").
	FormatAlarmTrigger = "-P%dD"
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// Date layouts used for parsing vCard BDAY fields
	DateFormatFullDash  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	// FormatRecordDate renders a record date as D/M, FormatRecordDateYear as D/M/Y.
	FormatRecordDate     = "%d/%d"
	FormatRecordDateYear = "%d/%d/%d"

	// Limits
	MinPort = 1
	MaxPort = 65535

	// UID Generation
	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s"
	FormatUID       = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	AddrSeparator      = ":"

	RouteRoot     = "/"
	RouteCheckNow = "/check-now"
	RouteCalendar = "/calendar.ics"
	RouteMetrics  = "/metrics"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeTextHTML        = "text/html"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrConfigMissing    = "CRITICAL: " + EnvFriendsConfig + " environment variable is missing."
	ErrConfigParse      = "CRITICAL: Could not parse " + EnvFriendsConfig + " JSON."
	ErrMissingAPIKey    = "[ERROR] Missing " + EnvResendAPIKey + "."
	ErrMissingRecipient = "[ERROR] Missing " + EnvNotificationEmail + " env var."
	ErrSendFailed       = "Failed to send email"
	ErrDateFormat       = "invalid record date"
	ErrDateComponent    = "invalid date component"
	ErrRecordFailed     = "Record evaluation failed"
	ErrRecordPanic      = "Record evaluation panicked"
	ErrRecordDecode     = "Skipping record with invalid fields"
	ErrLeadTime         = "notification_before must be a whole number of days"
	ErrVCardOpen        = "failed to open vCard file"
	ErrVCardParse       = "failed to parse vCard stream"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse date"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrPortNumber       = "server port must be a number"
	ErrPortRange        = "server port must be between 1 and 65535"
	ErrProviderUnknown  = "configuration error: unsupported mail provider"
	ErrSMTPHostEmpty    = "configuration error: SMTP host is empty"
	ErrSendPause        = "configuration error: send pause must not be negative"
	ErrDefaultBefore    = "configuration error: default notification lead time must not be negative"
	ErrTimezone         = "configuration error: unknown timezone"
	ErrSchedule         = "configuration error: invalid cron schedule"
	ErrSettings         = "failed to load settings"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrLayoutRender     = "failed to render mail layout"
	ErrCalendarBuild    = "failed to build calendar feed"
	ErrKeyring          = "API key lookup in keyring failed"
	ErrDotEnv           = "no .env file loaded"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgCheckTriggered = "Manual check triggered"
	HTTPMsgStatus         = "Birthday Bot Active. Loaded %d friends."
	HTTPMsgInitializing   = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll   = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummary      = "Birthday: %s"
	FallbackSummaryAge   = "Birthday: %s (%d)"
	FallbackSummaryBirth = "Birthday: %s (birth)"
	FallbackName         = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgRunningChecks  = "Running checks"
	MsgCheckDone      = "Checks finished"
	MsgEventMatched   = "Notification event matched"
	MsgSkippedNoDate  = "Skipping record without date"
	MsgEmailSent      = "Email sent"
	MsgProviderResp   = "Delivery provider response"
	MsgDryRun         = "[DRY RUN] Would send email"
	MsgSkippedCard    = "Skipping malformed vCard"
	MsgSkippedDate    = "Skipping invalid date format"
	MsgVCardLoaded    = "vCard records loaded"
	MsgGenSuccess     = "Calendar generation successful"
	MsgAppStarting    = "Starting application"
	MsgAppStop        = "Application stopped gracefully"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Calendar cache updated"
	MsgManualTrigger  = "Manual check requested"
	MsgSchedulerStart = "Daily scheduler started"
	MsgSchedulerStop  = "Daily scheduler stopped"
	MsgScheduledRun   = "Scheduled check triggered"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgKeyringUsed    = "API key loaded from keyring"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Metric Labels
// -----------------------------------------------------------------------------

const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"

	SkipReasonDryRun        = "dry_run"
	SkipReasonMisconfigured = "misconfigured"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyFile      = "file"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyAddr      = "addr"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyDate      = "date"
	LogKeyKind      = "kind"
	LogKeyDays      = "days"
	LogKeyToday     = "today"
	LogKeyTrigger   = "trigger"
	LogKeyIndex     = "index"
	LogKeyProcessed = "processed"
	LogKeyProvider  = "provider"
	LogKeyResponse  = "response"
	LogKeySubject   = "subject"
	LogKeyTo        = "to"
	LogKeySchedule  = "schedule"
	LogKeyTimezone  = "timezone"
	LogKeyTotal     = "total_records"
	LogKeyMatched   = "events_matched"
	LogKeySkipped   = "records_skipped"
	LogKeyFailed    = "records_failed"
	LogKeyEvents    = "events"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDuration  = "duration_ms"
	LogKeyDryRun    = "dry_run"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompLoader    = "loader"
	CompChecker   = "checker"
	CompCalendar  = "calendar"
	CompComposer  = "composer"
	CompMailer    = "mailer"
	CompServer    = "server"
	CompScheduler = "scheduler"
	CompMain      = "main"
	CompI18n      = "i18n"
	CompSettings  = "settings"
)
