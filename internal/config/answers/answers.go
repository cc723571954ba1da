package answers

const (
	Start = "Redis admin bot. The list of commands is in /help."
	Help  = "/info – server info;\n" +
		"/memory – used memory in bytes;\n" +
		"/dbsize – number of keys;\n" +
		"/keys pattern – keys matching a glob pattern;\n" +
		"/get key – value of a key;\n" +
		"/set key value – store a value;\n" +
		"/del key... – delete keys (asks for confirmation);\n" +
		"/exists key... – how many of the keys exist;\n" +
		"/pttl key – remaining time to live in ms;\n" +
		"/pexpire key ms – set time to live in ms."

	BotError        = "Something went wrong, try again later."
	RedisDown       = "Redis is unavailable."
	RedisRejected   = "Redis rejected the command: %s"
	RedisBadReply   = "Redis returned an unexpected reply."
	Default         = "Unknown command, see /help."
	ArgsMissing     = "Not enough arguments. Usage: %s"
	InvalidNumber   = "%q is not a number."
	NothingFound    = "Nothing found."
	KeyNotFound     = "Key %q not found."
	KeyValue        = "%s = %s"
	SetOK           = "Stored %q."
	SetNotApplied   = "The value of %q was not stored."
	DeleteConfirm   = "Delete %d key(s)?\n%s"
	DeleteConfirmed = "Deleted %d key(s)."
	DeleteCanceled  = "Deletion canceled."
	DeleteExpired   = "Deletion request expired."
	ExistsCount     = "%d of %d key(s) exist."
	TTLNoExpiry     = "Key %q has no expiry."
	TTLKeyAbsent    = "Key %q not found."
	TTLRemaining    = "Key %q expires in %d ms."
	ExpiryApplied   = "Expiry of %q set to %d ms."
	ExpiryNotSet    = "Key %q not found, expiry not set."
	ExpiryTooLarge  = "%d ms is out of range for an expiry."
	MemoryUsage     = "used_memory: %d bytes"
	DBSize          = "dbsize: %d keys"
	Truncated       = "\n… truncated"

	ButtonConfirm = "Delete"
	ButtonCancel  = "Cancel"
)
