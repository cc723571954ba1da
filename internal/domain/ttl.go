package domain

// Sentinels PTTL replies with instead of a duration. They are passed through as is.
const (
	TTLNoExpiry  int64 = -1
	TTLKeyAbsent int64 = -2
)
