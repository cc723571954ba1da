package redis_admin

// Lane is the failure policy of an operation.
type Lane int

const (
	// LaneSoftDegrade operations absorb failures and return an empty or absent result.
	LaneSoftDegrade Lane = iota + 1
	// LanePropagate operations return failures to the caller.
	LanePropagate
)

func (l Lane) String() string {
	switch l {
	case LaneSoftDegrade:
		return "soft_degrade"
	case LanePropagate:
		return "propagate"
	default:
		return "unknown"
	}
}

const (
	OpServerInfo   = "server_info"
	OpMemoryUsage  = "memory_usage"
	OpKeyCount     = "key_count"
	OpFindKeys     = "find_keys"
	OpValue        = "value"
	OpSetValue     = "set_value"
	OpDeleteKeys   = "delete_keys"
	OpExistsCount  = "exists_count"
	OpRemainingTTL = "remaining_ttl"
	OpSetExpiry    = "set_expiry"
)

// Lanes lists the failure policy of every operation. Soft lanes apply to the
// plain accessors only, their ...Result variants always report the failure.
var Lanes = map[string]Lane{
	OpServerInfo:   LaneSoftDegrade,
	OpFindKeys:     LaneSoftDegrade,
	OpValue:        LaneSoftDegrade,
	OpMemoryUsage:  LanePropagate,
	OpKeyCount:     LanePropagate,
	OpSetValue:     LanePropagate,
	OpDeleteKeys:   LanePropagate,
	OpExistsCount:  LanePropagate,
	OpRemainingTTL: LanePropagate,
	OpSetExpiry:    LanePropagate,
}
