package domain

// ServerInfoEntry is one property line of the INFO reply.
type ServerInfoEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
