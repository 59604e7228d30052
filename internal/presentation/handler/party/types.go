package party

// checkWatchPartyResponse reports whether a watch party currently has any
// participants for the requested video.
type checkWatchPartyResponse struct {
	IsActive bool `json:"isActive"`
}
