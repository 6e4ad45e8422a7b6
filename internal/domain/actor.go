package domain

// Actor is an external chat-platform identity performing an action. The role
// set is read at the moment of a permission check and never cached beyond one
// request.
type Actor struct {
	ID            string
	RoleIDs       []string
	PlatformAdmin bool
}

// HasRole reports whether the actor holds the given role. An empty roleID is
// treated as unset and never matches.
func (a Actor) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, id := range a.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}
