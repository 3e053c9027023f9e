package model

// Identity describes who issued a request. The zero value is an anonymous caller.
type Identity struct {
	UserID int64
	Admin  bool
}

// AdminIdentity is the identity of the configured library administrator.
func AdminIdentity() Identity {
	return Identity{Admin: true}
}

// MemberIdentity is the identity of a registered user.
func MemberIdentity(userID int64) Identity {
	return Identity{UserID: userID}
}

// IsAdministrator reports whether the caller may manage the catalog.
func (i Identity) IsAdministrator() bool {
	return i.Admin
}

// IsRegisteredUser reports whether the caller is backed by a user record.
func (i Identity) IsRegisteredUser() bool {
	return i.UserID > 0
}

// IsAnonymous reports whether no session was presented.
func (i Identity) IsAnonymous() bool {
	return !i.Admin && i.UserID <= 0
}
