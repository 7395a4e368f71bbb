package model

// Role is the kind of account an identity belongs to.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleSeeker Role = "seeker"
)

// Seeker is an authenticated identity acting as a PG seeker.  Operations
// that only seekers may perform take a Seeker, so the role check is done
// once where the value is constructed.
type Seeker struct{ ID uint64 }

// Owner is an authenticated identity acting as a PG owner.
type Owner struct{ ID uint64 }

// Identity is the verified caller of a request: a user ID tagged with its
// role.  Use AsSeeker or AsOwner to obtain the capability a given
// operation needs.
type Identity struct {
	ID   uint64
	Role Role
}

// AsSeeker returns the seeker capability when the identity has that role.
func (i Identity) AsSeeker() (Seeker, bool) {
	if i.ID == 0 || i.Role != RoleSeeker {
		return Seeker{}, false
	}
	return Seeker{ID: i.ID}, true
}

// AsOwner returns the owner capability when the identity has that role.
func (i Identity) AsOwner() (Owner, bool) {
	if i.ID == 0 || i.Role != RoleOwner {
		return Owner{}, false
	}
	return Owner{ID: i.ID}, true
}
