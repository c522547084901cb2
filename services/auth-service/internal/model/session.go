package model

import "go.mongodb.org/mongo-driver/v2/bson"

// IdentityKind tags which store a session identity resolves against. The
// values are the wire tags carried inside session tokens.
type IdentityKind string

const (
	KindLocal    IdentityKind = "user"
	KindFacebook IdentityKind = "fb"
	KindGoogle   IdentityKind = "google"
	KindTwitter  IdentityKind = "twitter"
)

// Valid reports whether k is one of the known kinds.
func (k IdentityKind) Valid() bool {
	switch k {
	case KindLocal, KindFacebook, KindGoogle, KindTwitter:
		return true
	}
	return false
}

// Principal is an authenticated identity. The set of implementations is
// closed: *LocalAccount, *FacebookProfile, *GoogleProfile, *TwitterProfile
// and UnresolvedIdentity.
type Principal interface {
	Kind() IdentityKind
	Identifier() bson.ObjectID
	isPrincipal()
}

func (*LocalAccount) isPrincipal()      {}
func (*FacebookProfile) isPrincipal()   {}
func (*GoogleProfile) isPrincipal()     {}
func (*TwitterProfile) isPrincipal()    {}
func (UnresolvedIdentity) isPrincipal() {}

// SessionIdentity is the compact reference kept in a session.
type SessionIdentity struct {
	ID   string       `json:"id"`
	Kind IdentityKind `json:"kind"`
}

// UnresolvedIdentity carries a session reference that could not be resolved
// to a stored record, passed through unchanged.
type UnresolvedIdentity struct {
	Ref SessionIdentity
}

func (u UnresolvedIdentity) Kind() IdentityKind { return u.Ref.Kind }

// Identifier returns the zero ObjectID when the reference id is not a valid hex id.
func (u UnresolvedIdentity) Identifier() bson.ObjectID {
	id, err := bson.ObjectIDFromHex(u.Ref.ID)
	if err != nil {
		return bson.ObjectID{}
	}
	return id
}
