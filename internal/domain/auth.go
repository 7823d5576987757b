package domain

// ActorKind differentiates identity-store accounts from standalone workers.
type ActorKind string

const (
	ActorKindIdentity ActorKind = "identity"
	ActorKindWorker   ActorKind = "worker"
)

// Actor is the authenticated caller carried by the bearer token.
type Actor struct {
	ID              string
	Role            string
	AdmissionNumber *string
	Kind            ActorKind
}

// IsStudent reports whether the actor is a student of the platform.
func (a Actor) IsStudent() bool {
	return a.Role == RoleStudent
}
