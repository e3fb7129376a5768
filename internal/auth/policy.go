package auth

import (
	"context"

	"github.com/spec-kit/storefront/internal/domain"
)

// Stage names a step of the access pipeline. A denied Decision records the
// stage that rejected it; an authorized one records StageAuthorized.
type Stage string

const (
	StageToken      Stage = "token"
	StageRole       Stage = "role"
	StageFetch      Stage = "fetch"
	StageOwnership  Stage = "ownership"
	StageAuthorized Stage = "authorized"
)

// Decision is the outcome of a pipeline evaluation: either Authorized with
// the caller identity (and the fetched resource, if any) or Denied with the
// failing stage and its reason.
type Decision struct {
	Stage    Stage
	Identity domain.Identity
	Resource domain.Owned
	Reason   error
}

// Authorized reports whether every gate accepted.
func (d Decision) Authorized() bool {
	return d.Reason == nil && d.Stage == StageAuthorized
}

// Err returns the denial reason, or nil when authorized.
func (d Decision) Err() error {
	return d.Reason
}

func denied(stage Stage, identity domain.Identity, reason error) Decision {
	return Decision{Stage: stage, Identity: identity, Reason: reason}
}

// Fetcher loads the resource an operation targets. It returns an error
// (typically a not-found DomainError) when the resource does not exist.
type Fetcher func(ctx context.Context) (domain.Owned, error)

// Request describes one access evaluation.
type Request struct {
	// Credential is the raw header value as presented by the client.
	Credential string
	// AllowedRoles must contain the caller's role.
	AllowedRoles RoleSet
	// Resource, when set, makes the request resource-scoped: it is fetched
	// and then checked for ownership.
	Resource Fetcher
}

// Policy composes the gates into the fixed evaluation order
// token -> role -> fetch -> ownership. The first failing gate ends it.
type Policy struct {
	authenticator *Authenticator
}

// NewPolicy constructs the access policy.
func NewPolicy(authenticator *Authenticator) *Policy {
	return &Policy{authenticator: authenticator}
}

// Evaluate runs the whole pipeline for req.
func (p *Policy) Evaluate(ctx context.Context, req Request) Decision {
	identity, err := p.authenticator.Authenticate(req.Credential)
	if err != nil {
		return denied(StageToken, domain.Identity{}, err)
	}
	if err := CheckRole(identity, req.AllowedRoles); err != nil {
		return denied(StageRole, identity, err)
	}
	if req.Resource == nil {
		return Decision{Stage: StageAuthorized, Identity: identity}
	}
	return AuthorizeResource(ctx, identity, req.Resource)
}

// AuthorizeResource runs the resource-scoped tail of the pipeline for an
// identity that already passed the token and role gates. Existence is
// checked before ownership, so a missing resource is reported as such even
// to callers that would not be allowed to touch it.
func AuthorizeResource(ctx context.Context, identity domain.Identity, fetch Fetcher) Decision {
	resource, err := fetch(ctx)
	if err != nil {
		return denied(StageFetch, identity, err)
	}
	if err := CheckOwnership(identity, resource.OwnerID()); err != nil {
		return denied(StageOwnership, identity, err)
	}
	return Decision{Stage: StageAuthorized, Identity: identity, Resource: resource}
}
