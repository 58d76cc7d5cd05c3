package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/oops"
)

// Resources guarded by the ownership policy.
const (
	ResourcePost    = "post"
	ResourceComment = "comment"
)

// Access decisions, also used as metric labels.
const (
	DecisionAllow     = "allow"
	DecisionNotFound  = "not_found"
	DecisionForbidden = "forbidden"
)

var accessDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "blog_access_decisions_total",
	Help: "Ownership checks on post and comment mutations, by resource and decision",
}, []string{"resource", "decision"})

// Ownership is what the policy needs to know about a mutation target.
type Ownership struct {
	Exists  bool
	OwnerID string
}

// Decide applies the ownership rule: a missing entity is NOT_FOUND, an
// entity owned by someone else is FORBIDDEN.
func Decide(resource, id string, target Ownership, actorID string) error {
	switch {
	case !target.Exists:
		accessDecisions.WithLabelValues(resource, DecisionNotFound).Inc()
		return notFound(resource, id)
	case target.OwnerID != actorID:
		accessDecisions.WithLabelValues(resource, DecisionForbidden).Inc()
		return oops.Code(CodeForbidden).
			With(resource+"_id", id).
			With("actor_id", actorID).
			Public("you are not allowed to modify this " + resource).
			Errorf("user %s does not own %s %s", actorID, resource, id)
	default:
		accessDecisions.WithLabelValues(resource, DecisionAllow).Inc()
		return nil
	}
}

// denied classifies a conditional write that changed no rows. The target is
// reloaded only to pick the error; the write itself already enforced
// ownership.
func denied(resource, id string, target Ownership, actorID string) error {
	// Owned by the actor yet untouched: it vanished between the write and
	// the reload.
	if target.Exists && target.OwnerID == actorID {
		return notFound(resource, id)
	}
	return Decide(resource, id, target, actorID)
}

// allowed records a conditional write that went through.
func allowed(resource string) {
	accessDecisions.WithLabelValues(resource, DecisionAllow).Inc()
}
