// Package approval decides which replies need human sign-off and notifies
// the approvers.
package approval

import "autoreply/internal/models"

// Route is the delivery path for a resolved reply.
type Route int

const (
	// RouteDirect posts the reply immediately.
	RouteDirect Route = iota
	// RouteApproval holds the reply for human approval.
	RouteApproval
)

// CriticalStars is the highest rating treated as critical.
const CriticalStars = 2

func (r Route) String() string {
	if r == RouteApproval {
		return "approval"
	}
	return "direct"
}

// Decide routes fresh critical reviews to approval when approval mode is on.
func Decide(stars int, period string, approvalMode bool) Route {
	if approvalMode && stars <= CriticalStars && period == models.PeriodFresh {
		return RouteApproval
	}
	return RouteDirect
}
