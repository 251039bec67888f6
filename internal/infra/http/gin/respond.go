package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	domaincondition "gearshare/internal/domain/condition"
	domaindeposit "gearshare/internal/domain/deposit"
	domaindispute "gearshare/internal/domain/dispute"
	domainitem "gearshare/internal/domain/item"
	domainrental "gearshare/internal/domain/rental"
	domainreview "gearshare/internal/domain/review"
	domainuser "gearshare/internal/domain/user"
)

// sentinelStatus is the single source of truth for the domain error
// taxonomy. respondError consults it for statuses, and Sentinels feeds it to
// the idempotency middleware so cached failures replay with their identity
// intact.
var sentinelStatus = []struct {
	err    error
	status int
}{
	{domainrental.ErrNotFound, http.StatusNotFound},
	{domainitem.ErrNotFound, http.StatusNotFound},
	{domaincondition.ErrNotFound, http.StatusNotFound},
	{domaindispute.ErrNotFound, http.StatusNotFound},
	{domaindeposit.ErrNotFound, http.StatusNotFound},
	{domainreview.ErrNotFound, http.StatusNotFound},
	{domainuser.ErrNotFound, http.StatusNotFound},

	{domainrental.ErrNotAParty, http.StatusForbidden},
	{domaindispute.ErrNotAParty, http.StatusForbidden},
	{domaincondition.ErrVerifierIsAuthor, http.StatusForbidden},

	{domainrental.ErrDateConflict, http.StatusConflict},
	{domainrental.ErrIllegalTransition, http.StatusConflict},
	{domaindispute.ErrDuplicateDispute, http.StatusConflict},
	{domaindispute.ErrEvidenceInUse, http.StatusConflict},
	{domaindispute.ErrIllegalTransition, http.StatusConflict},
	{domaincondition.ErrAlreadyFiled, http.StatusConflict},
	{domaincondition.ErrAlreadyVerified, http.StatusConflict},
	{domaindeposit.ErrAlreadySettled, http.StatusConflict},
	{domainreview.ErrAlreadyReviewed, http.StatusConflict},
	{domainreview.ErrRentalNotCompleted, http.StatusConflict},
	{domainuser.ErrEmailAlreadyUsed, http.StatusConflict},
}

// respondError translates domain sentinel errors into HTTP statuses. Anything
// unrecognized is treated as a bad request rather than leaking a 500, because
// command handlers surface validation through sentinel errors.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	for _, entry := range sentinelStatus {
		if errors.Is(err, entry.err) {
			return entry.status
		}
	}
	return http.StatusBadRequest
}

// Sentinels returns the domain errors the HTTP layer distinguishes.
func Sentinels() []error {
	out := make([]error, len(sentinelStatus))
	for i, entry := range sentinelStatus {
		out[i] = entry.err
	}
	return out
}
