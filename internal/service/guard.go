package service

import "github.com/trailhead/trailhead-backend/internal/common"

// Authorize allows a mutation only when the caller owns the resource.
// An empty caller is unauthenticated; an empty owner never matches.
func Authorize(callerID, ownerID string) error {
	if callerID == "" {
		return common.ErrUnauthorized
	}
	if ownerID == "" || callerID != ownerID {
		return common.ErrForbidden
	}
	return nil
}
