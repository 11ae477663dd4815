package entities

import (
	"time"

	"socialhub/domain/core/valueobjects"
	apperrors "socialhub/pkg/errors"
)

// FollowEdge is a directed follower -> followee relationship. A single edge
// record backs both the follower's following view and the followee's
// follower view.
type FollowEdge struct {
	Follower  valueobjects.IdentityID `json:"follower"`
	Followee  valueobjects.IdentityID `json:"followee"`
	CreatedAt time.Time               `json:"createdAt"`
}

// NewFollowEdge creates an edge, rejecting self-follow
func NewFollowEdge(follower, followee valueobjects.IdentityID, now time.Time) (FollowEdge, error) {
	if follower.IsZero() || followee.IsZero() {
		return FollowEdge{}, apperrors.NewInvalidArgumentError("follower and followee are required").
			WithCode(apperrors.CodeInvalidID)
	}
	if follower == followee {
		return FollowEdge{}, apperrors.ErrSelfFollow()
	}
	return FollowEdge{Follower: follower, Followee: followee, CreatedAt: now}, nil
}

// Key identifies the ordered pair
func (e FollowEdge) Key() string {
	return PairKey(e.Follower, e.Followee)
}

// PairKey builds the lookup key for an ordered follower/followee pair
func PairKey(follower, followee valueobjects.IdentityID) string {
	return follower.String() + "\x00" + followee.String()
}

// FollowCounts are the derived edge counts of one identity
type FollowCounts struct {
	FollowerCount  int `json:"followerCount"`
	FollowingCount int `json:"followingCount"`
}
