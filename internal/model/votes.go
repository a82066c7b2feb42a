package model

import "github.com/google/uuid"

// VoteRequest carries a ballot: 1 upvote, -1 downvote, 0 remove.
type VoteRequest struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	VoteType int       `json:"vote_type"`
}

type VoteResponse struct {
	Score    int `json:"score"`
	UserVote int `json:"user_vote"`
}

type BatchVotesRequest struct {
	UserID    uuid.UUID   `json:"user_id" validate:"required"`
	EntityIDs []uuid.UUID `json:"entity_ids" validate:"required,min=1"`
}

type UserVoteResponse struct {
	UserVote int `json:"user_vote"`
}
