package model

import "time"

// Reaction kinds stored in room_reactions.kind.  A user holds at most
// one reaction per room; switching kinds replaces the previous row.
const (
	ReactionLike    = "LIKE"    // room_reactions.kind = 'LIKE'
	ReactionDislike = "DISLIKE" // room_reactions.kind = 'DISLIKE'
)

// Room represents a bookable listing.
//
// Fields:
//  ID         – primary key identifier.
//  Title      – short headline (5-50 chars).
//  Body       – free-form description (5-500 chars).
//  City       – city the room is located in.
//  ImgLink    – optional image URL.
//  StartAt    – optional advisory availability start; not checked on reserve.
//  EndsAt     – optional advisory availability end; not checked on reserve.
//  CreatedBy  – resolved reference to the owning user.
//  Reserved   – set once by the first successful reserve; never cleared.
//  ReservedBy – resolved reference to the reserving user, nil until reserved.
//  LikedBy    – IDs of users who currently like the room.
//  DislikedBy – IDs of users who currently dislike the room.
//  Likes      – always len(LikedBy); computed at read time, never stored.
//  Dislikes   – always len(DislikedBy); computed at read time, never stored.
type Room struct {
	ID         uint64     `json:"id"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	City       string     `json:"city"`
	ImgLink    string     `json:"imgLink,omitempty"`
	StartAt    *time.Time `json:"startAt,omitempty"`
	EndsAt     *time.Time `json:"endsAt,omitempty"`
	CreatedBy  UserRef    `json:"createdBy"`
	Reserved   bool       `json:"reserved"`
	ReservedBy *UserRef   `json:"reservedBy,omitempty"`
	LikedBy    []uint64   `json:"likedBy"`
	DislikedBy []uint64   `json:"dislikedBy"`
	Likes      int        `json:"likes"`
	Dislikes   int        `json:"dislikes"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}
