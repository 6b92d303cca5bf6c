package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/queue"
	"github.com/iliyamo/room-reservation/internal/repository"
	"github.com/iliyamo/room-reservation/internal/service"
)

// RoomHandler groups the repositories behind the room endpoints.  All
// mutating methods assume JWT authentication already ran; listing and
// detail are public.
type RoomHandler struct {
	Rooms     *repository.RoomRepo
	Reactions *repository.ReactionRepo
	Publisher *service.Publisher // nil disables reservation events
}

// NewRoomHandler constructs a RoomHandler.  The publisher may be nil;
// both repositories must be non-nil.
func NewRoomHandler(rooms *repository.RoomRepo, reactions *repository.ReactionRepo, pub *service.Publisher) *RoomHandler {
	if rooms == nil || reactions == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms, Reactions: reactions, Publisher: pub}
}

// ----- DTOs -----

type createRoomReq struct {
	Title   string     `json:"title"`
	Body    string     `json:"body"`
	City    string     `json:"city"`
	ImgLink string     `json:"imgLink"`
	StartAt *time.Time `json:"startAt"`
	EndsAt  *time.Time `json:"endsAt"`
}

type updateRoomReq struct {
	Title   *string    `json:"title"`
	Body    *string    `json:"body"`
	City    *string    `json:"city"`
	ImgLink *string    `json:"imgLink"`
	StartAt *time.Time `json:"startAt"`
	EndsAt  *time.Time `json:"endsAt"`
}

// validateRoomFields checks the length rules shared by create and
// update.  Nil pointers mean "leave unchanged" and are skipped.
func validateRoomFields(title, body, city *string) error {
	if title != nil {
		if n := len(*title); n < 5 || n > 50 {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "Title must be between 5 and 50 characters long")
		}
	}
	if body != nil {
		if n := len(*body); n < 5 || n > 500 {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "Body must be between 5 and 500 characters long")
		}
	}
	if city != nil && *city == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "City is required")
	}
	return nil
}

// Create handles POST /rooms.  The authenticated caller becomes the
// room's owner.
func (h *RoomHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	var req createRoomReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validateRoomFields(&req.Title, &req.Body, &req.City); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Rooms.Create(ctx, userID, repository.RoomInput{
		Title:   req.Title,
		Body:    req.Body,
		City:    req.City,
		ImgLink: req.ImgLink,
		StartAt: req.StartAt,
		EndsAt:  req.EndsAt,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "create room failed")
	}
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "load room failed")
	}
	return c.JSON(http.StatusCreated, room)
}

// List handles GET /rooms: every room, newest first, with creator and
// reserver identities resolved.
func (h *RoomHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	rooms, err := h.Rooms.List(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "list rooms failed")
	}
	if rooms == nil {
		rooms = []*model.Room{}
	}
	return c.JSON(http.StatusOK, rooms)
}

// Get handles GET /rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := roomID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid room id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Room not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "load room failed")
	}
	return c.JSON(http.StatusOK, room)
}

// Update handles PUT /rooms/:id.  Only the owner may update; absent
// fields keep their stored values.
func (h *RoomHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := roomID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid room id")
	}
	var req updateRoomReq
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := validateRoomFields(req.Title, req.Body, req.City); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	err = h.Rooms.Update(ctx, id, userID, repository.RoomUpdate{
		Title:   req.Title,
		Body:    req.Body,
		City:    req.City,
		ImgLink: req.ImgLink,
		StartAt: req.StartAt,
		EndsAt:  req.EndsAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Room not found")
		case errors.Is(err, repository.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "You can only update your own rooms")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "update room failed")
	}
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "load room failed")
	}
	return c.JSON(http.StatusOK, room)
}

// Delete handles DELETE /rooms/:id.  Only the owner may delete.
func (h *RoomHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := roomID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid room id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Rooms.Delete(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Room not found")
		case errors.Is(err, repository.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "You can only delete your own rooms")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "delete room failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}

// Like handles POST /rooms/:id/like.
func (h *RoomHandler) Like(c echo.Context) error {
	return h.react(c, model.ReactionLike)
}

// Dislike handles POST /rooms/:id/dislike.
func (h *RoomHandler) Dislike(c echo.Context) error {
	return h.react(c, model.ReactionDislike)
}

// react applies a reaction transition and returns the updated room.
// Repeating the reaction the user already holds is a 400; switching
// sides displaces the opposite reaction.
func (h *RoomHandler) react(c echo.Context, kind string) error {
	userID, err := getUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := roomID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid room id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Room existence first so a reaction to a missing room is a 404,
	// not a dangling reaction row.
	if _, err := h.Rooms.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Room not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "load room failed")
	}
	if err := h.Reactions.React(ctx, id, userID, kind); err != nil {
		if errors.Is(err, repository.ErrAlreadyReacted) {
			if kind == model.ReactionLike {
				return echo.NewHTTPError(http.StatusBadRequest, "You already liked this room")
			}
			return echo.NewHTTPError(http.StatusBadRequest, "You already disliked this room")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "save reaction failed")
	}
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "load room failed")
	}
	return c.JSON(http.StatusOK, room)
}

// Reserve handles POST /rooms/:id/reserve.  The first successful call
// wins the room for good: 403 for the owner, 409 once reserved.
func (h *RoomHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := roomID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid room id")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Reserve(ctx, id, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "Room not found")
		case errors.Is(err, repository.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "You cannot reserve your own room")
		case errors.Is(err, repository.ErrAlreadyReserved):
			return echo.NewHTTPError(http.StatusConflict, "Room already reserved")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "reserve room failed")
	}
	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "load room failed")
	}

	if h.Publisher != nil && room.ReservedBy != nil {
		ev := queue.RoomReservedEvent{
			RoomID:             room.ID,
			Title:              room.Title,
			City:               room.City,
			OwnerID:            room.CreatedBy.ID,
			ReservedByID:       room.ReservedBy.ID,
			ReservedByUsername: room.ReservedBy.Username,
			ReservedAt:         time.Now().UTC().Format(time.RFC3339),
		}
		// Best effort: the reservation is already durable in the DB.
		if err := h.Publisher.PublishRoomReserved(ctx, ev); err != nil {
			log.Printf("reserve: publish event failed: %v", err)
		}
	}
	return c.JSON(http.StatusOK, room)
}
