package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/room-reservation/internal/model"
	"github.com/iliyamo/room-reservation/internal/repository"
)

// newRoomTest builds a RoomHandler (no publisher) over a sqlmock database
// and an authenticated echo context for the given room id.
func newRoomTest(t *testing.T, method, body string, roomID string, userID uint64) (*RoomHandler, sqlmock.Sqlmock, echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if roomID != "" {
		c.SetParamNames("id")
		c.SetParamValues(roomID)
	}
	if userID != 0 {
		c.Set("user_id", userID)
	}

	h := NewRoomHandler(repository.NewRoomRepo(db), repository.NewReactionRepo(db), nil)
	return h, mock, c, rec
}

var (
	roomSelectPattern = "SELECT r\\.id, .+ FROM rooms r"
	creatorPattern    = regexp.QuoteMeta("SELECT creator_id FROM rooms WHERE id = ?")
	reactionsPattern  = regexp.QuoteMeta("SELECT room_id, user_id, kind FROM room_reactions WHERE room_id IN (?) ORDER BY id")
	reservePattern    = "UPDATE rooms SET reserved = 1, .+ AND reserved = 0"
	lockPattern       = regexp.QuoteMeta("SELECT kind FROM room_reactions WHERE room_id = ? AND user_id = ? FOR UPDATE")
)

var roomCols = []string{
	"id", "title", "body", "city", "img_link", "start_at", "ends_at",
	"reserved", "created_at", "updated_at",
	"creator_id", "creator_username", "creator_email",
	"reserver_id", "reserver_username", "reserver_email",
	"likes", "dislikes",
}

// roomRow yields one roomSelect result row for room 5 owned by alice (1).
func roomRow(reserved bool) *sqlmock.Rows {
	now := time.Now().UTC()
	var rid, rname, remail any
	if reserved {
		rid, rname, remail = 2, "bob", "bob@example.com"
	}
	return sqlmock.NewRows(roomCols).AddRow(
		5, "Cozy room downtown", "Spacious room with a view", "Warsaw", nil, nil, nil,
		reserved, now, now,
		1, "alice", "alice@example.com",
		rid, rname, remail,
		0, 0,
	)
}

func expectRoomFetch(mock sqlmock.Sqlmock, reserved bool) {
	mock.ExpectQuery(roomSelectPattern).WithArgs(5).WillReturnRows(roomRow(reserved))
	mock.ExpectQuery(reactionsPattern).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "user_id", "kind"}))
}

func TestRoomReserve(t *testing.T) {
	t.Run("success publishes nothing without a publisher", func(t *testing.T) {
		h, mock, c, rec := newRoomTest(t, http.MethodPost, "", "5", 2)

		mock.ExpectQuery(creatorPattern).WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow(1))
		mock.ExpectExec(reservePattern).WithArgs(2, 5).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectRoomFetch(mock, true)

		require.NoError(t, h.Reserve(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var room model.Room
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &room))
		assert.True(t, room.Reserved)
		require.NotNil(t, room.ReservedBy)
		assert.Equal(t, "bob", room.ReservedBy.Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("owner cannot reserve", func(t *testing.T) {
		h, mock, c, _ := newRoomTest(t, http.MethodPost, "", "5", 1)

		mock.ExpectQuery(creatorPattern).WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow(1))

		err := h.Reserve(c)
		assert.Equal(t, http.StatusForbidden, httpErrorCode(t, err))
	})

	t.Run("already reserved", func(t *testing.T) {
		h, mock, c, _ := newRoomTest(t, http.MethodPost, "", "5", 2)

		mock.ExpectQuery(creatorPattern).WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow(1))
		mock.ExpectExec(reservePattern).WithArgs(2, 5).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := h.Reserve(c)
		assert.Equal(t, http.StatusConflict, httpErrorCode(t, err))
	})

	t.Run("missing room", func(t *testing.T) {
		h, mock, c, _ := newRoomTest(t, http.MethodPost, "", "99", 2)

		mock.ExpectQuery(creatorPattern).WithArgs(99).
			WillReturnRows(sqlmock.NewRows([]string{"creator_id"}))

		err := h.Reserve(c)
		assert.Equal(t, http.StatusNotFound, httpErrorCode(t, err))
	})
}

func TestRoomLike(t *testing.T) {
	t.Run("duplicate like is a 400", func(t *testing.T) {
		h, mock, c, _ := newRoomTest(t, http.MethodPost, "", "5", 2)

		expectRoomFetch(mock, false)
		mock.ExpectBegin()
		mock.ExpectQuery(lockPattern).WithArgs(5, 2).
			WillReturnRows(sqlmock.NewRows([]string{"kind"}).AddRow(model.ReactionLike))
		mock.ExpectRollback()

		err := h.Like(c)
		var he *echo.HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		assert.Equal(t, "You already liked this room", he.Message)
	})

	t.Run("missing room is a 404", func(t *testing.T) {
		h, mock, c, _ := newRoomTest(t, http.MethodPost, "", "5", 2)

		mock.ExpectQuery(roomSelectPattern).WithArgs(5).
			WillReturnRows(sqlmock.NewRows(roomCols))

		err := h.Like(c)
		assert.Equal(t, http.StatusNotFound, httpErrorCode(t, err))
	})
}

func TestRoomCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"title too short", `{"title":"tiny","body":"A valid body","city":"Warsaw"}`},
		{"body too short", `{"title":"Valid title","body":"nah","city":"Warsaw"}`},
		{"city missing", `{"title":"Valid title","body":"A valid body","city":""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, mock, c, _ := newRoomTest(t, http.MethodPost, tt.body, "", 2)
			err := h.Create(c)
			assert.Equal(t, http.StatusUnprocessableEntity, httpErrorCode(t, err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoomUpdateNotOwner(t *testing.T) {
	h, mock, c, _ := newRoomTest(t, http.MethodPut, `{"title":"Brand new title"}`, "5", 2)

	mock.ExpectQuery(creatorPattern).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow(9))

	err := h.Update(c)
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusForbidden, he.Code)
	assert.Equal(t, "You can only update your own rooms", he.Message)
}

func TestRoomDelete(t *testing.T) {
	h, mock, c, rec := newRoomTest(t, http.MethodDelete, "", "5", 2)

	mock.ExpectQuery(creatorPattern).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"creator_id"}).AddRow(2))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM room_reactions WHERE room_id = ?")).
		WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rooms WHERE id = ?")).
		WithArgs(5).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":true}`, rec.Body.String())
}

func TestRoomGetUnknownID(t *testing.T) {
	h, _, c, _ := newRoomTest(t, http.MethodGet, "", "not-a-number", 0)
	err := h.Get(c)
	assert.Equal(t, http.StatusBadRequest, httpErrorCode(t, err))
}
