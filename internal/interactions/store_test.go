package interactions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	mock.ExpectExec("INSERT INTO ussd_interactions").
		WithArgs(sqlmock.AnyArg(), "ATUid_1", "+254700111222", "select_language", "main_menu", "1", "Welcome to Tujali Telehealth", false, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = store.Record(context.Background(), Interaction{
		SessionID:   "ATUid_1",
		PhoneNumber: "+254700111222",
		StateBefore: "select_language",
		StateAfter:  "main_menu",
		Input:       "1",
		Reply:       "Welcome to Tujali Telehealth",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreRecordErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStore(db)
	assert.Error(t, store.Record(context.Background(), Interaction{}))

	mock.ExpectExec("INSERT INTO ussd_interactions").WillReturnError(errors.New("connection reset"))
	err = store.Record(context.Background(), Interaction{SessionID: "s"})
	assert.ErrorContains(t, err, "connection reset")
}

func TestNilStoreIsNoop(t *testing.T) {
	var store *Store
	assert.Nil(t, NewStore(nil))
	assert.NoError(t, store.Record(context.Background(), Interaction{SessionID: "s"}))
	items, err := store.ListBySession(context.Background(), "s", 10)
	assert.NoError(t, err)
	assert.Nil(t, items)
}

func TestStoreListBySession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	id1, id2 := uuid.New(), uuid.New()
	rows := sqlmock.NewRows([]string{"id", "session_id", "phone_number", "state_before", "state_after", "input", "reply", "terminal", "fault", "created_at"}).
		AddRow(id1.String(), "s-1", "+254700111222", "start", "select_language", "", "Welcome", false, false, now).
		AddRow(id2.String(), "s-1", "+254700111222", "select_language", "main_menu", "1", "Welcome back", false, false, now.Add(time.Second))
	mock.ExpectQuery("SELECT id, session_id").WithArgs("s-1", 50).WillReturnRows(rows)

	items, err := NewStore(db).ListBySession(context.Background(), "s-1", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, id1, items[0].ID)
	assert.Equal(t, "main_menu", items[1].StateAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}
