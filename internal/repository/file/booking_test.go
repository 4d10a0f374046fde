package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-scheduler/internal/model"
)

func newTestBookingStore(t *testing.T) (*bookingStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "appointments.csv")
	store := NewBookingStore(path).(*bookingStore)
	return store, path
}

func testRecord(name string) *model.BookingRecord {
	return &model.BookingRecord{
		ID:           uuid.New(),
		PatientName:  name,
		DateOfBirth:  "1985-02-17",
		DoctorID:     "D001",
		Date:         "2026-03-14",
		StartTime:    "10:00",
		IsNewPatient: true,
	}
}

func TestBookingStoreAppendAndList(t *testing.T) {
	store, _ := newTestBookingStore(t)
	clock := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	store.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	const n = 5
	for i := 0; i < n; i++ {
		rec := testRecord(fmt.Sprintf("Patient %d", i))
		require.NoError(t, store.Append(context.Background(), rec))
	}

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, n)

	for i := 1; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("Patient %d", i), records[i].PatientName)
		assert.False(t, records[i].CreatedAt.Before(records[i-1].CreatedAt),
			"created_at must be non-decreasing in append order")
	}
}

func TestBookingStoreRoundTripsOptionalFields(t *testing.T) {
	store, _ := newTestBookingStore(t)

	rec := testRecord("Jane Doe")
	rec.InsuranceCarrier = model.Optional("Acme Health")
	rec.PatientEmail = model.Optional("jane@example.com")
	// MemberID, GroupNumber and PatientPhone stay absent.

	require.NoError(t, store.Append(context.Background(), rec))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.Equal(t, "Acme Health", *got.InsuranceCarrier)
	assert.Equal(t, "jane@example.com", got.Email())
	assert.Nil(t, got.MemberID)
	assert.Nil(t, got.GroupNumber)
	assert.Nil(t, got.PatientPhone)
	assert.True(t, got.IsNewPatient)
}

func TestBookingStoreAssignsCreatedAtAtAppendTime(t *testing.T) {
	store, _ := newTestBookingStore(t)
	fixed := time.Date(2026, 3, 10, 9, 30, 15, 999_000_000, time.Local)
	store.now = func() time.Time { return fixed }

	rec := testRecord("Jane Doe")
	require.NoError(t, store.Append(context.Background(), rec))

	// Second precision, sub-second truncated.
	assert.Equal(t, fixed.Truncate(time.Second), rec.CreatedAt)

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.CreatedAt, records[0].CreatedAt)
}

func TestBookingStoreSelfHealsCorruptFile(t *testing.T) {
	store, path := newTestBookingStore(t)
	require.NoError(t, os.WriteFile(path, []byte("\"unterminated\nnot,a,valid,store"), 0o644))

	require.NoError(t, store.Append(context.Background(), testRecord("Jane Doe")))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Jane Doe", records[0].PatientName)

	rows, err := readRows(path)
	require.NoError(t, err)
	assert.Equal(t, bookingHeader, rows[0])
}

func TestBookingStoreInitializesMissingFile(t *testing.T) {
	store, path := newTestBookingStore(t)

	records, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)

	rows, err := readRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, bookingHeader, rows[0])
}
