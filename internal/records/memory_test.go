package records

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/telehealth-ussd/internal/geo"
)

func TestMemoryStorePatientLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.FindPatientByPhone(ctx, "+254700111222")
	require.True(t, errors.Is(err, ErrPatientNotFound))

	p, err := store.CreatePatient(ctx, NewPatient{PhoneNumber: "+254700111222", Name: "Jane", Age: 30, Gender: "Female", Location: "Nairobi", Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
	assert.Nil(t, p.Coordinates)

	_, err = store.CreatePatient(ctx, NewPatient{PhoneNumber: "+254700111222", Name: "Jane again"})
	assert.True(t, errors.Is(err, ErrPatientExists))

	require.NoError(t, store.UpdatePatientCoordinates(ctx, p.ID, geo.Point{Lat: -1.2921, Lon: 36.8219}))
	err = store.UpdatePatientCoordinates(ctx, p.ID, geo.Point{Lat: 100, Lon: 36.8219})
	assert.True(t, errors.Is(err, ErrInvalidCoordinates))

	require.NoError(t, store.AppendPatientSymptom(ctx, p.ID, NewSymptom("severe cough", "", "", time.Time{})))

	found, err := store.FindPatientByPhone(ctx, "+254700111222")
	require.NoError(t, err)
	require.NotNil(t, found.Coordinates)
	assert.Equal(t, geo.Point{Lat: -1.2921, Lon: 36.8219}, *found.Coordinates)
	require.Len(t, found.Symptoms, 1)
	assert.Equal(t, SeveritySevere, found.Symptoms[0].Severity)

	found.Coordinates.Lat = 0
	again, _ := store.FindPatientByPhone(ctx, "+254700111222")
	assert.Equal(t, -1.2921, again.Coordinates.Lat)
}

func TestMemoryStoreConversationNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewSeededMemoryStore()

	msgs, err := store.ListConversation(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, int64(4), msgs[0].ID)
	assert.Equal(t, int64(2), msgs[2].ID)

	created, err := store.CreateMessage(ctx, Message{ProviderID: 1, PatientID: 1, Content: "new"})
	require.NoError(t, err)
	msgs, _ = store.ListConversation(ctx, 1, 1)
	assert.Equal(t, created.ID, msgs[0].ID)

	_, err = store.CreateMessage(ctx, Message{ProviderID: 99, PatientID: 1, Content: "lost"})
	assert.True(t, errors.Is(err, ErrProviderNotFound))
}

func TestMemoryStoreAppointments(t *testing.T) {
	ctx := context.Background()
	store := NewSeededMemoryStore()

	appt, err := store.CreateAppointment(ctx, Appointment{PatientID: 1, ProviderID: 2, Date: "20-10-2026", Time: "09:00"})
	require.NoError(t, err)
	assert.Equal(t, AppointmentStatusPending, appt.Status)
	assert.Len(t, store.Appointments(), 1)

	_, err = store.CreateAppointment(ctx, Appointment{PatientID: 404, ProviderID: 2})
	assert.True(t, errors.Is(err, ErrPatientNotFound))
}

func TestMemoryStoreHealthInfoByLanguageAndTopic(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	items, err := store.ListHealthInfo(ctx, "sw", TopicMaternal)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ushauri wa Afya ya Uzazi", items[0].Title)

	items, _ = store.ListHealthInfo(ctx, "en", "")
	assert.Len(t, items, 4)

	items, _ = store.ListHealthInfo(ctx, "am", TopicCovid)
	assert.Empty(t, items)
}

func TestMemoryStoreConcurrentRegistration(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreatePatient(ctx, NewPatient{PhoneNumber: "+254799000000", Name: "Racer"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
		} else {
			assert.True(t, errors.Is(err, ErrPatientExists))
		}
	}
	assert.Equal(t, 1, created)
}
