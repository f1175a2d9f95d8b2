package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
)

func TestStorage_CreatePackage(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, factory *TestDataFactory, clientID uuid.UUID)
		wantErr error
	}{
		{
			name:    "successful create package",
			prepare: func(_ *testing.T, _ *TestDataFactory, _ uuid.UUID) {},
			wantErr: nil,
		},
		{
			name: "second active package is rejected",
			prepare: func(t *testing.T, factory *TestDataFactory, clientID uuid.UUID) {
				factory.CreatePackage(t, clientID, "Balíček 10", 10, 0, "active")
			},
			wantErr: apperrors.ErrActivePackageExists,
		},
		{
			name: "completed package does not block a new one",
			prepare: func(t *testing.T, factory *TestDataFactory, clientID uuid.UUID) {
				factory.CreatePackage(t, clientID, "Balíček 10", 10, 10, "completed")
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
			clientID := factory.CreateClient(t, trainerID, "Petr Novák")
			tt.prepare(t, factory, clientID)

			_, err := storage.CreatePackage(context.Background(), models.Package{
				ClientID:      clientID,
				Name:          "Balíček 12",
				TotalSessions: 12,
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestStorage_IncrementUsedSessions(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		used       int
		wantUsed   int
		wantStatus string
	}{
		{
			name:       "increment keeps package active",
			total:      10,
			used:       3,
			wantUsed:   4,
			wantStatus: models.PackageStatusActive,
		},
		{
			name:       "last credit completes the package",
			total:      10,
			used:       9,
			wantUsed:   10,
			wantStatus: models.PackageStatusCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
			clientID := factory.CreateClient(t, trainerID, "Petr Novák")
			packageID := factory.CreatePackage(t, clientID, "Balíček 10", tt.total, tt.used, "active")

			got, err := storage.IncrementUsedSessions(context.Background(), packageID)
			require.NoError(t, err)

			assert.Equal(t, tt.wantUsed, got.UsedSessions)
			assert.Equal(t, tt.wantStatus, got.Status)

			verification := NewTestVerification(storage)
			verification.VerifyPackageCounters(t, packageID, tt.wantUsed, tt.wantStatus)
		})
	}
}

func TestStorage_DecrementUsedSessions(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		total      int
		used       int
		wantUsed   int
		wantStatus string
	}{
		{
			name:       "decrement returns a credit",
			status:     "active",
			total:      10,
			used:       4,
			wantUsed:   3,
			wantStatus: models.PackageStatusActive,
		},
		{
			name:       "completed package reverts to active",
			status:     "completed",
			total:      10,
			used:       10,
			wantUsed:   9,
			wantStatus: models.PackageStatusActive,
		},
		{
			name:       "counter never drops below zero",
			status:     "active",
			total:      10,
			used:       0,
			wantUsed:   0,
			wantStatus: models.PackageStatusActive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
			clientID := factory.CreateClient(t, trainerID, "Petr Novák")
			packageID := factory.CreatePackage(t, clientID, "Balíček 10", tt.total, tt.used, tt.status)

			got, err := storage.DecrementUsedSessions(context.Background(), packageID)
			require.NoError(t, err)

			assert.Equal(t, tt.wantUsed, got.UsedSessions)
			assert.Equal(t, tt.wantStatus, got.Status)
		})
	}
}

func TestStorage_CompleteSession(t *testing.T) {
	scheduledAt := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("completing a session consumes a credit", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
		clientID := factory.CreateClient(t, trainerID, "Petr Novák")
		packageID := factory.CreatePackage(t, clientID, "Balíček 10", 10, 0, "active")
		sessionID := factory.CreateSession(t, trainerID, clientID, &packageID, scheduledAt, "scheduled")

		sess, pkg, err := storage.CompleteSession(context.Background(), trainerID, sessionID)
		require.NoError(t, err)
		require.NotNil(t, pkg)

		assert.Equal(t, models.SessionStatusCompleted, sess.Status)
		assert.Equal(t, 1, pkg.UsedSessions)

		verification := NewTestVerification(storage)
		verification.VerifySessionStatus(t, sessionID, "completed")
		verification.VerifyPackageCounters(t, packageID, 1, "active")
	})

	t.Run("double completion does not double-charge", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
		clientID := factory.CreateClient(t, trainerID, "Petr Novák")
		packageID := factory.CreatePackage(t, clientID, "Balíček 10", 10, 0, "active")
		sessionID := factory.CreateSession(t, trainerID, clientID, &packageID, scheduledAt, "scheduled")

		_, _, err := storage.CompleteSession(context.Background(), trainerID, sessionID)
		require.NoError(t, err)

		sess, pkg, err := storage.CompleteSession(context.Background(), trainerID, sessionID)
		require.NoError(t, err)
		assert.Equal(t, models.SessionStatusCompleted, sess.Status)
		assert.Nil(t, pkg)

		verification := NewTestVerification(storage)
		verification.VerifyPackageCounters(t, packageID, 1, "active")
	})

	t.Run("completing a cancelled session is rejected", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
		clientID := factory.CreateClient(t, trainerID, "Petr Novák")
		sessionID := factory.CreateSession(t, trainerID, clientID, nil, scheduledAt, "cancelled")

		_, _, err := storage.CompleteSession(context.Background(), trainerID, sessionID)
		require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})

	t.Run("unknown session is reported as missing", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")

		_, _, err := storage.CompleteSession(context.Background(), trainerID, uuid.New())
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})

	t.Run("single session without package completes without ledger", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
		clientID := factory.CreateClient(t, trainerID, "Petr Novák")
		sessionID := factory.CreateSession(t, trainerID, clientID, nil, scheduledAt, "scheduled")

		sess, pkg, err := storage.CompleteSession(context.Background(), trainerID, sessionID)
		require.NoError(t, err)
		assert.Nil(t, pkg)
		assert.Equal(t, models.SessionStatusCompleted, sess.Status)
	})
}

func TestStorage_DeleteSession(t *testing.T) {
	scheduledAt := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

	t.Run("deleting a completed session refunds the credit", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
		clientID := factory.CreateClient(t, trainerID, "Petr Novák")
		packageID := factory.CreatePackage(t, clientID, "Balíček 10", 10, 5, "active")
		sessionID := factory.CreateSession(t, trainerID, clientID, &packageID, scheduledAt, "completed")

		err := storage.DeleteSession(context.Background(), trainerID, sessionID)
		require.NoError(t, err)

		verification := NewTestVerification(storage)
		verification.VerifySessionDeleted(t, sessionID)
		verification.VerifyPackageCounters(t, packageID, 4, "active")
	})

	t.Run("deleting a scheduled session keeps counters", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
		clientID := factory.CreateClient(t, trainerID, "Petr Novák")
		packageID := factory.CreatePackage(t, clientID, "Balíček 10", 10, 5, "active")
		sessionID := factory.CreateSession(t, trainerID, clientID, &packageID, scheduledAt, "scheduled")

		err := storage.DeleteSession(context.Background(), trainerID, sessionID)
		require.NoError(t, err)

		verification := NewTestVerification(storage)
		verification.VerifySessionDeleted(t, sessionID)
		verification.VerifyPackageCounters(t, packageID, 5, "active")
	})

	t.Run("unknown session", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")

		err := storage.DeleteSession(context.Background(), trainerID, uuid.New())
		require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	})
}

func TestStorage_DeleteFutureInGroup(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
	clientID := factory.CreateClient(t, trainerID, "Petr Novák")
	groupID := uuid.New()

	base := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	var sessionIDs []uuid.UUID
	for i := range 4 {
		id := factory.CreateSession(t, trainerID, clientID, nil, base.AddDate(0, 0, 7*i), "scheduled")
		_, err := storage.DB.Exec(`UPDATE sessions SET recurrence_group_id = $1 WHERE id = $2`, groupID, id)
		require.NoError(t, err)
		sessionIDs = append(sessionIDs, id)
	}
	// Первая тренировка серии уже проведена, ее удаление затронуть не должно.
	_, err := storage.DB.Exec(`UPDATE sessions SET status = 'completed' WHERE id = $1`, sessionIDs[0])
	require.NoError(t, err)

	// Опорная тренировка (вторая в серии) не удаляется: она идет через
	// обычное удаление, здесь убираются только строго более поздние.
	affected, err := storage.DeleteFutureInGroup(context.Background(), trainerID, groupID, base.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	verification := NewTestVerification(storage)
	verification.VerifySessionStatus(t, sessionIDs[0], "completed")
	verification.VerifySessionStatus(t, sessionIDs[1], "scheduled")
	for _, id := range sessionIDs[2:] {
		verification.VerifySessionDeleted(t, id)
	}
}

func TestStorage_FindOverdueScheduled(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
	clientID := factory.CreateClient(t, trainerID, "Petr Novák")

	now := time.Now().UTC()
	overdueID := factory.CreateSession(t, trainerID, clientID, nil, now.Add(-3*time.Hour), "scheduled")
	factory.CreateSession(t, trainerID, clientID, nil, now.Add(2*time.Hour), "scheduled")
	factory.CreateSession(t, trainerID, clientID, nil, now.Add(-5*time.Hour), "completed")

	got, err := storage.FindOverdueScheduled(context.Background(), trainerID, now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, overdueID, got[0].ID)
}

func TestStorage_TogglePaid(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
	clientID := factory.CreateClient(t, trainerID, "Petr Novák")
	packageID := factory.CreatePackage(t, clientID, "Balíček 10", 10, 0, "active")

	got, err := storage.TogglePaid(context.Background(), packageID)
	require.NoError(t, err)
	assert.True(t, got.Paid)
	require.NotNil(t, got.PaidAt)

	got, err = storage.TogglePaid(context.Background(), packageID)
	require.NoError(t, err)
	assert.False(t, got.Paid)
	assert.Nil(t, got.PaidAt)
}

func TestStorage_RegenerateICSToken(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")

	oldToken, err := storage.GetICSToken(context.Background(), trainerID)
	require.NoError(t, err)

	returnedOld, fresh, err := storage.RegenerateICSToken(context.Background(), trainerID)
	require.NoError(t, err)
	assert.Equal(t, oldToken, returnedOld)
	assert.NotEqual(t, oldToken, fresh)

	// Старый токен больше не резолвится.
	_, err = storage.GetTrainerByICSToken(context.Background(), oldToken)
	require.ErrorIs(t, err, apperrors.ErrTrainerNotFound)

	trainer, err := storage.GetTrainerByICSToken(context.Background(), fresh)
	require.NoError(t, err)
	assert.Equal(t, trainerID, trainer.ID)
}

func TestStorage_ListFeedSessions(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
	clientID := factory.CreateClient(t, trainerID, "Petr Novák")
	packageID := factory.CreatePackage(t, clientID, "Balíček 10", 10, 3, "active")

	base := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)
	factory.CreateSession(t, trainerID, clientID, &packageID, base, "scheduled")
	factory.CreateSession(t, trainerID, clientID, nil, base.AddDate(0, 0, 1), "completed")
	// Отмененные тренировки в фид не попадают.
	factory.CreateSession(t, trainerID, clientID, nil, base.AddDate(0, 0, 2), "cancelled")

	got, err := storage.ListFeedSessions(context.Background(), trainerID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Petr Novák", got[0].ClientName)
	require.NotNil(t, got[0].PackageName)
	assert.Equal(t, "Balíček 10", *got[0].PackageName)
	require.NotNil(t, got[0].PackageUsed)
	assert.Equal(t, 3, *got[0].PackageUsed)

	assert.Nil(t, got[1].PackageName)
}

func TestStorage_ListSessionExercises(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	factory := NewTestDataFactory(storage)
	trainerID := factory.CreateTrainer(t, "trainer@example.com", "Jan")
	clientID := factory.CreateClient(t, trainerID, "Petr Novák")
	sessionID := factory.CreateSession(t, trainerID, clientID, nil,
		time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC), "scheduled")

	benchID := factory.CreateExercise(t, trainerID, "Bench press")
	group := 1
	factory.CreateSessionExercise(t, sessionID, &benchID, 0,
		[]models.ExerciseSet{{Reps: 5, Weight: 80}}, &group)
	factory.CreateSessionExercise(t, sessionID, nil, 1,
		[]models.ExerciseSet{{Reps: 12, Weight: 20}}, nil)

	got, err := storage.ListSessionExercises(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Bench press", got[0].ExerciseName)
	require.Len(t, got[0].Sets, 1)
	assert.Equal(t, 5, got[0].Sets[0].Reps)
	require.NotNil(t, got[0].SupersetGroup)

	assert.Equal(t, "", got[1].ExerciseName)
	assert.Nil(t, got[1].SupersetGroup)
}
