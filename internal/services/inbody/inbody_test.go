package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lukaskostka/janrichtertrainingapp/internal/apperrors"
	"github.com/lukaskostka/janrichtertrainingapp/internal/lib/timezone"
	"github.com/lukaskostka/janrichtertrainingapp/internal/models"
	"github.com/lukaskostka/janrichtertrainingapp/internal/vision"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) GetClient(ctx context.Context, trainerID, clientID uuid.UUID) (*models.Client, error) {
	args := m.Called(ctx, trainerID, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Client), args.Error(1)
}

func (m *RepoMock) CreateInBodyRecord(ctx context.Context, r models.InBodyRecord) (uuid.UUID, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *RepoMock) ListInBodyRecords(ctx context.Context, clientID uuid.UUID) ([]*models.InBodyRecord, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InBodyRecord), args.Error(1)
}

type RecognizerMock struct {
	mock.Mock
}

func (m *RecognizerMock) Recognize(ctx context.Context, image []byte, mimeType string) (*vision.RecognizeResponse, error) {
	args := m.Called(ctx, image, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vision.RecognizeResponse), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAdapter(t *testing.T) *timezone.Adapter {
	t.Helper()
	tz, err := timezone.New()
	require.NoError(t, err)
	return tz
}

func ptrF(v float64) *float64 { return &v }

func ptrS(v string) *string { return &v }

func TestInBodyService_RecognizeAndSave(t *testing.T) {
	trainerID := uuid.New()
	clientID := uuid.New()
	recordID := uuid.New()
	image := []byte{0x89, 0x50, 0x4E, 0x47}

	repo := new(RepoMock)
	recognizer := new(RecognizerMock)
	service := NewInBodyService(newNoopLogger(), repo, recognizer, newTestAdapter(t))

	repo.On("GetClient", mock.Anything, trainerID, clientID).Return(&models.Client{ID: clientID}, nil)
	recognizer.On("Recognize", mock.Anything, image, "image/png").Return(&vision.RecognizeResponse{
		MeasuredAt: ptrS("2025-02-03"),
		Weight:     ptrF(82.4),
		BodyFatPct: ptrF(18.2),
	}, nil)
	repo.On("CreateInBodyRecord", mock.Anything, mock.MatchedBy(func(r models.InBodyRecord) bool {
		return r.ClientID == clientID &&
			r.MeasuredAt.Format("2006-01-02") == "2025-02-03" &&
			r.Weight != nil && *r.Weight == 82.4 &&
			r.VisceralFat == nil
	})).Return(recordID, nil)

	record, err := service.RecognizeAndSave(context.Background(), trainerID, clientID, image, "image/png")
	require.NoError(t, err)
	assert.Equal(t, recordID, record.ID)
	assert.Equal(t, "2025-02-03", record.MeasuredAt.Format("2006-01-02"))
	repo.AssertExpectations(t)
	recognizer.AssertExpectations(t)
}

func TestInBodyService_RecognizeAndSave_NoDateFallsBackToToday(t *testing.T) {
	trainerID := uuid.New()
	clientID := uuid.New()
	tz := newTestAdapter(t)

	repo := new(RepoMock)
	recognizer := new(RecognizerMock)
	service := NewInBodyService(newNoopLogger(), repo, recognizer, tz)

	repo.On("GetClient", mock.Anything, trainerID, clientID).Return(&models.Client{ID: clientID}, nil)
	recognizer.On("Recognize", mock.Anything, mock.Anything, mock.Anything).
		Return(&vision.RecognizeResponse{Weight: ptrF(90)}, nil)
	repo.On("CreateInBodyRecord", mock.Anything, mock.MatchedBy(func(r models.InBodyRecord) bool {
		return r.MeasuredAt.Equal(tz.Today())
	})).Return(uuid.New(), nil)

	_, err := service.RecognizeAndSave(context.Background(), trainerID, clientID, []byte("img"), "image/jpeg")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestInBodyService_RecognizeAndSave_UnknownClient(t *testing.T) {
	repo := new(RepoMock)
	recognizer := new(RecognizerMock)
	service := NewInBodyService(newNoopLogger(), repo, recognizer, newTestAdapter(t))

	repo.On("GetClient", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ErrClientNotFound)

	_, err := service.RecognizeAndSave(context.Background(), uuid.New(), uuid.New(), []byte("img"), "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrClientNotFound)
	recognizer.AssertNotCalled(t, "Recognize", mock.Anything, mock.Anything, mock.Anything)
}

func TestInBodyService_RecognizeAndSave_OCRError(t *testing.T) {
	repo := new(RepoMock)
	recognizer := new(RecognizerMock)
	service := NewInBodyService(newNoopLogger(), repo, recognizer, newTestAdapter(t))

	repo.On("GetClient", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Client{}, nil)
	recognizer.On("Recognize", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("service unavailable"))

	_, err := service.RecognizeAndSave(context.Background(), uuid.New(), uuid.New(), []byte("img"), "image/png")
	require.Error(t, err)
	repo.AssertNotCalled(t, "CreateInBodyRecord", mock.Anything, mock.Anything)
}

func TestInBodyService_Create(t *testing.T) {
	trainerID := uuid.New()
	clientID := uuid.New()
	recordID := uuid.New()

	repo := new(RepoMock)
	service := NewInBodyService(newNoopLogger(), repo, new(RecognizerMock), newTestAdapter(t))

	record := models.InBodyRecord{
		ClientID:   clientID,
		MeasuredAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Weight:     ptrF(77.7),
	}
	repo.On("GetClient", mock.Anything, trainerID, clientID).Return(&models.Client{ID: clientID}, nil)
	repo.On("CreateInBodyRecord", mock.Anything, record).Return(recordID, nil)

	id, err := service.Create(context.Background(), trainerID, record)
	require.NoError(t, err)
	assert.Equal(t, recordID, id)
}

func TestInBodyService_Create_MissingDate(t *testing.T) {
	repo := new(RepoMock)
	service := NewInBodyService(newNoopLogger(), repo, new(RecognizerMock), newTestAdapter(t))

	repo.On("GetClient", mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Client{}, nil)

	_, err := service.Create(context.Background(), uuid.New(), models.InBodyRecord{ClientID: uuid.New()})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestInBodyService_List(t *testing.T) {
	trainerID := uuid.New()
	clientID := uuid.New()

	repo := new(RepoMock)
	service := NewInBodyService(newNoopLogger(), repo, new(RecognizerMock), newTestAdapter(t))

	records := []*models.InBodyRecord{
		{ID: uuid.New(), ClientID: clientID},
		{ID: uuid.New(), ClientID: clientID},
	}
	repo.On("GetClient", mock.Anything, trainerID, clientID).Return(&models.Client{ID: clientID}, nil)
	repo.On("ListInBodyRecords", mock.Anything, clientID).Return(records, nil)

	got, err := service.List(context.Background(), trainerID, clientID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
