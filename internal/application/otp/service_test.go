package otp

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/payment-reminder-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOTPStore struct{ mock.Mock }

func (m *mockOTPStore) Put(ctx context.Context, rec *domain.OTPRecord) error {
	return m.Called(ctx, rec).Error(0)
}
func (m *mockOTPStore) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	args := m.Called(ctx, email)
	if rec, _ := args.Get(0).(*domain.OTPRecord); rec != nil {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOTPStore) Delete(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockOTPStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(to, subject, textBody, htmlBody string) error {
	return m.Called(to, subject, textBody, htmlBody).Error(0)
}

type mockTicketIssuer struct{ mock.Mock }

func (m *mockTicketIssuer) Issue(email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}

// --- builder ---

func newService(os *mockOTPStore, us *mockUserStore, ml *mockMailer, ti *mockTicketIssuer) Service {
	return NewService(ServiceDeps{
		OTPRepo:  os,
		UserRepo: us,
		Mailer:   ml,
		Tickets:  ti,
		Expiry:   10 * time.Minute,
	})
}

// --- Request ---

func TestRequest_EmailAlreadyRegistered(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1"}, nil)

	svc := newService(nil, us, nil, nil)
	err := svc.Request(context.Background(), "a@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestRequest_NormalizesEmailAndStoresRecord(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)
	var stored *domain.OTPRecord
	os.On("Put", mock.Anything, mock.AnythingOfType("*domain.OTPRecord")).Run(func(args mock.Arguments) {
		stored = args.Get(1).(*domain.OTPRecord)
	}).Return(nil)
	ml.On("Send", "a@x.com", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newService(os, us, ml, nil)
	err := svc.Request(context.Background(), "  A@X.com ")

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "a@x.com", stored.Email)
	assert.Len(t, stored.Code, 6)
	n, convErr := strconv.Atoi(stored.Code)
	require.NoError(t, convErr)
	assert.GreaterOrEqual(t, n, 100000)
	assert.LessOrEqual(t, n, 999999)
	assert.Greater(t, stored.ExpiresAt, time.Now().Unix())
	ml.AssertExpectations(t)
}

func TestRequest_MailFailureSurfaces(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}
	ml := &mockMailer{}

	us.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)
	os.On("Put", mock.Anything, mock.Anything).Return(nil)
	ml.On("Send", "a@x.com", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	svc := newService(os, us, ml, nil)
	err := svc.Request(context.Background(), "a@x.com")

	require.Error(t, err)
	assert.ErrorContains(t, err, "send OTP email")
}

// --- Verify ---

func TestVerify_NoRecord_GenericFailure(t *testing.T) {
	os := &mockOTPStore{}
	os.On("Get", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(os, nil, nil, nil)
	_, err := svc.Verify(context.Background(), "a@x.com", "000000")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	assert.ErrorContains(t, err, "invalid or expired OTP")
}

func TestVerify_WrongCode_SameGenericFailure(t *testing.T) {
	os := &mockOTPStore{}
	os.On("Get", mock.Anything, "a@x.com").Return(&domain.OTPRecord{
		Email:     "a@x.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	}, nil)

	svc := newService(os, nil, nil, nil)
	_, err := svc.Verify(context.Background(), "a@x.com", "654321")

	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid or expired OTP")
	// The record is not consumed on a failed attempt.
	os.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestVerify_ExpiredCode_SameGenericFailure(t *testing.T) {
	os := &mockOTPStore{}
	os.On("Get", mock.Anything, "a@x.com").Return(&domain.OTPRecord{
		Email:     "a@x.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(-1 * time.Minute).Unix(),
	}, nil)

	svc := newService(os, nil, nil, nil)
	_, err := svc.Verify(context.Background(), "a@x.com", "123456")

	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid or expired OTP")
}

func TestVerify_Success_ConsumesRecordAndIssuesTicket(t *testing.T) {
	os := &mockOTPStore{}
	ti := &mockTicketIssuer{}
	os.On("Get", mock.Anything, "a@x.com").Return(&domain.OTPRecord{
		Email:     "a@x.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	}, nil)
	os.On("Delete", mock.Anything, "a@x.com").Return(nil)
	ti.On("Issue", "a@x.com").Return("ticket-abc", nil)

	svc := newService(os, nil, nil, ti)
	ticket, err := svc.Verify(context.Background(), " A@X.com ", " 123456 ")

	require.NoError(t, err)
	assert.Equal(t, "ticket-abc", ticket)
	os.AssertExpectations(t)
}

func TestVerify_SecondAttemptAfterSuccessFails(t *testing.T) {
	os := &mockOTPStore{}
	ti := &mockTicketIssuer{}
	rec := &domain.OTPRecord{
		Email:     "a@x.com",
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	}
	os.On("Get", mock.Anything, "a@x.com").Return(rec, nil).Once()
	os.On("Delete", mock.Anything, "a@x.com").Return(nil).Once()
	ti.On("Issue", "a@x.com").Return("ticket-abc", nil)
	// Consumed record: the second lookup finds nothing.
	os.On("Get", mock.Anything, "a@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(os, nil, nil, ti)
	_, err := svc.Verify(context.Background(), "a@x.com", "123456")
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), "a@x.com", "123456")
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid or expired OTP")
}

// --- SweepExpired ---

func TestSweepExpired_ReturnsCount(t *testing.T) {
	os := &mockOTPStore{}
	os.On("DeleteExpired", mock.Anything, mock.AnythingOfType("time.Time")).Return(3, nil)

	svc := newService(os, nil, nil, nil)
	n, err := svc.SweepExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
