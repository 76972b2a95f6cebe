package reminder

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/payment-reminder-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockReminderStore struct{ mock.Mock }

func (m *mockReminderStore) Put(ctx context.Context, rem *domain.Reminder) error {
	args := m.Called(ctx, rem)
	return args.Error(0)
}

func (m *mockReminderStore) Get(ctx context.Context, reminderID string) (*domain.Reminder, error) {
	args := m.Called(ctx, reminderID)
	if r := args.Get(0); r != nil {
		return r.(*domain.Reminder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReminderStore) ListByUser(ctx context.Context, userID string) ([]domain.Reminder, error) {
	args := m.Called(ctx, userID)
	if r := args.Get(0); r != nil {
		return r.([]domain.Reminder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReminderStore) Update(ctx context.Context, reminderID string, updates map[string]interface{}) error {
	args := m.Called(ctx, reminderID, updates)
	return args.Error(0)
}

func (m *mockReminderStore) Delete(ctx context.Context, reminderID string) error {
	args := m.Called(ctx, reminderID)
	return args.Error(0)
}

func (m *mockReminderStore) ListDuePending(ctx context.Context, dueBefore, remindedBefore time.Time) ([]domain.Reminder, error) {
	args := m.Called(ctx, dueBefore, remindedBefore)
	if r := args.Get(0); r != nil {
		return r.([]domain.Reminder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReminderStore) RecordSent(ctx context.Context, reminderID string, sentAt time.Time) error {
	args := m.Called(ctx, reminderID, sentAt)
	return args.Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMessenger struct{ mock.Mock }

func (m *mockMessenger) Send(ctx context.Context, from, to, text string) (string, error) {
	args := m.Called(ctx, from, to, text)
	return args.String(0), args.Error(1)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) SendSMS(ctx context.Context, to, message string) error {
	args := m.Called(ctx, to, message)
	return args.Error(0)
}

func newTestService(rems *mockReminderStore, users *mockUserStore, wa messenger, sms smsSender) *service {
	svc := NewService(ServiceDeps{Reminders: rems, Users: users, WhatsApp: wa, SMS: sms}).(*service)
	svc.pace = 0
	return svc
}

func TestCreateDefaultsToPending(t *testing.T) {
	rems := new(mockReminderStore)
	rems.On("Put", mock.Anything, mock.AnythingOfType("*domain.Reminder")).Return(nil)

	svc := newTestService(rems, new(mockUserStore), nil, nil)
	rem, err := svc.Create(context.Background(), "usr_1", domain.CreateReminderRequest{
		CustomerName:  "  Ravi Kumar ",
		CustomerPhone: "9876543210",
		Amount:        1500,
		DueDate:       "2026-09-15",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, rem.PaymentStatus)
	assert.Equal(t, "Ravi Kumar", rem.CustomerName)
	assert.Equal(t, "usr_1", rem.UserID)
	assert.NotEmpty(t, rem.ReminderID)
	assert.Zero(t, rem.ReminderCount)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(new(mockReminderStore), new(mockUserStore), nil, nil)
	_, err := svc.UpdateStatus(context.Background(), "usr_1", "rem_1", "SETTLED")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUpdateStatusForeignReminderHidden(t *testing.T) {
	rems := new(mockReminderStore)
	rems.On("Get", mock.Anything, "rem_1").Return(&domain.Reminder{ReminderID: "rem_1", UserID: "usr_other"}, nil)

	svc := newTestService(rems, new(mockUserStore), nil, nil)
	_, err := svc.UpdateStatus(context.Background(), "usr_1", "rem_1", domain.PaymentPaid)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	rems.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatusMarksPaid(t *testing.T) {
	rems := new(mockReminderStore)
	rems.On("Get", mock.Anything, "rem_1").Return(&domain.Reminder{ReminderID: "rem_1", UserID: "usr_1", PaymentStatus: domain.PaymentPending}, nil)
	rems.On("Update", mock.Anything, "rem_1", map[string]interface{}{"payment_status": domain.PaymentPaid}).Return(nil)

	svc := newTestService(rems, new(mockUserStore), nil, nil)
	rem, err := svc.UpdateStatus(context.Background(), "usr_1", "rem_1", domain.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, rem.PaymentStatus)
	rems.AssertExpectations(t)
}

func TestSendManualRecordsDispatch(t *testing.T) {
	rems := new(mockReminderStore)
	users := new(mockUserStore)
	wa := new(mockMessenger)

	rems.On("Get", mock.Anything, "rem_1").Return(&domain.Reminder{
		ReminderID:    "rem_1",
		UserID:        "usr_1",
		CustomerName:  "Ravi",
		CustomerPhone: "9876543210",
		Amount:        1500,
		DueDate:       "2026-09-15",
		PaymentStatus: domain.PaymentPending,
	}, nil)
	users.On("Get", mock.Anything, "usr_1").Return(&domain.User{UserID: "usr_1", WhatsAppNumber: "9000000001"}, nil)
	wa.On("Send", mock.Anything, "9000000001", "9876543210", mock.MatchedBy(func(text string) bool {
		return strings.Contains(text, "Dear Ravi") && strings.Contains(text, "due on 15 September 2026")
	})).Return("wamid.1", nil)
	rems.On("RecordSent", mock.Anything, "rem_1", mock.AnythingOfType("time.Time")).Return(nil)

	svc := newTestService(rems, users, wa, nil)
	rem, err := svc.SendManual(context.Background(), "usr_1", "rem_1")
	require.NoError(t, err)
	assert.Equal(t, 1, rem.ReminderCount)
	require.NotNil(t, rem.LastRemindedAt)
	rems.AssertExpectations(t)
	wa.AssertExpectations(t)
}

func TestSendManualTransportFailure(t *testing.T) {
	rems := new(mockReminderStore)
	users := new(mockUserStore)
	wa := new(mockMessenger)

	rems.On("Get", mock.Anything, "rem_1").Return(&domain.Reminder{ReminderID: "rem_1", UserID: "usr_1", DueDate: "2026-09-15"}, nil)
	users.On("Get", mock.Anything, "usr_1").Return(&domain.User{UserID: "usr_1"}, nil)
	wa.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("api down"))

	svc := newTestService(rems, users, wa, nil)
	_, err := svc.SendManual(context.Background(), "usr_1", "rem_1")
	assert.Error(t, err)
	rems.AssertNotCalled(t, "RecordSent", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendManualFallsBackToSMS(t *testing.T) {
	rems := new(mockReminderStore)
	users := new(mockUserStore)
	sms := new(mockSMSSender)

	rems.On("Get", mock.Anything, "rem_1").Return(&domain.Reminder{ReminderID: "rem_1", UserID: "usr_1", CustomerPhone: "9876543210", DueDate: "2026-09-15"}, nil)
	users.On("Get", mock.Anything, "usr_1").Return(&domain.User{UserID: "usr_1"}, nil)
	sms.On("SendSMS", mock.Anything, "9876543210", mock.AnythingOfType("string")).Return(nil)
	rems.On("RecordSent", mock.Anything, "rem_1", mock.AnythingOfType("time.Time")).Return(nil)

	svc := newTestService(rems, users, nil, sms)
	_, err := svc.SendManual(context.Background(), "usr_1", "rem_1")
	require.NoError(t, err)
	sms.AssertExpectations(t)
}

func TestDispatchDueContinuesPastFailures(t *testing.T) {
	rems := new(mockReminderStore)
	users := new(mockUserStore)
	wa := new(mockMessenger)

	due := []domain.Reminder{
		{ReminderID: "rem_1", UserID: "usr_1", CustomerPhone: "111", DueDate: "2026-09-01"},
		{ReminderID: "rem_2", UserID: "usr_1", CustomerPhone: "222", DueDate: "2026-09-02"},
	}
	rems.On("ListDuePending", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(due, nil)
	users.On("Get", mock.Anything, "usr_1").Return(&domain.User{UserID: "usr_1", WhatsAppNumber: "9000000001"}, nil)
	wa.On("Send", mock.Anything, "9000000001", "111", mock.Anything).Return("", errors.New("api down")).Once()
	wa.On("Send", mock.Anything, "9000000001", "222", mock.Anything).Return("wamid.2", nil).Once()
	rems.On("RecordSent", mock.Anything, "rem_2", mock.AnythingOfType("time.Time")).Return(nil)

	svc := newTestService(rems, users, wa, nil)
	require.NoError(t, svc.DispatchDue(context.Background()))
	rems.AssertNotCalled(t, "RecordSent", mock.Anything, "rem_1", mock.Anything)
	wa.AssertExpectations(t)
}

func TestDispatchDueEmpty(t *testing.T) {
	rems := new(mockReminderStore)
	rems.On("ListDuePending", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return([]domain.Reminder{}, nil)

	svc := newTestService(rems, new(mockUserStore), nil, nil)
	require.NoError(t, svc.DispatchDue(context.Background()))
}

func TestPaymentReminderTextFormatsINR(t *testing.T) {
	text := PaymentReminderText("Ravi", 123456.5, "2026-09-15")
	assert.Contains(t, text, "₹1,23,456.50")
	assert.Contains(t, text, "15 September 2026")

	assert.Contains(t, PaymentReminderText("Ravi", 500, "2026-09-15"), "₹500.00")
	assert.Contains(t, PaymentReminderText("Ravi", 1500, "2026-09-15"), "₹1,500.00")
}
