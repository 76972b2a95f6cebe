package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/payment-reminder-api/internal/domain"
	"github.com/payment-reminder-api/internal/pkg/id"
)

const (
	dueWindow      = 7 * 24 * time.Hour
	remindCooldown = 24 * time.Hour
	sendPacing     = time.Second
)

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateReminderRequest) (*domain.Reminder, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Reminder, error)
	UpdateStatus(ctx context.Context, userID, reminderID, status string) (*domain.Reminder, error)
	Delete(ctx context.Context, userID, reminderID string) error
	// SendManual sends one reminder immediately on behalf of its owner.
	SendManual(ctx context.Context, userID, reminderID string) (*domain.Reminder, error)
	// DispatchDue sends every pending reminder due within the next week that
	// has not been reminded in the past day. Failures are logged and the loop
	// continues; the scheduler interval is the only retry.
	DispatchDue(ctx context.Context) error
}

type reminderStore interface {
	Put(ctx context.Context, rem *domain.Reminder) error
	Get(ctx context.Context, reminderID string) (*domain.Reminder, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Reminder, error)
	Update(ctx context.Context, reminderID string, updates map[string]interface{}) error
	Delete(ctx context.Context, reminderID string) error
	ListDuePending(ctx context.Context, dueBefore, remindedBefore time.Time) ([]domain.Reminder, error)
	RecordSent(ctx context.Context, reminderID string, sentAt time.Time) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type messenger interface {
	Send(ctx context.Context, from, to, text string) (string, error)
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type ServiceDeps struct {
	Reminders reminderStore
	Users     userStore
	WhatsApp  messenger // nil when not configured
	SMS       smsSender // fallback transport, may also be nil
}

type service struct {
	reminders reminderStore
	users     userStore
	whatsapp  messenger
	sms       smsSender
	now       func() time.Time
	pace      time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		reminders: deps.Reminders,
		users:     deps.Users,
		whatsapp:  deps.WhatsApp,
		sms:       deps.SMS,
		now:       time.Now,
		pace:      sendPacing,
	}
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateReminderRequest) (*domain.Reminder, error) {
	now := s.now().UTC()
	rem := &domain.Reminder{
		ReminderID:    id.New(),
		UserID:        userID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Amount:        req.Amount,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
		PaymentStatus: domain.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.reminders.Put(ctx, rem); err != nil {
		return nil, err
	}
	return rem, nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Reminder, error) {
	return s.reminders.ListByUser(ctx, userID)
}

func (s *service) UpdateStatus(ctx context.Context, userID, reminderID, status string) (*domain.Reminder, error) {
	if status != domain.PaymentPending && status != domain.PaymentPaid {
		return nil, fmt.Errorf("payment status must be PENDING or PAID: %w", domain.ErrBadRequest)
	}
	rem, err := s.ownedReminder(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}
	if err := s.reminders.Update(ctx, reminderID, map[string]interface{}{"payment_status": status}); err != nil {
		return nil, err
	}
	rem.PaymentStatus = status
	return rem, nil
}

func (s *service) Delete(ctx context.Context, userID, reminderID string) error {
	if _, err := s.ownedReminder(ctx, userID, reminderID); err != nil {
		return err
	}
	return s.reminders.Delete(ctx, reminderID)
}

func (s *service) SendManual(ctx context.Context, userID, reminderID string) (*domain.Reminder, error) {
	rem, err := s.ownedReminder(ctx, userID, reminderID)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.send(ctx, owner, rem); err != nil {
		return nil, err
	}
	sentAt := s.now().UTC()
	if err := s.reminders.RecordSent(ctx, reminderID, sentAt); err != nil {
		return nil, err
	}
	rem.LastRemindedAt = &sentAt
	rem.ReminderCount++
	return rem, nil
}

func (s *service) DispatchDue(ctx context.Context) error {
	now := s.now().UTC()
	due, err := s.reminders.ListDuePending(ctx, now.Add(dueWindow), now.Add(-remindCooldown))
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}
	slog.Info("dispatching due payment reminders", "count", len(due))

	for i := range due {
		rem := &due[i]
		owner, err := s.users.Get(ctx, rem.UserID)
		if err != nil {
			slog.Warn("skipping reminder, owner lookup failed", "reminder_id", rem.ReminderID, "user_id", rem.UserID, "err", err)
			continue
		}
		if err := s.send(ctx, owner, rem); err != nil {
			slog.Warn("reminder send failed", "reminder_id", rem.ReminderID, "err", err)
			continue
		}
		if err := s.reminders.RecordSent(ctx, rem.ReminderID, s.now().UTC()); err != nil {
			slog.Warn("failed to record reminder send", "reminder_id", rem.ReminderID, "err", err)
		}
		if i < len(due)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.pace):
			}
		}
	}
	return nil
}

func (s *service) send(ctx context.Context, owner *domain.User, rem *domain.Reminder) error {
	text := PaymentReminderText(rem.CustomerName, rem.Amount, rem.DueDate)
	if s.whatsapp != nil {
		_, err := s.whatsapp.Send(ctx, owner.WhatsAppNumber, rem.CustomerPhone, text)
		return err
	}
	if s.sms != nil {
		return s.sms.SendSMS(ctx, rem.CustomerPhone, text)
	}
	return fmt.Errorf("no messaging transport configured")
}

func (s *service) ownedReminder(ctx context.Context, userID, reminderID string) (*domain.Reminder, error) {
	rem, err := s.reminders.Get(ctx, reminderID)
	if err != nil {
		return nil, err
	}
	if rem.UserID != userID {
		// Do not reveal that the reminder exists under another account.
		return nil, fmt.Errorf("reminder not found: %w", domain.ErrNotFound)
	}
	return rem, nil
}

// PaymentReminderText builds the customer-facing reminder message.
func PaymentReminderText(customerName string, amount float64, dueDate string) string {
	var when string
	if t, err := time.Parse("2006-01-02", dueDate); err == nil {
		when = t.Format("2 January 2006")
	} else {
		when = dueDate
	}
	return fmt.Sprintf("Dear %s,\n\n"+
		"This is a friendly reminder about the pending payment of %s due on %s.\n\n"+
		"Please arrange the payment at your earliest convenience.\n\n"+
		"If you have already made the payment, please ignore this message.\n\n"+
		"Thank you for your cooperation.",
		customerName, formatINR(amount), when)
}

// formatINR renders an amount with Indian digit grouping, e.g. ₹1,23,456.50.
func formatINR(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	whole := strconv.FormatFloat(amount, 'f', 2, 64)
	dot := strings.IndexByte(whole, '.')
	intPart, frac := whole[:dot], whole[dot:]

	var b strings.Builder
	n := len(intPart)
	switch {
	case n <= 3:
		b.WriteString(intPart)
	default:
		// Last group of three, then groups of two.
		head := intPart[:n-3]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		b.WriteString(strings.Join(groups, ","))
		b.WriteString(",")
		b.WriteString(intPart[n-3:])
	}
	out := "₹" + b.String() + frac
	if neg {
		return "-" + out
	}
	return out
}
