package domain

import "time"

const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
)

// Reminder is a payment reminder owned by a user, dispatched to a customer
// over WhatsApp (or SMS when WhatsApp is not configured).
type Reminder struct {
	ReminderID     string     `json:"id" dynamodbav:"reminder_id"`
	UserID         string     `json:"user_id" dynamodbav:"user_id"`
	CustomerName   string     `json:"customer_name" dynamodbav:"customer_name"`
	CustomerPhone  string     `json:"customer_phone" dynamodbav:"customer_phone"`
	Amount         float64    `json:"amount" dynamodbav:"amount"`
	DueDate        string     `json:"due_date" dynamodbav:"due_date"` // YYYY-MM-DD
	Notes          string     `json:"notes,omitempty" dynamodbav:"notes"`
	PaymentStatus  string     `json:"payment_status" dynamodbav:"payment_status"`
	LastRemindedAt *time.Time `json:"last_reminded_at,omitempty" dynamodbav:"last_reminded_at"`
	ReminderCount  int        `json:"reminder_count" dynamodbav:"reminder_count"`
	CreatedAt      time.Time  `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" dynamodbav:"updated_at"`
}

type CreateReminderRequest struct {
	CustomerName  string  `json:"customer_name" validate:"required"`
	CustomerPhone string  `json:"customer_phone" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	DueDate       string  `json:"due_date" validate:"required,datetime=2006-01-02"`
	Notes         string  `json:"notes"`
}
