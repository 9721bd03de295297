package model

import "time"

type Order struct {
	ID          string         `json:"id"`
	CourseID    string         `json:"course_id"`
	UserID      string         `json:"user_id"`
	PaymentInfo map[string]any `json:"payment_info,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
