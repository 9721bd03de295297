package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"lms-backend/internal/model"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, o model.Order) error {
	paymentInfo := o.PaymentInfo
	if paymentInfo == nil {
		paymentInfo = map[string]any{}
	}
	payload, err := json.Marshal(paymentInfo)
	if err != nil {
		return fmt.Errorf("marshal payment info: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO orders (id, course_id, user_id, payment_info, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.CourseID, o.UserID, payload, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (r *OrderRepository) List(ctx context.Context) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, course_id, user_id, payment_info, created_at FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		var (
			o       model.Order
			payload []byte
		)
		if err := rows.Scan(&o.ID, &o.CourseID, &o.UserID, &payload, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(payload, &o.PaymentInfo); err != nil {
			return nil, fmt.Errorf("decode payment info: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}
