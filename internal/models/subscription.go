// Package models содержит доменные структуры: запись подписки, реквизиты оплаты,
// участников VIP группы, результаты анализа и реплики чата.
// Все структуры сериализуются в JSON целиком и хранятся в key-value хранилище.
package models

import "time"

// Plan тарифный план подписки.
type Plan string

const (
	PlanMonthly  Plan = "Monthly"
	PlanYearly   Plan = "Yearly"
	PlanLifetime Plan = "Lifetime"
	PlanNone     Plan = "None"
)

// Subscription представляет запись подписки пользователя.
// Ключом служит Email: в хранилище не может быть двух записей с одним email.
// ExpiryDate равен nil, пока администратор не подтвердил оплату.
type Subscription struct {
	Email      string     `json:"email"`
	IsPaid     bool       `json:"isPaid"`
	IsPending  bool       `json:"isPending"`
	Plan       Plan       `json:"plan"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
	IsAdmin    bool       `json:"isAdmin,omitempty"`
}

// PaymentInfo реквизиты для ручной оплаты через мобильные деньги.
type PaymentInfo struct {
	PhoneNumber string `json:"phoneNumber"`
	AccountName string `json:"accountName"`
}
