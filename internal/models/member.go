package models

// Member участник VIP группы сигналов.
// Уникальность email не проверяется.
type Member struct {
	ID       string `json:"id"`       // Непрозрачный уникальный идентификатор
	Email    string `json:"email"`    // Электронная почта участника
	JoinedAt string `json:"joinedAt"` // Дата добавления в формате 2006-01-02
}
