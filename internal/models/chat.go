package models

// ChatRole автор реплики в чате с ассистентом.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "model"
)

// ChatTurn одна реплика чата.
type ChatTurn struct {
	Role ChatRole `json:"role" validate:"required,oneof=user model"`
	Text string   `json:"text" validate:"required"`
}
