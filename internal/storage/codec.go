package storage

import (
	"encoding/json"
	"fmt"
)

// RecoverableError повреждённое значение ключа. Владелец ключа сбрасывает его к значению по умолчанию.
type RecoverableError struct {
	Key string
	Err error
}

func (e *RecoverableError) Error() string {
	return fmt.Sprintf("malformed value for key %q: %v", e.Key, e.Err)
}

func (e *RecoverableError) Unwrap() error {
	return e.Err
}

// DecodeJSON разбирает значение ключа в dst. Ошибка разбора возвращается как *RecoverableError.
func DecodeJSON(key, raw string, dst any) error {
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return &RecoverableError{Key: key, Err: err}
	}
	return nil
}

// EncodeJSON сериализует значение для записи под ключ.
func EncodeJSON(v any) (string, error) {
	const op = "storage.EncodeJSON"
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(b), nil
}
