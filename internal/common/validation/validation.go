package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"lucky-draw-backend/internal/utils/dataurl"
)

const (
	// Максимальная длина имени аккаунта участника (в рунах)
	MaxHandleLength = 64
)

// ValidateHandle проверяет имя аккаунта, которое вводит участник
func ValidateHandle(handle string) error {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return fmt.Errorf("handle cannot be empty")
	}

	if utf8.RuneCountInString(handle) > MaxHandleLength {
		return fmt.Errorf("handle cannot exceed %d characters", MaxHandleLength)
	}

	for _, r := range handle {
		if unicode.IsControl(r) {
			return fmt.Errorf("handle cannot contain control characters")
		}
	}

	return nil
}

// ValidateProofImage проверяет скриншот депозита. Пустое значение допустимо.
func ValidateProofImage(image string, maxBytes int) error {
	if image == "" {
		return nil
	}

	// Размер оцениваем до декодирования, чтобы не тратить память на большие файлы
	if maxBytes > 0 && dataurl.DecodedLen(image) > maxBytes+2 {
		return fmt.Errorf("proof image cannot exceed %d bytes", maxBytes)
	}

	parsed, err := dataurl.Parse(image)
	if err != nil {
		return fmt.Errorf("proof image must be a base64 data url: %w", err)
	}
	if !strings.HasPrefix(parsed.MediaType, "image/") {
		return fmt.Errorf("proof image must be an image, got %s", parsed.MediaType)
	}
	if maxBytes > 0 && len(parsed.Data) > maxBytes {
		return fmt.Errorf("proof image cannot exceed %d bytes", maxBytes)
	}

	return nil
}

// ValidateLimit проверяет лимит выборки и подставляет значение по умолчанию
func ValidateLimit(limit, max int) (int, error) {
	if limit < 0 {
		return 0, fmt.Errorf("limit cannot be negative")
	}
	if limit == 0 || limit > max {
		return max, nil
	}
	return limit, nil
}
