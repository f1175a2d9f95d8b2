// Package jwt реализует генерацию и парсинг JWT токенов тренера.
//
// Maker определяет интерфейс для создания и проверки токенов с идентификатором
// и email тренера; MakerImpl — реализация на секретном ключе HS256.
package jwt

import (
	"time"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken создает токен для тренера.
	GenerateToken(trainerID, email string) (string, error)
	// ParseToken возвращает *CustomClaims с данными тренера.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
