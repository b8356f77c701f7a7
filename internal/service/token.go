package service

import (
	"crypto/rand"
	"encoding/hex"
)

// newToken выпускает одноразовый случайный токен (подтверждение/отмена).
// Токены выдаются при создании записи и никогда не перевыпускаются.
func newToken() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand на поддерживаемых платформах не падает;
		// но молча выдать предсказуемый токен нельзя.
		panic("token: " + err.Error())
	}
	return hex.EncodeToString(b)
}

// newExternalKey выпускает неизменяемый внешний ключ корреляции сессии.
func newExternalKey() string {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		panic("external key: " + err.Error())
	}
	return "ses_" + hex.EncodeToString(b)
}
