// Package apperrors определяет доменные ошибки-сентинелы приложения.
// Слои сервисов оборачивают их через fmt.Errorf("%s: %w", ...), обработчики
// проверяют принадлежность через errors.Is и выбирают HTTP-статус.
package apperrors

import "errors"

var (
	// ErrValidation некорректные входные данные; отклоняется до любого
	// обращения к хранилищу.
	ErrValidation = errors.New("validation failed")

	// ErrActivePackageExists нарушение бизнес-правила: у клиента уже есть
	// активный пакет.
	ErrActivePackageExists = errors.New("client already has an active package")

	// ErrPackageNotFound пакет не найден в хранилище.
	ErrPackageNotFound = errors.New("package not found")

	// ErrSessionNotFound тренировка не найдена в хранилище.
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidTransition попытка перевести тренировку из терминального
	// статуса; терминальные статусы покидаются только удалением.
	ErrInvalidTransition = errors.New("invalid session status transition")

	// ErrLedger мутация учёта пакета не удалась; вызвавший её переход
	// статуса считается несостоявшимся и может быть безопасно повторён.
	ErrLedger = errors.New("package ledger update failed")

	// ErrPackageVanished пакет исчез между чтением тренировки и возвратом
	// кредита; тренировка при этом не удаляется.
	ErrPackageVanished = errors.New("referenced package no longer exists")

	// ErrBatchInsert пакетная вставка повторяющейся серии не зафиксирована;
	// ни одна строка серии не сохранена, всю серию можно повторить.
	ErrBatchInsert = errors.New("recurring batch insert failed")

	// ErrTrainerNotFound тренер не найден (в том числе по ICS-токену).
	ErrTrainerNotFound = errors.New("trainer not found")

	// ErrTrainerExists тренер с таким email уже зарегистрирован.
	ErrTrainerExists = errors.New("trainer already exists")

	// ErrInvalidCredentials неверная пара email/пароль. Несуществующий email
	// и неверный пароль для вызывающего неразличимы.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrClientNotFound клиент не найден.
	ErrClientNotFound = errors.New("client not found")
)
