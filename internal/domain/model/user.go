package model

import (
	"time"

	"github.com/pulsedate/backend/internal/domain/enums"
)

type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Birthday     time.Time
	Gender       enums.Gender
	Bio          string
	Photos       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
