package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/SebasQuintero99/LandingPageMiAbogada/internal/repository"
)

type appointmentRepository struct {
	db *sqlx.DB
}

type contactRepository struct {
	db *sqlx.DB
}

type settingRepository struct {
	db *sqlx.DB
}

type userRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewContactRepository(db *sqlx.DB) repository.ContactRepository {
	return &contactRepository{db: db}
}

func NewSettingRepository(db *sqlx.DB) repository.SettingRepository {
	return &settingRepository{db: db}
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}
