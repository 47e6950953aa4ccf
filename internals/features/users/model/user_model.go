package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

type UserModel struct {
	UserId       uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id" json:"user_id"`
	UserName     string    `gorm:"size:80;not null;uniqueIndex;column:user_name" json:"user_name"`
	UserPassword string    `gorm:"size:120;not null;column:user_password" json:"-"`
	UserRole     string    `gorm:"size:16;not null;default:operator;column:user_role" json:"user_role"`

	// Divisi operator; dipakai untuk routing dashboard per divisi.
	UserDivisi   *string `gorm:"size:80;column:user_divisi" json:"user_divisi,omitempty"`
	UserIsActive bool    `gorm:"not null;default:true;column:user_is_active" json:"user_is_active"`

	UserCreatedAt time.Time  `gorm:"column:user_created_at;autoCreateTime" json:"user_created_at"`
	UserUpdatedAt *time.Time `gorm:"column:user_updated_at;autoUpdateTime" json:"user_updated_at,omitempty"`
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) BeforeCreate(tx *gorm.DB) error {
	if m.UserId == uuid.Nil {
		m.UserId = uuid.New()
	}
	return nil
}

type TokenBlacklistModel struct {
	TokenBlacklistId uuid.UUID      `gorm:"type:uuid;primaryKey;column:token_blacklist_id" json:"token_blacklist_id"`
	Token            string         `gorm:"not null;index;column:token" json:"token"`
	ExpiredAt        time.Time      `gorm:"not null;column:expired_at" json:"expired_at"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	DeletedAt        gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deleted_at,omitempty"`
}

func (TokenBlacklistModel) TableName() string { return "token_blacklist" }

func (m *TokenBlacklistModel) BeforeCreate(tx *gorm.DB) error {
	if m.TokenBlacklistId == uuid.Nil {
		m.TokenBlacklistId = uuid.New()
	}
	return nil
}
