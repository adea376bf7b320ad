package model

import "time"

// PersonalAccessToken backs one issued bearer token. The JWT carries TokenID as
// its jti; deleting the row revokes that token and no other.
type PersonalAccessToken struct {
	ID         uint       `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     uint       `gorm:"column:user_id;not null;index"`
	Name       string     `gorm:"column:name;type:varchar(255);not null"`
	TokenID    string     `gorm:"column:token_id;type:varchar(64);uniqueIndex;not null"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null;index"`
	LastUsedAt *time.Time `gorm:"column:last_used_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE"`
}

func (PersonalAccessToken) TableName() string {
	return "personal_access_tokens"
}
