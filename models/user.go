package models

type User struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Username       string `gorm:"uniqueIndex;not null;size:150" json:"username"`
	HashedPassword string `gorm:"not null" json:"-"`
}
