package model

import "time"

// PushSubscription holds the information for one of a server's registered devices.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey;size:512" json:"endpoint"`
	P256DH    string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth"`
	ServerID  string    `gorm:"size:64;index;not null" json:"serverId"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}
