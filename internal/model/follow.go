package model

import "time"

// Follow 关注关系（A 关注 B），(follower_id, followee_id) 唯一
type Follow struct {
	ID         uint      `gorm:"primaryKey"`
	FollowerID uint      `gorm:"not null;index:idx_follow_follower;index:idx_follow_pair,unique"`
	FolloweeID uint      `gorm:"not null;index:idx_follow_followee;index:idx_follow_pair,unique"`
	Follower   User      `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE;"`
	Followee   User      `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE;"`
	CreatedAt  time.Time
}

func (Follow) TableName() string { return "follows" }
