package model

import "time"

// PreviewLength 帖子字符串表示截取的字符数
const PreviewLength = 15

// Post 帖子，作者创建后不可变更
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"index:idx_post_created" json:"created_at"`
	UpdatedAt time.Time `json:"-"`
	Image     string    `gorm:"type:varchar(255)" json:"image,omitempty"`
	AuthorID  uint      `gorm:"index:idx_post_author;not null" json:"author_id"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE;" json:"author"`
	GroupID   *uint     `gorm:"index:idx_post_group" json:"group_id,omitempty"`
	Group     *Group    `gorm:"constraint:OnDelete:SET NULL;" json:"group,omitempty"`
}

func (Post) TableName() string { return "posts" }

func (p Post) String() string {
	r := []rune(p.Text)
	if len(r) > PreviewLength {
		r = r[:PreviewLength]
	}
	return string(r)
}
