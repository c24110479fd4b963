package models

import (
	"time"

	"gorm.io/gorm"
)

// Message represents a message between two parties (patient or provider on
// either end). Sender and recipient are polymorphic: a (type, id) pair rather
// than a foreign key into a single users table.
type Message struct {
	MessageID       uint       `gorm:"primaryKey;column:message_id" json:"messageId"`
	SenderType      PartyType  `gorm:"size:20;not null;index:idx_messages_sender" json:"senderType"`
	SenderID        uint       `gorm:"not null;index:idx_messages_sender" json:"senderId"`
	RecipientType   PartyType  `gorm:"size:20;not null;index:idx_messages_recipient" json:"recipientType"`
	RecipientID     uint       `gorm:"not null;index:idx_messages_recipient" json:"recipientId"`
	Subject         string     `gorm:"size:255;not null" json:"subject"`
	Body            string     `gorm:"type:text;not null" json:"body"`
	IsRead          bool       `gorm:"default:false;index" json:"isRead"`
	ReadAt          *time.Time `json:"readAt,omitempty"`
	ParentMessageID *uint      `gorm:"index" json:"parentMessageId,omitempty"`
	CreatedAt       time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Sender returns the tagged reference to the sending party.
func (m *Message) Sender() PartyRef {
	return PartyRef{Type: m.SenderType, ID: m.SenderID}
}

// Recipient returns the tagged reference to the receiving party.
func (m *Message) Recipient() PartyRef {
	return PartyRef{Type: m.RecipientType, ID: m.RecipientID}
}

// MarkAsRead records the first open of the message by its recipient. The
// transition happens at most once: the read_at timestamp of the first call
// survives all later calls. The is_read guard in the WHERE clause makes two
// racing calls converge on the same stored state.
func (m *Message) MarkAsRead(db *gorm.DB) error {
	if m.IsRead {
		return nil
	}
	now := time.Now()
	result := db.Model(&Message{}).
		Where("message_id = ? AND is_read = ?", m.MessageID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		m.IsRead = true
		m.ReadAt = &now
		return nil
	}
	// Lost the race to a concurrent open; reload the stored timestamp.
	return db.First(m, "message_id = ?", m.MessageID).Error
}
