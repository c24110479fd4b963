package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-ehr-server/internal/middleware"
	"hospital-ehr-server/internal/models"
	"hospital-ehr-server/internal/utils"
)

// Messages are listed 20 per page, newest first.
const messagePageSize = 20

// MessageHandler handles patient/provider messaging requests. Every route it
// serves runs behind PartyMiddleware, so the acting party is already resolved
// and verified by the time a handler runs.
type MessageHandler struct {
	DB *gorm.DB
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(db *gorm.DB) *MessageHandler {
	return &MessageHandler{DB: db}
}

// MessageSummary is a listing row: the message plus the counterparty's
// resolved display name.
type MessageSummary struct {
	models.Message
	CounterpartyName string `json:"counterpartyName"`
}

// MessageListing is a page of messages.
type MessageListing struct {
	Messages   []MessageSummary `json:"messages"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	TotalCount int64            `json:"totalCount"`
}

// Inbox handles listing messages received by the acting party.
func (h *MessageHandler) Inbox(c *gin.Context) {
	party, ok := middleware.GetParty(c)
	if !ok {
		utils.InternalServerError(c, "Party not found in context")
		return
	}
	h.listMessages(c, party, "recipient_type = ? AND recipient_id = ?", true)
}

// Sent handles listing messages sent by the acting party.
func (h *MessageHandler) Sent(c *gin.Context) {
	party, ok := middleware.GetParty(c)
	if !ok {
		utils.InternalServerError(c, "Party not found in context")
		return
	}
	h.listMessages(c, party, "sender_type = ? AND sender_id = ?", false)
}

// listMessages produces one page of the inbox or sent listing, newest first.
// Ties on created_at fall back to insertion order.
func (h *MessageHandler) listMessages(c *gin.Context, party *models.Party, condition string, counterpartyIsSender bool) {
	page := parsePage(c.Query("page"))

	var totalCount int64
	if err := h.DB.Model(&models.Message{}).
		Where(condition, party.Ref.Type, party.Ref.ID).
		Count(&totalCount).Error; err != nil {
		utils.InternalServerError(c, "Failed to count messages: "+err.Error())
		return
	}

	var messages []models.Message
	if err := h.DB.
		Where(condition, party.Ref.Type, party.Ref.ID).
		Order("created_at DESC, message_id ASC").
		Limit(messagePageSize).
		Offset((page - 1) * messagePageSize).
		Find(&messages).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch messages: "+err.Error())
		return
	}

	summaries := make([]MessageSummary, 0, len(messages))
	for _, msg := range messages {
		ref := msg.Sender()
		if !counterpartyIsSender {
			ref = msg.Recipient()
		}
		summary := MessageSummary{Message: msg}
		if counterparty, err := models.ResolveParty(h.DB, ref); err == nil {
			summary.CounterpartyName = counterparty.DisplayName
		}
		summaries = append(summaries, summary)
	}

	utils.Success(c, "Messages fetched successfully", MessageListing{
		Messages:   summaries,
		Page:       page,
		PageSize:   messagePageSize,
		TotalCount: totalCount,
	})
}

// ComposeContext is the data needed to render a compose form: the recipient
// directories and, for a reply, the message being replied to.
type ComposeContext struct {
	Patients  []models.Patient  `json:"patients"`
	Providers []models.Provider `json:"providers"`
	ReplyTo   *models.Message   `json:"replyTo,omitempty"`
}

// Compose handles fetching the compose-form data: all active patients and
// providers as potential recipients, plus the reply target when ?reply_to is
// given.
func (h *MessageHandler) Compose(c *gin.Context) {
	var ctx ComposeContext

	if err := h.DB.Where("is_active = ?", true).Order("last_name").Find(&ctx.Patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}
	if err := h.DB.Where("is_active = ?", true).Order("last_name").Find(&ctx.Providers).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch providers: "+err.Error())
		return
	}

	if replyTo := c.Query("reply_to"); replyTo != "" {
		if id, err := strconv.ParseUint(replyTo, 10, 32); err == nil {
			var msg models.Message
			if err := h.DB.First(&msg, "message_id = ?", uint(id)).Error; err == nil {
				ctx.ReplyTo = &msg
			}
		}
	}

	utils.Success(c, "Compose data fetched successfully", ctx)
}

// SendMessageRequest represents the request body for sending a message.
type SendMessageRequest struct {
	RecipientType   string `json:"recipient_type" binding:"required,oneof=patient provider"`
	RecipientID     uint   `json:"recipient_id" binding:"required"`
	Subject         string `json:"subject" binding:"required,max=255"`
	Body            string `json:"body" binding:"required"`
	ParentMessageID *uint  `json:"parent_message_id"`
}

// Send handles creating a new message, either top-level or as a reply.
func (h *MessageHandler) Send(c *gin.Context) {
	party, ok := middleware.GetParty(c)
	if !ok {
		utils.InternalServerError(c, "Party not found in context")
		return
	}

	var req SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	// Verify recipient exists. A bad recipient is a field error the caller
	// can correct, not a hard failure.
	recipientRef := models.PartyRef{Type: models.PartyType(req.RecipientType), ID: req.RecipientID}
	if _, err := models.ResolveParty(h.DB, recipientRef); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.ValidationFailed(c, map[string]string{"recipient_id": "Invalid recipient"})
		} else {
			utils.InternalServerError(c, "Database error verifying recipient: "+err.Error())
		}
		return
	}

	if req.ParentMessageID != nil {
		var parent models.Message
		if err := h.DB.First(&parent, "message_id = ?", *req.ParentMessageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.ValidationFailed(c, map[string]string{"parent_message_id": "Parent message does not exist"})
			} else {
				utils.InternalServerError(c, "Database error verifying parent message: "+err.Error())
			}
			return
		}
	}

	message := models.Message{
		SenderType:      party.Ref.Type,
		SenderID:        party.Ref.ID,
		RecipientType:   recipientRef.Type,
		RecipientID:     recipientRef.ID,
		Subject:         req.Subject,
		Body:            req.Body,
		ParentMessageID: req.ParentMessageID,
	}

	if err := h.DB.Create(&message).Error; err != nil {
		utils.InternalServerError(c, "Failed to send message: "+err.Error())
		return
	}

	utils.Created(c, "Message sent successfully", message)
}

// MessageDetail is the full view of one message: the message itself, the
// resolved participant names, its immediate parent and its direct replies.
// Threading is one level deep in each direction.
type MessageDetail struct {
	models.Message
	SenderName    string           `json:"senderName"`
	RecipientName string           `json:"recipientName"`
	ParentMessage *models.Message  `json:"parentMessage,omitempty"`
	Replies       []MessageSummary `json:"replies"`
}

// Show handles fetching one message. When the acting party is the recipient
// and the message has not been read, the first-open timestamp is recorded.
func (h *MessageHandler) Show(c *gin.Context) {
	party, ok := middleware.GetParty(c)
	if !ok {
		utils.InternalServerError(c, "Party not found in context")
		return
	}

	message, found := h.fetchMessage(c)
	if !found {
		return
	}

	isSender := message.Sender() == party.Ref
	isRecipient := message.Recipient() == party.Ref
	if !isSender && !isRecipient {
		utils.Forbidden(c, "Unauthorized access to this message")
		return
	}

	if isRecipient {
		if err := message.MarkAsRead(h.DB); err != nil {
			utils.InternalServerError(c, "Failed to mark message as read: "+err.Error())
			return
		}
	}

	detail := MessageDetail{Message: *message, Replies: []MessageSummary{}}
	if sender, err := models.ResolveParty(h.DB, message.Sender()); err == nil {
		detail.SenderName = sender.DisplayName
	}
	if recipient, err := models.ResolveParty(h.DB, message.Recipient()); err == nil {
		detail.RecipientName = recipient.DisplayName
	}

	if message.ParentMessageID != nil {
		var parent models.Message
		if err := h.DB.First(&parent, "message_id = ?", *message.ParentMessageID).Error; err == nil {
			detail.ParentMessage = &parent
		}
	}

	var replies []models.Message
	if err := h.DB.
		Where("parent_message_id = ?", message.MessageID).
		Order("created_at ASC, message_id ASC").
		Find(&replies).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch replies: "+err.Error())
		return
	}
	for _, reply := range replies {
		summary := MessageSummary{Message: reply}
		if sender, err := models.ResolveParty(h.DB, reply.Sender()); err == nil {
			summary.CounterpartyName = sender.DisplayName
		}
		detail.Replies = append(detail.Replies, summary)
	}

	utils.Success(c, "Message fetched successfully", detail)
}

// Delete handles permanently removing a message. Only the original sender may
// delete; replies to the deleted message survive as detached top-level
// messages.
func (h *MessageHandler) Delete(c *gin.Context) {
	party, ok := middleware.GetParty(c)
	if !ok {
		utils.InternalServerError(c, "Party not found in context")
		return
	}

	message, found := h.fetchMessage(c)
	if !found {
		return
	}

	if message.Sender() != party.Ref {
		utils.Forbidden(c, "You can only delete messages you sent")
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		// Detach replies before removing the parent so they remain
		// independently fetchable.
		if err := tx.Model(&models.Message{}).
			Where("parent_message_id = ?", message.MessageID).
			Update("parent_message_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Message{}, "message_id = ?", message.MessageID).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to delete message: "+err.Error())
		return
	}

	utils.Success(c, "Message deleted successfully", nil)
}

// fetchMessage loads the message named by the :messageId path parameter,
// writing the error response itself when the id is malformed or unknown.
func (h *MessageHandler) fetchMessage(c *gin.Context) (*models.Message, bool) {
	id, err := strconv.ParseUint(c.Param("messageId"), 10, 32)
	if err != nil {
		utils.BadRequest(c, "Invalid message ID format")
		return nil, false
	}

	var message models.Message
	if err := h.DB.First(&message, "message_id = ?", uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Message not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &message, true
}

// parsePage normalizes the ?page query parameter to a 1-based page number.
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
