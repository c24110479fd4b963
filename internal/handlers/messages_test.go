package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-ehr-server/internal/models"
)

func messagesPath(ref models.PartyRef) string {
	return fmt.Sprintf("/api/v1/%s/%d/messages", ref.Type, ref.ID)
}

func sendBody(recipient models.PartyRef, subject, body string) map[string]interface{} {
	return map[string]interface{}{
		"recipient_type": string(recipient.Type),
		"recipient_id":   recipient.ID,
		"subject":        subject,
		"body":           body,
	}
}

func TestSendMessageDefaults(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	provider := env.createProvider(t, "Rena", "Okafor")

	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}
	providerRef := models.PartyRef{Type: models.PartyProvider, ID: provider.ProviderID}
	token := env.tokenForParty(t, models.RolePatient, patientRef)

	rec := env.request(t, http.MethodPost, messagesPath(patientRef), token,
		sendBody(providerRef, "Refill request", "Could I get a refill?"))
	require.Equal(t, http.StatusCreated, rec.Code)

	var msg models.Message
	decodeData(t, rec, &msg)
	assert.Equal(t, models.PartyPatient, msg.SenderType)
	assert.Equal(t, patient.PatientID, msg.SenderID)
	assert.Equal(t, models.PartyProvider, msg.RecipientType)
	assert.Equal(t, provider.ProviderID, msg.RecipientID)
	assert.False(t, msg.IsRead)
	assert.Nil(t, msg.ReadAt)
	assert.Nil(t, msg.ParentMessageID)
}

func TestSendMessageInvalidRecipient(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}
	token := env.tokenForParty(t, models.RolePatient, patientRef)

	rec := env.request(t, http.MethodPost, messagesPath(patientRef), token,
		sendBody(models.PartyRef{Type: models.PartyProvider, ID: 9999}, "Hello", "Anyone there?"))

	fields := decodeFields(t, rec)
	assert.Equal(t, "Invalid recipient", fields["recipient_id"])

	// Nothing was persisted.
	var count int64
	require.NoError(t, env.DB.Model(&models.Message{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSendMessageUnknownParentRejected(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	provider := env.createProvider(t, "Rena", "Okafor")
	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}
	token := env.tokenForParty(t, models.RolePatient, patientRef)

	body := sendBody(models.PartyRef{Type: models.PartyProvider, ID: provider.ProviderID}, "Re: nothing", "reply")
	body["parent_message_id"] = 12345

	rec := env.request(t, http.MethodPost, messagesPath(patientRef), token, body)
	fields := decodeFields(t, rec)
	assert.Contains(t, fields, "parent_message_id")
}

func TestSendMessageToDeactivatedRecipient(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	provider := env.createProvider(t, "Rena", "Okafor")
	require.NoError(t, env.DB.Model(provider).Update("is_active", false).Error)

	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}
	token := env.tokenForParty(t, models.RolePatient, patientRef)

	// Deactivation hides a party from the compose directory but does not
	// break resolution of an explicit reference.
	rec := env.request(t, http.MethodPost, messagesPath(patientRef), token,
		sendBody(models.PartyRef{Type: models.PartyProvider, ID: provider.ProviderID}, "Follow-up", "Checking in"))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestShowMarksReadOnceForRecipient(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	provider := env.createProvider(t, "Rena", "Okafor")
	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}
	providerRef := models.PartyRef{Type: models.PartyProvider, ID: provider.ProviderID}

	msg := models.Message{
		SenderType: patientRef.Type, SenderID: patientRef.ID,
		RecipientType: providerRef.Type, RecipientID: providerRef.ID,
		Subject: "Results", Body: "Lab results attached",
	}
	require.NoError(t, env.DB.Create(&msg).Error)

	providerToken := env.tokenForParty(t, models.RoleProvider, providerRef)
	url := fmt.Sprintf("%s/%d", messagesPath(providerRef), msg.MessageID)

	rec := env.request(t, http.MethodGet, url, providerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var first models.Message
	decodeData(t, rec, &first)
	require.True(t, first.IsRead)
	require.NotNil(t, first.ReadAt)

	// A second open keeps the original timestamp.
	rec = env.request(t, http.MethodGet, url, providerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var second models.Message
	decodeData(t, rec, &second)
	require.NotNil(t, second.ReadAt)
	assert.True(t, first.ReadAt.Equal(*second.ReadAt))
}

func TestShowAsSenderDoesNotMarkRead(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	provider := env.createProvider(t, "Rena", "Okafor")
	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}
	providerRef := models.PartyRef{Type: models.PartyProvider, ID: provider.ProviderID}

	msg := models.Message{
		SenderType: patientRef.Type, SenderID: patientRef.ID,
		RecipientType: providerRef.Type, RecipientID: providerRef.ID,
		Subject: "Question", Body: "Is the dosage right?",
	}
	require.NoError(t, env.DB.Create(&msg).Error)

	token := env.tokenForParty(t, models.RolePatient, patientRef)
	url := fmt.Sprintf("%s/%d", messagesPath(patientRef), msg.MessageID)
	rec := env.request(t, http.MethodGet, url, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stored models.Message
	require.NoError(t, env.DB.First(&stored, "message_id = ?", msg.MessageID).Error)
	assert.False(t, stored.IsRead)
	assert.Nil(t, stored.ReadAt)
}

func TestShowForbiddenForUninvolvedParty(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	provider := env.createProvider(t, "Rena", "Okafor")
	bystander := env.createPatient(t, "Omar", "Haddad")

	msg := models.Message{
		SenderType: models.PartyPatient, SenderID: patient.PatientID,
		RecipientType: models.PartyProvider, RecipientID: provider.ProviderID,
		Subject: "Private", Body: "Between us",
	}
	require.NoError(t, env.DB.Create(&msg).Error)

	bystanderRef := models.PartyRef{Type: models.PartyPatient, ID: bystander.PatientID}
	token := env.tokenForParty(t, models.RolePatient, bystanderRef)
	url := fmt.Sprintf("%s/%d", messagesPath(bystanderRef), msg.MessageID)

	rec := env.request(t, http.MethodGet, url, token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestShowIncludesThread(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	provider := env.createProvider(t, "Rena", "Okafor")
	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}
	providerRef := models.PartyRef{Type: models.PartyProvider, ID: provider.ProviderID}

	parent := models.Message{
		SenderType: patientRef.Type, SenderID: patientRef.ID,
		RecipientType: providerRef.Type, RecipientID: providerRef.ID,
		Subject: "Symptoms", Body: "Headaches for a week",
	}
	require.NoError(t, env.DB.Create(&parent).Error)

	reply := models.Message{
		SenderType: providerRef.Type, SenderID: providerRef.ID,
		RecipientType: patientRef.Type, RecipientID: patientRef.ID,
		Subject: "Re: Symptoms", Body: "Please book a visit",
		ParentMessageID: &parent.MessageID,
	}
	require.NoError(t, env.DB.Create(&reply).Error)

	token := env.tokenForParty(t, models.RolePatient, patientRef)

	var detail struct {
		models.Message
		SenderName    string `json:"senderName"`
		RecipientName string `json:"recipientName"`
		ParentMessage *models.Message `json:"parentMessage"`
		Replies       []struct {
			models.Message
			CounterpartyName string `json:"counterpartyName"`
		} `json:"replies"`
	}

	rec := env.request(t, http.MethodGet,
		fmt.Sprintf("%s/%d", messagesPath(patientRef), parent.MessageID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &detail)

	assert.Equal(t, "Alice Nguyen", detail.SenderName)
	assert.Equal(t, "Dr. Rena Okafor", detail.RecipientName)
	assert.Nil(t, detail.ParentMessage)
	require.Len(t, detail.Replies, 1)
	assert.Equal(t, reply.MessageID, detail.Replies[0].MessageID)
	assert.Equal(t, "Dr. Rena Okafor", detail.Replies[0].CounterpartyName)

	// The reply's detail view carries the parent.
	rec = env.request(t, http.MethodGet,
		fmt.Sprintf("%s/%d", messagesPath(patientRef), reply.MessageID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &detail)
	require.NotNil(t, detail.ParentMessage)
	assert.Equal(t, parent.MessageID, detail.ParentMessage.MessageID)
}

func TestDeleteDetachesReplies(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	provider := env.createProvider(t, "Rena", "Okafor")
	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}
	providerRef := models.PartyRef{Type: models.PartyProvider, ID: provider.ProviderID}

	parent := models.Message{
		SenderType: patientRef.Type, SenderID: patientRef.ID,
		RecipientType: providerRef.Type, RecipientID: providerRef.ID,
		Subject: "Original", Body: "First message",
	}
	require.NoError(t, env.DB.Create(&parent).Error)

	reply := models.Message{
		SenderType: providerRef.Type, SenderID: providerRef.ID,
		RecipientType: patientRef.Type, RecipientID: patientRef.ID,
		Subject: "Re: Original", Body: "A reply",
		ParentMessageID: &parent.MessageID,
	}
	require.NoError(t, env.DB.Create(&reply).Error)

	token := env.tokenForParty(t, models.RolePatient, patientRef)
	rec := env.request(t, http.MethodDelete,
		fmt.Sprintf("%s/%d", messagesPath(patientRef), parent.MessageID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Parent is gone.
	var count int64
	require.NoError(t, env.DB.Model(&models.Message{}).
		Where("message_id = ?", parent.MessageID).Count(&count).Error)
	assert.Zero(t, count)

	// The reply survives as a detached top-level message.
	var detached models.Message
	require.NoError(t, env.DB.First(&detached, "message_id = ?", reply.MessageID).Error)
	assert.Nil(t, detached.ParentMessageID)
}

func TestDeleteOnlyBySender(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	provider := env.createProvider(t, "Rena", "Okafor")
	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}
	providerRef := models.PartyRef{Type: models.PartyProvider, ID: provider.ProviderID}

	msg := models.Message{
		SenderType: patientRef.Type, SenderID: patientRef.ID,
		RecipientType: providerRef.Type, RecipientID: providerRef.ID,
		Subject: "Keep", Body: "Recipient cannot delete this",
	}
	require.NoError(t, env.DB.Create(&msg).Error)

	providerToken := env.tokenForParty(t, models.RoleProvider, providerRef)
	rec := env.request(t, http.MethodDelete,
		fmt.Sprintf("%s/%d", messagesPath(providerRef), msg.MessageID), providerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var count int64
	require.NoError(t, env.DB.Model(&models.Message{}).
		Where("message_id = ?", msg.MessageID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestInboxOrderAndPaging(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	provider := env.createProvider(t, "Rena", "Okafor")
	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}
	providerRef := models.PartyRef{Type: models.PartyProvider, ID: provider.ProviderID}

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 25; i++ {
		msg := models.Message{
			SenderType: providerRef.Type, SenderID: providerRef.ID,
			RecipientType: patientRef.Type, RecipientID: patientRef.ID,
			Subject:   fmt.Sprintf("Message %d", i),
			Body:      "body",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, env.DB.Create(&msg).Error)
	}
	// A message the patient sent must not appear in the inbox.
	sent := models.Message{
		SenderType: patientRef.Type, SenderID: patientRef.ID,
		RecipientType: providerRef.Type, RecipientID: providerRef.ID,
		Subject: "Outbound", Body: "not inbox material",
	}
	require.NoError(t, env.DB.Create(&sent).Error)

	token := env.tokenForParty(t, models.RolePatient, patientRef)

	var listing struct {
		Messages []struct {
			models.Message
			CounterpartyName string `json:"counterpartyName"`
		} `json:"messages"`
		Page       int   `json:"page"`
		PageSize   int   `json:"pageSize"`
		TotalCount int64 `json:"totalCount"`
	}

	rec := env.request(t, http.MethodGet, messagesPath(patientRef)+"/inbox", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &listing)

	assert.EqualValues(t, 25, listing.TotalCount)
	assert.Equal(t, 20, listing.PageSize)
	require.Len(t, listing.Messages, 20)
	assert.Equal(t, "Message 24", listing.Messages[0].Subject)
	assert.Equal(t, "Message 5", listing.Messages[19].Subject)
	assert.Equal(t, "Dr. Rena Okafor", listing.Messages[0].CounterpartyName)

	rec = env.request(t, http.MethodGet, messagesPath(patientRef)+"/inbox?page=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &listing)
	require.Len(t, listing.Messages, 5)
	assert.Equal(t, "Message 4", listing.Messages[0].Subject)
	assert.Equal(t, "Message 0", listing.Messages[4].Subject)
}

func TestInboxTieBreakByInsertionOrder(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	provider := env.createProvider(t, "Rena", "Okafor")
	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		msg := models.Message{
			SenderType: models.PartyProvider, SenderID: provider.ProviderID,
			RecipientType: patientRef.Type, RecipientID: patientRef.ID,
			Subject:   fmt.Sprintf("Same instant %d", i),
			Body:      "body",
			CreatedAt: at,
		}
		require.NoError(t, env.DB.Create(&msg).Error)
	}

	token := env.tokenForParty(t, models.RolePatient, patientRef)
	var listing struct {
		Messages []models.Message `json:"messages"`
	}
	rec := env.request(t, http.MethodGet, messagesPath(patientRef)+"/inbox", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &listing)

	require.Len(t, listing.Messages, 3)
	assert.Equal(t, "Same instant 0", listing.Messages[0].Subject)
	assert.Equal(t, "Same instant 1", listing.Messages[1].Subject)
	assert.Equal(t, "Same instant 2", listing.Messages[2].Subject)
}

func TestSentListing(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	provider := env.createProvider(t, "Rena", "Okafor")
	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}

	sent := models.Message{
		SenderType: patientRef.Type, SenderID: patientRef.ID,
		RecipientType: models.PartyProvider, RecipientID: provider.ProviderID,
		Subject: "Outbound", Body: "from me",
	}
	require.NoError(t, env.DB.Create(&sent).Error)
	received := models.Message{
		SenderType: models.PartyProvider, SenderID: provider.ProviderID,
		RecipientType: patientRef.Type, RecipientID: patientRef.ID,
		Subject: "Inbound", Body: "to me",
	}
	require.NoError(t, env.DB.Create(&received).Error)

	token := env.tokenForParty(t, models.RolePatient, patientRef)
	var listing struct {
		Messages []struct {
			models.Message
			CounterpartyName string `json:"counterpartyName"`
		} `json:"messages"`
	}
	rec := env.request(t, http.MethodGet, messagesPath(patientRef)+"/sent", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &listing)

	require.Len(t, listing.Messages, 1)
	assert.Equal(t, "Outbound", listing.Messages[0].Subject)
	// In the sent view the counterparty is the recipient.
	assert.Equal(t, "Dr. Rena Okafor", listing.Messages[0].CounterpartyName)
}

func TestComposeDirectoryExcludesInactive(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	env.createProvider(t, "Rena", "Okafor")
	inactive := env.createProvider(t, "Gone", "Retired")
	require.NoError(t, env.DB.Model(inactive).Update("is_active", false).Error)

	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}
	token := env.tokenForParty(t, models.RolePatient, patientRef)

	var ctx struct {
		Patients  []models.Patient  `json:"patients"`
		Providers []models.Provider `json:"providers"`
	}
	rec := env.request(t, http.MethodGet, messagesPath(patientRef)+"/compose", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &ctx)

	require.Len(t, ctx.Providers, 1)
	assert.Equal(t, "Okafor", ctx.Providers[0].LastName)
	require.Len(t, ctx.Patients, 1)
}

func TestPartyPathAuthorization(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createPatient(t, "Alice", "Nguyen")
	omar := env.createPatient(t, "Omar", "Haddad")

	aliceRef := models.PartyRef{Type: models.PartyPatient, ID: alice.PatientID}
	omarRef := models.PartyRef{Type: models.PartyPatient, ID: omar.PatientID}
	aliceToken := env.tokenForParty(t, models.RolePatient, aliceRef)

	// Acting as someone else is refused.
	rec := env.request(t, http.MethodGet, messagesPath(omarRef)+"/inbox", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Admins may act as any party.
	adminToken := env.tokenForRole(t, models.RoleAdmin, "admin@test.local")
	rec = env.request(t, http.MethodGet, messagesPath(omarRef)+"/inbox", adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Party types are case sensitive.
	rec = env.request(t, http.MethodGet,
		fmt.Sprintf("/api/v1/Patient/%d/messages/inbox", alice.PatientID), aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Unknown directory entry.
	rec = env.request(t, http.MethodGet, "/api/v1/patient/9999/messages/inbox", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// No token at all.
	rec = env.request(t, http.MethodGet, messagesPath(aliceRef)+"/inbox", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMessageScenarioRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Alice", "Nguyen")
	provider := env.createProvider(t, "Rena", "Okafor")
	patientRef := models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID}
	providerRef := models.PartyRef{Type: models.PartyProvider, ID: provider.ProviderID}
	patientToken := env.tokenForParty(t, models.RolePatient, patientRef)
	providerToken := env.tokenForParty(t, models.RoleProvider, providerRef)

	// Patient writes to the provider.
	rec := env.request(t, http.MethodPost, messagesPath(patientRef), patientToken,
		sendBody(providerRef, "Dizzy spells", "They started on Monday."))
	require.Equal(t, http.StatusCreated, rec.Code)
	var original models.Message
	decodeData(t, rec, &original)

	// Provider opens it; it is now read.
	rec = env.request(t, http.MethodGet,
		fmt.Sprintf("%s/%d", messagesPath(providerRef), original.MessageID), providerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Provider replies.
	replyBody := sendBody(patientRef, "Re: Dizzy spells", "Any vision changes?")
	replyBody["parent_message_id"] = original.MessageID
	rec = env.request(t, http.MethodPost, messagesPath(providerRef), providerToken, replyBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reply models.Message
	decodeData(t, rec, &reply)
	require.NotNil(t, reply.ParentMessageID)

	// Patient deletes the original; the reply is detached but intact.
	rec = env.request(t, http.MethodDelete,
		fmt.Sprintf("%s/%d", messagesPath(patientRef), original.MessageID), patientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet,
		fmt.Sprintf("%s/%d", messagesPath(patientRef), reply.MessageID), patientToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detached models.Message
	decodeData(t, rec, &detached)
	assert.Nil(t, detached.ParentMessageID)

	// The deleted message is gone for everyone.
	rec = env.request(t, http.MethodGet,
		fmt.Sprintf("%s/%d", messagesPath(providerRef), original.MessageID), providerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
