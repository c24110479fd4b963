package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hospital-ehr-server/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func TestValidPartyTypeIsCaseSensitive(t *testing.T) {
	assert.True(t, models.ValidPartyType("patient"))
	assert.True(t, models.ValidPartyType("provider"))
	assert.False(t, models.ValidPartyType("Patient"))
	assert.False(t, models.ValidPartyType("PROVIDER"))
	assert.False(t, models.ValidPartyType("nurse"))
	assert.False(t, models.ValidPartyType(""))
}

func TestResolveParty(t *testing.T) {
	db := openTestDB(t)

	patient := models.Patient{FirstName: "Alice", LastName: "Nguyen", IsActive: true}
	require.NoError(t, db.Create(&patient).Error)
	provider := models.Provider{FirstName: "Rena", LastName: "Okafor", IsActive: true}
	require.NoError(t, db.Create(&provider).Error)

	resolved, err := models.ResolveParty(db, models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID})
	require.NoError(t, err)
	assert.Equal(t, "Alice Nguyen", resolved.DisplayName)

	resolved, err = models.ResolveParty(db, models.PartyRef{Type: models.PartyProvider, ID: provider.ProviderID})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rena Okafor", resolved.DisplayName)

	_, err = models.ResolveParty(db, models.PartyRef{Type: models.PartyPatient, ID: 999})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = models.ResolveParty(db, models.PartyRef{Type: "nurse", ID: 1})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestResolvePartyIgnoresActiveFlag(t *testing.T) {
	db := openTestDB(t)

	patient := models.Patient{FirstName: "Gone", LastName: "Archived", IsActive: false}
	require.NoError(t, db.Create(&patient).Error)

	resolved, err := models.ResolveParty(db, models.PartyRef{Type: models.PartyPatient, ID: patient.PatientID})
	require.NoError(t, err)
	assert.Equal(t, "Gone Archived", resolved.DisplayName)
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	db := openTestDB(t)

	msg := models.Message{
		SenderType: models.PartyPatient, SenderID: 1,
		RecipientType: models.PartyProvider, RecipientID: 2,
		Subject: "s", Body: "b",
	}
	require.NoError(t, db.Create(&msg).Error)
	require.False(t, msg.IsRead)

	require.NoError(t, msg.MarkAsRead(db))
	require.True(t, msg.IsRead)
	require.NotNil(t, msg.ReadAt)
	first := *msg.ReadAt

	require.NoError(t, msg.MarkAsRead(db))
	assert.True(t, first.Equal(*msg.ReadAt))

	// A second in-memory copy that lost the race converges on the stored
	// timestamp instead of overwriting it.
	var stale models.Message
	require.NoError(t, db.First(&stale, "message_id = ?", msg.MessageID).Error)
	stale.IsRead = false
	stale.ReadAt = nil
	require.NoError(t, stale.MarkAsRead(db))
	require.NotNil(t, stale.ReadAt)
	assert.True(t, first.Equal(*stale.ReadAt))
}

func TestMessagePartyAccessors(t *testing.T) {
	msg := models.Message{
		SenderType: models.PartyPatient, SenderID: 7,
		RecipientType: models.PartyProvider, RecipientID: 3,
	}
	assert.Equal(t, models.PartyRef{Type: models.PartyPatient, ID: 7}, msg.Sender())
	assert.Equal(t, models.PartyRef{Type: models.PartyProvider, ID: 3}, msg.Recipient())
}
