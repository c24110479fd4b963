package routes

import (
	"hospital-ehr-server/internal/config"
	"hospital-ehr-server/internal/handlers"
	"hospital-ehr-server/internal/middleware"
	"hospital-ehr-server/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	accountHandler := handlers.NewAccountHandler(db)
	patientHandler := handlers.NewPatientHandler(db)
	providerHandler := handlers.NewProviderHandler(db)
	historyHandler := handlers.NewHistoryHandler(db)
	encounterHandler := handlers.NewEncounterHandler(db)
	clinicalHandler := handlers.NewClinicalHandler(db)
	prescriptionHandler := handlers.NewPrescriptionHandler(db)
	billingHandler := handlers.NewBillingHandler(db)
	deviceHandler := handlers.NewDeviceHandler(db)
	iotHandler := handlers.NewIoTHandler(db)
	messageHandler := handlers.NewMessageHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}

		// Device endpoints authenticate with a device API key, not a JWT
		iotRoutes := public.Group("/iot")
		{
			iotRoutes.POST("/vitals", iotHandler.SubmitVitals)
			iotRoutes.GET("/status", iotHandler.DeviceStatus)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// Account management (admin only)
		accountRoutes := private.Group("/accounts")
		accountRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			accountRoutes.GET("", accountHandler.ListAccounts)
			accountRoutes.GET("/:accountId", accountHandler.GetAccount)
			accountRoutes.PUT("/:accountId", accountHandler.UpdateAccount)
			accountRoutes.DELETE("/:accountId", accountHandler.DeactivateAccount)
		}

		// Party-scoped messaging. PartyMiddleware resolves the party named in
		// the path and checks the caller is allowed to act as it.
		partyRoutes := private.Group("/:partyType/:partyId")
		partyRoutes.Use(middleware.PartyMiddleware(db))
		{
			messageRoutes := partyRoutes.Group("/messages")
			{
				messageRoutes.GET("/inbox", messageHandler.Inbox)
				messageRoutes.GET("/sent", messageHandler.Sent)
				messageRoutes.GET("/compose", messageHandler.Compose)
				messageRoutes.POST("", messageHandler.Send)
				messageRoutes.GET("/:messageId", messageHandler.Show)
				messageRoutes.DELETE("/:messageId", messageHandler.Delete)
			}
		}

		// Clinical and administrative routes are for hospital staff
		staff := private.Group("")
		staff.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff, models.RoleProvider))
		{
			staff.GET("/dashboard", dashboardHandler.GetStats)

			patientRoutes := staff.Group("/patients")
			{
				patientRoutes.GET("", patientHandler.ListPatients)
				patientRoutes.GET("/search", patientHandler.SearchPatients)
				patientRoutes.POST("", patientHandler.CreatePatient)
				patientRoutes.GET("/:patientId", patientHandler.GetPatient)
				patientRoutes.PUT("/:patientId", patientHandler.UpdatePatient)
				patientRoutes.DELETE("/:patientId", patientHandler.DeactivatePatient)

				historyRoutes := patientRoutes.Group("/:patientId/history")
				{
					historyRoutes.GET("", historyHandler.GetHistory)
					historyRoutes.POST("/allergies", historyHandler.AddAllergy)
					historyRoutes.PATCH("/allergies/:allergyId/resolve", historyHandler.ResolveAllergy)
					historyRoutes.POST("/medical", historyHandler.AddMedicalHistory)
					historyRoutes.POST("/surgical", historyHandler.AddSurgicalHistory)
					historyRoutes.POST("/family", historyHandler.AddFamilyHistory)
					historyRoutes.PUT("/social", historyHandler.UpsertSocialHistory)
				}

				insuranceRoutes := patientRoutes.Group("/:patientId/insurance")
				{
					insuranceRoutes.GET("", billingHandler.ListInsurance)
					insuranceRoutes.POST("", billingHandler.CreateInsurance)
					insuranceRoutes.GET("/:insuranceId", billingHandler.GetInsurance)
				}

				deviceRoutes := patientRoutes.Group("/:patientId/devices")
				{
					deviceRoutes.GET("", deviceHandler.ListDevices)
					deviceRoutes.POST("", deviceHandler.RegisterDevice)
					deviceRoutes.GET("/:deviceId", deviceHandler.GetDevice)
					deviceRoutes.PUT("/:deviceId", deviceHandler.UpdateDevice)
					deviceRoutes.DELETE("/:deviceId", deviceHandler.DeleteDevice)
					deviceRoutes.PATCH("/:deviceId/status", deviceHandler.UpdateDeviceStatus)
					deviceRoutes.POST("/:deviceId/api-keys", deviceHandler.IssueAPIKey)
					deviceRoutes.DELETE("/:deviceId/api-keys", deviceHandler.RevokeAPIKeys)
				}
			}

			providerRoutes := staff.Group("/providers")
			{
				providerRoutes.GET("", providerHandler.ListProviders)
				providerRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin), providerHandler.CreateProvider)
				providerRoutes.GET("/:providerId", providerHandler.GetProvider)
				providerRoutes.PUT("/:providerId", middleware.RoleAuthMiddleware(models.RoleAdmin), providerHandler.UpdateProvider)
				providerRoutes.DELETE("/:providerId", middleware.RoleAuthMiddleware(models.RoleAdmin), providerHandler.DeactivateProvider)
			}

			departmentRoutes := staff.Group("/departments")
			{
				departmentRoutes.GET("", providerHandler.ListDepartments)
				departmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin), providerHandler.CreateDepartment)
			}

			encounterRoutes := staff.Group("/encounters")
			{
				encounterRoutes.GET("", encounterHandler.ListEncounters)
				encounterRoutes.POST("", encounterHandler.CreateEncounter)
				encounterRoutes.GET("/:encounterId", encounterHandler.GetEncounter)
				encounterRoutes.PUT("/:encounterId", encounterHandler.UpdateEncounter)
				encounterRoutes.PATCH("/:encounterId/complete", encounterHandler.CompleteEncounter)
				encounterRoutes.POST("/:encounterId/chief-complaints", encounterHandler.AddChiefComplaint)

				encounterRoutes.GET("/:encounterId/vital-signs", clinicalHandler.ListVitalSigns)
				encounterRoutes.POST("/:encounterId/vital-signs", clinicalHandler.CreateVitalSign)
				encounterRoutes.POST("/:encounterId/diagnoses", clinicalHandler.CreateDiagnosis)
				encounterRoutes.PUT("/:encounterId/examination", clinicalHandler.UpsertExamination)
				encounterRoutes.PUT("/:encounterId/impression", clinicalHandler.UpsertImpression)
				encounterRoutes.POST("/:encounterId/treatment-plan", clinicalHandler.CreateTreatmentPlan)
			}

			staff.PATCH("/diagnoses/:diagnosisId", clinicalHandler.UpdateDiagnosis)
			staff.DELETE("/diagnoses/:diagnosisId", clinicalHandler.DeleteDiagnosis)
			staff.PUT("/vital-signs/:vitalSignId", clinicalHandler.UpdateVitalSign)

			treatmentPlanRoutes := staff.Group("/treatment-plans")
			{
				treatmentPlanRoutes.GET("", clinicalHandler.ListTreatmentPlans)
				treatmentPlanRoutes.GET("/:planId", clinicalHandler.GetTreatmentPlan)
				treatmentPlanRoutes.PUT("/:planId", clinicalHandler.UpdateTreatmentPlan)
				treatmentPlanRoutes.DELETE("/:planId", clinicalHandler.DeleteTreatmentPlan)
			}

			prescriptionRoutes := staff.Group("/prescriptions")
			{
				prescriptionRoutes.GET("", prescriptionHandler.ListPrescriptions)
				prescriptionRoutes.POST("", prescriptionHandler.CreatePrescription)
				prescriptionRoutes.GET("/:prescriptionId", prescriptionHandler.GetPrescription)
				prescriptionRoutes.PUT("/:prescriptionId", prescriptionHandler.UpdatePrescription)
				prescriptionRoutes.PATCH("/:prescriptionId/discontinue", prescriptionHandler.DiscontinuePrescription)
			}

			billingRoutes := staff.Group("/billing")
			{
				billingRoutes.GET("", billingHandler.ListBilling)
				billingRoutes.POST("", billingHandler.CreateBilling)
				billingRoutes.GET("/:billingId", billingHandler.GetBilling)
				billingRoutes.POST("/:billingId/payments", billingHandler.RecordPayment)
			}

			staff.GET("/payments", billingHandler.ListPayments)
			staff.GET("/payments/:paymentId", billingHandler.GetPayment)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
