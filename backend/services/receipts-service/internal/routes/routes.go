package routes

const (
	Health = "/health"

	ReceiptsGenerate  = "/api/v1/receipts/generate"
	ReceiptsSend      = "/api/v1/receipts/send"
	ReceiptsSignedURL = "/api/v1/receipts/{id}/signed-url"
	LeaseReceipts     = "/api/v1/leases/{id}/receipts"
	LeaseConfirmToken = "/api/v1/leases/{id}/confirm-token"

	// Public, authenticated by the one-shot token.
	ReceiptsConfirm     = "/api/v1/receipts/confirm"
	ReceiptsConfirmPaid = "/api/v1/receipts/confirm-paid"

	CronReminders = "/api/v1/cron/reminders"
	CronAutoSend  = "/api/v1/cron/auto-send"

	FinanceCapacity    = "/api/v1/finance/capacity"
	FinanceRentalYield = "/api/v1/finance/rental-yield"
)
