package utils

const (
	OrganizationName                      = "MT Courtage"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"
	DefaultTimezone                       = "Europe/Paris"
	CronSecretHeader                      = "x-cron-secret"
)
