package utils

const (
	OrganizationName                      = "My Village"
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"

	DefaultTimeZone          = "Asia/Bangkok"
	DefaultGeofenceRadiusM   = 300
	ThaiCountryCode          = "TH"
	ThaiDialingPrefix        = "+66"
	CurrencySymbolTHB        = "฿"
	SatangPerBaht            = 100
	DefaultPageSize          = 20
	MaxPageSize              = 100
	TestEmailSuffix          = "testing@myvillage.app"
	DefaultTeamEmail         = "team@myvillage.app"
	VisitorQRTokenLength     = 24
	NotificationPollInterval = 30 // seconds, client-side bell refresh
)
