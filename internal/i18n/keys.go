// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired        = "auth.required"
	KeyAuthInvalidToken    = "auth.invalid_token"
	KeyAuthSignupSuccess   = "auth.signup_success"
	KeyAuthLoginSuccess    = "auth.login_success"
	KeyAuthLogoutSuccess   = "auth.logout_success"
	KeyAuthAuthenticated   = "auth.authenticated"
	KeyAuthEmailVerified   = "auth.email_verified"
	KeyAuthVerifyResent    = "auth.verify_resent"
	KeyAuthPasswordChanged = "auth.password_changed"
	KeyAuthPasswordReset   = "auth.password_reset"
	KeyAuthForgotPassword  = "auth.forgot_password"

	// Users
	KeyUserFetched        = "user.fetched"
	KeyUserUpdated        = "user.updated"
	KeyUserDeleted        = "user.deleted"
	KeyUserAddressSet     = "user.address_set"
	KeyUserAddressDeleted = "user.address_deleted"

	// Access control
	KeyAdminAccessDenied = "admin.access_denied"

	// Products
	KeyProductCreated = "product.created"
	KeyProductFetched = "product.fetched"
	KeyProductUpdated = "product.updated"
	KeyProductDeleted = "product.deleted"

	// Media
	KeyMediaAdded      = "media.added"
	KeyMediaDeleted    = "media.deleted"
	KeyMediaDefaultSet = "media.default_set"

	// Orders
	KeyOrderCheckoutCreated = "order.checkout_created"
	KeyOrderFetched         = "order.fetched"
	KeyOrderUpdated         = "order.updated"
	KeyOrderDeleted         = "order.deleted"

	// Validation
	KeyValidationFailed  = "validation.failed"
	KeyValidationInvalid = "validation.invalid"
)
