package utils

// Application constants
const (
	// Application name
	AppName = "DomainDesk"

	// API version
	APIVersion = "v1"

	// Default port
	DefaultPort = "8080"

	// Default directory for generated project documents
	DefaultProjectsDir = "projects/"

	// Default currency for renewal orders
	DefaultCurrency = "INR"

	// JWT token lifetime in hours
	JWTExpirationHours = 24

	// Minimum project title length
	MinTitleLength = 3

	// Maximum project title length
	MaxTitleLength = 100

	// Maximum project description length
	MaxDescriptionLength = 1000
)

// Error messages
const (
	ErrInvalidCredentials  = "Invalid email or password"
	ErrInvalidToken        = "Invalid or expired token"
	ErrInvalidProjectID    = "Invalid project ID"
	ErrInvalidCustomerID   = "Invalid customer ID"
	ErrProjectNotFound     = "Project not found"
	ErrCustomerNotFound    = "Customer not found"
	ErrUserNotFound        = "User not found"
	ErrInvalidDuration     = "Valid duration (in years) is required"
	ErrPaymentDetails      = "Payment details are required"
	ErrInvalidSignature    = "Invalid payment signature"
	ErrPaymentProcessed    = "Payment already processed"
	ErrAmountTooLow        = "Amount must be at least 100 paise (₹1.00)"
	ErrInternalServer      = "Internal server error"
	ErrServiceUnavailable  = "Service unavailable, please retry"
	ErrDuplicateCustomer   = "Customer with this email already exists"
	ErrInvalidDeleteAction = "Invalid action. Use 'hard' or 'soft'"
	ErrOrderMismatch       = "Payment does not match the renewal order"
)

// Success messages
const (
	MsgLoginSuccess        = "Login successful"
	MsgOrderCreated        = "Payment order created successfully"
	MsgProjectRenewed      = "Project renewed successfully"
	MsgProjectCreated      = "Project created successfully"
	MsgProjectFetched      = "Project fetched successfully"
	MsgProjectUpdated      = "Project updated successfully"
	MsgCustomerCreated     = "Customer created successfully"
	MsgCustomerFetched     = "Customer fetched successfully"
	MsgCustomerUpdated     = "Customer updated successfully"
	MsgCustomerDeactivated = "Customer deactivated successfully"
	MsgCustomerDeleted     = "Customer and associated projects deleted successfully"
)
