package dto

// ListAccountsRequest represents admin account listing filters
type ListAccountsRequest struct {
	Role     *string `query:"role" validate:"omitempty,oneof=admin customer account-manager credit-admin board-director transaction-manager"`
	IsActive *bool   `query:"is_active" validate:"omitempty"`
	Pending  *bool   `query:"pending" validate:"omitempty"` // Accounts awaiting role assignment
	Page     int     `query:"page" validate:"omitempty,min=1"`
	PageSize int     `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListAccountsResponse represents the paginated account listing
type ListAccountsResponse struct {
	Message  string       `json:"message"`
	Accounts []AccountDTO `json:"accounts"`
	Total    int64        `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// CreateAccountRequest represents an admin creating a staff account directly,
// skipping email verification
type CreateAccountRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
	Role     string `json:"role" validate:"required,oneof=admin customer account-manager credit-admin board-director transaction-manager"`
}

// CreateAccountResponse represents the response after admin account creation
type CreateAccountResponse struct {
	Message string     `json:"message"`
	Account AccountDTO `json:"account"`
}

// GetAccountResponse represents a single account lookup
type GetAccountResponse struct {
	Message string     `json:"message"`
	Account AccountDTO `json:"account"`
}

// ApproveAccountRequest grants a role to a pending account and activates it
// in one step. The role is mandatory.
type ApproveAccountRequest struct {
	Role string `json:"role" validate:"required,oneof=admin customer account-manager credit-admin board-director transaction-manager"`
}

// ApproveAccountResponse represents the response after account approval
type ApproveAccountResponse struct {
	Message string     `json:"message"`
	Account AccountDTO `json:"account"`
}

// UpdateAccountRequest represents an admin role/activation change
type UpdateAccountRequest struct {
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=admin customer account-manager credit-admin board-director transaction-manager"`
	IsActive *bool   `json:"is_active,omitempty" validate:"omitempty"`
}

// UpdateAccountResponse represents the response after an account change
type UpdateAccountResponse struct {
	Message string     `json:"message"`
	Account AccountDTO `json:"account"`
}

// DeleteAccountResponse represents the response after account removal
type DeleteAccountResponse struct {
	Message string `json:"message"`
}
