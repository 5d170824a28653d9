package handler

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth & session ---

type signupRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// Role is the sign-in tab: "user" or "admin". Empty uses the account role.
	Role string `json:"role" validate:"omitempty,oneof=user admin"`
}

type userResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type authResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      userResponse `json:"user"`
}

type sessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	IsAdmin       bool          `json:"is_admin"`
	User          *userResponse `json:"user,omitempty"`
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
}

// --- Certificates ---

type uploadCertificateRequest struct {
	Name   string `json:"name"   form:"name"   validate:"required"`
	Issuer string `json:"issuer" form:"issuer" validate:"required"`
	// IssueDate is a calendar date (2006-01-02) or an RFC 3339 timestamp.
	IssueDate   string `json:"issue_date"  form:"issue_date" validate:"required"`
	Description string `json:"description" form:"description"`
}

type certificateLinks struct {
	Self     string `json:"self"`
	Verify   string `json:"verify"`
	Document string `json:"document,omitempty"`
}

type certificateResponse struct {
	Hash        string           `json:"hash"`
	Name        string           `json:"name"`
	Issuer      string           `json:"issuer"`
	IssueDate   string           `json:"issue_date"`
	Description string           `json:"description,omitempty"`
	Status      string           `json:"status"`
	UploadDate  string           `json:"upload_date"`
	Links       certificateLinks `json:"_links"`
}

type uploadResponse struct {
	Certificate    certificateResponse `json:"certificate"`
	BlockchainTxID string              `json:"blockchain_tx_id"`
	AlreadyExisted bool                `json:"already_existed,omitempty"`
}

type listCertificatesResponse struct {
	Certificates []certificateResponse `json:"certificates"`
	Total        int                   `json:"total"`
}

type statsResponse struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
	Flagged  int `json:"flagged"`
}

type dashboardResponse struct {
	User   userResponse          `json:"user"`
	Stats  statsResponse         `json:"stats"`
	Recent []certificateResponse `json:"recent"`
}

type adminCertificatesResponse struct {
	Stats        statsResponse         `json:"stats"`
	Certificates []certificateResponse `json:"certificates"`
}

// --- Verification ---

type verifyRequest struct {
	Hash string `json:"hash" validate:"required,certhash"`
}

type verificationResponse struct {
	IsValid        bool                 `json:"is_valid"`
	Certificate    *certificateResponse `json:"certificate,omitempty"`
	BlockchainTxID string               `json:"blockchain_tx_id"`
	AIRiskScore    int                  `json:"ai_risk_score"`
	RiskLevel      string               `json:"risk_level"`
	VerifiedAt     string               `json:"verified_at"`
}
