package db

import "time"

type ProfileModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	UserID    string    `gorm:"type:uuid;uniqueIndex;not null"`
	Email     string    `gorm:"index;not null"`
	Role      string    `gorm:"not null"`
	FirmID    *string   `gorm:"type:uuid;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (ProfileModel) TableName() string { return "profiles" }

type FirmModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Slug      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (FirmModel) TableName() string { return "firms" }

type InvitationModel struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	FirmID     string    `gorm:"type:uuid;index;not null"`
	Email      string    `gorm:"index;not null"`
	Role       string    `gorm:"not null"`
	Token      string    `gorm:"uniqueIndex;not null"`
	InvitedBy  string    `gorm:"type:uuid;not null"`
	Status     string    `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	AcceptedAt *time.Time
	CreatedAt  time.Time `gorm:"not null"`
}

func (InvitationModel) TableName() string { return "invitations" }

type CaseModel struct {
	ID              string  `gorm:"type:uuid;primaryKey"`
	FirmID          string  `gorm:"type:uuid;index;not null"`
	ClientProfileID string  `gorm:"type:uuid;index;not null"`
	AttorneyID      *string `gorm:"type:uuid;index"`
	FormType        string  `gorm:"not null"`
	Status          string  `gorm:"index;not null"`
	Priority        string  `gorm:"not null"`
	Title           string  `gorm:"not null"`
	Notes           string
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

func (CaseModel) TableName() string { return "cases" }

type CaseNoteModel struct {
	ID              string    `gorm:"type:uuid;primaryKey"`
	CaseID          string    `gorm:"type:uuid;index;not null"`
	AuthorProfileID string    `gorm:"type:uuid;not null"`
	Body            string    `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
}

func (CaseNoteModel) TableName() string { return "case_notes" }

type DocumentModel struct {
	ID            string `gorm:"primaryKey"`
	CaseID        string `gorm:"type:uuid;index;not null"`
	FirmID        string `gorm:"type:uuid;index;not null"`
	UploaderID    string `gorm:"type:uuid;not null"`
	Filename      string `gorm:"not null"`
	ContentType   string `gorm:"not null"`
	SizeBytes     int64  `gorm:"not null"`
	ContentSHA256 string `gorm:"index;not null"`
	StorageURI    string `gorm:"not null"`
	ScanStatus    string `gorm:"index;not null"`
	ScanSignature string
	ScannedAt     *time.Time
	CreatedAt     time.Time `gorm:"not null"`
}

func (DocumentModel) TableName() string { return "documents" }

type SubscriptionModel struct {
	ID                   string    `gorm:"type:uuid;primaryKey"`
	FirmID               string    `gorm:"type:uuid;uniqueIndex;not null"`
	StripeCustomerID     string    `gorm:"index;not null"`
	StripeSubscriptionID string    `gorm:"uniqueIndex;not null"`
	Plan                 string    `gorm:"not null"`
	Status               string    `gorm:"not null"`
	CurrentPeriodEnd     time.Time `gorm:"not null"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

func (SubscriptionModel) TableName() string { return "subscriptions" }

type AnalysisModel struct {
	ID              string `gorm:"type:uuid;primaryKey"`
	DocumentID      string `gorm:"index;not null"`
	CaseID          string `gorm:"type:uuid;index;not null"`
	RequestedBy     string `gorm:"type:uuid;not null"`
	Model           string `gorm:"not null"`
	Status          string `gorm:"not null"`
	Summary         string
	ExtractedFields []byte `gorm:"type:jsonb"`
	InputTokens     int
	OutputTokens    int
	FailureReason   string
	CreatedAt       time.Time `gorm:"not null"`
	CompletedAt     *time.Time
}

func (AnalysisModel) TableName() string { return "document_analyses" }
