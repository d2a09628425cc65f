package domain

import "time"

type CaseStatus string

const (
	CaseDraft    CaseStatus = "draft"
	CaseInReview CaseStatus = "in_review"
	CaseFiled    CaseStatus = "filed"
	CaseApproved CaseStatus = "approved"
	CaseDenied   CaseStatus = "denied"
	CaseClosed   CaseStatus = "closed"
)

var caseTransitions = map[CaseStatus][]CaseStatus{
	CaseDraft:    {CaseInReview, CaseClosed},
	CaseInReview: {CaseDraft, CaseFiled, CaseClosed},
	CaseFiled:    {CaseApproved, CaseDenied, CaseClosed},
	CaseApproved: {CaseClosed},
	CaseDenied:   {CaseClosed},
	CaseClosed:   {},
}

func (s CaseStatus) Valid() bool {
	_, ok := caseTransitions[s]
	return ok
}

// CanTransition reports whether a case may move from s to next.
func (s CaseStatus) CanTransition(next CaseStatus) bool {
	for _, allowed := range caseTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type CasePriority string

const (
	PriorityStandard  CasePriority = "standard"
	PriorityExpedited CasePriority = "expedited"
)

type Case struct {
	ID              string       `json:"id"`
	FirmID          string       `json:"firm_id"`
	ClientProfileID string       `json:"client_profile_id"`
	AttorneyID      string       `json:"attorney_id"`
	FormType        FormType     `json:"form_type"`
	Status          CaseStatus   `json:"status"`
	Priority        CasePriority `json:"priority"`
	Title           string       `json:"title"`
	Notes           string       `json:"notes"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// CaseFilter narrows a firm-scoped case listing. FirmID is mandatory,
// everything else optional.
type CaseFilter struct {
	FirmID          string
	ClientProfileID string
	AttorneyID      string
	Status          CaseStatus
	Limit           int
}

type CaseNote struct {
	ID              string    `json:"id"`
	CaseID          string    `json:"case_id"`
	AuthorProfileID string    `json:"author_profile_id"`
	Body            string    `json:"body"`
	CreatedAt       time.Time `json:"created_at"`
}
