package domain

const (
	PermCaseRead     = "case:read"
	PermCaseWrite    = "case:write"
	PermCaseAssign   = "case:assign"
	PermDocumentRead = "document:read"
	PermDocumentSave = "document:write"
	PermDocumentScan = "document:scan"
	PermFirmRead     = "firm:read"
	PermFirmManage   = "firm:manage"
	PermInviteSend   = "invite:send"
	PermInviteAccept = "invite:accept"
	PermBillingRead  = "billing:read"
	PermBillingWrite = "billing:write"
	PermAnalysisRun  = "analysis:run"
	PermAnalysisRead = "analysis:read"
	PermFormFill     = "form:fill"
	PermAdminAll     = "admin:*"
)
