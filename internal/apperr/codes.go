package apperr

// Stable error codes returned to clients.
const (
	CodeInternal   = "INTERNAL_SERVER_ERROR"
	CodeValidation = "VALIDATION_ERROR"
	CodeBadPayload = "INVALID_PAYLOAD"
	CodeNotFound   = "NOT_FOUND"

	// 认证
	CodeMissingFields        = "MISSING_FIELDS"
	CodeMissingCredentials   = "MISSING_CREDENTIALS"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeEmailNotVerified     = "EMAIL_NOT_VERIFIED"
	CodeAccountSuspended     = "ACCOUNT_SUSPENDED"
	CodeEmailExists          = "EMAIL_EXISTS"
	CodeInvalidToken         = "INVALID_TOKEN"
	CodeTokenExpired         = "TOKEN_EXPIRED"
	CodeAuthRequired         = "AUTH_REQUIRED"
	CodeAuthFailed           = "AUTH_FAILED"
	CodePasswordNotSet       = "PASSWORD_NOT_SET"
	CodeUserNotFound         = "USER_NOT_FOUND"
	CodeEmailSendFailed      = "EMAIL_SEND_FAILED"
	CodeNoFile               = "NO_FILE"
	CodeInvalidFile          = "INVALID_FILE"
	CodeMissingToken         = "MISSING_TOKEN"
	CodeEmailAlreadyVerified = "EMAIL_ALREADY_VERIFIED"

	// 授权
	CodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"
	CodeSubscriptionRequired    = "SUBSCRIPTION_REQUIRED"
	CodeNotAuthorized           = "NOT_AUTHORIZED"
	CodeCannotModifySelf        = "CANNOT_MODIFY_SELF"
	CodeInvalidRole             = "INVALID_ROLE"
	CodeInvalidStatus           = "INVALID_STATUS"

	// 评论
	CodeContentRequired  = "CONTENT_REQUIRED"
	CodeContentTooShort  = "CONTENT_TOO_SHORT"
	CodeContentTooLong   = "CONTENT_TOO_LONG"
	CodeMissingArticleID = "MISSING_ARTICLE_ID"
	CodeMissingCommentID = "MISSING_COMMENT_ID"
	CodeArticleNotFound  = "ARTICLE_NOT_FOUND"
	CodeCommentNotFound  = "COMMENT_NOT_FOUND"

	// 限流
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeAuthRateLimited    = "AUTH_RATE_LIMIT_EXCEEDED"
	CodeCommentRateLimited = "COMMENT_RATE_LIMIT_EXCEEDED"
)
