package core

import (
	"encoding/json"
	"net/http"
)

// Standard response codes
const (
	// oks
	CodeOkOtpSent                = "ok_otp_sent"
	CodeOkOtpResent              = "ok_otp_resent"
	CodeOkPasswordResetRequested = "ok_password_reset_requested"
	CodeOkPasswordReset          = "ok_password_reset"

	// errors
	CodeErrorTokenGeneration           = "err_token_generation"
	CodeErrorInvalidRequest            = "err_invalid_input"
	CodeErrorInvalidCredentials        = "err_invalid_credentials"
	CodeErrorMissingFields             = "err_missing_fields"
	CodeErrorPasswordComplexity        = "err_password_complexity"
	CodeErrorEmailConflict             = "err_email_conflict"
	CodeErrorNotFound                  = "err_not_found"
	CodeErrorNoPendingOtp              = "err_no_pending_otp"
	CodeErrorOtpInvalid                = "err_invalid_or_expired_code"
	CodeErrorNoAuthHeader       = "err_no_auth_header"
	CodeErrorInvalidTokenFormat = "err_invalid_token_format"
	CodeErrorJwtInvalidToken    = "err_invalid_token"
	CodeErrorAuthDatabaseError  = "err_auth_database_error"
	CodeErrorInvalidContentType = "err_invalid_content_type"
)

// precomputeBasicResponse is executed during initialization (before main()
// runs) and the JSON body is stored fully marshaled. Handlers then write the
// precomputed bytes instead of marshaling on every request.
func precomputeBasicResponse(status int, code, message string) jsonResponse {
	basic := JsonBasic{
		Status:  status,
		Code:    code,
		Message: message,
	}
	body, _ := json.Marshal(basic)
	return jsonResponse{status: status, body: body}
}

// Precomputed error and ok responses with status codes
var (
	// errors
	errorTokenGeneration = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorTokenGeneration, "Failed to generate authentication token")
	errorInvalidRequest  = precomputeBasicResponse(http.StatusBadRequest, CodeErrorInvalidRequest, "The request contains invalid data")
	// Credential failures never reveal which factor was wrong.
	errorInvalidCredentials        = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidCredentials, "Invalid credentials provided")
	errorMissingFields             = precomputeBasicResponse(http.StatusBadRequest, CodeErrorMissingFields, "Required fields are missing")
	errorPasswordComplexity        = precomputeBasicResponse(http.StatusBadRequest, CodeErrorPasswordComplexity, "Password must be at least 6 characters")
	errorEmailConflict             = precomputeBasicResponse(http.StatusConflict, CodeErrorEmailConflict, "Email address is already registered")
	errorNotFound                  = precomputeBasicResponse(http.StatusNotFound, CodeErrorNotFound, "Requested resource not found")
	errorNoPendingOtp              = precomputeBasicResponse(http.StatusNotFound, CodeErrorNoPendingOtp, "No pending verification for this email")
	errorOtpInvalid                = precomputeBasicResponse(http.StatusBadRequest, CodeErrorOtpInvalid, "Invalid or expired code")
	errorNoAuthHeader       = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorNoAuthHeader, "Authorization header is required")
	errorInvalidTokenFormat = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorInvalidTokenFormat, "Invalid authorization token format")
	errorJwtInvalidToken    = precomputeBasicResponse(http.StatusUnauthorized, CodeErrorJwtInvalidToken, "Invalid authentication token")
	errorAuthDatabaseError  = precomputeBasicResponse(http.StatusInternalServerError, CodeErrorAuthDatabaseError, "Database error during authentication")
	errorInvalidContentType = precomputeBasicResponse(http.StatusUnsupportedMediaType, CodeErrorInvalidContentType, "Unsupported media type")

	// oks
	okOtpSent                = precomputeBasicResponse(http.StatusAccepted, CodeOkOtpSent, "A verification code will be sent to your email. Check your mailbox")
	okOtpResent              = precomputeBasicResponse(http.StatusAccepted, CodeOkOtpResent, "A new verification code will be sent to your email")
	okPasswordResetRequested = precomputeBasicResponse(http.StatusAccepted, CodeOkPasswordResetRequested, "Password reset instructions will be sent to your email if it exists in our system")
	okPasswordReset          = precomputeBasicResponse(http.StatusOK, CodeOkPasswordReset, "Password reset successfully")
)

// For successful precomputed responses
func writeJsonOk(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}

// writeJsonError writes a precomputed JSON error response
func writeJsonError(w http.ResponseWriter, resp jsonResponse) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.status)
	w.Write(resp.body)
}
