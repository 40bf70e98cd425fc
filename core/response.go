package core

import (
	"encoding/json"
	"net/http"
)

const (
	// oks for non precomputed, dynamic responses
	CodeOkAuthentication = "ok_authentication"
	CodeOkOtpVerified    = "ok_otp_verified"
	CodeOkMe             = "ok_me"
)

type jsonResponse struct {
	status int
	body   []byte
}

// JsonBasic contains the basic response fields. All responses must have them
type JsonBasic struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JsonWithData is used for structured JSON responses with data
type JsonWithData struct {
	JsonBasic
	Data interface{} `json:"data,omitempty"`
}

// writeJsonWithData writes a structured JSON response with the provided data
func writeJsonWithData(w http.ResponseWriter, resp JsonWithData) {
	setHeaders(w, HeadersJson)
	w.WriteHeader(resp.Status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		// Headers are already sent, nothing sensible left to do.
		return
	}
}
