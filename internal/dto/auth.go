package dto

// TokenRequest exchanges an operator or admin key for an access token.
type TokenRequest struct {
	Key string `json:"key"`
}

// TokenResponse contains the issued access token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
}
