package types

// ResponseEnvelope is the uniform wrapper every endpoint returns. The POS
// clients key off the boolean status plus the numeric error code, so both
// success and failure share the same shape.
type ResponseEnvelope struct {
	Status           bool    `json:"status"`
	ErrorCode        int     `json:"errorCode"`
	ErrorDescription *string `json:"errorDescription"`
	ResponseDto      any     `json:"responseDto"`
}
