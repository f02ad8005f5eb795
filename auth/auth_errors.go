package auth

import "errors"

var (
	SignInFailedErr  = errors.New("sign in failed")
	SignUpFailedErr  = errors.New("sign up failed")
	InvalidParamsErr = errors.New("invalid parameters")
)
