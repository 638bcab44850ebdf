package binding

import "errors"

var (
	ErrInvalidWalletAddress = errors.New("invalid wallet address")
	ErrMissingSignature     = errors.New("signature is required")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrNoPendingNonce       = errors.New("no pending nonce, request a nonce first")
	ErrWalletNotFound       = errors.New("no wallet address for identity")
)
