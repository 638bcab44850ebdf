package reasoncodes

type ReasonCode string

const (
	ErrUnmarshal         ReasonCode = "UnmarshalError"
	ErrCredentialMissing ReasonCode = "CredentialMissing"
	ErrTokenInvalid      ReasonCode = "TokenInvalid"
	ErrKeySetUnavailable ReasonCode = "KeySetUnavailable"
	ErrWalletAddress     ReasonCode = "WalletAddressInvalid"
	ErrSignatureInvalid  ReasonCode = "SignatureInvalid"
	ErrNoPendingNonce    ReasonCode = "NoPendingNonce"
	ErrPersistence       ReasonCode = "PersistenceError"
	ErrEventPublish      ReasonCode = "EventPublishError"
)

func (rc ReasonCode) String() string { return string(rc) }
