package ledger

import "errors"

// Error taxonomy for ledger operations. Callers classify with errors.Is; every
// failure path wraps one of these so the API layer can map status codes and
// the coordinator can tell a benign race from a fatal proof failure.
var (
	// ErrDuplicateOrder: creation with an id already present. Not retried.
	ErrDuplicateOrder = errors.New("order id already exists")

	// ErrInvalidCiphertext: a handle's input proof failed the collaborator
	// check at creation.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	// ErrOrderNotFound: read or verify on an unknown id.
	ErrOrderNotFound = errors.New("order not found")

	// ErrAlreadyVerified: verify on an order whose status already flipped.
	// The coordinator treats this as a recoverable race.
	ErrAlreadyVerified = errors.New("order already verified")

	// ErrProofVerification: a cleartext/proof pair does not validate against
	// the stored handle. Fatal for the call; retrying the same proof cannot
	// succeed.
	ErrProofVerification = errors.New("decryption proof verification failed")
)
