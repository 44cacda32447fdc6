package domain

import "context"

// Credentials carries the API authority used for external directory calls.
// Invitee resolution always uses the event creator's credentials, not the
// invitee's: the creator's session is the one holding an access token.
type Credentials struct {
	AccessToken string
	Staging     bool
}

// Directory is the external social-network identity service (infrastructure
// port). Implementations own the wire format; the core consumes records.
type Directory interface {
	// FindOrCreateUserByAuth resolves the external user id to the canonical
	// local User, fetching profile data from the network and creating the local
	// record on first sight.
	FindOrCreateUserByAuth(ctx context.Context, creds Credentials, yammerUserID string) (*User, error)

	// FindOrCreateGroup resolves the external group id to the canonical local
	// Group, using name as the display name on first creation.
	FindOrCreateGroup(ctx context.Context, yammerGroupID, name string) (*Group, error)

	// FindUserByEmail looks the email up in the external network. Returns
	// ErrUserNotFound when no network user has that address.
	FindUserByEmail(ctx context.Context, creds Credentials, email string) (*User, error)
}

// TokenCipher encrypts and decrypts access tokens for storage at rest.
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Messenger sends in-network communications through the external service.
type Messenger interface {
	// SendPrivateMessage delivers a direct message to the recipient on behalf
	// of the sender.
	SendPrivateMessage(ctx context.Context, sender, recipient *User, text string) error

	// PostActivity publishes an activity story (public feed entry) for the
	// actor about the event.
	PostActivity(ctx context.Context, actor *User, action string, event *Event) error
}
