// Package favorites defines the collaborators that surround the echo
// server: account checks, catalog search, per-user favourites, document
// rendering and delivery.  None of them are used by the protocol
// engine; they are contracts with small reference implementations.
package favorites

// Item is one catalog entry.
type Item struct {
	ID       int
	Title    string
	Category string
}

// Authenticator registers and verifies identities.
type Authenticator interface {
	Register(identity, secret string) error
	Login(identity, secret string) bool
}

// Catalog searches items by term.
type Catalog interface {
	Search(term string) []Item
}

// Store keeps each identity's favourite items.
type Store interface {
	Add(identity string, itemID int) error
	List(identity string) []Item
}

// Renderer turns items into documents.
type Renderer interface {
	Render(items []Item) ([][]byte, error)
}

// Deliverer sends documents to a recipient.  Failures are
// *errors.DeliveryError.
type Deliverer interface {
	Send(recipient, subject string, attachments [][]byte) error
}
