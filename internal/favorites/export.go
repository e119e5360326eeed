package favorites

import (
	"fmt"

	"echod/internal/errors"
)

// Exporter renders an identity's favourites and delivers them to the
// identity's address.  Collaborators are injected.
type Exporter struct {
	Accounts  Authenticator
	Store     Store
	Renderer  Renderer
	Deliverer Deliverer
	Subject   string
}

// Export sends identity's favourites.  It returns the number of
// documents delivered; zero favourites means nothing is sent.
func (e *Exporter) Export(identity string) (int, error) {
	if a, ok := e.Accounts.(interface{ Exists(string) bool }); ok && !a.Exists(identity) {
		return 0, fmt.Errorf("export for %s: %w", identity, errors.ErrAuthFailed)
	}

	items := e.Store.List(identity)
	if len(items) == 0 {
		return 0, nil
	}
	docs, err := e.Renderer.Render(items)
	if err != nil {
		return 0, fmt.Errorf("render favourites: %w", err)
	}

	subject := e.Subject
	if subject == "" {
		subject = "Your Favorite Movies"
	}
	if err := e.Deliverer.Send(identity, subject, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}
