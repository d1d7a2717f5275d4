package service

import "github.com/99minutos/agency-portal/internal/core/domain"

const (
	loginPath  = "/login"
	logoutPath = "/logout"
)

// Launcher turns a session state into the view the portal shows.
type Launcher struct {
	catalog domain.Catalog
}

// NewLauncher returns a Launcher over catalog. A nil catalog uses the
// built-in mapping.
func NewLauncher(catalog domain.Catalog) *Launcher {
	if catalog == nil {
		catalog = domain.DefaultCatalog()
	}
	return &Launcher{catalog: catalog}
}

// Catalog returns the role mapping the launcher renders from.
func (l *Launcher) Catalog() domain.Catalog {
	return l.catalog
}

// View evaluates state. It is pure: the catalog lookup runs on every call
// and an unknown role yields no destinations rather than an error.
func (l *Launcher) View(state domain.SessionState) domain.View {
	switch {
	case state.Loading:
		return domain.View{Kind: domain.ViewChecking, Destinations: []domain.Destination{}}
	case state.Identity == nil:
		return domain.View{
			Kind:         domain.ViewUnauthenticated,
			Destinations: []domain.Destination{},
			LoginURL:     loginPath,
		}
	}

	dests := l.catalog.For(state.Identity.Role)
	if dests == nil {
		dests = []domain.Destination{}
	}
	return domain.View{
		Kind:         domain.ViewAuthenticated,
		Identity:     state.Identity.Clone(),
		DisplayName:  state.Identity.DisplayName(),
		Destinations: dests,
		NoAccess:     len(dests) == 0,
		LogoutURL:    logoutPath,
	}
}
