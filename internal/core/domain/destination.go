package domain

// Destination is a described link to a downstream application.
type Destination struct {
	Name        string `json:"name"        yaml:"name"`
	Description string `json:"description" yaml:"description"`
	URL         string `json:"url"         yaml:"url"`
	Icon        string `json:"icon"        yaml:"icon"`
	Color       string `json:"color"       yaml:"color"`
}

// Catalog maps a role to the destinations it may open. A role may map to
// zero, one or many destinations.
type Catalog map[Role][]Destination

// For returns a copy of the destinations for role. Unknown roles get none.
func (c Catalog) For(role Role) []Destination {
	dests := c[role]
	if len(dests) == 0 {
		return nil
	}
	out := make([]Destination, len(dests))
	copy(out, dests)
	return out
}

// DefaultCatalog returns the built-in role mapping.
func DefaultCatalog() Catalog {
	return Catalog{
		RoleAgent: {{
			Name:        "Agency App",
			Description: "Manage agency details and orders",
			URL:         "http://localhost:5174",
			Icon:        "building",
			Color:       "from-blue-600 to-indigo-600",
		}},
		RoleStaff: {{
			Name:        "Staff App",
			Description: "Warehouse management and order processing",
			URL:         "http://localhost:5176",
			Icon:        "users",
			Color:       "from-green-600 to-emerald-600",
		}},
		RoleAdmin: {{
			Name:        "Admin App",
			Description: "System and user administration",
			URL:         "http://localhost:5178",
			Icon:        "shield",
			Color:       "from-purple-600 to-violet-600",
		}},
	}
}

// ViewKind is one of the three mutually exclusive launcher views.
type ViewKind string

const (
	ViewChecking        ViewKind = "checking"
	ViewUnauthenticated ViewKind = "unauthenticated"
	ViewAuthenticated   ViewKind = "authenticated"
)

// View is the launcher's render model for one session state.
type View struct {
	Kind         ViewKind      `json:"kind"`
	Identity     *Identity     `json:"identity,omitempty"`
	DisplayName  string        `json:"display_name,omitempty"`
	Destinations []Destination `json:"destinations"`
	NoAccess     bool          `json:"no_access"`
	LoginURL     string        `json:"login_url,omitempty"`
	LogoutURL    string        `json:"logout_url,omitempty"`
}
