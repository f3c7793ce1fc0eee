// Package service resolves user identifiers against a fixed directory.
package service

// Usuario is a user record synthesized per lookup.
type Usuario struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

const (
	unknownName  = "Usuario Desconocido"
	unknownEmail = "desconocido@example.com"
)

// UserDirectory looks up users by id.
type UserDirectory interface {
	// FindByID always returns a record: unknown ids yield a placeholder carrying the requested id.
	FindByID(id int64) Usuario
}

// Directory is a read-only, in-memory UserDirectory.
type Directory struct {
	users map[int64]Usuario
}

// NewDirectory returns the directory with its two known users.
func NewDirectory() *Directory {
	return &Directory{
		users: map[int64]Usuario{
			1: {ID: 1, Name: "Alice", Email: "alice@example.com"},
			2: {ID: 2, Name: "Bob", Email: "bob@example.com"},
		},
	}
}

func (d *Directory) FindByID(id int64) Usuario {
	if u, ok := d.users[id]; ok {
		return u
	}
	return Usuario{ID: id, Name: unknownName, Email: unknownEmail}
}
