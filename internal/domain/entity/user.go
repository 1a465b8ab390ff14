package entity

// Roles que puede traer un User desde la API.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User representa al usuario autenticado de la tienda.
// Inmutable una vez obtenido: solo un fetch nuevo lo reemplaza.
type User struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Role      string // opcional: USER, ADMIN
}

// FullName devuelve nombre y apellido concatenados para presentación.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
