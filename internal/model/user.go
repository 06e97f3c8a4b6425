package model

// User represents a registered student as stored in the `users`
// table.  A user row is only written once the sign-up OTP has been
// verified; afterwards only the password hash changes.
//
// Fields:
//  ID           – primary key identifier (uuid).
//  Firstname    – given name, ASCII letters only.
//  Lastname     – family name, ASCII letters only.
//  Regno        – unique nine digit registration number.
//  PasswordHash – bcrypt hashed password.
type User struct {
	ID           string // users.id
	Firstname    string // users.firstname
	Lastname     string // users.lastname
	Regno        string // users.regno
	PasswordHash string // users.password
}

// UserSummary is the public view of a user returned by search listings.
type UserSummary struct {
	ID        string `json:"_id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Regno     string `json:"regno"`
}

// Summary strips the credential from u.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Firstname: u.Firstname, Lastname: u.Lastname, Regno: u.Regno}
}

// KeyValuePair is an operator secret stored in `key_value_pairs`.
// Values are cipher-encrypted at rest.
type KeyValuePair struct {
	Name  string // key_value_pairs.name
	Value string // key_value_pairs.value
}

// Names of the secrets holding the outbound mailbox credentials.
const (
	AlertEmailAddressKey  = "alert-email-address"
	AlertEmailPasswordKey = "alert-email-password"
)
