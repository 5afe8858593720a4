package database

// Session is the persisted authentication triple. There is at most one row;
// the triple is always written and cleared as a whole.
type Session struct {
	Token         string
	UserData      string // serialized user profile JSON
	Authenticated bool
}
