package domain

// Identity is the authenticated caller decoded from a verified token.
type Identity struct {
	SubjectID string
	Role      Role
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i.SubjectID == "" && i.Role == ""
}
