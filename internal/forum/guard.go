package forum

// ModerationGuard gates mutations on ownership and the admin role.
// An anonymous actor always fails with ErrUnauthenticated first.
type ModerationGuard struct{}

// AssertAuthenticated rejects anonymous actors
func (ModerationGuard) AssertAuthenticated(actor *Actor) error {
	if actor == nil || actor.UserID == "" {
		return ErrUnauthenticated
	}
	return nil
}

// AssertCanEdit allows only the author
func (g ModerationGuard) AssertCanEdit(actor *Actor, authorID string) error {
	if err := g.AssertAuthenticated(actor); err != nil {
		return err
	}
	if actor.UserID != authorID {
		return ErrForbidden
	}
	return nil
}

// AssertCanDelete allows the author or an admin
func (g ModerationGuard) AssertCanDelete(actor *Actor, authorID string) error {
	if err := g.AssertAuthenticated(actor); err != nil {
		return err
	}
	if actor.UserID != authorID && !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// AssertCanViewHistory allows the author or an admin
func (g ModerationGuard) AssertCanViewHistory(actor *Actor, authorID string) error {
	return g.AssertCanDelete(actor, authorID)
}

// AssertAdmin allows admins only
func (g ModerationGuard) AssertAdmin(actor *Actor) error {
	if err := g.AssertAuthenticated(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
