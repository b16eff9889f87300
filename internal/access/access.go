// Package access decides who may change what. The checks are pure and take
// an Actor loaded from the users collection, never from the request.
package access

import (
	"errors"

	"github.com/anonto42/campustrack/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrForbidden is returned when the actor lacks permission
var ErrForbidden = errors.New("forbidden")

// Actor is the authenticated user performing a request
type Actor struct {
	ID      primitive.ObjectID
	Name    string
	IsAdmin bool
}

// ActorFromUser builds an Actor from the stored user
func ActorFromUser(u *models.User) Actor {
	return Actor{ID: u.ID, Name: u.StudentName, IsAdmin: u.IsAdmin}
}

func forbidden(msg string) error {
	return &Error{msg: msg}
}

// Error is an ErrForbidden with a user facing message
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return ErrForbidden }

// CanEditPost allows only the owner. Admins moderate by deleting.
func CanEditPost(a Actor, p *models.Post) error {
	if p.UserID != a.ID {
		return forbidden("Not authorized to update this post")
	}
	return nil
}

// CanDeletePost allows the owner or an admin
func CanDeletePost(a Actor, p *models.Post) error {
	if p.UserID != a.ID && !a.IsAdmin {
		return forbidden("Not authorized to delete this post")
	}
	return nil
}

// CanDeleteComment allows the author or an admin
func CanDeleteComment(a Actor, c *models.Comment) error {
	if c.UserID != a.ID && !a.IsAdmin {
		return forbidden("Not authorized to delete this comment")
	}
	return nil
}

// CanManageNotification allows only the recipient
func CanManageNotification(a Actor, n *models.Notification) error {
	if n.UserID != a.ID {
		return forbidden("Not authorized to modify this notification")
	}
	return nil
}

// CanViewNotifications allows only the recipient to read or clear an inbox
func CanViewNotifications(a Actor, userID primitive.ObjectID) error {
	if userID != a.ID {
		return forbidden("Not authorized to access these notifications")
	}
	return nil
}

// CanEditUser allows the user themself or an admin
func CanEditUser(a Actor, target *models.User) error {
	if target.ID != a.ID && !a.IsAdmin {
		return forbidden("Not authorized to update this profile")
	}
	return nil
}

// CanDeleteUser allows self deletion by non-admins and admin deletion of
// non-admins. An admin account cannot be deleted through this path.
func CanDeleteUser(a Actor, target *models.User) error {
	if target.IsAdmin {
		if target.ID == a.ID {
			return forbidden("Admin cannot delete their own account")
		}
		return forbidden("Cannot delete another admin")
	}
	if target.ID != a.ID && !a.IsAdmin {
		return forbidden("Not authorized to delete this user")
	}
	return nil
}

// RequireAdmin allows only admins
func RequireAdmin(a Actor) error {
	if !a.IsAdmin {
		return forbidden("Admin access required")
	}
	return nil
}
