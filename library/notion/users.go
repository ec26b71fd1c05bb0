package notion

import (
	"context"
	"net/http"

	"github.com/Laisky/errors/v2"
)

// RetrieveUser returns the user by id
func (c *Client) RetrieveUser(ctx context.Context, userID string) (*User, error) {
	id, err := NormalizeID(userID)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	user := new(User)
	if err = c.do(ctx, http.MethodGet, "/users/"+id, nil, nil, user); err != nil {
		return nil, errors.Wrapf(err, "retrieve user %s", id)
	}

	return user, nil
}
