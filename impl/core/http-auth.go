package core

import (
	"crypto/subtle"
	"errors"
	"parcelsync/entity"
)

const operatorName = "operator"

var errInvalidToken = errors.New("invalid token")

// AuthenticateByToken accepts the configured operator key only; an empty key locks the API.
func (c *Core) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if token == "" || c.authKey == "" {
		return nil, errInvalidToken
	}
	if subtle.ConstantTimeCompare([]byte(c.authKey), []byte(token)) != 1 {
		return nil, errInvalidToken
	}
	return &entity.UserAuth{Name: operatorName}, nil
}
