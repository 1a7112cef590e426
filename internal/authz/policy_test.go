package authz_test

import (
	"errors"
	"testing"

	"github.com/linemk/tool-shop/internal/authz"
	"github.com/stretchr/testify/assert"
)

func TestPolicy_Authorize(t *testing.T) {
	policy := authz.NewPolicy()
	admin := &authz.Identity{Email: "admin@x.com", Role: "admin"}
	user := &authz.Identity{Email: "a@x.com"}

	tests := []struct {
		name    string
		id      *authz.Identity
		action  authz.Action
		res     authz.Resource
		allowed bool
	}{
		{"admin creates tool", admin, authz.ActionToolCreate, authz.Resource{}, true},
		{"user creates tool", user, authz.ActionToolCreate, authz.Resource{}, false},
		{"admin deletes tool", admin, authz.ActionToolDelete, authz.Resource{}, true},
		{"user deletes tool", user, authz.ActionToolDelete, authz.Resource{}, false},
		{"admin promotes", admin, authz.ActionUserPromote, authz.Resource{}, true},
		{"user promotes", user, authz.ActionUserPromote, authz.Resource{}, false},
		{"owner lists own orders", user, authz.ActionOrderList, authz.Resource{Owner: "a@x.com"}, true},
		{"owner email in other case", user, authz.ActionOrderList, authz.Resource{Owner: "A@X.com"}, true},
		{"user lists foreign orders", user, authz.ActionOrderList, authz.Resource{Owner: "b@x.com"}, false},
		{"user lists orders without owner", user, authz.ActionOrderList, authz.Resource{}, false},
		{"admin lists foreign orders", admin, authz.ActionOrderList, authz.Resource{Owner: "b@x.com"}, true},
		{"unknown action", admin, authz.Action("tool:melt"), authz.Resource{}, false},
		{"no identity", nil, authz.ActionToolCreate, authz.Resource{}, false},
		{"role not admin", &authz.Identity{Email: "c@x.com", Role: "Admin"}, authz.ActionToolCreate, authz.Resource{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Authorize(tt.id, tt.action, tt.res)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.True(t, errors.Is(err, authz.ErrForbidden))

			var denied *authz.DeniedError
			assert.True(t, errors.As(err, &denied))
			assert.Equal(t, tt.action, denied.Action)
		})
	}
}
