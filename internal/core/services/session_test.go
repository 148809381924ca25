// internal/core/services/session_test.go
package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/poultry-storefront/internal/adapters/api"
	"github.com/ammerola/poultry-storefront/internal/adapters/localstore"
	"github.com/ammerola/poultry-storefront/internal/core/domain"
	"github.com/ammerola/poultry-storefront/internal/core/ports"
	"github.com/ammerola/poultry-storefront/internal/core/services"
	"github.com/ammerola/poultry-storefront/test/helpers"
	"github.com/ammerola/poultry-storefront/test/mocks"
)

func TestSession_Hydrate(t *testing.T) {
	tests := []struct {
		name      string
		seed      map[string]string
		wantToken string
		wantUser  bool
		wantRole  domain.Role
	}{
		{
			name: "restores_token_and_user",
			seed: map[string]string{
				ports.StorageKeyAccessToken: "jwt",
				ports.StorageKeyUser:        `{"id": 3, "username": "sam", "role": "seller"}`,
			},
			wantToken: "jwt",
			wantUser:  true,
			wantRole:  domain.RoleSeller,
		},
		{
			name: "undefined_user_is_absent",
			seed: map[string]string{
				ports.StorageKeyAccessToken: "jwt",
				ports.StorageKeyUser:        "undefined",
			},
			wantToken: "jwt",
		},
		{
			name:     "malformed_user_is_absent",
			seed:     map[string]string{ports.StorageKeyUser: "{oops"},
			wantUser: false,
		},
		{
			name: "role_defaults_to_buyer",
			seed: map[string]string{
				ports.StorageKeyUser: `{"id": 4, "username": "bo"}`,
			},
			wantUser: true,
			wantRole: domain.RoleBuyer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			session := services.NewSession(mocks.NewMockAuthAPI(ctrl), localstore.NewMemoryStore(tt.seed), helpers.TestLogger())

			assert.Equal(t, tt.wantToken, session.Token())
			user := session.CurrentUser()
			if !tt.wantUser {
				assert.Nil(t, user)
				assert.False(t, session.State().Authenticated())
				return
			}
			require.NotNil(t, user)
			assert.Equal(t, tt.wantRole, user.Role)
		})
	}
}

func TestSession_LoginAndLogout(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthAPI(ctrl)
	store := localstore.NewMemoryStore(nil)
	session := services.NewSession(auth, store, helpers.TestLogger())

	var seen []services.SessionState
	session.OnChange(func(st services.SessionState) { seen = append(seen, st) })

	auth.EXPECT().Login(gomock.Any(), "sam", "pw").Return(&ports.LoginResult{
		Access: "jwt",
		User:   json.RawMessage(`{"id": 3, "username": "sam", "userRole": "seller"}`),
	}, nil)

	user, err := session.Login(ctx, "sam", "pw")
	require.NoError(t, err)
	assert.True(t, user.IsSeller())
	assert.Equal(t, "jwt", session.Token())

	token, ok, _ := store.Get(ports.StorageKeyAccessToken)
	assert.True(t, ok)
	assert.Equal(t, "jwt", token)
	rawUser, ok, _ := store.Get(ports.StorageKeyUser)
	require.True(t, ok)
	assert.Contains(t, rawUser, `"role":"seller"`)

	require.NoError(t, session.Logout())
	assert.Empty(t, session.Token())
	assert.Nil(t, session.CurrentUser())
	assert.Empty(t, store.Snapshot())

	require.Len(t, seen, 2)
	assert.True(t, seen[0].Authenticated())
	assert.False(t, seen[1].Authenticated())
}

func TestSession_LoginFailureKeepsState(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthAPI(ctrl)
	store := localstore.NewMemoryStore(nil)
	session := services.NewSession(auth, store, helpers.TestLogger())

	auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, &api.APIError{StatusCode: 401, Detail: "bad credentials"})

	_, err := session.Login(context.Background(), "sam", "nope")
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	assert.Empty(t, session.Token())
	assert.Empty(t, store.Snapshot())
}

func TestSession_Register(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "success"},
		{
			name:    "first_field_error",
			err:     &api.APIError{StatusCode: 400, Fields: map[string][]string{"username": {"already taken"}}},
			wantMsg: "username: already taken",
		},
		{
			name:    "network_error",
			err:     errors.New("dial tcp: refused"),
			wantMsg: "dial tcp: refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			auth := mocks.NewMockAuthAPI(ctrl)
			session := services.NewSession(auth, localstore.NewMemoryStore(nil), helpers.TestLogger())

			auth.EXPECT().Register(gomock.Any(), gomock.Any()).Return(tt.err)

			err := session.Register(context.Background(), ports.RegisterRequest{Username: "sam"})
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var regErr *services.RegistrationError
			require.ErrorAs(t, err, &regErr)
			assert.Equal(t, tt.wantMsg, regErr.Error())
		})
	}
}

func TestSession_DrivesOrderFeed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := gomock.NewController(t)
	auth := mocks.NewMockAuthAPI(ctrl)
	session := services.NewSession(auth, localstore.NewMemoryStore(nil), helpers.TestLogger())

	f := newFeed(t)
	f.source.EXPECT().Subscribe(gomock.Any(), gomock.Any()).Return(f.sub, nil)
	f.api.EXPECT().ListOrders(gomock.Any(), gomock.Any()).Return(orderPage(), nil).AnyTimes()
	f.sub.EXPECT().Close().Return(nil)

	f.feed.Watch(ctx, session)
	assert.False(t, f.feed.Active())

	auth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(&ports.LoginResult{
		Access: "jwt",
		User:   json.RawMessage(`{"id": 3, "role": "seller"}`),
	}, nil)
	_, err := session.Login(ctx, "sam", "pw")
	require.NoError(t, err)
	assert.True(t, f.feed.Active())

	require.NoError(t, session.Logout())
	assert.False(t, f.feed.Active())
}
