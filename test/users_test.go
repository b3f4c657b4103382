//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fitplan/internal/users"
)

func (s *IntegrationTestSuite) TestRegisterLoginLogout() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	email := gofakeit.Email()
	status, body := s.doRequest(ctx, http.MethodPost, "/user/register", "", users.NewUser{
		Name:     gofakeit.Name(),
		Email:    email,
		Password: testPassword,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	registered := decodeJSON[users.AuthResponse](t, body)
	assert.Equal(t, users.ActivityModerate, registered.User.ActivityLevel)
	assert.Nil(t, registered.User.BMI)
	assert.Equal(t, 1, s.countRows("app_user", "email = $1", email))

	// same email again
	status, _ = s.doRequest(ctx, http.MethodPost, "/user/register", "", users.NewUser{
		Name:     gofakeit.Name(),
		Email:    email,
		Password: testPassword,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.doRequest(ctx, http.MethodPost, "/user/login", "", users.LoginRequest{
		Email:    email,
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.doRequest(ctx, http.MethodPost, "/user/login", "", users.LoginRequest{
		Email:    email,
		Password: testPassword,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	loggedIn := decodeJSON[users.AuthResponse](t, body)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	status, body = s.doRequest(ctx, http.MethodGet, "/user/profile", loggedIn.Token, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, email, decodeJSON[users.View](t, body).Email)

	status, _ = s.doRequest(ctx, http.MethodPost, "/user/logout", loggedIn.Token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.doRequest(ctx, http.MethodGet, "/user/profile", loggedIn.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// the registration token is a separate session and still works
	status, _ = s.doRequest(ctx, http.MethodGet, "/user/profile", registered.Token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func (s *IntegrationTestSuite) TestUpdateProfile() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token, user := s.registerUser(ctx)
	require.NotNil(t, user.TDEE)

	weight := *user.CurrentWeight - 5
	status, body := s.doRequest(ctx, http.MethodPut, "/user/profile", token, users.ProfileUpdate{
		CurrentWeight: &weight,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	updated := decodeJSON[users.View](t, body)
	require.NotNil(t, updated.CurrentWeight)
	assert.Equal(t, weight, *updated.CurrentWeight)
	assert.Less(t, *updated.TDEE, *user.TDEE)

	badAge := -3
	status, _ = s.doRequest(ctx, http.MethodPut, "/user/profile", token, users.ProfileUpdate{
		Age: &badAge,
	})
	assert.Equal(t, http.StatusBadRequest, status)
}
