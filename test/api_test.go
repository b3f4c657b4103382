//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fitplan/internal/users"
)

const testPassword = "integration-pass-123"

// doRequest sends body (if not nil) as JSON and returns the status code and raw response body.
func (s *IntegrationTestSuite) doRequest(ctx context.Context, method, path, token string, body any) (int, []byte) {
	t := s.T()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBytes
}

func decodeJSON[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

// registerUser registers a fresh user with a complete profile and returns the session token.
func (s *IntegrationTestSuite) registerUser(ctx context.Context) (string, users.View) {
	t := s.T()

	age := gofakeit.Number(20, 60)
	gender := users.GenderFemale
	height := float64(gofakeit.Number(155, 195))
	weight := float64(gofakeit.Number(60, 100))

	status, body := s.doRequest(ctx, http.MethodPost, "/user/register", "", users.NewUser{
		Name:          gofakeit.Name(),
		Email:         gofakeit.Email(),
		Password:      testPassword,
		Age:           &age,
		Gender:        &gender,
		HeightCm:      &height,
		CurrentWeight: &weight,
		ActivityLevel: users.ActivityModerate,
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	authResp := decodeJSON[users.AuthResponse](t, body)
	require.NotEmpty(t, authResp.Token)
	return authResp.Token, authResp.User
}

func (s *IntegrationTestSuite) countRows(table, where string, args ...any) int {
	var count int
	query := fmt.Sprintf("SELECT count(*) FROM %s WHERE %s", table, where)
	require.NoError(s.T(), s.DB.QueryRow(query, args...).Scan(&count))
	return count
}
