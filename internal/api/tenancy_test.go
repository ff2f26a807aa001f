package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/store"
)

func TestOwnerInvisibleToOtherClinic(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createOwner(demo, "Ana")

	resp := env.as(other, http.MethodGet, "/api/owners", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]model.Owner](t, resp))

	resp = env.as(other, http.MethodGet, "/api/owners/"+itoa(owner.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.as(demo, http.MethodGet, "/api/owners", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	owners := decode[[]model.Owner](t, resp)
	require.Len(t, owners, 1)
	assert.Equal(t, demo, owners[0].ClinicCode)
}

func TestForeignUpdateAndDeleteAreNotFound(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createOwner(demo, "Ana")
	path := "/api/owners/" + itoa(owner.ID)

	resp := env.as(other, http.MethodPut, path, map[string]any{"first_name": "Hijacked", "last_name": "X"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.as(other, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.as(demo, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[model.Owner](t, resp)
	assert.Equal(t, "Ana", got.FirstName)
	assert.Equal(t, demo, got.ClinicCode)
}

func TestUpdateCannotMoveRecord(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createOwner(demo, "Ana")

	resp := env.as(demo, http.MethodPut, "/api/owners/"+itoa(owner.ID), map[string]any{
		"first_name": "Ana", "last_name": "Kos", "clinic_code": other,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[model.Owner](t, resp)
	assert.Equal(t, "Kos", updated.LastName)
	assert.Equal(t, demo, updated.ClinicCode)

	resp = env.as(other, http.MethodGet, "/api/owners", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]model.Owner](t, resp))
}

func TestConflictingClinicInBody(t *testing.T) {
	env := newTestEnv(t)

	resp := env.as(demo, http.MethodPost, "/api/owners", map[string]any{
		"first_name": "Ana", "last_name": "Novak", "clinic_code": other,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.as(other, http.MethodGet, "/api/owners", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]model.Owner](t, resp))
}

func TestCrossClinicReferenceRejected(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createOwner(demo, "Ana")

	resp := env.as(other, http.MethodPost, "/api/pets", map[string]any{
		"owner_id": owner.ID, "name": "Stray", "species": "Cat",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorMessage(t, resp), "owner_id")
}

func TestTokenForOtherClinicForbidden(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/api/owners", env.tokens[demo], other, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUnresolvedClinic(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/api/owners", env.tokens[demo], "", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "clinic code not resolved", errorMessage(t, resp))
}

func TestDefaultClinicFallback(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, store.SetSetting(context.Background(), env.db, store.SettingDefaultClinicCode, demo))

	resp := env.do(http.MethodPost, "/api/owners", env.tokens[demo], "", map[string]any{"first_name": "Ana", "last_name": "Novak"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, demo, decode[model.Owner](t, resp).ClinicCode)

	// The header still wins over the fallback.
	resp = env.do(http.MethodGet, "/api/owners", env.tokens[other], other, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]model.Owner](t, resp))

	// A token of another clinic does not match the fallback either.
	resp = env.do(http.MethodGet, "/api/owners", env.tokens[other], "", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequireClinicHeaderDisablesFallback(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.RequireClinicHeader = true })
	require.NoError(t, store.SetSetting(context.Background(), env.db, store.SettingDefaultClinicCode, demo))

	resp := env.do(http.MethodGet, "/api/owners", env.tokens[demo], "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExemptRoutesIgnoreClinicHeader(t *testing.T) {
	env := newTestEnv(t)

	// A bogus header on exempt routes is never resolved or checked.
	resp := env.do(http.MethodGet, "/api/public/health", "", "NOPE", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPost, "/api/auth/login", "", other, map[string]string{
		"email": "admin@demo123.example", "password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, demo, decode[sessionResponse](t, resp).ClinicCode)
}

func TestConcurrentRequestsStayIsolated(t *testing.T) {
	env := newTestEnv(t)
	const perClinic = 20

	var wg sync.WaitGroup
	for i := range perClinic {
		for _, clinic := range []string{demo, other} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, createAndList(env, clinic, fmt.Sprintf("%s-%d", clinic, i)))
			}()
		}
	}
	wg.Wait()

	for _, clinic := range []string{demo, other} {
		resp := env.as(clinic, http.MethodGet, "/api/owners", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, decode[[]model.Owner](t, resp), perClinic)
	}
}

// createAndList creates an owner in clinic and checks that the clinic's
// listing only contains its own owners. It runs outside the test goroutine,
// so it reports failures as errors.
func createAndList(env *testEnv, clinic, name string) error {
	resp, err := env.send(http.MethodPost, "/api/owners", env.tokens[clinic], clinic,
		map[string]any{"first_name": name, "last_name": "Owner"})
	if err != nil {
		return err
	}
	var created model.Owner
	err = json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated || created.ClinicCode != clinic {
		return fmt.Errorf("create in %s: status %d, stored in %q", clinic, resp.StatusCode, created.ClinicCode)
	}

	resp, err = env.send(http.MethodGet, "/api/owners", env.tokens[clinic], clinic, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var owners []model.Owner
	if err := json.NewDecoder(resp.Body).Decode(&owners); err != nil {
		return err
	}
	for _, o := range owners {
		if o.ClinicCode != clinic {
			return fmt.Errorf("clinic %s saw owner %d of %s", clinic, o.ID, o.ClinicCode)
		}
	}
	return nil
}
