package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/klinika/internal/auth"
	"github.com/erazemk/klinika/internal/db"
	"github.com/erazemk/klinika/internal/metrics"
	"github.com/erazemk/klinika/internal/model"
	"github.com/erazemk/klinika/internal/requestid"
	"github.com/erazemk/klinika/internal/store"
	"github.com/erazemk/klinika/internal/tenant"
)

const (
	testJWTSecret = "test-secret"
	testPassword  = "correct-horse"
	demo          = "DEMO123"
	other         = "OTHER99"
)

type testEnv struct {
	t      *testing.T
	db     *sql.DB
	server *httptest.Server
	// tokens holds an administrator token per clinic.
	tokens map[string]string
}

func newTestEnv(t *testing.T, configure ...func(*Options)) *testEnv {
	t.Helper()
	database := db.NewTestDB(t)

	opts := Options{DB: database, JWTSecret: testJWTSecret, TokenTTL: time.Hour}
	for _, c := range configure {
		c(&opts)
	}

	server := httptest.NewServer(NewRouter(opts))
	t.Cleanup(server.Close)

	env := &testEnv{t: t, db: database, server: server, tokens: map[string]string{}}
	for _, code := range []string{demo, other} {
		_, err := store.CreateClinic(context.Background(), database, model.NewClinic(code, "Clinic "+code))
		require.NoError(t, err)
		env.tokens[code] = env.createUser(code, "admin@"+strings.ToLower(code)+".example", model.RoleAdministrator)
	}
	return env
}

// createUser stores a user of the clinic and returns a token for it.
func (e *testEnv) createUser(clinic, email, role string) string {
	e.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(e.t, err)

	u := &model.User{Name: "User " + email, Email: email, PasswordHash: string(hash), Role: role}
	u.ClinicCode = clinic
	u, err = store.CreateUser(context.Background(), e.db, u)
	require.NoError(e.t, err)

	token, err := auth.GenerateToken(testJWTSecret, time.Hour, u)
	require.NoError(e.t, err)
	return token
}

// send issues a JSON request. Empty token or clinic omit the header. It is
// safe to call from goroutines other than the test's.
func (e *testEnv) send(method, path, token, clinic string, body any) (*http.Response, error) {
	var r io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if clinic != "" {
		req.Header.Set(tenant.Header, clinic)
	}
	return http.DefaultClient.Do(req)
}

func (e *testEnv) do(method, path, token, clinic string, body any) *http.Response {
	e.t.Helper()
	resp, err := e.send(method, path, token, clinic, body)
	require.NoError(e.t, err)
	e.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// as sends a request as the administrator of clinic, with a matching header.
func (e *testEnv) as(clinic, method, path string, body any) *http.Response {
	e.t.Helper()
	return e.do(method, path, e.tokens[clinic], clinic, body)
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	return decode[map[string]string](t, resp)["error"]
}

func (e *testEnv) createOwner(clinic, first string) model.Owner {
	e.t.Helper()
	resp := e.as(clinic, http.MethodPost, "/api/owners", map[string]any{"first_name": first, "last_name": "Novak"})
	require.Equal(e.t, http.StatusCreated, resp.StatusCode)
	return decode[model.Owner](e.t, resp)
}

func TestHealthAndRequestID(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/api/public/health", "", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[map[string]string](t, resp)["status"])
	assert.NotEmpty(t, resp.Header.Get(requestid.Header))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/api/auth/login", "", "", map[string]string{
		"email": "admin@demo123.example", "password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sess := decode[sessionResponse](t, resp)
	assert.Equal(t, demo, sess.ClinicCode)
	require.NotEmpty(t, sess.Token)

	claims, err := auth.ValidateToken(testJWTSecret, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, demo, claims.ClinicCode)

	resp = env.do(http.MethodPost, "/api/auth/login", "", "", map[string]string{
		"email": "admin@demo123.example", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(http.MethodPost, "/api/auth/login", "", "", map[string]string{
		"email": "nobody@example.com", "password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterClinicAndSignup(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodPost, "/api/clinics", "", "", map[string]string{
		"clinic_name":    "Happy Paws",
		"admin_name":     "Maja",
		"admin_email":    "maja@happypaws.example",
		"admin_password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reg := decode[clinicRegistrationResponse](t, resp)
	code := reg.Clinic.ClinicCode
	assert.Regexp(t, `^PC\d{6}$`, code)
	assert.Equal(t, code, reg.ClinicCode)
	assert.Equal(t, model.RoleAdministrator, reg.User.Role)

	resp = env.do(http.MethodGet, "/api/settings", reg.Token, code, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Happy Paws", decode[model.Clinic](t, resp).ClinicName)

	resp = env.do(http.MethodGet, "/api/clinics/"+code, "", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Happy Paws", decode[map[string]string](t, resp)["clinic_name"])

	resp = env.do(http.MethodGet, "/api/clinics/PC000000", "", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	signup := map[string]string{"name": "Luka", "email": "luka@happypaws.example", "password": "longenough", "clinic_code": code}
	resp = env.do(http.MethodPost, "/api/auth/signup", "", "", signup)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, model.RoleVeterinarian, decode[sessionResponse](t, resp).User.Role)

	resp = env.do(http.MethodPost, "/api/auth/signup", "", "", signup)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	signup["email"], signup["clinic_code"] = "x@example.com", "NOPE"
	resp = env.do(http.MethodPost, "/api/auth/signup", "", "", signup)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(http.MethodGet, "/api/owners", "", demo, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/owners", "garbage", demo, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.createUser(demo, "nurse@demo123.example", model.RoleNurse)

	resp := env.do(http.MethodGet, "/api/owners", token, demo, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodPost, "/api/auth/logout", token, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/owners", token, demo, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPermissions(t *testing.T) {
	env := newTestEnv(t)
	token := env.createUser(demo, "desk@demo123.example", model.RoleReceptionist)

	resp := env.do(http.MethodGet, "/api/owners", token, demo, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/inventory", token, demo, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/users", token, demo, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/auth/me", token, demo, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	me := decode[struct {
		User        model.User        `json:"user"`
		Permissions model.Permissions `json:"permissions"`
	}](t, resp)
	assert.Equal(t, model.DefaultPermissions(model.RoleReceptionist), me.Permissions)

	// Grant inventory through an override.
	perms := model.DefaultPermissions(model.RoleReceptionist)
	perms.Inventory = true
	resp = env.as(demo, http.MethodPut, "/api/users/"+itoa(me.User.ID)+"/permissions", perms)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/inventory", token, demo, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeletedUserLosesAccess(t *testing.T) {
	env := newTestEnv(t)
	token := env.createUser(demo, "temp@demo123.example", model.RoleNurse)

	resp := env.as(demo, http.MethodGet, "/api/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var id int64
	for _, u := range decode[[]model.User](t, resp) {
		if u.Email == "temp@demo123.example" {
			id = u.ID
		}
	}
	require.NotZero(t, id)

	resp = env.as(demo, http.MethodDelete, "/api/users/"+itoa(id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(http.MethodGet, "/api/owners", token, demo, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOwnersAndPetsFlow(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createOwner(demo, "Ana")
	assert.Equal(t, demo, owner.ClinicCode)

	resp := env.as(demo, http.MethodPost, "/api/pets", map[string]any{
		"owner_id": owner.ID, "name": "Luna", "species": "Dog", "weight": 12.5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	pet := decode[model.Pet](t, resp)

	resp = env.as(demo, http.MethodGet, "/api/owners/"+itoa(owner.ID)+"/pets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	pets := decode[[]model.Pet](t, resp)
	require.Len(t, pets, 1)
	assert.Equal(t, pet.ID, pets[0].ID)

	resp = env.as(demo, http.MethodGet, "/api/pets?owner_id="+itoa(owner.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Pet](t, resp), 1)

	resp = env.as(demo, http.MethodDelete, "/api/owners/"+itoa(owner.ID), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.as(demo, http.MethodPost, "/api/owners", map[string]any{"first_name": "", "email": "bad"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	msg := errorMessage(t, resp)
	assert.Contains(t, msg, "first_name is required")
	assert.Contains(t, msg, "email must be a valid email address")

	resp = env.as(demo, http.MethodGet, "/api/owners/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.as(demo, http.MethodGet, "/api/owners/9999", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestClinicalRecordsFlow(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createOwner(demo, "Ana")
	resp := env.as(demo, http.MethodPost, "/api/pets", map[string]any{"owner_id": owner.ID, "name": "Luna", "species": "Cat"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	pet := decode[model.Pet](t, resp)

	resp = env.as(demo, http.MethodPost, "/api/records", map[string]any{
		"pet_id": pet.ID, "type": model.RecordCheckup, "title": "Annual checkup",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	rec := decode[model.MedicalRecord](t, resp)
	assert.Equal(t, model.RecordPending, rec.Status)
	assert.Equal(t, demo, rec.ClinicCode)

	resp = env.as(demo, http.MethodPost, "/api/prescriptions", map[string]any{
		"pet_id": pet.ID, "medication_name": "Amoxicillin", "dosage": "50mg", "refills_remaining": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	rx := decode[model.Prescription](t, resp)
	assert.Equal(t, model.PrescriptionActive, rx.Status)

	resp = env.as(demo, http.MethodPost, "/api/lab-tests", map[string]any{
		"pet_id": pet.ID, "test_type": "Bloodwork", "status": model.LabCompleted, "results": "normal",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	lab := decode[model.LabTest](t, resp)
	assert.NotNil(t, lab.CompletedDate)

	for _, path := range []string{"/api/records", "/api/prescriptions", "/api/lab-tests"} {
		resp = env.as(demo, http.MethodGet, path+"?pet_id="+itoa(pet.ID), nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Len(t, decode[[]map[string]any](t, resp), 1, path)

		resp = env.as(other, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Empty(t, decode[[]map[string]any](t, resp), path)
	}

	resp = env.as(other, http.MethodGet, "/api/records/"+itoa(rec.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.as(demo, http.MethodPost, "/api/records", map[string]any{"pet_id": pet.ID, "title": "No type"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.as(demo, http.MethodDelete, "/api/prescriptions/"+itoa(rx.ID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = env.as(demo, http.MethodGet, "/api/prescriptions/"+itoa(rx.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	nurse := env.createUser(demo, "nurse@demo123.example", model.RoleNurse)
	resp = env.do(http.MethodGet, "/api/records", nurse, demo, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	receptionist := env.createUser(demo, "desk@demo123.example", model.RoleReceptionist)
	resp = env.do(http.MethodGet, "/api/lab-tests", receptionist, demo, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEmptyListIsArray(t *testing.T) {
	env := newTestEnv(t)

	resp := env.as(demo, http.MethodGet, "/api/vaccinations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestInvoicePaymentFlow(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createOwner(demo, "Ana")

	resp := env.as(demo, http.MethodPost, "/api/invoices", map[string]any{
		"owner_id": owner.ID,
		"tax":      500,
		"items": []map[string]any{
			{"description": "Checkup", "category": model.ItemConsultation, "quantity": 1, "unit_price": 4000},
			{"description": "Pills", "category": model.ItemMedication, "quantity": 2, "unit_price": 750},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	inv := decode[model.Invoice](t, resp)
	assert.Equal(t, int64(6000), inv.Total)
	assert.Equal(t, model.InvoiceDraft, inv.Status)
	assert.True(t, strings.HasPrefix(inv.InvoiceNumber, "INV-"))

	resp = env.as(demo, http.MethodPost, "/api/payments/process", map[string]any{
		"invoice_id": inv.ID, "amount": 6000, "method": "CARD",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.as(demo, http.MethodGet, "/api/invoices/"+itoa(inv.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	paid := decode[model.Invoice](t, resp)
	assert.Equal(t, model.InvoicePaid, paid.Status)
	assert.NotNil(t, paid.PaidDate)

	resp = env.as(demo, http.MethodGet, "/api/payments/invoice/"+itoa(inv.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Payment](t, resp), 1)

	resp = env.as(demo, http.MethodGet, "/api/activities/entity/invoice/"+itoa(inv.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	acts := decode[[]model.Activity](t, resp)
	require.NotEmpty(t, acts)

	resp = env.as(demo, http.MethodPost, "/api/payments/process", map[string]any{
		"invoice_id": inv.ID, "amount": 100, "method": "CASH",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.as(demo, http.MethodGet, "/api/payments/invoice/"+itoa(inv.ID), nil)
	payments := decode[[]model.Payment](t, resp)
	require.Len(t, payments, 1)
	resp = env.as(demo, http.MethodDelete, "/api/payments/"+itoa(payments[0].ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.as(demo, http.MethodGet, "/api/invoices/"+itoa(inv.ID), nil)
	reopened := decode[model.Invoice](t, resp)
	assert.Equal(t, model.InvoiceSent, reopened.Status)
	assert.Nil(t, reopened.PaidDate)
}

func TestInvoiceNumbering(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createOwner(demo, "Ana")
	create := func(body map[string]any) *http.Response {
		body["owner_id"] = owner.ID
		return env.as(demo, http.MethodPost, "/api/invoices", body)
	}

	resp := create(map[string]any{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decode[model.Invoice](t, resp)
	resp = create(map[string]any{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decode[model.Invoice](t, resp)

	resp = env.as(demo, http.MethodDelete, "/api/invoices/"+itoa(first.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = create(map[string]any{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	third := decode[model.Invoice](t, resp)
	assert.NotEqual(t, second.InvoiceNumber, third.InvoiceNumber)

	resp = create(map[string]any{"invoice_number": second.InvoiceNumber})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, errorMessage(t, resp), second.InvoiceNumber)
}

func TestInventoryAdjust(t *testing.T) {
	env := newTestEnv(t)

	resp := env.as(demo, http.MethodPost, "/api/inventory", map[string]any{
		"name": "Gauze", "category": "SUPPLIES", "current_stock": 3, "min_stock": 5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	item := decode[model.InventoryItem](t, resp)

	resp = env.as(demo, http.MethodPost, "/api/inventory/"+itoa(item.ID)+"/adjust", map[string]any{"quantity": -10})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.as(demo, http.MethodPost, "/api/inventory/"+itoa(item.ID)+"/adjust", map[string]any{"quantity": 10, "reason": "delivery"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(13), decode[model.InventoryItem](t, resp).CurrentStock)

	resp = env.as(demo, http.MethodGet, "/api/inventory/low-stock", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]model.InventoryItem](t, resp))
}

func TestPetPhoto(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createOwner(demo, "Ana")
	resp := env.as(demo, http.MethodPost, "/api/pets", map[string]any{"owner_id": owner.ID, "name": "Luna", "species": "Cat"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	pet := decode[model.Pet](t, resp)

	var img bytes.Buffer
	src := image.NewRGBA(image.Rect(0, 0, 20, 10))
	src.Set(1, 1, color.RGBA{255, 0, 0, 255})
	require.NoError(t, png.Encode(&img, src))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("photo", "luna.png")
	require.NoError(t, err)
	_, err = fw.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	upload := func(clinic string) *http.Response {
		req, err := http.NewRequest(http.MethodPut, env.server.URL+"/api/pets/"+itoa(pet.ID)+"/photo", bytes.NewReader(body.Bytes()))
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+env.tokens[clinic])
		req.Header.Set(tenant.Header, clinic)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	assert.Equal(t, http.StatusNotFound, upload(other).StatusCode)
	require.Equal(t, http.StatusOK, upload(demo).StatusCode)

	resp = env.as(demo, http.MethodGet, "/api/pets/"+itoa(pet.ID)+"/photo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))

	resp = env.as(other, http.MethodGet, "/api/pets/"+itoa(pet.ID)+"/photo", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDashboardEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.createOwner(demo, "Ana")

	for _, path := range []string{
		"stats", "recent-activity", "performance", "revenue",
		"upcoming-appointments", "inventory-alerts", "recent-pets",
	} {
		resp := env.as(demo, http.MethodGet, "/api/dashboard/"+path, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp := env.as(demo, http.MethodGet, "/api/activities/recent?limit=5", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.Activity](t, resp), 1)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Metrics = metrics.New() })
	env.as(demo, http.MethodGet, "/api/owners", nil)

	resp := env.do(http.MethodGet, "/metrics", "", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `klinika_tenant_requests_total{clinic="DEMO123"} 1`)
	assert.Contains(t, string(body), `route="/api/owners`)
}

func TestMetricsDisabled(t *testing.T) {
	env := newTestEnv(t)
	resp := env.do(http.MethodGet, "/metrics", "", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
