package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"waseet-api/internal/entity"
	"waseet-api/internal/lifecycle"
	"waseet-api/internal/service"
	"waseet-api/internal/shipping"

	"github.com/labstack/echo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "secret-token"

type fakeRequestService struct {
	submittedDomain lifecycle.Domain
	submittedFields entity.Fields
	publicFilter    entity.PublicFilter
	publicPage      *entity.PaginationInput
	reviewInput     *entity.ReviewInput
	reviewErr       error
	donationErr     error
}

func (f *fakeRequestService) Submit(_ context.Context, domain lifecycle.Domain, fields entity.Fields) (*entity.SubmissionOutputModel, error) {
	f.submittedDomain = domain
	f.submittedFields = fields

	return &entity.SubmissionOutputModel{Id: "5b0f0c3e-0d1b-4a59-9bd5-3c8d9b5b6c11", Status: domain.Initial().String()}, nil
}

func (f *fakeRequestService) UpdateLastDonationDate(context.Context, string, string, string) error {
	return f.donationErr
}

func (f *fakeRequestService) SearchPublic(_ context.Context, _ lifecycle.Domain, filter entity.PublicFilter, pg *entity.PaginationInput) ([]entity.RequestPublicOutputModel, error) {
	f.publicFilter = filter
	f.publicPage = pg

	return []entity.RequestPublicOutputModel{{Id: "1", Title: "Insuline"}}, nil
}

func (f *fakeRequestService) GetPublic(_ context.Context, _ lifecycle.Domain, id string) (*entity.RequestPublicOutputModel, error) {
	if id != "1" {
		return nil, service.ErrRequestNotFound
	}

	return &entity.RequestPublicOutputModel{Id: "1"}, nil
}

func (f *fakeRequestService) ListForAdmin(_ context.Context, domain lifecycle.Domain, _ entity.RequestFilter, _ *entity.PaginationInput) ([]entity.RequestAdminOutputModel, error) {
	return []entity.RequestAdminOutputModel{{Id: "1", Domain: domain.String()}}, nil
}

func (f *fakeRequestService) GetForAdmin(_ context.Context, domain lifecycle.Domain, id string) (*entity.RequestAdminOutputModel, error) {
	return &entity.RequestAdminOutputModel{Id: id, Domain: domain.String()}, nil
}

func (f *fakeRequestService) Review(_ context.Context, domain lifecycle.Domain, id string, input *entity.ReviewInput) (*entity.RequestAdminOutputModel, error) {
	f.reviewInput = input
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}

	return &entity.RequestAdminOutputModel{Id: id, Domain: domain.String(), Status: input.Status.String()}, nil
}

func (f *fakeRequestService) Export(_ context.Context, _ lifecycle.Domain, _ entity.RequestFilter, w io.Writer) error {
	_, err := w.Write([]byte("xlsx"))

	return err
}

type fakeOrderService struct {
	cart        entity.Cart
	checkoutErr error
}

func (f *fakeOrderService) Checkout(_ context.Context, cart entity.Cart) (*entity.CheckoutOutputModel, error) {
	f.cart = cart
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}

	return &entity.CheckoutOutputModel{GroupId: "g"}, nil
}

func (f *fakeOrderService) ListOrders(context.Context, lifecycle.Status, *entity.PaginationInput) ([]entity.OrderOutputModel, error) {
	return []entity.OrderOutputModel{}, nil
}

func (f *fakeOrderService) UpdateOrderStatus(_ context.Context, id string, status lifecycle.Status, _ string) (*entity.OrderOutputModel, error) {
	return &entity.OrderOutputModel{Id: id, Status: status.String()}, nil
}

func (f *fakeOrderService) ShippingRates() []shipping.Rate {
	return []shipping.Rate{{Code: 16, Name: "Alger", Home: 400, Desk: 250}}
}

type fakeDiagnosticsService struct {
	pingErr error
}

func (f *fakeDiagnosticsService) Ping(context.Context) error { return f.pingErr }

func (f *fakeDiagnosticsService) Stats(context.Context) entity.DiagnosticsOutputModel {
	return entity.DiagnosticsOutputModel{OpenConnections: 2}
}

type testServer struct {
	e        *echo.Echo
	requests *fakeRequestService
	orders   *fakeOrderService
	diag     *fakeDiagnosticsService
}

func newTestServer() *testServer {
	s := &testServer{
		e:        echo.New(),
		requests: &fakeRequestService{},
		orders:   &fakeOrderService{},
		diag:     &fakeDiagnosticsService{},
	}
	SetupRoutesHandlers(s.e, &service.Services{
		Diagnostics: s.diag,
		Request:     s.requests,
		Order:       s.orders,
	}, RouterOptions{AdminToken: testToken})

	return s
}

func (s *testServer) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	return rec
}

func adminHeaders() map[string]string {
	return map[string]string{
		echo.HeaderAuthorization: "Bearer " + testToken,
		"X-Actor":                "amel",
	}
}

func decodeReason(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body.Reason
}

func TestPostLocalMedicine(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodPost, "/api/requests/medicine/local",
		`{"name":"A","phone":"0550000000","medicineName":"Paracetamol","city":"Alger","wilaya":"Alger","confirmInfo":true}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out entity.SubmissionOutputModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "pending", out.Status)

	assert.Equal(t, lifecycle.Medicine, s.requests.submittedDomain)
	assert.Equal(t, "Paracetamol", s.requests.submittedFields.String("medicineName"))
	assert.Equal(t, "local", s.requests.submittedFields.String("requestType"))
	assert.Equal(t, true, s.requests.submittedFields["confirmInfo"])
	assert.NotContains(t, s.requests.submittedFields, "email")
}

func TestPostLocalMedicineRequiresConfirmation(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodPost, "/api/requests/medicine/local",
		`{"name":"A","phone":"0550000000","medicineName":"Paracetamol","city":"Alger","wilaya":"Alger"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeReason(t, rec), "'ConfirmInfo': should be true")
	assert.Empty(t, s.requests.submittedDomain)
}

func TestPostFormsValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		status int
		reason string
	}{
		{
			name:   "foreign medicine needs country",
			target: "/api/requests/medicine/foreign",
			body:   `{"name":"A","phone":"0550000000","medicineName":"X","confirmInfo":true}`,
			status: http.StatusBadRequest,
			reason: "'Country': this field is required",
		},
		{
			name:   "blood type out of list",
			target: "/api/requests/blood-donors",
			body:   `{"name":"A","phone":"0550000000","bloodType":"C+","wilaya":"Oran","city":"Oran"}`,
			status: http.StatusBadRequest,
			reason: "'BloodType': should have value in",
		},
		{
			name:   "exchange needs distinct currencies",
			target: "/api/requests/exchange",
			body:   `{"name":"A","phone":"0550000000","wilaya":"Oran","amount":100,"fromCurrency":"EUR","toCurrency":"EUR","direction":"buy"}`,
			status: http.StatusBadRequest,
			reason: "'ToCurrency': should differ from FromCurrency",
		},
		{
			name:   "exchange amount must be positive",
			target: "/api/requests/exchange",
			body:   `{"name":"A","phone":"0550000000","wilaya":"Oran","amount":0,"fromCurrency":"EUR","toCurrency":"DZD","direction":"sell"}`,
			status: http.StatusBadRequest,
			reason: "'Amount': should be greater than 0",
		},
		{
			name:   "agent needs services",
			target: "/api/requests/agents",
			body:   `{"name":"A","phone":"0550000000","country":"France","city":"Lyon","services":[]}`,
			status: http.StatusBadRequest,
			reason: "'Services': should contain at least one value",
		},
		{
			name:   "malformed body",
			target: "/api/requests/import",
			body:   `{"name":`,
			status: http.StatusBadRequest,
			reason: "Input data is not formed correctly",
		},
		{
			name:   "valid diaspora volunteer",
			target: "/api/requests/diaspora-volunteers",
			body:   `{"name":"A","phone":"0550000000","country":"Canada","city":"Montréal","canCarry":true,"helpTypes":["transport"]}`,
			status: http.StatusCreated,
		},
		{
			name:   "valid import",
			target: "/api/requests/import",
			body:   `{"name":"A","phone":"0550000000","wilaya":"Blida","productDescription":"Laptop","productUrl":"https://shop.example.com/p/1","budget":90000}`,
			status: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			rec := s.do(http.MethodPost, tt.target, tt.body, nil)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.reason != "" {
				assert.Contains(t, decodeReason(t, rec), tt.reason)
			}
		})
	}
}

func TestUpdateLastDonation(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodPatch, "/api/requests/blood-donors/abc/last-donation", `{"phone":"0550000000","lastDonationDate":"2026-13-01"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.requests.donationErr = service.ErrDonorNotFound
	rec = s.do(http.MethodPatch, "/api/requests/blood-donors/abc/last-donation", `{"phone":"0550000000","lastDonationDate":"2026-02-01"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s.requests.donationErr = nil
	rec = s.do(http.MethodPatch, "/api/requests/blood-donors/abc/last-donation", `{"phone":"0550000000","lastDonationDate":"2026-02-01"}`, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSearchMedicine(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodGet, "/api/medicine?q=insuline&urgent=true&wilaya=Alger", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "insuline", s.requests.publicFilter.Term)
	assert.Equal(t, "Alger", s.requests.publicFilter.Wilaya)
	require.NotNil(t, s.requests.publicFilter.Urgent)
	assert.True(t, *s.requests.publicFilter.Urgent)
	assert.Equal(t, 20, s.requests.publicPage.Limit)

	rec = s.do(http.MethodGet, "/api/medicine?limit=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/medicine/1", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/medicine/2", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRequiresTokenAndActor(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodGet, "/api/admin/requests/medicine", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/requests/medicine", "", map[string]string{echo.HeaderAuthorization: "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/requests/medicine", "", map[string]string{echo.HeaderAuthorization: "Bearer " + testToken})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/requests/blood-donor", "", adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"domain":"blood_donor"`)

	rec = s.do(http.MethodGet, "/api/admin/requests/tenders", "", adminHeaders())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewRequest(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodPut, "/api/admin/requests/medicine/42/review",
		`{"status":"in_progress","curated":{"title":"T","summary":"S","primaryImage":"I"},"adminNotes":"checked"}`, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, s.requests.reviewInput)
	assert.Equal(t, "amel", s.requests.reviewInput.Actor)
	assert.Equal(t, lifecycle.InProgress, *s.requests.reviewInput.Status)
	assert.Equal(t, "checked", *s.requests.reviewInput.AdminNotes)
	assert.Equal(t, "I", s.requests.reviewInput.Curated.PrimaryImage)
	assert.Nil(t, s.requests.reviewInput.AgentAssignment)
}

func TestReviewRequestErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"missing curated fields", &lifecycle.ValidationError{Status: lifecycle.InProgress, Missing: []string{"primaryImage"}}, http.StatusUnprocessableEntity},
		{"unknown status", fmt.Errorf("%w: %q", lifecycle.ErrUnknownStatus, "shipped"), http.StatusBadRequest},
		{"terminal status", lifecycle.ErrTerminalStatus, http.StatusConflict},
		{"not found", service.ErrRequestNotFound, http.StatusNotFound},
		{"assignment on wrong domain", service.ErrAssignmentNotAllowed, http.StatusBadRequest},
		{"database down", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			s.requests.reviewErr = tt.err

			rec := s.do(http.MethodPut, "/api/admin/requests/medicine/42/review", `{"status":"in_progress"}`, adminHeaders())
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestReviewRequestReportsMissingFields(t *testing.T) {
	s := newTestServer()
	s.requests.reviewErr = &lifecycle.ValidationError{Status: lifecycle.InProgress, Missing: []string{"primaryImage"}}

	rec := s.do(http.MethodPut, "/api/admin/requests/medicine/42/review", `{"status":"in_progress"}`, adminHeaders())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body validationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"primaryImage"}, body.Missing)
}

func TestExportRequests(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodGet, "/api/admin/requests/exchange/export", "", adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "exchange-")
	assert.Equal(t, "xlsx", rec.Body.String())
}

func TestCheckout(t *testing.T) {
	s := newTestServer()

	body := `{
		"contact": {"name":"Walid","phone":"0555111222","address":"12 rue Didouche","wilaya":"Alger","deliveryType":"home","publicNote":"Appeler"},
		"items": [
			{"productId":"p-1","name":"Tensiomètre","quantity":2,"unitPrice":"500"},
			{"name":"Lait","quantity":1,"unitPrice":0,"productUrl":"https://shop.example.fr/lait"}
		]
	}`
	rec := s.do(http.MethodPost, "/api/orders/checkout", body, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, s.orders.cart.Items, 2)
	assert.Equal(t, entity.HomeDelivery, s.orders.cart.Contact.DeliveryType)
	assert.Equal(t, "Appeler", s.orders.cart.PublicNote)
	assert.Equal(t, "500", s.orders.cart.Items[0].UnitPrice.String())
	assert.True(t, s.orders.cart.Items[1].IsCustom())
}

func TestCheckoutErrors(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodPost, "/api/orders/checkout", `{"contact":{"name":"W","phone":"0555111222","address":"a","wilaya":"Alger","deliveryType":"drone"},"items":[{"name":"x","quantity":1}]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/orders/checkout", `{"contact":{"name":"W","phone":"0555111222","address":"a","wilaya":"Alger","deliveryType":"desk"},"items":[]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.orders.checkoutErr = fmt.Errorf("%w: %w", service.ErrInvalidCart, shipping.ErrUnknownWilaya)
	rec = s.do(http.MethodPost, "/api/orders/checkout", `{"contact":{"name":"W","phone":"0555111222","address":"a","wilaya":"Atlantis","deliveryType":"desk"},"items":[{"name":"x","quantity":1}]}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeReason(t, rec), "no delivery rate")
}

func TestAdminOrders(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodPut, "/api/admin/orders/o-1/status", `{"status":"processing"}`, adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"processing"`)

	rec = s.do(http.MethodPut, "/api/admin/orders/o-1/status", `{"status":"shipped"}`, adminHeaders())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/orders?status=done", "", adminHeaders())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestShippingRatesAndPing(t *testing.T) {
	s := newTestServer()

	rec := s.do(http.MethodGet, "/api/shipping/rates", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Alger"`)

	rec = s.do(http.MethodGet, "/api/ping", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"openConnections":2`)

	s.diag.pingErr = errors.New("down")
	rec = s.do(http.MethodGet, "/api/ping", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()
	_ = s.do(http.MethodGet, "/api/ping", "", nil)

	rec := s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "waseet_http_request_duration_seconds")
}
