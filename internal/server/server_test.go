package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	caserepo "github.com/vdmx/riskintel/internal/casework/repository"
	caseservice "github.com/vdmx/riskintel/internal/casework/service"
	"github.com/vdmx/riskintel/internal/catalog"
	"github.com/vdmx/riskintel/internal/clock"
	"github.com/vdmx/riskintel/internal/config"
	"github.com/vdmx/riskintel/internal/draft"
	"github.com/vdmx/riskintel/internal/observability"
	paymentdomain "github.com/vdmx/riskintel/internal/payment/domain"
	paymentrepo "github.com/vdmx/riskintel/internal/payment/repository"
	paymentservice "github.com/vdmx/riskintel/internal/payment/service"
	ticketdomain "github.com/vdmx/riskintel/internal/ticket/domain"
	ticketrepo "github.com/vdmx/riskintel/internal/ticket/repository"
	ticketservice "github.com/vdmx/riskintel/internal/ticket/service"
	"github.com/vdmx/riskintel/internal/upload"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testAdminToken = "test-admin-token"

type fakeGateway struct {
	event     *paymentdomain.Event
	verifyErr error
	parseErr  error
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req paymentdomain.CheckoutRequest) (string, error) {
	return "https://checkout.test/" + req.CaseID, nil
}

func (g *fakeGateway) Verify(context.Context, []byte, http.Header) error { return g.verifyErr }

func (g *fakeGateway) Parse(context.Context, []byte) (*paymentdomain.Event, error) {
	if g.parseErr != nil {
		return nil, g.parseErr
	}
	return g.event, nil
}

func newTestServer(t *testing.T, adminToken string) (*Server, *fakeGateway) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		HTTPAddr:         ":0",
		PublicBaseURL:    "http://localhost:3001",
		ClientBaseURL:    "http://localhost:5173",
		AdminToken:       adminToken,
		CaseStoreBackend: config.StoreBackendDB,
		UploadDir:        t.TempDir(),
		MaxUploadBytes:   5 << 20,
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&casedomain.Case{}, &ticketdomain.Ticket{}, &paymentdomain.EventRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := zap.NewNop()
	holder, err := catalog.NewHolder("", log)
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}
	clk := clock.New()

	caseSvc := caseservice.NewService(caseservice.Params{
		Store:   caserepo.NewGormStore(gdb, clk),
		Catalog: holder,
		Node:    node,
		Log:     log,
	})
	ticketSvc := ticketservice.NewService(ticketservice.Params{
		Repo:  ticketrepo.Provide(gdb),
		Node:  node,
		Clock: clk,
		Log:   log,
	})
	gw := &fakeGateway{}
	paymentSvc := paymentservice.NewService(paymentservice.Params{
		Gateway: gw,
		Repo:    paymentrepo.Provide(gdb),
		Cases:   caseSvc,
		Catalog: holder,
		Node:    node,
		Clock:   clk,
		Log:     log,
	})
	uploads, err := upload.NewLocalStore(cfg, clk, log)
	if err != nil {
		t.Fatalf("new upload store: %v", err)
	}
	reconciler := draft.NewReconciler(draft.NewMemoryStore(), clk, log)
	poller := draft.NewPaymentPoller(caseSvc.Get, clk, log)

	engine := NewEngine(EngineParams{ObsCfg: observability.Config{}, Log: log})
	srv := NewServer(ServerParams{
		Gin:        engine,
		Cfg:        cfg,
		Log:        log,
		Catalog:    holder,
		CaseSvc:    caseSvc,
		PaymentSvc: paymentSvc,
		TicketSvc:  ticketSvc,
		Uploads:    uploads,
		Reconciler: reconciler,
		Poller:     poller,
	})
	return srv, gw
}

func doJSON(t *testing.T, srv *Server, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func decodeCase(t *testing.T, w *httptest.ResponseRecorder) casedomain.Case {
	t.Helper()
	var resp struct {
		Data casedomain.Case `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode case: %v (body %s)", err, w.Body.String())
	}
	return resp.Data
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, testAdminToken)
	w := doJSON(t, srv, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestAdminRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t, testAdminToken)

	if w := doJSON(t, srv, http.MethodGet, "/api/admin/cases", nil, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}
	if w := doJSON(t, srv, http.MethodGet, "/api/admin/cases", nil, "wrong"); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: status = %d, want 401", w.Code)
	}
	if w := doJSON(t, srv, http.MethodGet, "/api/admin/cases", nil, testAdminToken); w.Code != http.StatusOK {
		t.Fatalf("right token: status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
}

func TestAdminDisabledWithoutConfiguredToken(t *testing.T) {
	srv, _ := newTestServer(t, "")
	w := doJSON(t, srv, http.MethodGet, "/api/admin/cases", nil, "anything")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 when no admin token is configured", w.Code)
	}
}

func TestGetUnknownCase(t *testing.T) {
	srv, _ := newTestServer(t, testAdminToken)
	w := doJSON(t, srv, http.MethodGet, "/api/case/CASE-0000", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListPackagesExcludesHidden(t *testing.T) {
	srv, _ := newTestServer(t, testAdminToken)
	w := doJSON(t, srv, http.MethodGet, "/api/packages", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		Data []catalog.Package `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, p := range resp.Data {
		if p.ID == "test-pkg" {
			t.Fatalf("hidden package leaked into public listing")
		}
	}
	if len(resp.Data) != 6 {
		t.Fatalf("len = %d, want 6 public packages", len(resp.Data))
	}
}

func paidEvent(caseID, packageID string, amount int64) *paymentdomain.Event {
	return &paymentdomain.Event{
		Provider:        "stripe",
		ProviderEventID: "evt_" + caseID,
		PaymentID:       "pi_" + caseID,
		CaseID:          caseID,
		PackageID:       packageID,
		Amount:          amount,
		Currency:        "MXN",
		RawPayload:      []byte(`{}`),
	}
}

func TestCheckoutPaymentAndFormFlow(t *testing.T) {
	srv, gw := newTestServer(t, testAdminToken)

	w := doJSON(t, srv, http.MethodPost, "/create-checkout-session", gin.H{"packageId": "auto-1"}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("checkout: status = %d (body %s)", w.Code, w.Body.String())
	}
	var checkout paymentdomain.CheckoutResult
	if err := json.Unmarshal(w.Body.Bytes(), &checkout); err != nil {
		t.Fatalf("decode checkout: %v", err)
	}
	if checkout.URL != "https://checkout.test/"+checkout.CaseID {
		t.Fatalf("url = %q", checkout.URL)
	}

	got := decodeCase(t, doJSON(t, srv, http.MethodGet, "/api/case/"+checkout.CaseID, nil, ""))
	if got.Status != casedomain.StatusPaymentPending {
		t.Fatalf("status = %s, want PAYMENT_PENDING", got.Status)
	}

	gw.event = paidEvent(checkout.CaseID, "auto-1", 49900)
	if w := doJSON(t, srv, http.MethodPost, "/webhook", gin.H{}, ""); w.Code != http.StatusOK {
		t.Fatalf("webhook: status = %d (body %s)", w.Code, w.Body.String())
	}
	got = decodeCase(t, doJSON(t, srv, http.MethodGet, "/api/case/"+checkout.CaseID, nil, ""))
	if got.Status != casedomain.StatusPaid {
		t.Fatalf("status = %s, want PAID", got.Status)
	}

	got = decodeCase(t, doJSON(t, srv, http.MethodPut, "/api/case/"+checkout.CaseID, gin.H{"status": "FORM_PENDING"}, ""))
	if got.Status != casedomain.StatusFormPending {
		t.Fatalf("status = %s, want FORM_PENDING", got.Status)
	}

	form := gin.H{"formData": gin.H{
		"vin":    "3T1K61AK5MU982101",
		"placas": "XAW-99-23",
		"marca":  "Toyota",
		"modelo": "Camry",
		"anio":   "2021",
	}}
	got = decodeCase(t, doJSON(t, srv, http.MethodPut, "/api/case/"+checkout.CaseID, form, ""))
	if got.Status != casedomain.StatusReadyForAnalysis {
		t.Fatalf("status = %s, want READY_FOR_ANALYSIS (no upload step for auto-1)", got.Status)
	}
}

func TestSubmitIncompleteFormReturnsMissingFields(t *testing.T) {
	srv, gw := newTestServer(t, testAdminToken)
	caseID := checkoutAndPay(t, srv, gw, "auto-1", 49900)

	doJSON(t, srv, http.MethodPut, "/api/case/"+caseID, gin.H{"status": "FORM_PENDING"}, "")

	w := doJSON(t, srv, http.MethodPut, "/api/case/"+caseID, gin.H{"formData": gin.H{"vin": "X"}}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
	}
	var resp errorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error.Type != "validation_error" || len(resp.Error.MissingFields) == 0 {
		t.Fatalf("payload = %+v, want validation_error with missing fields", resp.Error)
	}

	// The rejected submit must not have moved the case.
	got := decodeCase(t, doJSON(t, srv, http.MethodGet, "/api/case/"+caseID, nil, ""))
	if got.Status != casedomain.StatusFormPending {
		t.Fatalf("status = %s, want FORM_PENDING after rejection", got.Status)
	}
}

func checkoutAndPay(t *testing.T, srv *Server, gw *fakeGateway, packageID string, amount int64) string {
	t.Helper()
	w := doJSON(t, srv, http.MethodPost, "/create-checkout-session", gin.H{"packageId": packageID}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("checkout: status = %d", w.Code)
	}
	var checkout paymentdomain.CheckoutResult
	if err := json.Unmarshal(w.Body.Bytes(), &checkout); err != nil {
		t.Fatalf("decode checkout: %v", err)
	}
	gw.event = paidEvent(checkout.CaseID, packageID, amount)
	if w := doJSON(t, srv, http.MethodPost, "/webhook", gin.H{}, ""); w.Code != http.StatusOK {
		t.Fatalf("webhook: status = %d", w.Code)
	}
	return checkout.CaseID
}

func TestWebhookInvalidSignature(t *testing.T) {
	srv, gw := newTestServer(t, testAdminToken)
	gw.verifyErr = paymentdomain.ErrInvalidSignature

	w := doJSON(t, srv, http.MethodPost, "/webhook", gin.H{}, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestWebhookIgnoredEventIsAcked(t *testing.T) {
	srv, gw := newTestServer(t, testAdminToken)
	gw.parseErr = paymentdomain.ErrEventIgnored

	w := doJSON(t, srv, http.MethodPost, "/webhook", gin.H{}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 ack", w.Code)
	}
}

func TestDocumentUploadFlow(t *testing.T) {
	srv, gw := newTestServer(t, testAdminToken)
	caseID := checkoutAndPay(t, srv, gw, "auto-2", 129900)

	doJSON(t, srv, http.MethodPut, "/api/case/"+caseID, gin.H{"status": "FORM_PENDING"}, "")
	form := gin.H{"formData": gin.H{
		"vin":                "3T1K61AK5MU982101",
		"placas":             "XAW-99-23",
		"marca":              "Toyota",
		"modelo":             "Camry",
		"anio":               "2021",
		"tipo_factura":       "Factura de Origen",
		"propietario_actual": "Juan Pérez",
	}}
	got := decodeCase(t, doJSON(t, srv, http.MethodPut, "/api/case/"+caseID, form, ""))
	if got.Status != casedomain.StatusDocumentsPending {
		t.Fatalf("status = %s, want DOCUMENTS_PENDING", got.Status)
	}

	body, contentType := multipartDocs(t, []string{"factura_front", "factura_back", "tarjeta_front", "tarjeta_back"})
	req := httptest.NewRequest(http.MethodPut, "/api/case/"+caseID, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm documents: status = %d (body %s)", w.Code, w.Body.String())
	}
	got = decodeCase(t, w)
	if got.Status != casedomain.StatusReadyForAnalysis {
		t.Fatalf("status = %s, want READY_FOR_ANALYSIS", got.Status)
	}
	if len(got.Documents) != 4 {
		t.Fatalf("documents = %d, want 4", len(got.Documents))
	}

	// Every stored document is retrievable through its public URL path.
	for _, doc := range got.Documents {
		name := doc.URL[len("http://localhost:3001/uploads/"):]
		r := doJSON(t, srv, http.MethodGet, "/uploads/"+name, nil, "")
		if r.Code != http.StatusOK {
			t.Fatalf("serve %s: status = %d", name, r.Code)
		}
	}
}

func multipartDocs(t *testing.T, fields []string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, field := range fields {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, field+".pdf"))
		hdr.Set("Content-Type", "application/pdf")
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("%PDF-1.4 test")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestUploadTraversalBlocked(t *testing.T) {
	srv, _ := newTestServer(t, testAdminToken)
	w := doJSON(t, srv, http.MethodGet, "/uploads/..", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAdminStatusOverrideAndDelete(t *testing.T) {
	srv, gw := newTestServer(t, testAdminToken)
	caseID := checkoutAndPay(t, srv, gw, "auto-1", 49900)

	got := decodeCase(t, doJSON(t, srv, http.MethodPatch, "/api/case/"+caseID+"/status", gin.H{"status": "WAITING_INFO"}, testAdminToken))
	if got.Status != casedomain.StatusWaitingInfo {
		t.Fatalf("status = %s, want WAITING_INFO", got.Status)
	}

	if w := doJSON(t, srv, http.MethodPatch, "/api/case/"+caseID+"/status", gin.H{"status": "NOT_A_STATUS"}, testAdminToken); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: %d, want 400", w.Code)
	}

	if w := doJSON(t, srv, http.MethodDelete, "/api/case/"+caseID, nil, testAdminToken); w.Code != http.StatusOK {
		t.Fatalf("delete: status = %d", w.Code)
	}
	if w := doJSON(t, srv, http.MethodDelete, "/api/case/"+caseID, nil, testAdminToken); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: status = %d, want 404", w.Code)
	}
}

func TestAdminScoreCase(t *testing.T) {
	srv, gw := newTestServer(t, testAdminToken)
	caseID := checkoutAndPay(t, srv, gw, "auto-2", 129900)

	w := doJSON(t, srv, http.MethodPost, "/api/case/"+caseID+"/score", gin.H{"ratings": gin.H{
		"credit": 80, "pawn": 50, "theft": 100, "docs": 70, "vin": 60, "seller": 40,
	}}, testAdminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("score: status = %d (body %s)", w.Code, w.Body.String())
	}
	got := decodeCase(t, w)
	if got.RiskScore == nil || *got.RiskScore != 680 {
		t.Fatalf("risk score = %v, want 680", got.RiskScore)
	}
}

func TestDebugCaseCreation(t *testing.T) {
	srv, _ := newTestServer(t, testAdminToken)

	w := doJSON(t, srv, http.MethodPost, "/api/debug/create-case", nil, testAdminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	got := decodeCase(t, w)
	if got.Status != casedomain.StatusPaid || got.PackageID != "auto-3" {
		t.Fatalf("case = %+v, want paid auto-3", got)
	}
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	srv, _ := newTestServer(t, testAdminToken)

	w := doJSON(t, srv, http.MethodPost, "/api/tickets", gin.H{
		"caseId":  "CASE-4821",
		"name":    "Alex Morgan",
		"email":   "alex@test.com",
		"message": "No puedo subir mi factura.",
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create ticket: status = %d (body %s)", w.Code, w.Body.String())
	}
	var created struct {
		Data ticketdomain.Ticket `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Data.Status != ticketdomain.StatusOpen {
		t.Fatalf("status = %s, want OPEN", created.Data.Status)
	}

	if w := doJSON(t, srv, http.MethodGet, "/api/admin/tickets", nil, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("ticket list without token: %d, want 401", w.Code)
	}

	w = doJSON(t, srv, http.MethodPatch, "/api/admin/tickets/"+created.Data.TicketID+"/status", gin.H{"status": "IN_PROGRESS"}, testAdminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("set ticket status: %d (body %s)", w.Code, w.Body.String())
	}
}
