package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/BrizoSec/privesc-detector/internal/detect"
	"github.com/BrizoSec/privesc-detector/internal/dispatch"
	"github.com/BrizoSec/privesc-detector/internal/enrichment"
	"github.com/BrizoSec/privesc-detector/internal/store/memstore"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eventStore := memstore.NewEventStore()
	alertStore := memstore.NewAlertStore()

	em := enrichment.NewManager(
		enrichment.Config{},
		enrichment.StaticVaultStore{Data: map[string][]string{}},
		enrichment.StaticCriticalAccountsStore{Data: map[string]enrichment.CriticalAccount{}},
		zerolog.Nop(),
	)
	require.NoError(t, em.LoadSync())

	d := dispatch.New(alertStore, detect.NewBurstWindowState(), em, dispatch.Config{
		PrivilegeEscalation: detect.PrivilegeEscalationConfig{Enabled: true},
		AuthBurst:           detect.BurstConfig{WindowSeconds: 60, DistinctAccountThreshold: 1000, MaxEventsTracked: 1000},
		AuthChain:           detect.ChainConfig{MaxChainLength: 1000, MaxGraphNodes: 10000},
	})

	return New(eventStore, alertStore, d, em, nil, zerolog.Nop())
}

func TestHandleIngestEvent_ValidEventFiresAlert(t *testing.T) {
	s := newTestServer(t)

	body := []byte(`{
		"event_category": "session",
		"mechanism": "ssh",
		"src_account_id": "account:alice",
		"src_host_id": "h1",
		"dst_account_id": "account:root",
		"dst_host_id": "h1",
		"src_privilege": 0.1,
		"dst_privilege": 0.9,
		"host_id": "host:h1",
		"raw_source": "unix_auth"
	}`)

	req := httptest.NewRequest(http.MethodPost, "/ingest/event", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.EventID)
	require.Len(t, resp.AlertsFired, 1)
}

func TestHandleIngestEvent_MalformedEventReturns422(t *testing.T) {
	s := newTestServer(t)

	body := []byte(`{"event_category": "bogus"}`)
	req := httptest.NewRequest(http.MethodPost, "/ingest/event", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleListAlerts_RejectsNegativeSkip(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/alerts?skip=-1", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleListAlerts_RejectsOutOfRangeLimit(t *testing.T) {
	s := newTestServer(t)

	tooSmall := httptest.NewRequest(http.MethodGet, "/alerts?limit=0", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, tooSmall)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	tooBig := httptest.NewRequest(http.MethodGet, "/alerts?limit=501", nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, tooBig)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandleGetAlert_NotFoundReturns404(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/alerts/does-not-exist", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleEnrichmentStatus_ReportsCounts(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/enrichment/status", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp enrichmentStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.VaultHostCount)
}

func TestHandleGetAccount_ReturnsProjectionAfterIngest(t *testing.T) {
	s := newTestServer(t)

	body := []byte(`{
		"event_category": "session",
		"mechanism": "ssh",
		"src_account_id": "account:alice",
		"src_host_id": "h1",
		"dst_account_id": "account:root",
		"dst_host_id": "h1",
		"src_privilege": 0.1,
		"dst_privilege": 0.9,
		"host_id": "host:h1",
		"raw_source": "unix_auth"
	}`)
	ingestReq := httptest.NewRequest(http.MethodPost, "/ingest/event", bytes.NewReader(body))
	ingestRec := httptest.NewRecorder()
	s.ServeHTTP(ingestRec, ingestReq)
	require.Equal(t, http.StatusOK, ingestRec.Code)

	req := httptest.NewRequest(http.MethodGet, "/accounts/account:alice", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	missing := httptest.NewRequest(http.MethodGet, "/accounts/account:ghost", nil)
	missingRec := httptest.NewRecorder()
	s.ServeHTTP(missingRec, missing)
	require.Equal(t, http.StatusNotFound, missingRec.Code)
}

func TestHandleHealth_ReportsUnavailableWithoutPinger(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "unavailable", resp["db"])
}

func TestHandleAcknowledgeAlert_EndToEnd(t *testing.T) {
	s := newTestServer(t)

	body := []byte(`{
		"event_category": "session",
		"mechanism": "ssh",
		"src_account_id": "account:alice",
		"src_host_id": "h1",
		"dst_account_id": "account:root",
		"dst_host_id": "h1",
		"src_privilege": 0.1,
		"dst_privilege": 0.9,
		"host_id": "host:h1",
		"raw_source": "unix_auth"
	}`)
	ingestReq := httptest.NewRequest(http.MethodPost, "/ingest/event", bytes.NewReader(body))
	ingestRec := httptest.NewRecorder()
	s.ServeHTTP(ingestRec, ingestReq)
	require.Equal(t, http.StatusOK, ingestRec.Code)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(ingestRec.Body.Bytes(), &resp))
	alertID := resp.AlertsFired[0].ID

	ackReq := httptest.NewRequest(http.MethodPatch, "/alerts/"+alertID+"/acknowledge", nil)
	ackRec := httptest.NewRecorder()
	s.ServeHTTP(ackRec, ackReq)
	require.Equal(t, http.StatusOK, ackRec.Code)
}
