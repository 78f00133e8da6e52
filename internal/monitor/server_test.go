package monitor

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/airgapwing/hidinject/internal/adapters/devices"
	"github.com/airgapwing/hidinject/internal/adapters/radio"
	"github.com/airgapwing/hidinject/internal/adapters/timer"
	"github.com/airgapwing/hidinject/internal/adapters/unifying"
	"github.com/airgapwing/hidinject/internal/core/domain"
	"github.com/airgapwing/hidinject/internal/lifecycle"
	"github.com/gorilla/mux"
)

func newTestRouter(t *testing.T) (*mux.Router, *lifecycle.Handle) {
	t.Helper()
	r := radio.NewMockRadio()
	inv := devices.NewInMemoryInventory()
	var h *lifecycle.Handle
	tm := timer.New(func() { h.Engine().OnTimer() })
	h, err := lifecycle.New(domain.RFAddress{1, 2, 3, 4, 5}, r, tm, inv, unifying.Checksum{}, nil)
	if err != nil {
		t.Fatalf("lifecycle.New: %v", err)
	}
	if err := h.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = h.Deinit() })

	s := NewServer(":0", h)
	mx := mux.NewRouter()
	mx.HandleFunc("/api/list", s.handleList).Methods(http.MethodGet)
	mx.HandleFunc("/api/enqueue/string", s.handleEnqueueString).Methods(http.MethodPost)
	mx.HandleFunc("/api/enqueue/press", s.handleEnqueuePress).Methods(http.MethodPost)
	mx.HandleFunc("/api/enqueue/delay", s.handleEnqueueDelay).Methods(http.MethodPost)
	mx.HandleFunc("/api/clear", s.handleClear).Methods(http.MethodPost)
	mx.HandleFunc("/api/execute", s.handleExecute).Methods(http.MethodPost)
	return mx, h
}

func TestServer_EnqueueStringThenListReflectsIt(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(enqueueStringRequest{Lang: domain.LangUS, Text: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/enqueue/string", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("enqueue string: status = %d, want %d, body=%s", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/list", nil)
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, listReq)
	if listRec.Code != http.StatusOK {
		t.Fatalf("list: status = %d, want %d", listRec.Code, http.StatusOK)
	}

	var got map[string][]string
	if err := json.Unmarshal(listRec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal list response: %v", err)
	}
	lines := got["lines"]
	if len(lines) != 3 || lines[0] != "script start" || lines[2] != "script end" {
		t.Fatalf("unexpected list output: %v", lines)
	}
}

func TestServer_EnqueueRejectsMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/enqueue/press", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServer_ClearEmptiesQueue(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(enqueueDelayRequest{MS: 1000})
	req := httptest.NewRequest(http.MethodPost, "/api/enqueue/delay", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("enqueue delay: status = %d", rec.Code)
	}

	clearReq := httptest.NewRequest(http.MethodPost, "/api/clear", nil)
	clearRec := httptest.NewRecorder()
	router.ServeHTTP(clearRec, clearReq)
	if clearRec.Code != http.StatusOK {
		t.Fatalf("clear: status = %d", clearRec.Code)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/list", nil)
	listRec := httptest.NewRecorder()
	router.ServeHTTP(listRec, listReq)

	var got map[string][]string
	if err := json.Unmarshal(listRec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal list response: %v", err)
	}
	if len(got["lines"]) != 2 {
		t.Fatalf("lines after clear = %v, want just start/end markers", got["lines"])
	}
}

func TestServer_ExecuteToggleStartsQueuedTask(t *testing.T) {
	router, h := newTestRouter(t)

	body, _ := json.Marshal(enqueueDelayRequest{MS: 1000})
	req := httptest.NewRequest(http.MethodPost, "/api/enqueue/delay", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	execBody, _ := json.Marshal(executeRequest{On: true})
	execReq := httptest.NewRequest(http.MethodPost, "/api/execute", bytes.NewReader(execBody))
	execRec := httptest.NewRecorder()
	router.ServeHTTP(execRec, execReq)
	if execRec.Code != http.StatusOK {
		t.Fatalf("execute: status = %d", execRec.Code)
	}

	if h.Engine().State() != domain.Working {
		t.Fatalf("engine state = %v, want Working after execute toggled on", h.Engine().State())
	}
}
