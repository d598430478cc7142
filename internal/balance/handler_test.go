package balance

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/evenoddpro/walletadmin/internal/logging"
	"github.com/evenoddpro/walletadmin/internal/user"
)

func newTestApp(t *testing.T) (*fiber.App, Store) {
	t.Helper()
	store := NewMemoryStore()
	adjuster := NewLockingAdjuster(store, logging.Discard())
	handler := NewHandler(store, adjuster, user.NewMemoryRepository())

	app := fiber.New()
	app.Get("/balance/:userId", handler.Get)
	app.Post("/balance/:userId/adjust", handler.Adjust)
	app.Get("/balance/:userId/reconcile", handler.Reconcile)
	return app, store
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, decoded
}

func TestAdjustEndpointAppliesTopup(t *testing.T) {
	app, store := newTestApp(t)

	status, body := postJSON(t, app, "/balance/u1/adjust", `{"amount":150,"transaction_type":"topup","description":"manual credit"}`)
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %v", status, body)
	}
	if body["balance_after"].(float64) != 150 {
		t.Fatalf("unexpected balance_after: %v", body["balance_after"])
	}
	if id, _ := body["transaction_id"].(string); id == "" {
		t.Fatal("transaction_id missing from response")
	}

	record, err := store.GetRecord(context.Background(), "u1")
	if err != nil || record.Balance != 150 {
		t.Fatalf("record not updated: %+v err=%v", record, err)
	}
}

func TestAdjustEndpointEchoesInsufficientBalance(t *testing.T) {
	app, _ := newTestApp(t)

	if status, _ := postJSON(t, app, "/balance/u2/adjust", `{"amount":50,"transaction_type":"topup"}`); status != fiber.StatusOK {
		t.Fatalf("seed topup failed: %d", status)
	}

	status, body := postJSON(t, app, "/balance/u2/adjust", `{"amount":100,"transaction_type":"deduct"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if body["error"] != "Insufficient balance" {
		t.Fatalf("unexpected error message: %v", body["error"])
	}
	if body["current_balance"].(float64) != 50 || body["required_amount"].(float64) != 100 {
		t.Fatalf("figures not echoed: %v", body)
	}
}

func TestAdjustEndpointRejectsUnknownType(t *testing.T) {
	app, _ := newTestApp(t)

	status, _ := postJSON(t, app, "/balance/u3/adjust", `{"amount":10,"transaction_type":"withdrawal"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestGetReturnsZeroForMissingRecord(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(fiber.MethodGet, "/balance/nobody", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["balance"].(float64) != 0 || body["record"] != nil {
		t.Fatalf("expected zero balance and null record, got %v", body)
	}
}
