package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finhub-network/finhub/internal/app/arbitrage"
	"github.com/finhub-network/finhub/internal/app/chitfund"
	"github.com/finhub-network/finhub/internal/app/prediction"
	"github.com/finhub-network/finhub/internal/domain"
	"github.com/finhub-network/finhub/internal/ledger"
)

// ─── Helpers ────────────────────────────────────────────────────────────────

func setupServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()

	accounts := ledger.NewStore(ledger.DefaultStoreConfig())
	accounts.SeedAccount("priya", 50000, 500)
	accounts.SeedAccount("rahul", 100000, 610)

	arb := arbitrage.NewService()
	arb.SetCatalog(arbitrage.DefaultCatalog())

	srv := NewServer(accounts, chitfund.NewService(), prediction.NewService(), arb)
	srv.now = func() time.Time {
		return time.Date(2025, 10, 18, 12, 0, 0, 0, time.UTC)
	}
	return srv, srv.Handler()
}

func postJSON(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func getPath(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return resp
}

// ─── Health & Version ───────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	_, h := setupServer(t)
	w := getPath(t, h, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if decode(t, w)["status"] != "ok" {
		t.Errorf("body = %s", w.Body.String())
	}
}

// ─── Account Endpoints ──────────────────────────────────────────────────────

func TestGetUser(t *testing.T) {
	_, h := setupServer(t)

	w := getPath(t, h, "/api/user/priya")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode(t, w)
	if resp["id"] != "priya" || resp["balance"] != float64(50000) {
		t.Errorf("unexpected user payload: %v", resp)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	_, h := setupServer(t)
	if w := getPath(t, h, "/api/user/ghost"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestStake(t *testing.T) {
	_, h := setupServer(t)

	w := postJSON(t, h, "/api/stake", map[string]interface{}{"user": "priya", "amount": 20000})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	user := resp["user"].(map[string]interface{})
	if user["balance"] != float64(30000) || user["stake"] != float64(20000) {
		t.Errorf("balance/stake = %v/%v, want 30000/20000", user["balance"], user["stake"])
	}
}

func TestStake_Validation(t *testing.T) {
	_, h := setupServer(t)

	cases := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"missing user", map[string]interface{}{"amount": 100}, http.StatusBadRequest},
		{"missing amount", map[string]interface{}{"user": "priya"}, http.StatusBadRequest},
		{"negative amount", map[string]interface{}{"user": "priya", "amount": -5}, http.StatusBadRequest},
		{"zero amount", map[string]interface{}{"user": "priya", "amount": 0}, http.StatusBadRequest},
		{"unknown user", map[string]interface{}{"user": "ghost", "amount": 100}, http.StatusNotFound},
		{"insufficient", map[string]interface{}{"user": "priya", "amount": 1e9}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if w := postJSON(t, h, "/api/stake", tc.body); w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestJoinChit(t *testing.T) {
	_, h := setupServer(t)

	w := postJSON(t, h, "/api/join-chit", map[string]interface{}{"user": "priya", "amount": 5000})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	user := decode(t, w)["user"].(map[string]interface{})
	if user["balance"] != float64(45000) {
		t.Errorf("balance = %v, want 45000", user["balance"])
	}
	if user["reputation"] != float64(510) {
		t.Errorf("reputation = %v, want 510", user["reputation"])
	}
	history := user["history"].([]interface{})
	last := history[len(history)-1].(map[string]interface{})
	if last["action"] != "Joined Chit Fund" || last["delta"] != float64(10) {
		t.Errorf("history entry = %v", last)
	}
}

func TestReputationUpdate_StrictNotFound(t *testing.T) {
	_, h := setupServer(t)
	w := postJSON(t, h, "/api/reputation-update", map[string]interface{}{"user": "ghost", "points": 10})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestReputationUpdate_Clamps(t *testing.T) {
	_, h := setupServer(t)

	w := postJSON(t, h, "/api/reputation-update", map[string]interface{}{"user": "rahul", "points": 100000})
	user := decode(t, w)["user"].(map[string]interface{})
	if user["reputation"] != float64(900) {
		t.Errorf("reputation = %v, want ceiling 900", user["reputation"])
	}
}

func TestGetReputation_AutoCreates(t *testing.T) {
	_, h := setupServer(t)

	w := getPath(t, h, "/api/reputation/GNEWACCOUNT")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode(t, w)
	if resp["account"] != "GNEWACCOUNT" || resp["score"] != float64(500) {
		t.Errorf("payload = %v, want default score 500", resp)
	}
	if len(resp["history"].([]interface{})) != 0 {
		t.Errorf("history = %v, want empty", resp["history"])
	}
}

func TestPostReputation_RecordsRequestedDelta(t *testing.T) {
	_, h := setupServer(t)

	w := postJSON(t, h, "/api/reputation", map[string]interface{}{
		"account": "rahul", "action": "Created Chit Fund", "delta": 100000,
	})
	rep := decode(t, w)["reputation"].(map[string]interface{})
	if rep["score"] != float64(900) {
		t.Errorf("score = %v, want saturated 900", rep["score"])
	}
	history := rep["history"].([]interface{})
	last := history[len(history)-1].(map[string]interface{})
	if last["delta"] != float64(100000) {
		t.Errorf("recorded delta = %v, want requested 100000", last["delta"])
	}
}

func TestYield_NotFound(t *testing.T) {
	_, h := setupServer(t)
	if w := getPath(t, h, "/api/yield/ghost"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestYield_ZeroStake(t *testing.T) {
	_, h := setupServer(t)

	w := getPath(t, h, "/api/yield/priya")
	resp := decode(t, w)
	if resp["success"] != true || resp["yieldSinceLast"] != float64(0) {
		t.Errorf("payload = %v, want zero yield for zero stake", resp)
	}
}

// ─── Chit Fund Endpoints ────────────────────────────────────────────────────

func TestFunds_CreateJoinDistribute(t *testing.T) {
	_, h := setupServer(t)

	w := postJSON(t, h, "/api/chit-funds", map[string]interface{}{
		"action": "create", "account": "priya", "name": "Community Savings Pool",
		"pledgedAmount": 5000, "cycleLength": 30,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create: status = %d body = %s", w.Code, w.Body.String())
	}
	fund := decode(t, w)["fund"].(map[string]interface{})
	fundID := fund["id"].(string)

	w = postJSON(t, h, "/api/chit-funds", map[string]interface{}{
		"action": "join", "account": "rahul", "fundId": fundID, "pledgedAmount": 5000,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("join: status = %d body = %s", w.Code, w.Body.String())
	}
	fund = decode(t, w)["fund"].(map[string]interface{})
	if fund["potBalance"] != float64(10000) {
		t.Errorf("pot = %v, want 10000", fund["potBalance"])
	}

	w = postJSON(t, h, "/api/chit-funds/"+fundID+"/distribute", map[string]interface{}{
		"account": "priya", "recipient": "rahul",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("distribute: status = %d body = %s", w.Code, w.Body.String())
	}
	if decode(t, w)["payout"] != float64(10000) {
		t.Errorf("payout = %v, want 10000", decode(t, w)["payout"])
	}

	// Creator reputation reward landed.
	acc := getPath(t, h, "/api/reputation/priya")
	if decode(t, acc)["score"] != float64(600) {
		t.Errorf("creator score = %v, want 600", decode(t, acc)["score"])
	}
}

func TestFunds_DistributeCreatorOnly(t *testing.T) {
	_, h := setupServer(t)

	w := postJSON(t, h, "/api/chit-funds", map[string]interface{}{
		"action": "create", "account": "priya", "name": "pool",
		"pledgedAmount": 2000, "cycleLength": 30,
	})
	fundID := decode(t, w)["fund"].(map[string]interface{})["id"].(string)

	w = postJSON(t, h, "/api/chit-funds", map[string]interface{}{
		"action": "join", "account": "mallory", "fundId": fundID, "pledgedAmount": 2000,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("join: status = %d body = %s", w.Code, w.Body.String())
	}

	// A member who is not the creator cannot pay out the pot.
	w = postJSON(t, h, "/api/chit-funds/"+fundID+"/distribute", map[string]interface{}{
		"account": "mallory", "recipient": "mallory",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for non-creator distribute", w.Code)
	}

	// Missing acting account is rejected outright.
	w = postJSON(t, h, "/api/chit-funds/"+fundID+"/distribute", map[string]interface{}{
		"recipient": "mallory",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without acting account", w.Code)
	}
}

func TestFunds_JoinDuplicate(t *testing.T) {
	_, h := setupServer(t)

	w := postJSON(t, h, "/api/chit-funds", map[string]interface{}{
		"action": "create", "account": "priya", "name": "pool",
		"pledgedAmount": 100, "cycleLength": 30,
	})
	fundID := decode(t, w)["fund"].(map[string]interface{})["id"].(string)

	w = postJSON(t, h, "/api/chit-funds", map[string]interface{}{
		"action": "join", "account": "priya", "fundId": fundID, "pledgedAmount": 100,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for duplicate member", w.Code)
	}
}

func TestFunds_InvalidAction(t *testing.T) {
	_, h := setupServer(t)
	w := postJSON(t, h, "/api/chit-funds", map[string]interface{}{"action": "explode"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

// ─── Prediction Endpoints ───────────────────────────────────────────────────

func TestPredictions_FullLifecycle(t *testing.T) {
	_, h := setupServer(t)

	w := postJSON(t, h, "/api/predictions", map[string]interface{}{
		"action": "create", "account": "priya",
		"question": "Will BTC surpass $100K by end of 2025?",
		"outcomes": []string{"Yes", "No"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create: status = %d body = %s", w.Code, w.Body.String())
	}
	marketID := decode(t, w)["market"].(map[string]interface{})["id"].(string)

	w = postJSON(t, h, "/api/predictions", map[string]interface{}{
		"action": "stake", "account": "rahul", "marketId": marketID,
		"outcome": "Yes", "amount": 5000,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("stake: status = %d body = %s", w.Code, w.Body.String())
	}

	// Non-creator cannot resolve.
	w = postJSON(t, h, "/api/predictions/"+marketID+"/resolve", map[string]interface{}{
		"account": "rahul", "winner": "Yes",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("resolve by non-creator: status = %d, want 403", w.Code)
	}

	w = postJSON(t, h, "/api/predictions/"+marketID+"/resolve", map[string]interface{}{
		"account": "priya", "winner": "Yes",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("resolve: status = %d body = %s", w.Code, w.Body.String())
	}

	w = postJSON(t, h, "/api/predictions/"+marketID+"/claim", map[string]interface{}{
		"account": "rahul",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("claim: status = %d body = %s", w.Code, w.Body.String())
	}
	if decode(t, w)["payout"] != float64(5000) {
		t.Errorf("payout = %v, want 5000 (sole winner takes whole pool)", decode(t, w)["payout"])
	}
}

func TestPredictions_LosingClaimPaysZero(t *testing.T) {
	_, h := setupServer(t)

	w := postJSON(t, h, "/api/predictions", map[string]interface{}{
		"action": "create", "account": "priya", "question": "q",
		"outcomes": []string{"Yes", "No"},
	})
	marketID := decode(t, w)["market"].(map[string]interface{})["id"].(string)

	postJSON(t, h, "/api/predictions", map[string]interface{}{
		"action": "stake", "account": "rahul", "marketId": marketID,
		"outcome": "No", "amount": 100,
	})
	postJSON(t, h, "/api/predictions/"+marketID+"/resolve", map[string]interface{}{
		"account": "priya", "winner": "Yes",
	})

	// A real stake on the losing side claims successfully for zero.
	w = postJSON(t, h, "/api/predictions/"+marketID+"/claim", map[string]interface{}{
		"account": "rahul",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("losing claim: status = %d body = %s", w.Code, w.Body.String())
	}
	if decode(t, w)["payout"] != float64(0) {
		t.Errorf("payout = %v, want 0", decode(t, w)["payout"])
	}

	// No stake at all is still 404.
	w = postJSON(t, h, "/api/predictions/"+marketID+"/claim", map[string]interface{}{
		"account": "stranger",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for an account with no stake", w.Code)
	}
}

func TestPredictions_StakeInvalidOutcome(t *testing.T) {
	_, h := setupServer(t)

	w := postJSON(t, h, "/api/predictions", map[string]interface{}{
		"action": "create", "account": "priya", "question": "q",
		"outcomes": []string{"Yes", "No"},
	})
	marketID := decode(t, w)["market"].(map[string]interface{})["id"].(string)

	w = postJSON(t, h, "/api/predictions", map[string]interface{}{
		"action": "stake", "account": "rahul", "marketId": marketID,
		"outcome": "Maybe", "amount": 100,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown outcome", w.Code)
	}
}

// ─── Arbitrage Endpoints ────────────────────────────────────────────────────

func TestArbitrage_List(t *testing.T) {
	_, h := setupServer(t)

	w := getPath(t, h, "/api/arbitrage")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var suggestions []domain.Suggestion
	if err := json.Unmarshal(w.Body.Bytes(), &suggestions); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(suggestions) != 3 {
		t.Errorf("suggestions = %d, want 3", len(suggestions))
	}
}

func TestArbitrage_Simulate(t *testing.T) {
	_, h := setupServer(t)

	w := postJSON(t, h, "/api/arbitrage/simulate", map[string]interface{}{
		"suggestionId": "arb-1", "account": "priya",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	resp := decode(t, w)
	if resp["success"] != true || resp["suggestionId"] != "arb-1" {
		t.Errorf("payload = %v", resp)
	}
	actual := resp["actualProfit"].(float64)
	if actual < 150.25*0.9-0.01 || actual > 150.25*1.1+0.01 {
		t.Errorf("actualProfit = %f outside 90–110%% of expected", actual)
	}
}

func TestArbitrage_SimulateMissingFields(t *testing.T) {
	_, h := setupServer(t)
	w := postJSON(t, h, "/api/arbitrage/simulate", map[string]interface{}{"account": "priya"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestArbitrage_SimulateUnknownSuggestion(t *testing.T) {
	_, h := setupServer(t)
	w := postJSON(t, h, "/api/arbitrage/simulate", map[string]interface{}{
		"suggestionId": "arb-999", "account": "priya",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// ─── CORS ───────────────────────────────────────────────────────────────────

func TestCORS_Preflight(t *testing.T) {
	_, h := setupServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/user/priya", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want 200", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("missing CORS header")
	}
}
