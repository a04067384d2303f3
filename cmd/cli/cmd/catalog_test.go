package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"driveplane/pkg/api"

	"github.com/spf13/viper"
)

func TestAccountCreateCommand(t *testing.T) {
	resetViper()
	resetFlags(accountCreateCmd, "name", "role")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer system-secret" {
			t.Errorf("expected system secret, got: %s", r.Header.Get("Authorization"))
		}
		var req api.CreateAccountRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Name != "ops" || req.Role != "admin" {
			t.Errorf("unexpected request: %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(api.CreateAccountResponse{ID: "acc-1", Name: "ops", Role: "admin", ApiKey: "dp_secret"})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "system-secret")

	output := execute(t, "account", "create", "--name", "ops", "--role", "admin")
	if !strings.Contains(output, "API key: dp_secret") {
		t.Errorf("expected key in output, got: %s", output)
	}
}

func TestTierSetCommand(t *testing.T) {
	resetViper()
	resetFlags(tierSetCmd, "tasks", "combos", "rate", "single", "combo", "inactive")

	var got api.TierRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/tiers/gold" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(api.TierResponse{TierName: "gold", QuantityLimit: got.QuantityLimit, IsActive: true})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "admin-token")

	output := execute(t, "tier", "set", "gold", "--tasks", "40", "--single", "50:500", "--combo", "300:3000", "--combos", "3", "--rate", "0.06")

	if got.QuantityLimit != 40 || got.MinPriceSingle != 50 || got.MaxPriceCombo != 3000 || got.CommissionRate != 0.06 {
		t.Errorf("unexpected tier request: %+v", got)
	}
	if got.IsActive != nil {
		t.Errorf("is_active should be omitted unless --inactive is given")
	}
	if !strings.Contains(output, "Tier gold saved (40 tasks)") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestTierSetCommand_BadBand(t *testing.T) {
	resetViper()
	resetFlags(tierSetCmd, "tasks", "combos", "rate", "single", "combo", "inactive")
	viper.Set("token", "admin-token")

	output := execute(t, "tier", "set", "gold", "--single", "cheap")
	if !strings.Contains(output, "expected min:max") {
		t.Errorf("expected band error, got: %s", output)
	}
}

func TestTierListCommand(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]api.TierResponse{
			{TierName: "Bronze", QuantityLimit: 25, MinPriceSingle: 10, MaxPriceSingle: 100, MinPriceCombo: 50, MaxPriceCombo: 500, CommissionRate: 0.05, IsActive: true},
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "user-token")

	output := execute(t, "tier", "list")
	if !strings.Contains(output, "Bronze") || !strings.Contains(output, "10.00-100.00") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestProductAddCommand(t *testing.T) {
	resetViper()
	resetFlags(productAddCmd, "name", "price", "commission")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.CreateProductRequest
		json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(api.ProductResponse{ID: "prod-1", Name: req.Name, Price: req.Price})
	}))
	defer server.Close()

	viper.Set("url", server.URL)
	viper.Set("token", "admin-token")

	output := execute(t, "product", "add", "--name", "Lamp", "--price", "42.5")
	if !strings.Contains(output, "Product added: prod-1 (Lamp, 42.50)") {
		t.Errorf("unexpected output: %s", output)
	}
}
