package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/rafaelcosta/filantropia-api/session"
)

// End-to-end smoke test against a running API:
//
// 1. Register a user through the session store
// 2. Create an institution, an activity and a metric
// 3. Read the dashboard and the map features back
// 4. Refresh the token and watch the session store mirror it
// 5. Sign out

type consoleNotifier struct{}

func (consoleNotifier) Notify(severity, title, message string) {
	log.Printf("  [notify/%s] %s: %s", severity, title, message)
}

func main() {
	baseURL := os.Getenv("API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	ctx := context.Background()
	provider := newHTTPProvider(baseURL)
	defer provider.Close()

	store := session.NewStore(provider, consoleNotifier{})
	defer store.Close()

	log.Println("[STEP 1] Initializing session store...")
	store.Initialize(ctx, "")
	if snap := store.Snapshot(); snap.State != session.StateReady || snap.User != nil {
		log.Fatalf("expected ready anonymous store, got %+v", snap)
	}

	email := fmt.Sprintf("e2e-%d@filantropia.local", time.Now().UnixNano())
	log.Printf("[STEP 2] Registering %s...", email)
	if err := store.SignUp(ctx, email, "e2e-password-123", nil); err != nil {
		log.Fatalf("sign up failed: %v", err)
	}

	snap := store.Snapshot()
	if snap.User == nil || snap.Session == nil {
		log.Fatal("sign up left the store without a user or session")
	}
	token := snap.Session.AccessToken
	log.Printf("  Signed up as user %d", snap.User.ID)

	log.Println("[STEP 3] Creating institution...")
	institutionID := createJSON(baseURL, token, "/api/v1/institutions/", map[string]interface{}{
		"name":      "E2E Instituto",
		"email":     "e2e@instituto.local",
		"latitude":  -23.5505,
		"longitude": -46.6333,
	})
	log.Printf("  Institution %s", institutionID)

	log.Println("[STEP 4] Creating activity...")
	activityID := createJSON(baseURL, token, "/api/v1/activities/", map[string]interface{}{
		"title":               "E2E Atividade",
		"category":            "education",
		"start_date":          time.Now().UTC().Format(time.RFC3339),
		"budget":              150.0,
		"latitude":            -23.55,
		"longitude":           -46.61,
		"beneficiaries_count": 40,
		"institution_id":      institutionID,
	})
	log.Printf("  Activity %s", activityID)

	log.Println("[STEP 5] Recording metric...")
	metricID := createJSON(baseURL, token, "/api/v1/metrics/", map[string]interface{}{
		"metric_type":      "beneficiaries",
		"value":            40.0,
		"measurement_date": time.Now().UTC().Format(time.RFC3339),
		"activity_id":      activityID,
		"institution_id":   institutionID,
	})
	log.Printf("  Metric %s", metricID)

	log.Println("[STEP 6] Reading dashboard...")
	mustGet(baseURL, token, "/api/v1/dashboard")

	log.Println("[STEP 7] Reading map features...")
	mustGet(baseURL, token, "/api/v1/map/features?zoom=5")

	log.Println("[STEP 8] Refreshing token...")
	refreshed, err := provider.Refresh(ctx, snap.User.ID, snap.Session.RefreshToken)
	if err != nil {
		log.Fatalf("refresh failed: %v", err)
	}

	// The session store consumes the refresh event asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s := store.Snapshot(); s.Session != nil && s.Session.AccessToken == refreshed.AccessToken {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if s := store.Snapshot(); s.Session == nil || s.Session.AccessToken != refreshed.AccessToken {
		log.Fatal("session store did not mirror the token refresh")
	}
	log.Println("  Session store mirrored the refresh")

	log.Println("[STEP 9] Signing out...")
	if err := store.SignOut(ctx); err != nil {
		log.Fatalf("sign out failed: %v", err)
	}
	if s := store.Snapshot(); s.User != nil || s.Session != nil {
		log.Fatal("sign out left user or session in the store")
	}

	log.Println("E2E test passed")
}

func createJSON(baseURL, token, path string, body map[string]interface{}) string {
	raw, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(raw))
	if err != nil {
		log.Fatalf("POST %s: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		log.Fatalf("POST %s: status %d", path, res.StatusCode)
	}

	var env struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		log.Fatalf("POST %s: decode: %v", path, err)
	}
	return env.Data.ID
}

func mustGet(baseURL, token, path string) {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		log.Fatalf("GET %s: %v", path, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("GET %s: %v", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		log.Fatalf("GET %s: status %d", path, res.StatusCode)
	}
	log.Printf("  GET %s ok", path)
}
