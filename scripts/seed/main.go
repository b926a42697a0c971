// Package main implements a standalone seed script that populates a running
// campus coffee stack with realistic demo data: users, POS locations, and
// reviews in various approval states. Everything goes through the public
// HTTP API so the seeded data exercises the same code paths as real traffic.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// --------------------------------------------------------------------------
// Configuration helpers
// --------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --------------------------------------------------------------------------
// HTTP helpers
// --------------------------------------------------------------------------

func httpPost(url, userID string, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return result, nil
}

// dataID extracts data.id from a standard response envelope.
func dataID(resp map[string]any) string {
	data, ok := resp["data"].(map[string]any)
	if !ok {
		return ""
	}
	id, _ := data["id"].(string)
	return id
}

// --------------------------------------------------------------------------
// Seed data definitions
// --------------------------------------------------------------------------

type userDef struct {
	login     string
	email     string
	firstName string
	lastName  string
	id        string // populated after registration
}

type posDef struct {
	name        string
	description string
	posType     string
	street      string
	houseNumber string
	postalCode  string
	city        string
	id          string // populated after insert
}

type reviewDef struct {
	posIdx    int // index into the pos slice
	authorIdx int // index into the users slice
	body      string
	approvals []int // indexes of approving users
}

// --------------------------------------------------------------------------
// main
// --------------------------------------------------------------------------

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("[seed] ")

	apiURL := getEnv("API_URL", "http://localhost:8080")

	// Wait briefly for the API to come up when run right after compose.
	waitForAPI(apiURL, 30*time.Second)

	// ---------------------------------------------------------------
	// 1. Register users
	// ---------------------------------------------------------------
	users := []userDef{
		{login: "anna.latte", email: "anna.latte@campus.example.com", firstName: "Anna", lastName: "Latte"},
		{login: "ben.roast", email: "ben.roast@campus.example.com", firstName: "Ben", lastName: "Roast"},
		{login: "carla.crema", email: "carla.crema@campus.example.com", firstName: "Carla", lastName: "Crema"},
		{login: "dana.brew", email: "dana.brew@campus.example.com", firstName: "Dana", lastName: "Brew"},
		{login: "eli.mocha", email: "eli.mocha@campus.example.com", firstName: "Eli", lastName: "Mocha"},
	}

	log.Println("Registering users...")
	for i := range users {
		resp, err := httpPost(apiURL+"/api/v1/users", "", map[string]any{
			"login":      users[i].login,
			"email":      users[i].email,
			"first_name": users[i].firstName,
			"last_name":  users[i].lastName,
		})
		if err != nil {
			log.Fatalf("  register %q: %v", users[i].login, err)
		}
		users[i].id = dataID(resp)
		log.Printf("  User: %s (id=%s)", users[i].login, users[i].id)
	}

	// ---------------------------------------------------------------
	// 2. Create POS locations
	// ---------------------------------------------------------------
	posList := []posDef{
		{name: "Library Cafe", description: "Quiet espresso bar on the library ground floor", posType: "CAFE", street: "Bibliotheksweg", houseNumber: "1", postalCode: "10099", city: "Berlin"},
		{name: "Mensa Bakery", description: "Fresh pastries next to the main canteen", posType: "BAKERY", street: "Mensaplatz", houseNumber: "4", postalCode: "10099", city: "Berlin"},
		{name: "Physics Vending", description: "Coffee machine in the physics building lobby", posType: "VENDING_MACHINE", street: "Newtonstrasse", houseNumber: "15", postalCode: "12489", city: "Berlin"},
		{name: "Sports Hall Cafe", description: "Smoothies and coffee by the gym entrance", posType: "CAFE", street: "Sportallee", houseNumber: "7", postalCode: "10115", city: "Berlin"},
	}

	log.Println("Creating POS locations...")
	for i := range posList {
		resp, err := httpPost(apiURL+"/api/v1/pos", "", map[string]any{
			"name":         posList[i].name,
			"description":  posList[i].description,
			"type":         posList[i].posType,
			"street":       posList[i].street,
			"house_number": posList[i].houseNumber,
			"postal_code":  posList[i].postalCode,
			"city":         posList[i].city,
		})
		if err != nil {
			log.Fatalf("  create POS %q: %v", posList[i].name, err)
		}
		posList[i].id = dataID(resp)
		log.Printf("  POS: %s (id=%s)", posList[i].name, posList[i].id)
	}

	// ---------------------------------------------------------------
	// 3. Create reviews in mixed approval states
	// ---------------------------------------------------------------
	reviews := []reviewDef{
		{posIdx: 0, authorIdx: 0, body: "Best flat white on campus, and quiet enough to study.", approvals: []int{1, 2}},
		{posIdx: 0, authorIdx: 1, body: "Espresso is solid but the queue before lectures is brutal.", approvals: []int{2}},
		{posIdx: 1, authorIdx: 2, body: "The cinnamon rolls sell out by 10am for a reason.", approvals: []int{0, 3}},
		{posIdx: 1, authorIdx: 3, body: "Decent bread, coffee is an afterthought.", approvals: nil},
		{posIdx: 2, authorIdx: 4, body: "It is a vending machine, but the cocoa button slaps.", approvals: []int{0}},
		{posIdx: 3, authorIdx: 1, body: "Post-workout espresso shot, what more do you want.", approvals: []int{0, 4}},
	}

	log.Println("Creating reviews...")
	approved := 0
	for _, rd := range reviews {
		resp, err := httpPost(apiURL+"/api/v1/reviews", users[rd.authorIdx].id, map[string]any{
			"pos_id": posList[rd.posIdx].id,
			"body":   rd.body,
		})
		if err != nil {
			log.Fatalf("  create review for %q: %v", posList[rd.posIdx].name, err)
		}
		reviewID := dataID(resp)

		for _, approverIdx := range rd.approvals {
			if _, err := httpPost(
				fmt.Sprintf("%s/api/v1/reviews/%s/approve", apiURL, reviewID),
				users[approverIdx].id, nil,
			); err != nil {
				log.Fatalf("  approve review %s: %v", reviewID, err)
			}
		}
		if len(rd.approvals) >= 2 {
			approved++
		}
		log.Printf("  Review on %s by %s (%d approvals)",
			posList[rd.posIdx].name, users[rd.authorIdx].login, len(rd.approvals))
	}

	log.Printf("Done: %d users, %d POS, %d reviews (%d approved at quorum 2).",
		len(users), len(posList), len(reviews), approved)
}

// waitForAPI polls the liveness endpoint until the API responds or the
// timeout elapses.
func waitForAPI(apiURL string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for {
		resp, err := http.Get(apiURL + "/health/live")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		if time.Now().After(deadline) {
			log.Fatalf("API at %s not reachable after %s", apiURL, timeout)
		}
		time.Sleep(time.Second)
	}
}
