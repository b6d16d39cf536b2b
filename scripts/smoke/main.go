// Command smoke drives one extension application through the full approval
// chain against a running portal instance using the provisioned demo
// accounts. It exits non-zero on the first failed step.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

type step struct {
	name  string
	email string
	run   func(token string) error
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	var (
		base     string
		password string
		timeout  time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080/api/v1", "Portal API base URL")
	flag.StringVar(&password, "password", "password123", "Password for provisioned accounts")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}

	login := func(email string) (string, error) {
		body, _ := json.Marshal(map[string]string{"email": email, "password": password})
		resp, err := client.Post(base+"/auth/login", "application/json", bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		defer resp.Body.Close() //nolint:errcheck
		var env envelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
			return "", err
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("login %s: status %d", email, resp.StatusCode)
		}
		var payload struct {
			AccessToken string `json:"accessToken"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return "", err
		}
		return payload.AccessToken, nil
	}

	do := func(token, method, path string, body interface{}, wantStatus int) (json.RawMessage, error) {
		var reader *bytes.Reader
		if body != nil {
			raw, _ := json.Marshal(body)
			reader = bytes.NewReader(raw)
		} else {
			reader = bytes.NewReader(nil)
		}
		req, err := http.NewRequest(method, base+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close() //nolint:errcheck
		var env envelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		if resp.StatusCode != wantStatus {
			msg := ""
			if env.Error != nil {
				msg = env.Error.Message
			}
			return nil, fmt.Errorf("%s %s: status %d, want %d (%s)", method, path, resp.StatusCode, wantStatus, msg)
		}
		return env.Data, nil
	}

	scholarToken, err := login("thirupathi@gitam.in")
	if err != nil {
		log.Fatalf("scholar login failed: %v", err)
	}

	submission := map[string]interface{}{
		"type": "Extension",
		"details": map[string]interface{}{
			"extension": map[string]string{
				"registrationDate":  "15-08-2020",
				"durationEligible":  "5 years",
				"extensionDuration": "6 months",
				"reason":            "smoke check",
			},
		},
	}
	data, err := do(scholarToken, http.MethodPost, "/applications", submission, http.StatusCreated)
	if err != nil {
		log.Fatalf("submission failed: %v", err)
	}
	var app struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &app); err != nil || app.ID == "" {
		log.Fatalf("submission returned no application id: %v", err)
	}
	fmt.Printf("submitted application %s\n", app.ID)

	reviewers := []struct {
		email string
		stage string
	}{
		{"ramesh.kumar@gitam.edu", "supervisor"},
		{"lakshmi.drc@gitam.edu", "drc"},
		{"venkatesh.irc@gitam.edu", "irc"},
		{"srinivas.doaa@gitam.edu", "doaa"},
	}

	for _, reviewer := range reviewers {
		token, err := login(reviewer.email)
		if err != nil {
			log.Fatalf("%s login failed: %v", reviewer.stage, err)
		}
		review := map[string]string{"decision": "approved", "remarks": "approved during smoke check"}
		if _, err := do(token, http.MethodPost, "/applications/"+app.ID+"/review", review, http.StatusOK); err != nil {
			log.Fatalf("%s approval failed: %v", reviewer.stage, err)
		}
		fmt.Printf("approved at %s\n", reviewer.stage)
	}

	data, err = do(scholarToken, http.MethodGet, "/applications/"+app.ID, nil, http.StatusOK)
	if err != nil {
		log.Fatalf("final fetch failed: %v", err)
	}
	var detail struct {
		Application struct {
			Status       string `json:"status"`
			CurrentStage string `json:"currentStage"`
		} `json:"application"`
	}
	if err := json.Unmarshal(data, &detail); err != nil {
		log.Fatalf("decode final state: %v", err)
	}
	if detail.Application.Status != "Approved" || detail.Application.CurrentStage != "completed" {
		fmt.Printf("FAIL: final state %s/%s, want Approved/completed\n", detail.Application.Status, detail.Application.CurrentStage)
		os.Exit(1)
	}
	fmt.Println("PASS: application fully approved")
}
