package detector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func chatReply(content string) string {
	reply := map[string]interface{}{
		"id": "chatcmpl-test",
		"choices": []map[string]interface{}{
			{
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
	b, _ := json.Marshal(reply)
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		ModelName: "test-model",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client, srv
}

func TestDetectText_SpamVerdict(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Write([]byte(chatReply(`{"state":1,"spam_score":92,"spam_reason":"payment ad","spam_mock_text":"nice try"}`)))
	})

	summary := Summary{DaysSinceJoin: 0, SpeechCount: 1, Username: "spammer"}
	result, elapsed, err := client.DetectText(context.Background(), "BUY NOW 24/7", summary)
	if err != nil {
		t.Fatalf("DetectText failed: %v", err)
	}
	if elapsed < 0 {
		t.Errorf("elapsed should be non-negative, got %d", elapsed)
	}
	if result.State != 1 || result.SpamScore != 92 {
		t.Errorf("unexpected result: %+v", result)
	}
	if !result.IsSpam() {
		t.Error("state=1 score=92 should be spam")
	}
}

func TestDetectText_BelowModelCutoffIsNotSpam(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply(`{"state":1,"spam_score":60,"spam_reason":"maybe","spam_mock_text":""}`)))
	})

	result, _, err := client.DetectText(context.Background(), "hello", Summary{})
	if err != nil {
		t.Fatalf("DetectText failed: %v", err)
	}
	if result.IsSpam() {
		t.Error("score below the fixed 80 cutoff must not be spam even with state=1")
	}
}

func TestDetectText_TransportErrorReturnsNilResult(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	result, elapsed, err := client.DetectText(context.Background(), "hello", Summary{})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if result != nil {
		t.Errorf("result must be nil on failure, got %+v", result)
	}
	if elapsed < 0 {
		t.Errorf("elapsed should still be reported, got %d", elapsed)
	}
}

func TestDetectText_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusBadGateway)
	})

	result, _, err := client.DetectText(context.Background(), "hello", Summary{})
	if err == nil {
		t.Fatal("expected error on 502")
	}
	if result != nil {
		t.Errorf("result must be nil on failure, got %+v", result)
	}
}

func TestDetectText_MalformedVerdict(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chatReply("sorry, I cannot answer that")))
	})

	result, _, err := client.DetectText(context.Background(), "hello", Summary{})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if result != nil {
		t.Errorf("result must be nil on parse failure, got %+v", result)
	}
}

func TestDetectPhoto_SendsImagePart(t *testing.T) {
	var captured chatRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		w.Write([]byte(chatReply(`{"state":0,"spam_score":5,"spam_reason":"","spam_mock_text":""}`)))
	})

	result, _, err := client.DetectPhoto(context.Background(), "https://cdn.example.com/p.jpg", Summary{}, "holiday pic")
	if err != nil {
		t.Fatalf("DetectPhoto failed: %v", err)
	}
	if result.IsSpam() {
		t.Error("benign verdict reported as spam")
	}

	parts, ok := captured.Messages[0].Content.([]interface{})
	if !ok || len(parts) != 2 {
		t.Fatalf("expected two content parts, got %#v", captured.Messages[0].Content)
	}
	img := parts[1].(map[string]interface{})
	if img["type"] != "image_url" {
		t.Errorf("second part should be image_url, got %v", img["type"])
	}
}

func TestParseVerdict_StripsCodeFences(t *testing.T) {
	result, err := parseVerdict("```json\n{\"state\":1,\"spam_score\":85,\"spam_reason\":\"x\",\"spam_mock_text\":\"y\"}\n```")
	if err != nil {
		t.Fatalf("parseVerdict failed: %v", err)
	}
	if result.SpamScore != 85 {
		t.Errorf("expected score 85, got %d", result.SpamScore)
	}
}

func TestParseVerdict_RejectsOutOfRange(t *testing.T) {
	for _, raw := range []string{
		`{"state":2,"spam_score":50}`,
		`{"state":1,"spam_score":120}`,
		`{"state":1,"spam_score":-5}`,
	} {
		if _, err := parseVerdict(raw); err == nil {
			t.Errorf("parseVerdict(%s) should fail", raw)
		}
	}
}

func TestBuildTextPrompt_StrategyAndRiskFactors(t *testing.T) {
	newUser := Summary{DaysSinceJoin: 0, SpeechCount: 0}
	if !strings.Contains(buildTextPrompt(newUser, "hi"), "Be lenient") {
		t.Error("new user prompt should carry the lenient strategy note")
	}

	oldUser := Summary{DaysSinceJoin: 30, SpeechCount: 50}
	if !strings.Contains(buildTextPrompt(oldUser, "hi"), "established user") {
		t.Error("established user prompt should carry the strict strategy note")
	}

	risky := Summary{RiskFactors: []string{"no avatar", "origin DC5"}}
	prompt := buildTextPrompt(risky, "hi")
	if !strings.Contains(prompt, "Risk factors: no avatar, origin DC5") {
		t.Error("risk factors should be listed in the prompt")
	}
	if !strings.Contains(prompt, "high-risk data center") {
		t.Error("DC5 origin should add the high-risk emphasis line")
	}

	clean := Summary{RiskFactors: []string{"no avatar"}}
	if strings.Contains(buildTextPrompt(clean, "hi"), "high-risk data center") {
		t.Error("emphasis line must only appear for DC4/DC5 factors")
	}
}
