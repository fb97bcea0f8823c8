package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

func doRequest(t *testing.T, ts *httptest.Server, method, path, token string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func registerPlayer(t *testing.T, ts *httptest.Server, name string) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    name + "@example.com",
		"password": "password1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected status %d, got %d", name, http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	token, ok := body["token"].(string)
	if !ok || token == "" {
		t.Fatalf("expected a token, got %#v", body["token"])
	}
	return token
}

func testRoomPayload() map[string]any {
	return map[string]any{
		"name":                 "Friday Night",
		"max_players":          4,
		"total_rounds":         3,
		"upvotes_per_player":   3,
		"downvotes_per_player": 1,
		"allowed_categories":   []string{"TEXT"},
	}
}

func createRoom(t *testing.T, ts *httptest.Server, token string) (string, string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms", token, testRoomPayload())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create room: expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	roomID := jsonID(t, body["room_id"])
	code, ok := body["join_code"].(string)
	if !ok || code == "" {
		t.Fatalf("expected a join code, got %#v", body["join_code"])
	}
	return roomID, code
}

func joinRoom(t *testing.T, ts *httptest.Server, token, code string) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/join", token, map[string]string{
		"join_code": code,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join room: expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}

func startGame(t *testing.T, ts *httptest.Server, token, roomID string) string {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/start", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start game: expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	return jsonID(t, body["round_id"])
}

func submitResponse(t *testing.T, ts *httptest.Server, token, roomID, roundID, content string) (string, bool) {
	t.Helper()
	resp := doRequest(t, ts, http.MethodPost, "/api/rooms/"+roomID+"/rounds/"+roundID+"/responses", token, map[string]string{
		"content": content,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit response: expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	body := decodeBody(t, resp)
	all, _ := body["all_submitted"].(bool)
	return jsonID(t, body["response_id"]), all
}

func fetchRoom(t *testing.T, ts *httptest.Server, token, roomID string) map[string]any {
	t.Helper()
	resp := doRequest(t, ts, http.MethodGet, "/api/rooms/"+roomID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get room: expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	return decodeBody(t, resp)
}

func jsonID(t *testing.T, value any) string {
	t.Helper()
	number, ok := value.(float64)
	if !ok || number <= 0 {
		t.Fatalf("expected a numeric id, got %#v", value)
	}
	return strconv.Itoa(int(number))
}
