package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PlunkMailer sends through the Plunk HTTP API.
type PlunkMailer struct {
	APIURL  string
	APIKey  string
	From    string
	ReplyTo string
	Client  *http.Client
}

func NewPlunkMailer(apiURL, apiKey, from, replyTo string) (*PlunkMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("plunk not configured: set PLUNK_API_KEY")
	}
	if apiURL == "" {
		apiURL = "https://api.useplunk.com/v1/send"
	}
	return &PlunkMailer{
		APIURL:  apiURL,
		APIKey:  apiKey,
		From:    from,
		ReplyTo: replyTo,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type plunkSendBody struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	From    string `json:"from,omitempty"`
	Reply   string `json:"reply,omitempty"`
}

func (m *PlunkMailer) Send(to, subject, body string) error {
	b, err := json.Marshal(plunkSendBody{To: to, Subject: subject, Body: body, From: m.From, Reply: m.ReplyTo})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, m.APIURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIKey)

	resp, err := m.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if msg, readErr := io.ReadAll(resp.Body); readErr == nil && len(msg) > 0 {
			return fmt.Errorf("plunk send failed: status=%d body=%s", resp.StatusCode, msg)
		}
		return fmt.Errorf("plunk send failed: status=%d", resp.StatusCode)
	}
	return nil
}
