package services

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"tanda-xntrust/internal/config"
	"tanda-xntrust/internal/core/domain"
)

// NotifyService pushes tier-change webhooks to the main app backend so it
// can message the member ("You reached Excellent!" etc.)
type NotifyService struct {
	url     string
	client  *http.Client
	enabled bool
}

// NewNotifyService creates a new notify service
func NewNotifyService(cfg *config.Config) *NotifyService {
	url := cfg.Webhook.TierChangeURL
	return &NotifyService{
		url: url,
		client: &http.Client{
			Timeout: time.Duration(cfg.Webhook.TimeoutSecs) * time.Second,
		},
		enabled: url != "",
	}
}

// IsEnabled checks if notification is enabled
func (s *NotifyService) IsEnabled() bool {
	return s.enabled
}

// tierChangePayload is the webhook body
type tierChangePayload struct {
	MembNo      string    `json:"memb_no"`
	OldTier     int       `json:"old_tier"`
	OldTierName string    `json:"old_tier_name"`
	NewTier     int       `json:"new_tier"`
	NewTierName string    `json:"new_tier_name"`
	Score       float64   `json:"score"`
	Promoted    bool      `json:"promoted"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TierChanged implements TierChangeListener. Delivery is best-effort and
// asynchronous; a failed webhook never blocks or fails a recomputation.
func (s *NotifyService) TierChanged(membNo string, oldTier, newTier domain.Tier, score float64) {
	if !s.enabled {
		return
	}

	payload := tierChangePayload{
		MembNo:      membNo,
		OldTier:     int(oldTier),
		OldTierName: oldTier.Name(),
		NewTier:     int(newTier),
		NewTierName: newTier.Name(),
		Score:       score,
		Promoted:    newTier < oldTier, // lower number is a better tier
		OccurredAt:  time.Now(),
	}

	go s.send(payload)
}

func (s *NotifyService) send(payload tierChangePayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️ Tier-change payload marshal failed: %v", err)
		return
	}

	resp, err := s.client.Post(s.url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️ Tier-change webhook failed for %s: %v", payload.MembNo, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("⚠️ Tier-change webhook for %s returned %d", payload.MembNo, resp.StatusCode)
		return
	}

	log.Printf("🔔 Tier change notified: %s %s → %s", payload.MembNo, payload.OldTierName, payload.NewTierName)
}
