package services

import (
	"log"
	"sync"
	"time"
)

const (
	monitorWindow     = 10 * time.Minute
	monitorThreshold  = 5
	alertCooldown     = 1 * time.Hour
	maxAlertsRetained = 100
)

// Monitored event kinds
const (
	EventFailedLogin    = "failed_login"
	EventCaptchaFailure = "captcha_failure"
)

// SecurityEventMonitor aggregates failed logins and rejected public submissions per IP
type SecurityEventMonitor struct {
	mu         sync.Mutex
	events     map[string][]time.Time // kind|ip -> timestamps inside the window
	alertedIPs map[string]time.Time   // kind|ip -> last alert time
	alerts     []SecurityAlert        // newest first
}

// SecurityAlert represents a triggered security alert
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Kind      string    `json:"kind"`
	Reason    string    `json:"reason"`
	Level     string    `json:"level"` // "WARNING", "CRITICAL"
}

// Monitor is the global monitor instance
var Monitor *SecurityEventMonitor

// NewSecurityEventMonitor creates an empty monitor
func NewSecurityEventMonitor() *SecurityEventMonitor {
	return &SecurityEventMonitor{
		events:     make(map[string][]time.Time),
		alertedIPs: make(map[string]time.Time),
	}
}

// InitSecurityMonitor initializes the global monitor. Stale entries are removed by Cleanup.
func InitSecurityMonitor() *SecurityEventMonitor {
	Monitor = NewSecurityEventMonitor()
	return Monitor
}

// TrackFailedLogin records a failed login attempt
func (m *SecurityEventMonitor) TrackFailedLogin(ip string) {
	m.track(EventFailedLogin, ip, "Multiple failed logins detected", "CRITICAL")
}

// TrackCaptchaFailure records a public form post that failed the Turnstile check
func (m *SecurityEventMonitor) TrackCaptchaFailure(ip string) {
	m.track(EventCaptchaFailure, ip, "Repeated captcha failures on the public form", "WARNING")
}

func (m *SecurityEventMonitor) track(kind, ip, reason, level string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := kind + "|" + ip
	now := time.Now()
	windowStart := now.Add(-monitorWindow)

	valid := []time.Time{now}
	for _, t := range m.events[key] {
		if t.After(windowStart) {
			valid = append(valid, t)
		}
	}
	m.events[key] = valid

	if len(valid) >= monitorThreshold {
		m.triggerAlertLocked(key, SecurityAlert{Timestamp: now, IP: ip, Kind: kind, Reason: reason, Level: level})
	}
}

// triggerAlertLocked records and logs an alert; called with the lock held
func (m *SecurityEventMonitor) triggerAlertLocked(key string, alert SecurityAlert) {
	// Max 1 alert per hour per kind and IP
	if last, alerted := m.alertedIPs[key]; alerted && time.Since(last) < alertCooldown {
		return
	}
	m.alertedIPs[key] = alert.Timestamp

	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxAlertsRetained {
		m.alerts = m.alerts[:maxAlertsRetained]
	}

	log.Printf("[SECURITY ALERT] %s from IP: %s", alert.Reason, alert.IP)
}

// GetRecentAlerts returns a copy of recent alerts
func (m *SecurityEventMonitor) GetRecentAlerts() []SecurityAlert {
	if m == nil {
		return []SecurityAlert{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	alertsCopy := make([]SecurityAlert, len(m.alerts))
	copy(alertsCopy, m.alerts)
	return alertsCopy
}

// Cleanup removes stale tracking data
func (m *SecurityEventMonitor) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for key, events := range m.events {
		if len(events) == 0 || now.Sub(events[0]) > monitorWindow {
			delete(m.events, key)
		}
	}
	for key, last := range m.alertedIPs {
		if now.Sub(last) > alertCooldown {
			delete(m.alertedIPs, key)
		}
	}
}
